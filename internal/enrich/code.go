package enrich

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier marks a malformed user-supplied sector/block/lot
// code. It blocks the lookup before any network call.
var ErrInvalidIdentifier = errors.New("invalid lot identifier")

// Code is a normalised composite lot key: 3-digit sector, 3-digit block,
// 4-digit lot, all zero-padded numeric strings.
type Code struct {
	Sector string
	Block  string
	Lot    string
}

// String renders the code without a check digit, the form used for error
// accumulation in batch lookups.
func (c Code) String() string {
	return fmt.Sprintf("%s.%s.%s", c.Sector, c.Block, c.Lot)
}

// NewCode validates and zero-pads the three key parts.
func NewCode(sector, block, lot string) (Code, error) {
	sector = strings.TrimSpace(sector)
	block = strings.TrimSpace(block)
	lot = strings.TrimSpace(lot)

	if err := checkNumeric("sector", sector, 3); err != nil {
		return Code{}, err
	}
	if err := checkNumeric("block", block, 3); err != nil {
		return Code{}, err
	}
	if err := checkNumeric("lot", lot, 4); err != nil {
		return Code{}, err
	}

	return Code{
		Sector: padLeft(sector, 3),
		Block:  padLeft(block, 3),
		Lot:    padLeft(lot, 4),
	}, nil
}

// ParseCode accepts the human-entered forms "001.002.0003-4",
// "001.002.0003" and "1.2.3", ignoring any trailing check digit.
func ParseCode(raw string) (Code, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Code{}, fmt.Errorf("%w: empty code", ErrInvalidIdentifier)
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '.' || r == '-'
	})
	if len(parts) < 3 {
		return Code{}, fmt.Errorf("%w: %q needs sector.block.lot", ErrInvalidIdentifier, raw)
	}

	return NewCode(parts[0], parts[1], parts[2])
}

// maxRangeSize bounds range queries so a typo cannot fan out into
// thousands of upstream requests.
const maxRangeSize = 100

// ExpandRange produces the codes for lots start..end of one block.
func ExpandRange(sector, block string, start, end int) ([]Code, error) {
	if start <= 0 || end < start {
		return nil, fmt.Errorf("%w: lot range %d..%d", ErrInvalidIdentifier, start, end)
	}
	if end-start+1 > maxRangeSize {
		return nil, fmt.Errorf("%w: lot range larger than %d", ErrInvalidIdentifier, maxRangeSize)
	}

	codes := make([]Code, 0, end-start+1)
	for i := start; i <= end; i++ {
		code, err := NewCode(sector, block, fmt.Sprint(i))
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func checkNumeric(field, value string, maxLen int) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidIdentifier, field)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s %q longer than %d digits", ErrInvalidIdentifier, field, value, maxLen)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %s %q is not numeric", ErrInvalidIdentifier, field, value)
		}
	}
	return nil
}

func padLeft(value string, width int) string {
	for len(value) < width {
		value = "0" + value
	}
	return value
}

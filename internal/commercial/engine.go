package commercial

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quadra-hq/quadra/api/internal/models"
)

// Status enumerates the negotiation stage of one deal.
type Status string

const (
	StatusNegotiating   = Status("NEGOTIATING")
	StatusUnderContract = Status("UNDER_CONTRACT")
	StatusClosed        = Status("CLOSED")
)

// ValidStatus reports whether s is one of the three known stages.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNegotiating, StatusUnderContract, StatusClosed:
		return true
	}
	return false
}

// Money ceilings. Sale price and rent are clamped on every edit; the two
// price-per ratios are clamped for display sanity only, never rejected.
const (
	MaxMoneyValue = 100_000_000.0
	MaxUnitPrice  = 30_000.0
)

// DealTerms is one parcel's analyst-entered deal record, created lazily
// with zoning-derived defaults the first time the commercial view opens
// for that parcel.
type DealTerms struct {
	IPTU          string  `json:"iptu"`
	Area          float64 `json:"area"`
	SalePrice     float64 `json:"salePrice"`
	MonthlyRent   float64 `json:"monthlyRent"`
	StoreExchange float64 `json:"storeExchange"` // in-kind store-area units
	AptExchange   float64 `json:"aptExchange"`   // in-kind apartment-area units
	Description   string  `json:"description"`
	Status        Status  `json:"status"`
	Zoning        string  `json:"zoning"`
	CA            float64 `json:"ca"`
	Divisor       float64 `json:"divisor"`
}

// BuildableUnits derives the integer unit count from area and the zoning
// coefficients. The floor is intentional: fractional units are not
// meaningful.
func (t *DealTerms) BuildableUnits() int {
	return BuildableUnits(t.Area, t.CA, t.Divisor)
}

// BuildableUnits is floor(area*ca/divisor), zero whenever area or divisor
// is not positive.
func BuildableUnits(area, ca, divisor float64) int {
	if area <= 0 || divisor <= 0 {
		return 0
	}
	return int(math.Floor(area * ca / divisor))
}

// LineMetrics are the computed per-parcel figures, identical whether
// previewed live or exported.
type LineMetrics struct {
	IPTU           string  `json:"iptu"`
	Area           float64 `json:"area"`
	SalePrice      float64 `json:"salePrice"`
	MonthlyRent    float64 `json:"monthlyRent"`
	StoreExchange  float64 `json:"storeExchange"`
	AptExchange    float64 `json:"aptExchange"`
	BuildableUnits int     `json:"buildableUnits"`
	LineTotal      float64 `json:"lineTotal"`
	PricePerArea   float64 `json:"pricePerArea"`
	PricePerUnit   float64 `json:"pricePerUnit"`
}

// Aggregate are the portfolio-wide sums. The two ratio fields stay
// uncapped here: the per-parcel display clamp deliberately does not apply
// at the aggregate level.
type Aggregate struct {
	Area           float64 `json:"area"`
	SalePrice      float64 `json:"salePrice"`
	MonthlyRent    float64 `json:"monthlyRent"`
	StoreExchange  float64 `json:"storeExchange"`
	AptExchange    float64 `json:"aptExchange"`
	BuildableUnits int     `json:"buildableUnits"`
	GrandTotal     float64 `json:"grandTotal"`
	PricePerArea   float64 `json:"pricePerArea"`
	PricePerUnit   float64 `json:"pricePerUnit"`
}

// Engine owns the per-parcel deal-terms records plus the two session-level
// in-kind unit prices. It has no rendering or network dependencies. The
// engine is not safe for concurrent use; the owning session serialises
// access.
type Engine struct {
	terms map[string]*DealTerms

	StoreUnitPrice float64
	AptUnitPrice   float64
}

// NewEngine creates an engine with the session-level unit prices for the
// store and apartment in-kind exchanges.
func NewEngine(storeUnitPrice, aptUnitPrice float64) *Engine {
	return &Engine{
		terms:          make(map[string]*DealTerms),
		StoreUnitPrice: storeUnitPrice,
		AptUnitPrice:   aptUnitPrice,
	}
}

// Reset drops every deal-terms record, for a new query or session reset.
func (e *Engine) Reset() {
	e.terms = make(map[string]*DealTerms)
}

// Remove drops the record of one parcel, if present.
func (e *Engine) Remove(iptu string) {
	delete(e.terms, iptu)
}

// TermsFor returns the deal-terms record for a parcel, creating it with
// zoning-derived defaults on first access. Coefficients are seeded only
// here; a later zoning correction does not refresh an existing record.
func (e *Engine) TermsFor(p *models.Parcel) *DealTerms {
	if t, ok := e.terms[p.IPTU()]; ok {
		return t
	}

	coef := CoefficientsFor(p.Zoning)
	t := &DealTerms{
		IPTU:    p.IPTU(),
		Area:    p.Area,
		Status:  StatusNegotiating,
		Zoning:  p.Zoning,
		CA:      coef.CA,
		Divisor: coef.Divisor,
	}
	e.terms[p.IPTU()] = t
	return t
}

// Terms returns the record for an identifier without creating one.
func (e *Engine) Terms(iptu string) (*DealTerms, bool) {
	t, ok := e.terms[iptu]
	return t, ok
}

// SetSalePrice applies the money ceiling and stores the value. Malformed
// input has already been soft-zeroed by ParseAmount.
func (e *Engine) SetSalePrice(t *DealTerms, v float64) {
	t.SalePrice = clampMoney(v)
}

// SetMonthlyRent applies the money ceiling and stores the value.
func (e *Engine) SetMonthlyRent(t *DealTerms, v float64) {
	t.MonthlyRent = clampMoney(v)
}

// CommitDescription normalises the free-text deal description on commit:
// the first letter is capitalised, the rest is left alone.
func (e *Engine) CommitDescription(t *DealTerms, text string) {
	t.Description = capitalizeFirst(text)
}

// Line computes the per-parcel metrics for one record.
func (e *Engine) Line(t *DealTerms) LineMetrics {
	lineTotal := t.SalePrice + t.MonthlyRent +
		t.StoreExchange*e.StoreUnitPrice +
		t.AptExchange*e.AptUnitPrice
	units := t.BuildableUnits()

	m := LineMetrics{
		IPTU:           t.IPTU,
		Area:           t.Area,
		SalePrice:      t.SalePrice,
		MonthlyRent:    t.MonthlyRent,
		StoreExchange:  t.StoreExchange,
		AptExchange:    t.AptExchange,
		BuildableUnits: units,
		LineTotal:      lineTotal,
	}
	if t.Area > 0 {
		m.PricePerArea = clampRatio(lineTotal / t.Area)
	}
	if units > 0 {
		m.PricePerUnit = clampRatio(lineTotal / float64(units))
	}
	return m
}

// Totals computes the portfolio aggregate across the given parcels, in
// selection order. Parcels without a deal-terms record get one created
// with defaults, so a freshly opened portfolio already totals correctly.
func (e *Engine) Totals(parcels []*models.Parcel) Aggregate {
	var agg Aggregate
	for _, p := range parcels {
		line := e.Line(e.TermsFor(p))
		agg.Area += line.Area
		agg.SalePrice += line.SalePrice
		agg.MonthlyRent += line.MonthlyRent
		agg.StoreExchange += line.StoreExchange
		agg.AptExchange += line.AptExchange
		agg.BuildableUnits += line.BuildableUnits
		agg.GrandTotal += line.LineTotal
	}
	if agg.Area > 0 {
		agg.PricePerArea = agg.GrandTotal / agg.Area
	}
	if agg.BuildableUnits > 0 {
		agg.PricePerUnit = agg.GrandTotal / float64(agg.BuildableUnits)
	}
	return agg
}

// Lines computes the per-parcel metrics for the given parcels in order.
func (e *Engine) Lines(parcels []*models.Parcel) []LineMetrics {
	out := make([]LineMetrics, 0, len(parcels))
	for _, p := range parcels {
		out = append(out, e.Line(e.TermsFor(p)))
	}
	return out
}

// ParseAmount reads an analyst-entered numeric string, failing soft to
// zero. There is no hard failure mode in this component.
func ParseAmount(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampMoney(v float64) float64 {
	if v > MaxMoneyValue {
		return MaxMoneyValue
	}
	if v < 0 {
		return 0
	}
	return v
}

func clampRatio(v float64) float64 {
	if v > MaxUnitPrice {
		return MaxUnitPrice
	}
	return v
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

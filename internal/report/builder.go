package report

import (
	"fmt"
	"strings"

	"github.com/quadra-hq/quadra/api/internal/commercial"
	"github.com/quadra-hq/quadra/api/internal/models"
	"github.com/quadra-hq/quadra/api/internal/selection"
)

// SessionInputs are the session-level values the payload carries besides
// parcels and deal terms. Absent names degrade to the unknown sentinel,
// never blocking payload construction.
type SessionInputs struct {
	Analyst        string
	Manager        string
	Broker         string
	DealCode       string
	StoreUnitPrice float64
	AptUnitPrice   float64
	MapImageBase64 string
}

// Row is one formatted line of the per-parcel deal table.
type Row struct {
	Lot            string `json:"lot"`
	Area           string `json:"area"`
	SalePrice      string `json:"salePrice"`
	MonthlyRent    string `json:"monthlyRent"`
	StoreExchange  string `json:"storeExchange"`
	AptExchange    string `json:"aptExchange"`
	LineTotal      string `json:"lineTotal"`
	BuildableUnits string `json:"buildableUnits"`
	PricePerUnit   string `json:"pricePerUnit"`
	Description    string `json:"description"`
	Status         string `json:"status"`
}

// Payload is the flat, fully-resolved input of the slide-deck sink. The
// sink owns layout and file emission; correctness and completeness end
// here.
type Payload struct {
	Address       string `json:"address"`
	SectorBlock   string `json:"sectorBlock"`
	IPTU          string `json:"iptu"`
	Zoning        string `json:"zoning"`
	CA            string `json:"ca"`
	LandUse       string `json:"landUse"`
	SidewalkWidth string `json:"sidewalkWidth"`
	GeotechUnit   string `json:"geotechUnit"`

	TotalArea      string `json:"totalArea"`
	BuildableUnits string `json:"buildableUnits"`

	Analyst  string `json:"analyst"`
	Manager  string `json:"manager"`
	Broker   string `json:"broker"`
	DealCode string `json:"dealCode"`

	Rows      []Row                `json:"rows"`
	Totals    commercial.Aggregate `json:"totals"`
	TotalsRow Row                  `json:"totalsRow"`

	MapImageBase64 string `json:"mapImageBase64"`
}

// Build reduces the selection set and commercial engine state into the
// report payload. It is a pure reduction: no network, no rendering state,
// deterministic for given inputs.
func Build(sel *selection.Set, engine *commercial.Engine, in SessionInputs) Payload {
	parcels := sel.Parcels()
	totals := engine.Totals(parcels)

	payload := Payload{
		Address:        models.Unknown,
		SectorBlock:    models.Unknown,
		IPTU:           models.Unknown,
		Zoning:         models.Unknown,
		CA:             models.Unknown,
		LandUse:        joinDistinct(parcels, func(p *models.Parcel) string { return p.LandUse }),
		SidewalkWidth:  joinDistinct(parcels, func(p *models.Parcel) string { return p.SidewalkWidth }),
		GeotechUnit:    joinDistinct(parcels, func(p *models.Parcel) string { return p.GeotechUnit }),
		TotalArea:      fmt.Sprintf("%.2f m²", totals.Area),
		BuildableUnits: fmt.Sprint(totals.BuildableUnits),
		Analyst:        orUnknown(in.Analyst),
		Manager:        orUnknown(in.Manager),
		Broker:         orUnknown(in.Broker),
		DealCode:       orUnknown(in.DealCode),
		Totals:         totals,
		MapImageBase64: in.MapImageBase64,
	}

	// The address comes from the primary parcel only; joining addresses
	// across lots would be meaningless.
	if primary := sel.Primary(); primary != nil {
		payload.Address = fmt.Sprintf("%s - %s", primary.Address, primary.District)
		payload.SectorBlock = fmt.Sprintf("%s / %s", primary.Sector, primary.Block)
		payload.IPTU = primary.IPTU()
		payload.Zoning = primary.Zoning
		if t, ok := engine.Terms(primary.IPTU()); ok && t.CA > 0 {
			payload.CA = trimFloat(t.CA)
		}
	}

	payload.Rows = make([]Row, 0, len(parcels))
	for _, p := range parcels {
		payload.Rows = append(payload.Rows, buildRow(p, engine))
	}
	payload.TotalsRow = totalsRow(totals)

	return payload
}

func buildRow(p *models.Parcel, engine *commercial.Engine) Row {
	terms := engine.TermsFor(p)
	line := engine.Line(terms)

	return Row{
		Lot:            p.ShortLot(),
		Area:           fmt.Sprintf("%.2f", line.Area),
		SalePrice:      dashZero(line.SalePrice),
		MonthlyRent:    dashZero(line.MonthlyRent),
		StoreExchange:  fmt.Sprintf("%.1f", line.StoreExchange),
		AptExchange:    fmt.Sprintf("%.1f", line.AptExchange),
		LineTotal:      dashZero(line.LineTotal),
		BuildableUnits: fmt.Sprint(line.BuildableUnits),
		PricePerUnit:   dashZero(line.PricePerUnit),
		Description:    orDash(terms.Description),
		Status:         string(terms.Status),
	}
}

func totalsRow(totals commercial.Aggregate) Row {
	perUnit := "-"
	if totals.BuildableUnits > 0 {
		perUnit = formatBRL(totals.GrandTotal / float64(totals.BuildableUnits))
	}
	return Row{
		Lot:            "TOTAL",
		Area:           fmt.Sprintf("%.2f", totals.Area),
		SalePrice:      formatBRL(totals.SalePrice),
		MonthlyRent:    formatBRL(totals.MonthlyRent),
		StoreExchange:  fmt.Sprintf("%.1f", totals.StoreExchange),
		AptExchange:    fmt.Sprintf("%.1f", totals.AptExchange),
		LineTotal:      formatBRL(totals.GrandTotal),
		BuildableUnits: fmt.Sprint(totals.BuildableUnits),
		PricePerUnit:   perUnit,
	}
}

// joinDistinct collects the distinct values of one field across the
// selected parcels, in first-seen order, joined with " / ". When known and
// unknown values mix, unknown is dropped from the join; when every parcel
// reports unknown, the field is unknown.
func joinDistinct(parcels []*models.Parcel, field func(*models.Parcel) string) string {
	var distinct []string
	seen := make(map[string]bool)
	for _, p := range parcels {
		v := field(p)
		if v == "" {
			v = models.Unknown
		}
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}

	if len(distinct) > 1 {
		filtered := distinct[:0]
		for _, v := range distinct {
			if v != models.Unknown {
				filtered = append(filtered, v)
			}
		}
		distinct = filtered
	}

	if len(distinct) == 0 {
		return models.Unknown
	}
	return strings.Join(distinct, " / ")
}

// formatBRL renders a currency amount in pt-BR convention:
// "R$ 1.234.567,89".
func formatBRL(v float64) string {
	return "R$ " + formatDecimal(v)
}

// formatDecimal renders "1.234.567,89": dot thousands separator, comma
// decimals.
func formatDecimal(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	whole := fmt.Sprintf("%.2f", v)
	intPart := whole[:len(whole)-3]
	fracPart := whole[len(whole)-2:]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := strings.Join(groups, ".") + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

func dashZero(v float64) string {
	if v == 0 {
		return "-"
	}
	return formatDecimal(v)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.Unknown
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

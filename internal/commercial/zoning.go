package commercial

// Coefficients is the buildable-area pair a zoning code maps to: the
// utilisation coefficient (CA) and the area divisor used to derive unit
// counts.
type Coefficients struct {
	CA      float64 `json:"ca"`
	Divisor float64 `json:"divisor"`
}

// defaultDivisor applies to zoning codes missing from the table. The CA
// stays zero there, so unknown zones produce zero buildable units until an
// analyst fills the coefficient in.
const defaultDivisor = 25

// zoningTable is the static zoning-code lookup seeding deal-terms
// defaults. It is never mutated at runtime.
var zoningTable = map[string]Coefficients{
	"ZEU":     {CA: 6.40, Divisor: 32},
	"ZEUa":    {CA: 3.40, Divisor: 25},
	"ZEUP":    {CA: 3.40, Divisor: 25},
	"ZEUPa":   {CA: 1.90, Divisor: 25},
	"ZEM":     {CA: 3.40, Divisor: 25},
	"ZEMP":    {CA: 3.40, Divisor: 25},
	"ZC":      {CA: 3.40, Divisor: 25},
	"ZCa":     {CA: 1.90, Divisor: 25},
	"ZC-ZEIS": {CA: 3.40, Divisor: 25},
	"ZCOR-2":  {CA: 1.90, Divisor: 25},
	"ZCOR-3":  {CA: 1.90, Divisor: 25},
	"ZCORa":   {CA: 1.90, Divisor: 25},
	"ZM":      {CA: 3.40, Divisor: 25},
	"ZMa":     {CA: 1.90, Divisor: 25},
	"ZMIS":    {CA: 3.40, Divisor: 25},
	"ZMISa":   {CA: 1.90, Divisor: 25},
	"ZEIS-1":  {CA: 2.90, Divisor: 25},
	"ZEIS-2":  {CA: 4.40, Divisor: 32},
	"ZEIS-3":  {CA: 4.40, Divisor: 32},
	"ZEIS-4":  {CA: 2.40, Divisor: 25},
	"ZEIS-5":  {CA: 4.40, Divisor: 32},
	"ZDE-1":   {CA: 3.40, Divisor: 25},
	"ZDE-2":   {CA: 3.40, Divisor: 25},
	"ZPI-1":   {CA: 2.65, Divisor: 25},
	"ZPI-2":   {CA: 2.65, Divisor: 25},
}

// CoefficientsFor returns the seed pair for a zoning code, falling back to
// a zero CA with the default divisor for unknown codes.
func CoefficientsFor(zoning string) Coefficients {
	if c, ok := zoningTable[zoning]; ok {
		return c
	}
	return Coefficients{CA: 0, Divisor: defaultDivisor}
}

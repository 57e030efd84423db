package models

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// Unknown is the sentinel used whenever an attribute could not be resolved
// from the upstream service. It is never an error: missing secondary data
// degrades the field, not the parcel.
const Unknown = "N/I"

// Parcel represents a municipal land lot identified by its fiscal
// sector/block/lot codes. The composite key is immutable after
// construction; two parcels are equal iff their IPTU strings match.
type Parcel struct {
	// Feature is the raw upstream geometry and property set. It is owned
	// by the parcel and already reprojected to WGS84 by the query adapter.
	Feature *geojson.Feature `json:"feature,omitempty"`

	iptu string

	Sector     string `json:"sector"`
	Block      string `json:"block"`
	Lot        string `json:"lot"`
	CheckDigit string `json:"checkDigit"`

	Address       string  `json:"address"`
	District      string  `json:"district"`
	Zoning        string  `json:"zoning"`
	LandUse       string  `json:"landUse"`
	GeotechUnit   string  `json:"geotechUnit"`
	SidewalkWidth string  `json:"sidewalkWidth"`
	Area          float64 `json:"area"`
}

// NewParcel builds a parcel from its composite key parts and derives the
// IPTU identifier exactly once. Sector and block are 3-digit codes, lot is
// a 4-digit code; callers are expected to pass them already zero-padded.
func NewParcel(sector, block, lot, checkDigit string) *Parcel {
	return &Parcel{
		Sector:        sector,
		Block:         block,
		Lot:           lot,
		CheckDigit:    checkDigit,
		iptu:          fmt.Sprintf("%s.%s.%s-%s", sector, block, lot, checkDigit),
		District:      Unknown,
		Zoning:        Unknown,
		LandUse:       Unknown,
		GeotechUnit:   Unknown,
		SidewalkWidth: Unknown,
	}
}

// IPTU returns the derived human-readable identifier
// "sector.block.lot-checkDigit". It is the parcel's primary key.
func (p *Parcel) IPTU() string {
	return p.iptu
}

// Equal reports whether two parcels refer to the same lot, by derived
// identifier, never by object identity.
func (p *Parcel) Equal(other *Parcel) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.iptu == other.iptu
}

// ShortLot is the lot portion of the identifier, used by the report table
// where repeating the full sector.block prefix per row adds nothing.
func (p *Parcel) ShortLot() string {
	return p.Lot
}

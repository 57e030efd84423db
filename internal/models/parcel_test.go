package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewParcel_DerivesIPTU(t *testing.T) {
	p := NewParcel("001", "032", "0417", "9")

	assert.Equal(t, "001.032.0417-9", p.IPTU())
	assert.Equal(t, "001", p.Sector)
	assert.Equal(t, "032", p.Block)
	assert.Equal(t, "0417", p.Lot)
}

func TestNewParcel_SecondaryFieldsDefaultToUnknown(t *testing.T) {
	p := NewParcel("001", "002", "0003", "4")

	assert.Equal(t, Unknown, p.District)
	assert.Equal(t, Unknown, p.Zoning)
	assert.Equal(t, Unknown, p.GeotechUnit)
	assert.Equal(t, Unknown, p.SidewalkWidth)
	assert.Equal(t, Unknown, p.LandUse)
}

func TestParcel_EqualByIdentifier(t *testing.T) {
	a := NewParcel("001", "002", "0003", "4")
	b := NewParcel("001", "002", "0003", "4")
	c := NewParcel("001", "002", "0004", "1")

	// Equality follows the derived identifier, not object identity.
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	b.Area = 500
	assert.True(t, a.Equal(b))
}

func TestParcel_EqualNil(t *testing.T) {
	var a *Parcel
	b := NewParcel("001", "002", "0003", "4")

	assert.True(t, a.Equal(nil))
	assert.False(t, b.Equal(nil))
	assert.False(t, a.Equal(b))
}

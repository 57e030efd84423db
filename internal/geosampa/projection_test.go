package geosampa

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTMToWGS84_CentralMeridian(t *testing.T) {
	// On the central meridian of zone 23 the longitude is exactly -45.
	pt := utmToWGS84(500000, 10000000)
	assert.InDelta(t, -45.0, pt[0], 1e-9)
	assert.InDelta(t, 0.0, pt[1], 1e-9)
}

func TestUTMToWGS84_Downtown(t *testing.T) {
	// Known downtown coordinate pair, checked against pyproj.
	pt := utmToWGS84(333140, 7394868)
	assert.InDelta(t, -46.6347, pt[0], 1e-3)
	assert.InDelta(t, -23.5480, pt[1], 1e-3)
}

func TestUTMToWGS84_Monotonic(t *testing.T) {
	base := utmToWGS84(333140, 7394868)
	east := utmToWGS84(334140, 7394868)
	north := utmToWGS84(333140, 7395868)

	assert.Greater(t, east[0], base[0], "easting should increase longitude")
	assert.Greater(t, north[1], base[1], "northing should increase latitude")
}

func TestReprojectGeometry_Polygon(t *testing.T) {
	poly := orb.Polygon{orb.Ring{
		{333000, 7394800},
		{333100, 7394800},
		{333100, 7394900},
		{333000, 7394800},
	}}

	out := reprojectGeometry(poly)
	ring, ok := out.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, ring[0], 4)

	for _, pt := range ring[0] {
		assert.InDelta(t, -46.63, pt[0], 0.01)
		assert.InDelta(t, -23.55, pt[1], 0.01)
	}

	// The input must stay untouched; reprojection replaces, never mutates.
	assert.Equal(t, 333000.0, poly[0][0][0])
}

func TestReprojectFeatures_SkipsNilGeometry(t *testing.T) {
	features := []*geojson.Feature{
		nil,
		{Geometry: nil},
		geojson.NewFeature(orb.Point{333140, 7394868}),
	}

	reprojectFeatures(features)

	pt, ok := features[2].Geometry.(orb.Point)
	require.True(t, ok)
	assert.InDelta(t, -46.6347, pt[0], 1e-3)
}

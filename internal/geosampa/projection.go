package geosampa

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// The WFS lot layer serves geometry in EPSG:31983 (SIRGAS 2000 / UTM zone
// 23S). SIRGAS 2000 is equivalent to WGS84 for this purpose, so converting
// to geographic coordinates is a plain inverse transverse Mercator on the
// GRS80 ellipsoid. The conversion is pure and must be applied exactly once
// per feature; callers never re-reproject.
const (
	grs80A        = 6378137.0
	grs80F        = 1.0 / 298.257222101
	utmScale      = 0.9996
	utmFalseEast  = 500000.0
	utmFalseNorth = 10000000.0 // southern hemisphere
	zone23Lon0    = -45.0 * math.Pi / 180.0
)

// utmToWGS84 converts one EPSG:31983 easting/northing pair to a lon/lat
// point in degrees.
func utmToWGS84(easting, northing float64) orb.Point {
	e2 := grs80F * (2 - grs80F)
	ep2 := e2 / (1 - e2)

	m := (northing - utmFalseNorth) / utmScale
	mu := m / (grs80A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1 := math.Sin(phi1)
	cosPhi1 := math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := grs80A / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := grs80A * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (easting - utmFalseEast) / (n1 * utmScale)

	lat := phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d*d*d*d/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d*d*d*d*d*d/720)
	lon := zone23Lon0 + (d-
		(1+2*t1+c1)*d*d*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d*d*d*d*d/120)/cosPhi1

	return orb.Point{lon * 180 / math.Pi, lat * 180 / math.Pi}
}

// reprojectGeometry returns the WGS84 rendition of a projected geometry.
// Unsupported geometry types are returned unchanged.
func reprojectGeometry(g orb.Geometry) orb.Geometry {
	switch geom := g.(type) {
	case orb.Point:
		return utmToWGS84(geom[0], geom[1])
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(geom))
		for i, pt := range geom {
			out[i] = utmToWGS84(pt[0], pt[1])
		}
		return out
	case orb.LineString:
		out := make(orb.LineString, len(geom))
		for i, pt := range geom {
			out[i] = utmToWGS84(pt[0], pt[1])
		}
		return out
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(geom))
		for i, ls := range geom {
			out[i] = reprojectGeometry(ls).(orb.LineString)
		}
		return out
	case orb.Ring:
		out := make(orb.Ring, len(geom))
		for i, pt := range geom {
			out[i] = utmToWGS84(pt[0], pt[1])
		}
		return out
	case orb.Polygon:
		out := make(orb.Polygon, len(geom))
		for i, ring := range geom {
			out[i] = reprojectGeometry(ring).(orb.Ring)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(geom))
		for i, poly := range geom {
			out[i] = reprojectGeometry(poly).(orb.Polygon)
		}
		return out
	default:
		return g
	}
}

// reprojectFeatures rewrites every feature geometry to WGS84 in place.
func reprojectFeatures(features []*geojson.Feature) {
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		f.Geometry = reprojectGeometry(f.Geometry)
	}
}

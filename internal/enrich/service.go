package enrich

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/quadra-hq/quadra/api/internal/geosampa"
	"github.com/quadra-hq/quadra/api/internal/logger"
	"github.com/quadra-hq/quadra/api/internal/models"
)

// Service-level errors.
var (
	// ErrNotFound means the query executed successfully but matched no lot.
	ErrNotFound = errors.New("lot not found")

	// ErrMalformedFeature means the core feature lacks the composite key.
	ErrMalformedFeature = errors.New("malformed lot feature")
)

// Service turns raw lot features into complete parcel records and resolves
// lots from user-supplied identifiers.
type Service interface {
	// Enrich builds a parcel from a base lot feature, issuing the four
	// secondary lookups (district, zoning, geotechnical unit, sidewalk
	// width) concurrently. Each lookup independently degrades to the
	// unknown sentinel; enrichment never fails for a well-formed feature.
	Enrich(ctx context.Context, core *geojson.Feature) (*models.Parcel, error)

	// LookupByCode resolves one lot from its composite key.
	// Returns ErrNotFound when the query matched nothing.
	LookupByCode(ctx context.Context, code Code) (*models.Parcel, error)

	// LookupBatch resolves a list of codes, continuing past individual
	// failures. The second return value accumulates one "code: reason"
	// string per failed item.
	LookupBatch(ctx context.Context, codes []Code) ([]*models.Parcel, []string)
}

type service struct {
	client geosampa.Client
	log    *logger.Logger
}

// NewService creates an enrichment Service on top of a query client.
func NewService(client geosampa.Client, log *logger.Logger) Service {
	return &service{client: client, log: log}
}

func (s *service) Enrich(ctx context.Context, core *geojson.Feature) (*models.Parcel, error) {
	if core == nil {
		return nil, fmt.Errorf("%w: nil feature", ErrMalformedFeature)
	}

	props := core.Properties
	sector := stringProp(props, geosampa.PropSector)
	block := stringProp(props, geosampa.PropBlock)
	lot := stringProp(props, geosampa.PropLot)
	if sector == "" || block == "" || lot == "" {
		return nil, fmt.Errorf("%w: missing sector/block/lot properties", ErrMalformedFeature)
	}

	parcel := models.NewParcel(sector, block, lot, stringProp(props, geosampa.PropCheckDigit))
	parcel.Feature = core
	parcel.Area = floatProp(props, geosampa.PropArea)

	street := stringProp(props, geosampa.PropStreet)
	if street == "" {
		street = "N/A"
	}
	door := stringProp(props, geosampa.PropDoorNumber)
	if door == "" {
		door = "S/N"
	}
	parcel.Address = street + ", " + door

	if use := stringProp(props, geosampa.PropLandUse); use != "" {
		parcel.LandUse = use
	}

	center, ok := representativePoint(core)
	if !ok {
		s.log.Warn("Lot feature has no usable geometry, skipping secondary lookups", map[string]interface{}{
			"iptu": parcel.IPTU(),
		})
		return parcel, nil
	}

	// The four lookups run as independent in-flight requests and are
	// joined with an all-complete policy: one failure never cancels or
	// fails its siblings.
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		res := s.client.PointQuery(ctx, []string{geosampa.LayerDistrict}, center)
		if f := res.First(); f != nil {
			if v := stringProp(f.Properties, geosampa.PropDistrict); v != "" {
				parcel.District = v
			}
		}
	}()

	go func() {
		defer wg.Done()
		res := s.client.PointQuery(ctx, []string{geosampa.LayerZoning}, center)
		if f := res.First(); f != nil {
			if v := stringProp(f.Properties, geosampa.PropZoningCode); v != "" {
				parcel.Zoning = v
			}
		}
	}()

	go func() {
		defer wg.Done()
		res := s.client.PointQuery(ctx, []string{geosampa.LayerGeotech}, center)
		if f := res.First(); f != nil {
			if v := stringProp(f.Properties, geosampa.PropGeotechUnit); v != "" {
				parcel.GeotechUnit = v
			}
		}
	}()

	go func() {
		defer wg.Done()
		parcel.SidewalkWidth = s.sidewalkWidth(ctx, props, center)
	}()

	wg.Wait()

	s.log.Info("Lot enriched", map[string]interface{}{
		"iptu":     parcel.IPTU(),
		"district": parcel.District,
		"zoning":   parcel.Zoning,
	})

	return parcel, nil
}

// sidewalkWidth prefers the WFS segments keyed by the lot's street code,
// which cover the whole frontage; the centroid point query is the fallback
// for lots without a street code.
func (s *service) sidewalkWidth(ctx context.Context, lotProps geojson.Properties, center orb.Point) string {
	if streetCode := stringProp(lotProps, geosampa.PropStreetCode); streetCode != "" {
		filter := fmt.Sprintf("%s = '%s'", geosampa.PropStreetCode, streetCode)
		res := s.client.AttributeQuery(ctx, geosampa.LayerSidewalk, filter)
		if f := res.First(); f != nil {
			if width, ok := numericProp(f.Properties, geosampa.PropSidewalkWidth); ok {
				return fmt.Sprintf("%.2f m", width)
			}
		}
	}

	res := s.client.PointQuery(ctx, []string{geosampa.LayerSidewalk}, center)
	if f := res.First(); f != nil {
		if width, ok := numericProp(f.Properties, geosampa.PropSidewalkWidth); ok {
			return fmt.Sprintf("%.2f m", width)
		}
	}
	return models.Unknown
}

func (s *service) LookupByCode(ctx context.Context, code Code) (*models.Parcel, error) {
	filter := fmt.Sprintf("%s='%s' AND %s='%s' AND %s='%s'",
		geosampa.PropSector, code.Sector,
		geosampa.PropBlock, code.Block,
		geosampa.PropLot, code.Lot)

	res := s.client.AttributeQuery(ctx, geosampa.LayerLot, filter)
	if !res.OK() {
		return nil, fmt.Errorf("lot query for %s failed: %w", code, res.Err)
	}
	if len(res.Features) == 0 {
		return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
	}

	return s.Enrich(ctx, res.Features[0])
}

func (s *service) LookupBatch(ctx context.Context, codes []Code) ([]*models.Parcel, []string) {
	var parcels []*models.Parcel
	var failures []string

	for _, code := range codes {
		parcel, err := s.LookupByCode(ctx, code)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", code, reason(err)))
			continue
		}
		parcels = append(parcels, parcel)
	}

	return parcels, failures
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, geosampa.ErrNetwork):
		return "network failure"
	case errors.Is(err, geosampa.ErrUpstream):
		return "upstream failure"
	default:
		return err.Error()
	}
}

// representativePoint picks the point the secondary lookups probe at: the
// planar centroid for areas, the feature point itself otherwise.
func representativePoint(f *geojson.Feature) (orb.Point, bool) {
	if f == nil || f.Geometry == nil {
		return orb.Point{}, false
	}
	if pt, ok := f.Geometry.(orb.Point); ok {
		return pt, true
	}
	center, _ := planar.CentroidArea(f.Geometry)
	return center, true
}

func stringProp(props geojson.Properties, key string) string {
	if props == nil {
		return ""
	}
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// floatProp parses a numeric property, failing soft to zero.
func floatProp(props geojson.Properties, key string) float64 {
	v, _ := numericProp(props, key)
	return v
}

func numericProp(props geojson.Properties, key string) (float64, bool) {
	if props == nil {
		return 0, false
	}
	switch v := props[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

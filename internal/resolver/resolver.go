package resolver

import (
	"context"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/quadra-hq/quadra/api/internal/enrich"
	"github.com/quadra-hq/quadra/api/internal/geosampa"
	"github.com/quadra-hq/quadra/api/internal/logger"
	"github.com/quadra-hq/quadra/api/internal/models"
)

// Visibility answers whether an overlay is currently enabled on the map.
// Disabled overlays are skipped without a network call.
type Visibility interface {
	Enabled(overlayName string) bool
}

// OutcomeKind tags the terminal state a click resolution reached.
type OutcomeKind string

const (
	// OutcomeOverlay means an enabled overlay up the precedence list had a
	// feature under the click; only display labels are produced.
	OutcomeOverlay OutcomeKind = "overlay"

	// OutcomeParcel means no overlay hit and the base lot layer did; the
	// lot is fully enriched.
	OutcomeParcel OutcomeKind = "parcel"

	// OutcomeNotFound means nothing of interest exists at the point.
	OutcomeNotFound OutcomeKind = "not_found"
)

// Outcome is the terminal state of one click resolution.
type Outcome struct {
	Kind   OutcomeKind
	Source string // overlay name or the lot fallback
	Labels []Label
	Parcel *models.Parcel
}

// Highlight is the single highlighted feature the map may carry. The
// resolver owns exactly one; it is replaced, never mutated, on every
// resolution and torn down when its source layer is disabled.
type Highlight struct {
	Source  string
	Feature *geojson.Feature
}

// Resolver drives the fixed-precedence probe of overlay layers for one
// click point, falling back to the base lot layer.
type Resolver struct {
	client   geosampa.Client
	enricher enrich.Service
	log      *logger.Logger

	mu        sync.Mutex
	highlight *Highlight
}

// New creates a Resolver.
func New(client geosampa.Client, enricher enrich.Service, log *logger.Logger) *Resolver {
	return &Resolver{client: client, enricher: enricher, log: log}
}

// Resolve walks the precedence list for one click. Probing is strictly
// sequential: each layer is only consulted because every layer before it
// produced nothing, so the order itself carries meaning.
func (r *Resolver) Resolve(ctx context.Context, pt orb.Point, vis Visibility) Outcome {
	// Entering a new resolution always removes the previous highlight
	// before anything else is drawn.
	r.setHighlight(nil)

	for _, o := range precedence {
		if vis != nil && !vis.Enabled(o.Name) {
			continue
		}

		res := r.client.PointQuery(ctx, o.Layers, pt)
		if !res.OK() {
			r.log.Warn("Overlay probe degraded, advancing", map[string]interface{}{
				"overlay": o.Name,
				"error":   res.Err.Error(),
			})
			continue
		}
		feature := res.First()
		if feature == nil {
			continue
		}

		r.setHighlight(&Highlight{Source: o.Name, Feature: feature})
		r.log.Info("Click resolved by overlay", map[string]interface{}{
			"overlay": o.Name,
		})
		return Outcome{
			Kind:   OutcomeOverlay,
			Source: o.Name,
			Labels: formatLabels(o.Labels, feature),
		}
	}

	return r.parcelFallback(ctx, pt)
}

// parcelFallback queries the base lot layer exactly once. A hit goes
// through full enrichment; a miss or any error is the terminal not-found
// state.
func (r *Resolver) parcelFallback(ctx context.Context, pt orb.Point) Outcome {
	res := r.client.PointQuery(ctx, []string{geosampa.LayerLot}, pt)
	feature := res.First()
	if feature == nil {
		r.log.Info("Nothing of interest at click point", nil)
		return Outcome{Kind: OutcomeNotFound}
	}

	parcel, err := r.enricher.Enrich(ctx, feature)
	if err != nil {
		r.log.Warn("Lot under click could not be read", map[string]interface{}{
			"error": err.Error(),
		})
		return Outcome{Kind: OutcomeNotFound}
	}

	r.setHighlight(&Highlight{Source: parcelFallbackName, Feature: feature})
	return Outcome{
		Kind:   OutcomeParcel,
		Source: parcelFallbackName,
		Parcel: parcel,
	}
}

// Highlight returns the currently highlighted feature, or nil.
func (r *Resolver) Highlight() *Highlight {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.highlight
}

// OnLayerDisabled handles a layer-visibility change: disabling the source
// layer of the current highlight tears the highlight down.
func (r *Resolver) OnLayerDisabled(overlayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.highlight != nil && r.highlight.Source == overlayName {
		r.highlight = nil
		r.log.Debug("Highlight removed with its source layer", map[string]interface{}{
			"overlay": overlayName,
		})
	}
}

func (r *Resolver) setHighlight(h *Highlight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlight = h
}

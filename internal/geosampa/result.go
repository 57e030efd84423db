package geosampa

import (
	"errors"

	"github.com/paulmach/orb/geojson"
)

// Query-level errors. Both are recoverable: callers treat them as "no data
// for this layer" unless the whole operation came up empty.
var (
	// ErrUpstream marks a completed request the service answered badly:
	// non-2xx status or a content type that is not JSON.
	ErrUpstream = errors.New("upstream service error")

	// ErrNetwork marks a request that never completed, including timeouts.
	ErrNetwork = errors.New("network error")
)

// Result classifies one layer query into exactly one of three shapes:
// success with zero or more features, an upstream error, or a network
// error. The zero value is an empty success.
type Result struct {
	Features []*geojson.Feature
	Err      error
}

// OK reports whether the query completed and the response parsed.
// An empty feature list is still OK.
func (r Result) OK() bool {
	return r.Err == nil
}

// First returns the first feature of a successful result, or nil when the
// result failed or matched nothing.
func (r Result) First() *geojson.Feature {
	if r.Err != nil || len(r.Features) == 0 {
		return nil
	}
	return r.Features[0]
}

func success(features []*geojson.Feature) Result {
	return Result{Features: features}
}

func upstreamFailure(err error) Result {
	return Result{Err: errors.Join(ErrUpstream, err)}
}

func networkFailure(err error) Result {
	return Result{Err: errors.Join(ErrNetwork, err)}
}

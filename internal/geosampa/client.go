package geosampa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/quadra-hq/quadra/api/internal/logger"
)

// Point queries ask the server for the feature under a pixel. The upstream
// contract wants a tiny bounding box around the point with the query pixel
// at its center.
const (
	pointBoxDelta  = 0.0001
	pointBoxSize   = 101
	pointBoxCenter = 50
)

// Client is the query surface against the upstream geospatial service.
// Every call returns a Result; failures are classified, never raised.
type Client interface {
	// PointQuery looks up the features under a WGS84 point on one or more
	// layers, queried as a union when more than one is given.
	PointQuery(ctx context.Context, layers []string, pt orb.Point) Result

	// AttributeQuery fetches features of a layer matching an equality
	// filter expression. Returned geometry is reprojected to WGS84.
	AttributeQuery(ctx context.Context, typeName, filter string) Result

	// Ping verifies the upstream is reachable, for readiness checks.
	Ping(ctx context.Context) error
}

// httpClient is the concrete Client backed by the WMS/WFS endpoints.
type httpClient struct {
	http    *http.Client
	log     *logger.Logger
	baseURL string
}

// NewClient creates a Client against the given geoserver base URL. The
// timeout applies per request; expiry is reported as a network error.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *httpClient) PointQuery(ctx context.Context, layers []string, pt orb.Point) Result {
	joined := strings.Join(layers, ",")
	bbox := fmt.Sprintf("%f,%f,%f,%f",
		pt[0]-pointBoxDelta, pt[1]-pointBoxDelta,
		pt[0]+pointBoxDelta, pt[1]+pointBoxDelta)

	params := url.Values{}
	params.Set("service", "WMS")
	params.Set("version", "1.1.1")
	params.Set("request", "GetFeatureInfo")
	params.Set("layers", joined)
	params.Set("query_layers", joined)
	params.Set("info_format", "application/json")
	params.Set("srs", "EPSG:4326")
	params.Set("format", "image/png")
	params.Set("bbox", bbox)
	params.Set("width", fmt.Sprint(pointBoxSize))
	params.Set("height", fmt.Sprint(pointBoxSize))
	params.Set("x", fmt.Sprint(pointBoxCenter))
	params.Set("y", fmt.Sprint(pointBoxCenter))

	// Results already arrive in EPSG:4326 here, so no reprojection.
	return c.fetch(ctx, c.baseURL+"/wms?"+params.Encode(), joined, false)
}

func (c *httpClient) AttributeQuery(ctx context.Context, typeName, filter string) Result {
	params := url.Values{}
	params.Set("service", "WFS")
	params.Set("version", "1.0.0")
	params.Set("request", "GetFeature")
	params.Set("typeName", typeName)
	params.Set("outputFormat", "application/json")
	params.Set("CQL_FILTER", filter)

	// WFS features come back in the projected municipal CRS and must be
	// put into WGS84 exactly once, here.
	return c.fetch(ctx, c.baseURL+"/wfs?"+params.Encode(), typeName, true)
}

// Ping issues a minimal GetCapabilities request against the WMS endpoint.
// Anything other than a 2xx answer counts as unreachable.
func (c *httpClient) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("service", "WMS")
	params.Set("version", "1.1.1")
	params.Set("request", "GetCapabilities")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wms?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upstream answered status %d", resp.StatusCode)
	}
	return nil
}

// fetch issues the request and classifies the outcome. Transport failures
// (including timeouts) become ErrNetwork; bad status codes, non-JSON
// payloads and undecodable bodies become ErrUpstream.
func (c *httpClient) fetch(ctx context.Context, rawURL, layer string, reproject bool) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return networkFailure(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Layer query did not complete", map[string]interface{}{
			"layer": layer,
			"error": err.Error(),
		})
		return networkFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("Layer query rejected upstream", map[string]interface{}{
			"layer":  layer,
			"status": resp.StatusCode,
		})
		return upstreamFailure(fmt.Errorf("status %d", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "json") {
		c.log.Warn("Layer query returned non-JSON payload", map[string]interface{}{
			"layer":        layer,
			"content_type": contentType,
		})
		return upstreamFailure(fmt.Errorf("unexpected content type %q", contentType))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkFailure(err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return upstreamFailure(fmt.Errorf("malformed feature collection: %w", err))
	}

	if reproject {
		reprojectFeatures(fc.Features)
	}

	c.log.Debug("Layer query completed", map[string]interface{}{
		"layer":    layer,
		"features": len(fc.Features),
	})

	return success(fc.Features)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	apierrors "github.com/quadra-hq/quadra/api/internal/errors"
	"github.com/quadra-hq/quadra/api/internal/middleware"
	"github.com/quadra-hq/quadra/api/internal/resolver"
	"github.com/quadra-hq/quadra/api/internal/session"
)

// MapHandler handles click resolution and overlay visibility.
type MapHandler struct {
	resolver *resolver.Resolver
	session  *session.Session
}

// NewMapHandler creates a new MapHandler instance.
func NewMapHandler(res *resolver.Resolver, sess *session.Session) *MapHandler {
	return &MapHandler{
		resolver: res,
		session:  sess,
	}
}

// ClickRequest represents the body of the map click endpoint.
type ClickRequest struct {
	Lat float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng float64 `json:"lng" binding:"required,min=-180,max=180"`
}

// LabelData is one display label of a resolved overlay feature.
type LabelData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ClickResponse represents the outcome of one click resolution.
type ClickResponse struct {
	Kind      string            `json:"kind"`
	Source    string            `json:"source,omitempty"`
	Labels    []LabelData       `json:"labels,omitempty"`
	Lot       *LotData          `json:"lot,omitempty"`
	Highlight *geojson.Geometry `json:"highlight,omitempty"`
}

// LayerState is one overlay with its visibility flag.
type LayerState struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// LayersResponse lists every overlay in precedence order.
type LayersResponse struct {
	Layers []LayerState `json:"layers"`
}

// LayerToggleRequest represents the body of the layer visibility endpoint.
type LayerToggleRequest struct {
	Name    string `json:"name" binding:"required"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// Click handles POST /api/v1/map/click endpoint.
// It walks the overlay precedence for the clicked point and falls back to
// the base lot layer, returning labels or a fully enriched lot.
func (h *MapHandler) Click(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if log != nil {
		log.Info("Processing map click", map[string]interface{}{
			"lat": req.Lat,
			"lng": req.Lng,
		})
	}

	outcome := h.resolver.Resolve(c.Request.Context(), orb.Point{req.Lng, req.Lat}, h.session)

	response := ClickResponse{
		Kind:   string(outcome.Kind),
		Source: outcome.Source,
		Lot:    mapParcelToDTO(outcome.Parcel),
	}
	for _, l := range outcome.Labels {
		response.Labels = append(response.Labels, LabelData{Key: l.Key, Value: l.Value})
	}
	if hl := h.resolver.Highlight(); hl != nil && hl.Feature != nil && hl.Feature.Geometry != nil {
		response.Highlight = geojson.NewGeometry(hl.Feature.Geometry)
	}

	c.JSON(http.StatusOK, response)
}

// Layers handles GET /api/v1/layers endpoint.
func (h *MapHandler) Layers(c *gin.Context) {
	visibility := h.session.LayerVisibility()

	layers := make([]LayerState, 0, len(visibility))
	for _, name := range resolver.OverlayNames() {
		layers = append(layers, LayerState{Name: name, Enabled: visibility[name]})
	}

	c.JSON(http.StatusOK, LayersResponse{Layers: layers})
}

// ToggleLayer handles PUT /api/v1/layers endpoint.
// Disabling the layer that produced the current highlight removes it.
func (h *MapHandler) ToggleLayer(c *gin.Context) {
	var req LayerToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if err := h.session.SetLayerVisible(req.Name, *req.Enabled); err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	h.Layers(c)
}

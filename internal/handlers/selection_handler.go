package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/quadra-hq/quadra/api/internal/enrich"
	apierrors "github.com/quadra-hq/quadra/api/internal/errors"
	"github.com/quadra-hq/quadra/api/internal/geosampa"
	"github.com/quadra-hq/quadra/api/internal/middleware"
	"github.com/quadra-hq/quadra/api/internal/session"
)

// SelectionHandler handles the working selection set.
type SelectionHandler struct {
	client  geosampa.Client
	service enrich.Service
	session *session.Session
}

// NewSelectionHandler creates a new SelectionHandler instance.
func NewSelectionHandler(client geosampa.Client, service enrich.Service, sess *session.Session) *SelectionHandler {
	return &SelectionHandler{
		client:  client,
		service: service,
		session: sess,
	}
}

// SelectionResponse represents the current selection set.
type SelectionResponse struct {
	Primary     *LotData   `json:"primary"`
	Additionals []*LotData `json:"additionals"`
	Count       int        `json:"count"`
	TotalArea   float64    `json:"total_area"`
	Summary     string     `json:"summary"`
}

// AddResponse reports the result of the add-at-point operation. Added is
// false when the lot was already selected.
type AddResponse struct {
	Added bool     `json:"added"`
	Lot   *LotData `json:"lot"`
}

// Get handles GET /api/v1/selection endpoint.
func (h *SelectionHandler) Get(c *gin.Context) {
	sel := h.session.Selection()

	var response SelectionResponse
	h.session.WithLock(func() {
		response = SelectionResponse{
			Primary:     mapParcelToDTO(sel.Primary()),
			Additionals: make([]*LotData, 0),
			Count:       sel.Count(),
			TotalArea:   sel.TotalArea(),
			Summary:     sel.Summary(),
		}
		for i, p := range sel.Parcels() {
			if i == 0 && sel.Primary() != nil {
				continue
			}
			response.Additionals = append(response.Additionals, mapParcelToDTO(p))
		}
	})

	c.JSON(http.StatusOK, response)
}

// Add handles POST /api/v1/selection/add endpoint.
// It resolves the lot under the given point, enriches it, and appends it
// to the selection. Adding an already-selected lot is a no-op.
func (h *SelectionHandler) Add(c *gin.Context) {
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

	res := h.client.PointQuery(c.Request.Context(), []string{geosampa.LayerLot}, orb.Point{req.Lng, req.Lat})
	if !res.OK() {
		apierrors.BadGateway(c, "Lot lookup could not reach the map service", res.Err)
		return
	}
	feature := res.First()
	if feature == nil {
		apierrors.NotFound(c, "No lot found at this location")
		return
	}

	parcel, err := h.service.Enrich(c.Request.Context(), feature)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read lot under point", err)
		return
	}

	added := h.session.AddParcel(parcel)
	if log != nil {
		log.Info("Selection add resolved", map[string]interface{}{
			"iptu":  parcel.IPTU(),
			"added": added,
		})
	}

	c.JSON(http.StatusOK, AddResponse{
		Added: added,
		Lot:   mapParcelToDTO(parcel),
	})
}

// Remove handles DELETE /api/v1/selection/:iptu endpoint.
// The primary parcel cannot be removed this way.
func (h *SelectionHandler) Remove(c *gin.Context) {
	iptu := c.Param("iptu")
	if iptu == "" {
		apierrors.BadRequest(c, "Missing lot identifier", nil)
		return
	}

	if !h.session.RemoveParcel(iptu) {
		apierrors.NotFound(c, "Lot is not an additional selection")
		return
	}

	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/quadra-hq/quadra/api/internal/errors"
	"github.com/quadra-hq/quadra/api/internal/middleware"
	"github.com/quadra-hq/quadra/api/internal/report"
	"github.com/quadra-hq/quadra/api/internal/session"
)

// ReportHandler handles identity management and report payload building.
type ReportHandler struct {
	session *session.Session
}

// NewReportHandler creates a new ReportHandler instance.
func NewReportHandler(sess *session.Session) *ReportHandler {
	return &ReportHandler{session: sess}
}

// IdentityRequest represents the body of the identity endpoint.
type IdentityRequest struct {
	Analyst string `json:"analyst" binding:"required,max=120"`
	Manager string `json:"manager" binding:"max=120"`
}

// IdentityResponse represents the cached identity.
type IdentityResponse struct {
	Analyst string `json:"analyst"`
	Manager string `json:"manager"`
}

// ReportRequest represents the body of the report endpoint. The map image
// is an opaque base64 snapshot passed through to the payload; broker and
// deal code are entered at export time and kept on the session.
type ReportRequest struct {
	MapImage string `json:"map_image"`
	Broker   string `json:"broker" binding:"max=120"`
	DealCode string `json:"deal_code" binding:"max=60"`
}

// GetIdentity handles GET /api/v1/session/identity endpoint.
func (h *ReportHandler) GetIdentity(c *gin.Context) {
	id := h.session.Identity()
	c.JSON(http.StatusOK, IdentityResponse{
		Analyst: id.Analyst,
		Manager: id.Manager,
	})
}

// UpdateIdentity handles PUT /api/v1/session/identity endpoint.
// The identity is the one piece of state that outlives the session; it is
// rewritten to the local cache file on every update.
func (h *ReportHandler) UpdateIdentity(c *gin.Context) {
	var req IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	id := session.Identity{Analyst: req.Analyst, Manager: req.Manager}
	if err := h.session.SetIdentity(id); err != nil {
		apierrors.InternalServerError(c, "Failed to persist identity", err)
		return
	}

	c.JSON(http.StatusOK, IdentityResponse{
		Analyst: id.Analyst,
		Manager: id.Manager,
	})
}

// Build handles POST /api/v1/report endpoint.
// It reduces the selection and deal terms into the flat payload the
// slide-deck sink consumes. An empty selection is rejected.
func (h *ReportHandler) Build(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	var payload report.Payload
	var empty bool
	h.session.WithLock(func() {
		sel := h.session.Selection()
		if sel.Count() == 0 {
			empty = true
			return
		}

		if req.Broker != "" {
			h.session.Broker = req.Broker
		}
		if req.DealCode != "" {
			h.session.DealCode = req.DealCode
		}

		id := h.session.Identity()
		engine := h.session.Engine()
		payload = report.Build(sel, engine, report.SessionInputs{
			Analyst:        id.Analyst,
			Manager:        id.Manager,
			Broker:         h.session.Broker,
			DealCode:       h.session.DealCode,
			StoreUnitPrice: engine.StoreUnitPrice,
			AptUnitPrice:   engine.AptUnitPrice,
			MapImageBase64: req.MapImage,
		})
	})

	if empty {
		apierrors.BadRequest(c, "Selection is empty", nil)
		return
	}

	if log != nil {
		log.Info("Report payload built", map[string]interface{}{
			"rows": len(payload.Rows),
		})
	}

	c.JSON(http.StatusOK, payload)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/quadra-hq/quadra/api/internal/commercial"
	apierrors "github.com/quadra-hq/quadra/api/internal/errors"
	"github.com/quadra-hq/quadra/api/internal/models"
	"github.com/quadra-hq/quadra/api/internal/session"
)

// CommercialHandler handles deal terms and the session-level unit prices.
type CommercialHandler struct {
	session *session.Session
}

// NewCommercialHandler creates a new CommercialHandler instance.
func NewCommercialHandler(sess *session.Session) *CommercialHandler {
	return &CommercialHandler{session: sess}
}

// TermsUpdateRequest represents the body of the terms edit endpoint. Every
// field is optional; only present fields are applied. The money amounts
// arrive as analyst-entered strings and fail soft to zero.
type TermsUpdateRequest struct {
	SalePrice     *string  `json:"sale_price"`
	MonthlyRent   *string  `json:"monthly_rent"`
	StoreExchange *float64 `json:"store_exchange" binding:"omitempty,min=0"`
	AptExchange   *float64 `json:"apt_exchange" binding:"omitempty,min=0"`
	Description   *string  `json:"description"`
	Status        *string  `json:"status"`
}

// TermsResponse represents one parcel's deal terms with computed metrics.
type TermsResponse struct {
	Terms *commercial.DealTerms  `json:"terms"`
	Line  commercial.LineMetrics `json:"line"`
}

// PricesRequest represents the body of the unit-prices endpoint.
type PricesRequest struct {
	StoreUnitPrice *float64 `json:"store_unit_price" binding:"omitempty,gt=0"`
	AptUnitPrice   *float64 `json:"apt_unit_price" binding:"omitempty,gt=0"`
}

// PricesResponse represents the current session unit prices.
type PricesResponse struct {
	StoreUnitPrice float64 `json:"store_unit_price"`
	AptUnitPrice   float64 `json:"apt_unit_price"`
}

// TotalsResponse represents the portfolio aggregate with per-parcel lines.
type TotalsResponse struct {
	Lines  []commercial.LineMetrics `json:"lines"`
	Totals commercial.Aggregate     `json:"totals"`
}

// GetTerms handles GET /api/v1/terms/:iptu endpoint.
// Terms are created lazily with zoning defaults for lots in the selection.
func (h *CommercialHandler) GetTerms(c *gin.Context) {
	iptu := c.Param("iptu")

	var response *TermsResponse
	h.session.WithLock(func() {
		if parcel := h.selectedParcel(iptu); parcel != nil {
			engine := h.session.Engine()
			terms := engine.TermsFor(parcel)
			response = &TermsResponse{Terms: terms, Line: engine.Line(terms)}
		}
	})

	if response == nil {
		apierrors.NotFound(c, "Lot is not in the current selection")
		return
	}
	c.JSON(http.StatusOK, response)
}

// UpdateTerms handles PUT /api/v1/terms/:iptu endpoint.
// Money values are clamped, the description is normalised on commit, and
// an invalid status is rejected before anything is applied.
func (h *CommercialHandler) UpdateTerms(c *gin.Context) {
	iptu := c.Param("iptu")

	var req TermsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if req.Status != nil && !commercial.ValidStatus(commercial.Status(*req.Status)) {
		apierrors.BadRequest(c, "Unknown deal status", map[string]interface{}{
			"status": *req.Status,
		})
		return
	}

	var response *TermsResponse
	h.session.WithLock(func() {
		parcel := h.selectedParcel(iptu)
		if parcel == nil {
			return
		}

		engine := h.session.Engine()
		terms := engine.TermsFor(parcel)

		if req.SalePrice != nil {
			engine.SetSalePrice(terms, commercial.ParseAmount(*req.SalePrice))
		}
		if req.MonthlyRent != nil {
			engine.SetMonthlyRent(terms, commercial.ParseAmount(*req.MonthlyRent))
		}
		if req.StoreExchange != nil {
			terms.StoreExchange = *req.StoreExchange
		}
		if req.AptExchange != nil {
			terms.AptExchange = *req.AptExchange
		}
		if req.Description != nil {
			engine.CommitDescription(terms, *req.Description)
		}
		if req.Status != nil {
			terms.Status = commercial.Status(*req.Status)
		}

		response = &TermsResponse{Terms: terms, Line: engine.Line(terms)}
	})

	if response == nil {
		apierrors.NotFound(c, "Lot is not in the current selection")
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetTotals handles GET /api/v1/terms endpoint.
// It returns the per-parcel lines and the portfolio aggregate for the
// whole selection.
func (h *CommercialHandler) GetTotals(c *gin.Context) {
	var response TotalsResponse
	h.session.WithLock(func() {
		parcels := h.session.Selection().Parcels()
		engine := h.session.Engine()
		response = TotalsResponse{
			Lines:  engine.Lines(parcels),
			Totals: engine.Totals(parcels),
		}
	})

	c.JSON(http.StatusOK, response)
}

// GetPrices handles GET /api/v1/session/prices endpoint.
func (h *CommercialHandler) GetPrices(c *gin.Context) {
	var response PricesResponse
	h.session.WithLock(func() {
		engine := h.session.Engine()
		response = PricesResponse{
			StoreUnitPrice: engine.StoreUnitPrice,
			AptUnitPrice:   engine.AptUnitPrice,
		}
	})

	c.JSON(http.StatusOK, response)
}

// UpdatePrices handles PUT /api/v1/session/prices endpoint.
// Updated prices take effect on every subsequent line computation.
func (h *CommercialHandler) UpdatePrices(c *gin.Context) {
	var req PricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	var response PricesResponse
	h.session.WithLock(func() {
		engine := h.session.Engine()
		if req.StoreUnitPrice != nil {
			engine.StoreUnitPrice = *req.StoreUnitPrice
		}
		if req.AptUnitPrice != nil {
			engine.AptUnitPrice = *req.AptUnitPrice
		}
		response = PricesResponse{
			StoreUnitPrice: engine.StoreUnitPrice,
			AptUnitPrice:   engine.AptUnitPrice,
		}
	})

	c.JSON(http.StatusOK, response)
}

// selectedParcel finds a parcel of the current selection by identifier.
// Callers must hold the session lock.
func (h *CommercialHandler) selectedParcel(iptu string) *models.Parcel {
	for _, p := range h.session.Selection().Parcels() {
		if p.IPTU() == iptu {
			return p
		}
	}
	return nil
}

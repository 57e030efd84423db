package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb/geojson"
	"github.com/quadra-hq/quadra/api/internal/enrich"
	apierrors "github.com/quadra-hq/quadra/api/internal/errors"
	"github.com/quadra-hq/quadra/api/internal/geosampa"
	"github.com/quadra-hq/quadra/api/internal/middleware"
	"github.com/quadra-hq/quadra/api/internal/models"
	"github.com/quadra-hq/quadra/api/internal/session"
)

// LotHandler handles direct-identifier lot lookups.
type LotHandler struct {
	service enrich.Service
	session *session.Session
}

// NewLotHandler creates a new LotHandler instance.
func NewLotHandler(service enrich.Service, sess *session.Session) *LotHandler {
	return &LotHandler{
		service: service,
		session: sess,
	}
}

// LookupRequest represents the query parameters for the single-lot lookup.
type LookupRequest struct {
	Sector string `form:"sector" binding:"required,max=3"`
	Block  string `form:"block" binding:"required,max=3"`
	Lot    string `form:"lot" binding:"required,max=4"`
}

// BatchRequest represents the body of the batch lookup endpoint. Codes and
// a range may be combined; at least one must be present.
type BatchRequest struct {
	Codes []string      `json:"codes"`
	Range *RangeRequest `json:"range"`
}

// RangeRequest expands to every lot between start and end on one block.
type RangeRequest struct {
	Sector string `json:"sector" binding:"required,max=3"`
	Block  string `json:"block" binding:"required,max=3"`
	Start  int    `json:"start" binding:"required,min=1"`
	End    int    `json:"end" binding:"required,min=1"`
}

// LotData represents one resolved parcel in API responses.
type LotData struct {
	Geometry      *geojson.Geometry `json:"geometry,omitempty"`
	IPTU          string            `json:"iptu"`
	Sector        string            `json:"sector"`
	Block         string            `json:"block"`
	Lot           string            `json:"lot"`
	CheckDigit    string            `json:"check_digit"`
	Address       string            `json:"address"`
	District      string            `json:"district"`
	Zoning        string            `json:"zoning"`
	LandUse       string            `json:"land_use"`
	GeotechUnit   string            `json:"geotech_unit"`
	SidewalkWidth string            `json:"sidewalk_width"`
	Area          float64           `json:"area"`
}

// LookupResponse represents the single-lot lookup response.
type LookupResponse struct {
	Lot        *LotData `json:"lot"`
	Generation uint64   `json:"generation"`
}

// BatchResponse represents the batch lookup response. Failures carry one
// "code: reason" string per item that could not be resolved.
type BatchResponse struct {
	Lots       []*LotData `json:"lots"`
	Failures   []string   `json:"failures"`
	Count      int        `json:"count"`
	Generation uint64     `json:"generation"`
}

// Lookup handles GET /api/v1/lots/lookup endpoint.
// It resolves one lot from its fiscal sector/block/lot codes and starts a
// new query with it as the primary selection.
func (h *LotHandler) Lookup(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	code, err := enrich.NewCode(req.Sector, req.Block, req.Lot)
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	if log != nil {
		log.Info("Processing lot lookup", map[string]interface{}{
			"code": code.String(),
		})
	}

	generation := h.session.StartNewQuery()

	parcel, err := h.service.LookupByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, enrich.ErrNotFound) {
			apierrors.NotFound(c, "No lot found for this identifier")
			return
		}
		if errors.Is(err, geosampa.ErrNetwork) || errors.Is(err, geosampa.ErrUpstream) {
			apierrors.BadGateway(c, "Lot lookup could not reach the map service", err)
			return
		}
		apierrors.InternalServerError(c, "Failed to resolve lot", err)
		return
	}

	h.session.ApplyResults(generation, []*models.Parcel{parcel})

	c.JSON(http.StatusOK, LookupResponse{
		Lot:        mapParcelToDTO(parcel),
		Generation: generation,
	})
}

// Batch handles POST /api/v1/lots/batch endpoint.
// It resolves a list of full codes and/or a lot range on one block,
// continuing past per-item failures.
func (h *LotHandler) Batch(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}
	if len(req.Codes) == 0 && req.Range == nil {
		apierrors.BadRequest(c, "Provide codes, a range, or both", nil)
		return
	}

	codes := make([]enrich.Code, 0, len(req.Codes))
	failures := make([]string, 0)
	for _, raw := range req.Codes {
		code, err := enrich.ParseCode(raw)
		if err != nil {
			failures = append(failures, raw+": "+err.Error())
			continue
		}
		codes = append(codes, code)
	}

	if req.Range != nil {
		expanded, err := enrich.ExpandRange(req.Range.Sector, req.Range.Block, req.Range.Start, req.Range.End)
		if err != nil {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		codes = append(codes, expanded...)
	}

	if log != nil {
		log.Info("Processing batch lot lookup", map[string]interface{}{
			"codes":    len(codes),
			"rejected": len(failures),
		})
	}

	generation := h.session.StartNewQuery()

	parcels, lookupFailures := h.service.LookupBatch(c.Request.Context(), codes)
	failures = append(failures, lookupFailures...)

	h.session.ApplyResults(generation, parcels)

	lots := make([]*LotData, 0, len(parcels))
	for _, p := range parcels {
		lots = append(lots, mapParcelToDTO(p))
	}

	c.JSON(http.StatusOK, BatchResponse{
		Lots:       lots,
		Failures:   failures,
		Count:      len(lots),
		Generation: generation,
	})
}

// mapParcelToDTO converts a Parcel model to a LotData DTO.
func mapParcelToDTO(p *models.Parcel) *LotData {
	if p == nil {
		return nil
	}

	dto := &LotData{
		IPTU:          p.IPTU(),
		Sector:        p.Sector,
		Block:         p.Block,
		Lot:           p.Lot,
		CheckDigit:    p.CheckDigit,
		Address:       p.Address,
		District:      p.District,
		Zoning:        p.Zoning,
		LandUse:       p.LandUse,
		GeotechUnit:   p.GeotechUnit,
		SidewalkWidth: p.SidewalkWidth,
		Area:          p.Area,
	}

	if p.Feature != nil && p.Feature.Geometry != nil {
		dto.Geometry = geojson.NewGeometry(p.Feature.Geometry)
	}

	return dto
}

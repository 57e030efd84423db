package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadra-hq/quadra/api/internal/models"
	"github.com/quadra-hq/quadra/api/internal/report"
)

func setupReport(t *testing.T, parcels ...*models.Parcel) (*gin.Engine, *ReportHandler) {
	t.Helper()
	client := &fakeClient{}
	svc := &stubService{}
	sess := newTestSession(t, client, svc)
	if len(parcels) > 0 {
		gen := sess.StartNewQuery()
		sess.ApplyResults(gen, parcels)
	}

	handler := NewReportHandler(sess)
	router := setupTestRouter()
	router.GET("/api/v1/session/identity", handler.GetIdentity)
	router.PUT("/api/v1/session/identity", handler.UpdateIdentity)
	router.POST("/api/v1/report", handler.Build)
	return router, handler
}

func TestReportHandler_Identity(t *testing.T) {
	router, _ := setupReport(t)

	t.Run("starts empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/session/identity", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response IdentityResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Empty(t, response.Analyst)
		assert.Empty(t, response.Manager)
	})

	t.Run("update then read back", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/v1/session/identity", IdentityRequest{
			Analyst: "Maria Souza",
			Manager: "João Pereira",
		})
		require.Equal(t, http.StatusOK, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/session/identity", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var response IdentityResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Maria Souza", response.Analyst)
		assert.Equal(t, "João Pereira", response.Manager)
	})

	t.Run("analyst is required", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/v1/session/identity", IdentityRequest{
			Manager: "João Pereira",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReportHandler_Build_EmptySelection(t *testing.T) {
	router, _ := setupReport(t)

	w := performJSON(router, http.MethodPost, "/api/v1/report", ReportRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Selection is empty")
}

func TestReportHandler_Build(t *testing.T) {
	primary := newTestParcel("1439", 1250)
	second := newTestParcel("1440", 500)
	router, handler := setupReport(t, primary, second)

	performJSON(router, http.MethodPut, "/api/v1/session/identity", IdentityRequest{
		Analyst: "Maria Souza",
		Manager: "João Pereira",
	})

	w := performJSON(router, http.MethodPost, "/api/v1/report", ReportRequest{
		MapImage: "ZmFrZS1wbmc=",
		Broker:   "Imobiliária Centro",
		DealCode: "QD-2031",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var payload report.Payload
	require.NoError(t, json.NewDecoder(w.Body).Decode(&payload))

	assert.Equal(t, "Rua Augusta, 1500 - Consolação", payload.Address)
	assert.Equal(t, "310 / 021", payload.SectorBlock)
	assert.Equal(t, "310.021.1439-5", payload.IPTU)
	assert.Equal(t, "ZM", payload.Zoning)
	assert.Equal(t, "Maria Souza", payload.Analyst)
	assert.Equal(t, "João Pereira", payload.Manager)
	assert.Equal(t, "Imobiliária Centro", payload.Broker)
	assert.Equal(t, "QD-2031", payload.DealCode)
	assert.Equal(t, "ZmFrZS1wbmc=", payload.MapImageBase64)
	assert.Len(t, payload.Rows, 2)
	assert.Equal(t, "1750.00 m²", payload.TotalArea)

	// Broker and deal code entered at export time stay on the session.
	assert.Equal(t, "Imobiliária Centro", handler.session.Broker)
	assert.Equal(t, "QD-2031", handler.session.DealCode)
}

func TestReportHandler_Build_KeepsPreviousBroker(t *testing.T) {
	router, handler := setupReport(t, newTestParcel("1439", 1250))

	w := performJSON(router, http.MethodPost, "/api/v1/report", ReportRequest{
		Broker:   "Imobiliária Centro",
		DealCode: "QD-2031",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// A later export with blank fields reuses what the session holds.
	w = performJSON(router, http.MethodPost, "/api/v1/report", ReportRequest{})
	require.Equal(t, http.StatusOK, w.Code)

	var payload report.Payload
	require.NoError(t, json.NewDecoder(w.Body).Decode(&payload))
	assert.Equal(t, "Imobiliária Centro", payload.Broker)
	assert.Equal(t, "QD-2031", payload.DealCode)
	assert.Equal(t, "Imobiliária Centro", handler.session.Broker)
}

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
	"github.com/quadra-hq/quadra/api/internal/session"
)

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }

func setupCommercial(t *testing.T, parcels ...*models.Parcel) (*gin.Engine, *session.Session) {
	t.Helper()
	sess := newTestSession(t, &fakeClient{}, &stubService{})
	gen := sess.StartNewQuery()
	require.True(t, sess.ApplyResults(gen, parcels))

	handler := NewCommercialHandler(sess)
	router := setupTestRouter()
	router.GET("/api/v1/terms", handler.GetTotals)
	router.GET("/api/v1/terms/:iptu", handler.GetTerms)
	router.PUT("/api/v1/terms/:iptu", handler.UpdateTerms)
	router.GET("/api/v1/session/prices", handler.GetPrices)
	router.PUT("/api/v1/session/prices", handler.UpdatePrices)
	return router, sess
}

func TestCommercialHandler_GetTerms_SeedsLazily(t *testing.T) {
	router, _ := setupCommercial(t, newTestParcel("1439", 1250))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/terms/310.021.1439-5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response TermsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.NotNil(t, response.Terms)

	// ZM seeds CA 3.40 over divisor 25.
	assert.Equal(t, 3.40, response.Terms.CA)
	assert.Equal(t, 25.0, response.Terms.Divisor)
	assert.Equal(t, 170, response.Line.BuildableUnits)
}

func TestCommercialHandler_GetTerms_NotInSelection(t *testing.T) {
	router, _ := setupCommercial(t, newTestParcel("1439", 1250))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/terms/310.021.9999-5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommercialHandler_UpdateTerms(t *testing.T) {
	router, sess := setupCommercial(t, newTestParcel("1439", 1250))

	t.Run("applies edits with clamping and normalisation", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/v1/terms/310.021.1439-5", TermsUpdateRequest{
			SalePrice:     strPtr("150000000"),
			MonthlyRent:   strPtr("not a number"),
			StoreExchange: floatPtr(2),
			Description:   strPtr("terreno de esquina"),
			Status:        strPtr("UNDER_CONTRACT"),
		})

		require.Equal(t, http.StatusOK, w.Code)

		var response TermsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

		// 150M clamps to the ceiling, the malformed rent soft-zeroes.
		assert.Equal(t, 100_000_000.0, response.Terms.SalePrice)
		assert.Equal(t, 0.0, response.Terms.MonthlyRent)
		assert.Equal(t, 2.0, response.Terms.StoreExchange)
		assert.Equal(t, "Terreno de esquina", response.Terms.Description)
		assert.Equal(t, "UNDER_CONTRACT", string(response.Terms.Status))

		// LineTotal includes the store exchange at the session price.
		assert.Equal(t, 100_000_000.0+2*3000, response.Line.LineTotal)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/v1/terms/310.021.1439-5", TermsUpdateRequest{
			MonthlyRent: strPtr("5000"),
		})

		require.Equal(t, http.StatusOK, w.Code)

		var response TermsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, 5000.0, response.Terms.MonthlyRent)
		assert.Equal(t, 100_000_000.0, response.Terms.SalePrice)
		assert.Equal(t, "Terreno de esquina", response.Terms.Description)
	})

	t.Run("unknown status rejected before applying", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/v1/terms/310.021.1439-5", TermsUpdateRequest{
			SalePrice: strPtr("1"),
			Status:    strPtr("PENDING"),
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		// Nothing was applied.
		terms, ok := sess.Engine().Terms("310.021.1439-5")
		require.True(t, ok)
		assert.Equal(t, 100_000_000.0, terms.SalePrice)
	})

	t.Run("unknown lot is not found", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/v1/terms/310.021.9999-5", TermsUpdateRequest{
			SalePrice: strPtr("1"),
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCommercialHandler_Totals(t *testing.T) {
	router, sess := setupCommercial(t, newTestParcel("0001", 1000), newTestParcel("0002", 500))

	sess.WithLock(func() {
		engine := sess.Engine()
		for _, p := range sess.Selection().Parcels() {
			terms := engine.TermsFor(p)
			engine.SetSalePrice(terms, 1_000_000)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/terms", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response TotalsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	require.Len(t, response.Lines, 2)
	assert.Equal(t, 2_000_000.0, response.Totals.GrandTotal)
	assert.Equal(t, 1500.0, response.Totals.Area)
}

func TestCommercialHandler_Prices(t *testing.T) {
	router, sess := setupCommercial(t, newTestParcel("1439", 1250))

	t.Run("defaults from configuration", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/session/prices", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response PricesResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, 3000.0, response.StoreUnitPrice)
		assert.Equal(t, 4300.0, response.AptUnitPrice)
	})

	t.Run("update feeds subsequent line computations", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/v1/session/prices", PricesRequest{
			StoreUnitPrice: floatPtr(3500),
		})
		require.Equal(t, http.StatusOK, w.Code)

		var response PricesResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, 3500.0, response.StoreUnitPrice)
		assert.Equal(t, 4300.0, response.AptUnitPrice)

		sess.WithLock(func() {
			engine := sess.Engine()
			terms := engine.TermsFor(sess.Selection().Primary())
			terms.StoreExchange = 2
			assert.Equal(t, 7000.0, engine.Line(terms).LineTotal)
		})
	})

	t.Run("non-positive price rejected", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/v1/session/prices", PricesRequest{
			AptUnitPrice: floatPtr(-1),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sales-etl/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalytics struct {
	lastLimit int
}

func (s *stubAnalytics) MonthlyRevenue(context.Context) ([]models.MonthlyRevenue, error) {
	return []models.MonthlyRevenue{
		{
			Month:   sql.NullTime{Time: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), Valid: true},
			Revenue: sql.NullFloat64{Float64: 35.00, Valid: true},
		},
	}, nil
}

func (s *stubAnalytics) TopProductsByRevenue(_ context.Context, limit int) ([]models.ProductRevenue, error) {
	s.lastLimit = limit
	return []models.ProductRevenue{
		{SKU: "SKU-2", Name: "Gadget", Revenue: 25.00, Quantity: 2},
	}, nil
}

func newTestRouter(analytics AnalyticsStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(analytics).SetupRoutes(router)
	return router
}

func TestMonthlyRevenueEndpoint(t *testing.T) {
	router := newTestRouter(&stubAnalytics{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/revenue/monthly", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Months []models.MonthlyRevenue `json:"months"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Months, 1)
}

func TestTopProductsDefaultLimit(t *testing.T) {
	stub := &stubAnalytics{}
	router := newTestRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/products/top", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultTopProductsLimit, stub.lastLimit)
}

func TestTopProductsCallerLimit(t *testing.T) {
	stub := &stubAnalytics{}
	router := newTestRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/products/top?limit=3", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, stub.lastLimit)
}

func TestTopProductsRejectsBadLimit(t *testing.T) {
	router := newTestRouter(&stubAnalytics{})

	for _, limit := range []string{"0", "-1", "ten"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/products/top?limit="+limit, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubAnalytics{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

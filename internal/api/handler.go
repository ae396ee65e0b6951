package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"sales-etl/internal/models"
	"sales-etl/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultTopProductsLimit = 10

// AnalyticsStore is the read-only aggregate surface served to the dashboard.
type AnalyticsStore interface {
	MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error)
	TopProductsByRevenue(ctx context.Context, limit int) ([]models.ProductRevenue, error)
}

// Handler contains HTTP handlers
type Handler struct {
	analytics AnalyticsStore
}

// NewHandler creates a new HTTP handler
func NewHandler(analytics AnalyticsStore) *Handler {
	return &Handler{
		analytics: analytics,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/analytics/revenue/monthly", h.monthlyRevenue)
		v1.GET("/analytics/products/top", h.topProducts)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// monthlyRevenue serves revenue summed per calendar month, ascending
func (h *Handler) monthlyRevenue(c *gin.Context) {
	buckets, err := h.analytics.MonthlyRevenue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load monthly revenue",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": buckets})
}

// topProducts serves the top-N products by revenue
func (h *Handler) topProducts(c *gin.Context) {
	limit := defaultTopProductsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	products, err := h.analytics.TopProductsByRevenue(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load top products",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

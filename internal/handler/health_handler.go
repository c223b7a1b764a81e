package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/internal/service"
)

type readinessChecker interface {
	Ready(ctx context.Context) models.Readiness
}

// HealthHandler exposes observability endpoints.
type HealthHandler struct {
	health  readinessChecker
	metrics *service.MetricsService
}

// NewHealthHandler constructs a health handler.
func NewHealthHandler(health readinessChecker, metrics *service.MetricsService) *HealthHandler {
	return &HealthHandler{health: health, metrics: metrics}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready godoc
// @Summary Readiness probe
// @Description Pings the student store and the session store.
// @Tags Health
// @Produce json
// @Success 200 {object} models.Readiness
// @Failure 503 {object} models.Readiness
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	res := h.health.Ready(c.Request.Context())
	status := http.StatusOK
	if !res.Ready() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, res)
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *HealthHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/labops/labops-api/internal/service"
	"github.com/labops/labops-api/pkg/response"
)

// HealthHandler reports liveness, dependency health and coarse counters.
type HealthHandler struct {
	db      *sqlx.DB
	cache   *redis.Client
	metrics *service.MetricsService
}

// NewHealthHandler constructs handler.
func NewHealthHandler(db *sqlx.DB, cache *redis.Client, metrics *service.MetricsService) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, metrics: metrics}
}

// Health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "up"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}
	}

	payload := gin.H{
		"status":    httpStatusLabel(status),
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	}
	if h.metrics != nil {
		payload["counters"] = h.metrics.Snapshot()
	}
	response.JSON(c, status, payload, nil)
}

// Ready godoc
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			response.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "not ready"}, nil)
			return
		}
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready"}, nil)
}

// Metrics serves the Prometheus exposition endpoint.
func (h *HealthHandler) Metrics(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

func httpStatusLabel(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/service"
)

// Pinger is a backend whose reachability gates readiness.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics  *service.MetricsService
	backends []Pinger
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, backends ...Pinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, backends: backends}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload and the counter snapshot.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "metrics": h.metrics.Snapshot()})
}

// Ready reports each persistence backend. The board keeps working on its
// in-memory copy when a backend is down, so readiness only degrades.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	backends := make(map[string]string, len(h.backends))
	for _, b := range h.backends {
		if err := b.Ping(ctx); err != nil {
			backends[b.Name()] = err.Error()
			status = "degraded"
			continue
		}
		backends[b.Name()] = "ok"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "backends": backends})
}

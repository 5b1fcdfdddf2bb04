package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/service"
)

// unmatchedRoute labels requests that hit no board route.
const unmatchedRoute = "unmatched"

// Metrics records every board API request against its route template
// (/api/v1/classes/:id rather than the concrete id) with method, status and
// latency. A nil service disables recording.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

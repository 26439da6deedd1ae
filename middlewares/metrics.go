package middlewares

import (
	"strconv"
	"time"

	"TeleClinic/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request count and duration by route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestCounter.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDurationHistogram.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

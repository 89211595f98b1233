package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akash-acog/sol/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latency. Paths are taken from the
// matched route template, not the raw URL, to bound label cardinality.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		active := m.HTTPActiveRequests.WithLabelValues(c.Request.Method)
		active.Inc()

		c.Next()

		active.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

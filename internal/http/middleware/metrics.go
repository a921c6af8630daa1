package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garra-os/backend/internal/metrics"
)

// Metrics records request duration and counts per method/path/status.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/meetgrid/pkg/metrics"
)

// Metrics observes request latency per route template. Requests that match
// no route share one label so probing bots can't explode the cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.APILatency.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

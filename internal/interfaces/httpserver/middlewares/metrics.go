package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tee-chat/services/chat-gateway/internal/infrastructure/metrics"
)

// Metrics records request count and latency per method/endpoint/status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(c.Request.Method, endpoint, status, time.Since(start).Seconds())
	}
}

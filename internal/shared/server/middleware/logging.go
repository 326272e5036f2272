package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	LogBatchIDKey   = "batchId"
	LogFileCountKey = "fileCount"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := telemetry.Fields{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"role":        RoleFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if batchID, ok := c.Get(LogBatchIDKey); ok {
			fields["batch_id"] = batchID
		}
		if count, ok := c.Get(LogFileCountKey); ok {
			fields["file_count"] = count
		}
		telemetry.Info("request.complete", fields)
	}
}

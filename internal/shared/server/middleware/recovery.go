package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/server/respond"
	"resume-screener/internal/shared/telemetry"
)

// Recovery turns handler panics into a 500 in the error shape of the route family.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("panic", telemetry.Fields{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			if strings.HasPrefix(c.Request.URL.Path, "/api/v1") {
				respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
				return
			}
			respond.Failure(c, http.StatusInternalServerError, "Unexpected server error")
		}()
		c.Next()
	}
}

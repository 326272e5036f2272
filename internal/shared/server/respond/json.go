package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessBody is the acknowledgement returned by mutating persistence calls.
type SuccessBody struct {
	Success bool `json:"success"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Success writes `{"success": true}` with the given status.
func Success(c *gin.Context, status int) {
	JSON(c, status, SuccessBody{Success: true})
}

// MethodNotAllowed writes the 405 body shared by every endpoint.
func MethodNotAllowed(c *gin.Context) {
	Failure(c, http.StatusMethodNotAllowed, "Method not allowed")
}

// Degraded answers a persistence request when no store is configured. Reads
// get an empty list and the given write methods are acknowledged without effect.
func Degraded(c *gin.Context, writes ...string) {
	if c.Request.Method == http.MethodGet {
		OK(c, []any{})
		return
	}
	for _, m := range writes {
		if c.Request.Method == m {
			Success(c, http.StatusOK)
			return
		}
	}
	MethodNotAllowed(c)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/auth"
	"resume-screener/internal/shared/server/respond"
	"resume-screener/internal/shared/telemetry"
)

const (
	userIDKey    = "userId"
	userRoleKey  = "userRole"
	usernameKey  = "username"
	sessionIDKey = "sessionId"
)

// SessionChecker reports whether a session id is still registered.
type SessionChecker interface {
	Active(ctx context.Context, sessionID string) (bool, error)
}

// Auth validates the bearer session token and stores the identity in context.
// A token whose session was logged out is rejected even if unexpired.
func Auth(issuer *auth.Issuer, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		if sessions != nil {
			active, err := sessions.Active(c.Request.Context(), claims.SessionID())
			if err != nil {
				telemetry.Error("auth.session_lookup_failed", telemetry.Fields{
					"request_id": RequestIDFromContext(c),
					"err":        err,
				})
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to verify session", nil)
				return
			}
			if !active {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "session ended", nil)
				return
			}
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(userRoleKey, claims.Role)
		c.Set(usernameKey, claims.Username)
		c.Set(sessionIDKey, claims.SessionID())
		c.Next()
	}
}

// RequireRole rejects callers whose session role differs from role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if RoleFromContext(c) != role {
			respond.Error(c, http.StatusForbidden, "forbidden", "insufficient role", nil)
			return
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// RoleFromContext fetches the role set by the auth middleware.
func RoleFromContext(c *gin.Context) string {
	return stringFromContext(c, userRoleKey)
}

// UsernameFromContext fetches the username set by the auth middleware.
func UsernameFromContext(c *gin.Context) string {
	return stringFromContext(c, usernameKey)
}

// SessionIDFromContext fetches the session id set by the auth middleware.
func SessionIDFromContext(c *gin.Context) string {
	return stringFromContext(c, sessionIDKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

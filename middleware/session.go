package middleware

import (
	"net/http"

	"main/usecase"

	"github.com/gin-gonic/gin"
)

const (
	SessionIDHeader   = "X-Session-Id"
	SessionCookieName = "session_id"
)

// SessionID extracts the session identifier from the request header or,
// failing that, the session cookie.
func SessionID(c *gin.Context) string {
	if id := c.GetHeader(SessionIDHeader); id != "" {
		return id
	}
	if id, err := c.Cookie(SessionCookieName); err == nil {
		return id
	}
	return ""
}

// RequireSession validates the caller's session after AuthMiddleware has
// established identity. Any failure, including lazy-detected expiry, is a
// 401 carrying the specific reason and a requiresLogin marker; expected
// expiry never surfaces as a server error.
func RequireSession(sessions *usecase.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		result := sessions.ValidateSession(c.Request.Context(), SessionID(c), userID)
		if !result.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"valid":         false,
				"error":         "Session expired or invalid",
				"reason":        result.Reason,
				"requiresLogin": true,
			})
			c.Abort()
			return
		}

		c.Set("session", result.Session)
		c.Set("session_id", result.Session.SessionID)
		c.Next()
	}
}

// CheckTokenRotation signals the client when the external identity token is
// due for a refresh. Non-blocking: only a response header, never a failure.
func CheckTokenRotation(sessions *usecase.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID := SessionID(c); sessionID != "" {
			if sessions.ShouldRotateToken(c.Request.Context(), sessionID) {
				c.Header("X-Token-Rotation-Required", "true")
			}
		}
		c.Next()
	}
}

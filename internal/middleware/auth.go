package middleware

import (
	"net/http"
	"strings"

	"todo-api/internal/apperrors"
	"todo-api/internal/auth"
	"todo-api/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	identityKey  = "identity"
	sessionIDKey = "session_id"
)

// SessionAuth resolves the session token from the cookie, or from an
// "Authorization: Bearer" header when no cookie is sent, and rejects the
// request when there is no live session.
func SessionAuth(sessions *auth.SessionManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		session, err := sessions.Resolve(token)
		if err != nil {
			c.AbortWithStatusJSON(apperrors.StatusCode(err), gin.H{
				"error": err.Error(),
			})
			return
		}

		// Store session info in context for use in handlers
		c.Set(identityKey, session.Identity)
		c.Set(sessionIDKey, session.ID)
		c.Set("user_id", session.Identity.UserID)

		c.Next()
	}
}

// RequireAdmin must run after SessionAuth
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Identity(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin access required",
			})
			return
		}
		c.Next()
	}
}

// Identity returns the requester, or the anonymous identity when no session
// middleware ran
func Identity(c *gin.Context) models.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(models.Identity); ok {
			return id
		}
	}
	return models.Identity{}
}

// SessionID returns the id of the current session, if any
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/constants"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/services"
)

// RequireAuth checks if the user is authenticated via session or bearer token.
// tokens may be nil, in which case only sessions are accepted.
func RequireAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get(constants.ContextKeyUserID).(string); ok && userID != "" {
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if tokens != nil && strings.HasPrefix(header, constants.BearerPrefix) {
			userID, err := tokens.Verify(strings.TrimPrefix(header, constants.BearerPrefix))
			if err != nil {
				apierrors.Unauthorized(c, "Invalid or expired token")
				c.Abort()
				return
			}
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		apierrors.Unauthorized(c, "")
		c.Abort()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

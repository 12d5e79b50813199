package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clientdesk/clientdesk/pkg/auth"
	"github.com/clientdesk/clientdesk/pkg/config"
)

// Auth guards the API with bearer tokens. With a configured signing secret
// the token must be a valid HS256 JWT; without one only token presence is
// checked, which keeps local setups working.
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	var manager *auth.APITokenManager
	if cfg.JWTSecret != "" {
		manager = auth.NewAPITokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	}

	return func(c *gin.Context) {
		authorization := c.GetHeader("Authorization")
		if authorization == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.SplitN(authorization, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization"})
			return
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}
		if manager != nil {
			claims, err := manager.Validate(token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set("user_id", claims.UserID)
		}
		c.Next()
	}
}

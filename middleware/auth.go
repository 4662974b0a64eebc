package middleware

import (
	"strings"

	"article-api/helper"
	"article-api/metrics"
	"article-api/rbac"
	"article-api/services"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token into the caller identity.
func AuthMiddleware(authService services.AuthService, h *helper.HTTPHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			h.SendUnauthorizedError(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			h.SendUnauthorizedError(c, "Bearer token required")
			c.Abort()
			return
		}

		claims, err := authService.ParseToken(tokenString)
		if err != nil {
			h.SendError(c, err)
			c.Abort()
			return
		}

		c.Set(helper.UserIDKey, claims.UserID)
		c.Set(helper.EmailKey, claims.Email)
		c.Set(helper.RoleKey, claims.Role)

		c.Next()
	}
}

// RequirePermission lets the request through only when the caller's role grants action.
func RequirePermission(gate *rbac.Gate, action rbac.Action, h *helper.HTTPHelper, recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(helper.RoleKey)
		if !exists {
			h.SendUnauthorizedError(c, "User role not found")
			c.Abort()
			return
		}

		roleStr, _ := role.(string)
		if err := gate.Authorize(roleStr, action); err != nil {
			recorder.RecordDenied(string(action))
			h.SendError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

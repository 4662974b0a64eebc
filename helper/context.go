package helper

import "github.com/gin-gonic/gin"

// Keys set on the gin context by the middleware chain.
const (
	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
	EmailKey     = "email"
	RoleKey      = "role"
)

// CallerRole returns the role of the authenticated caller, or "" when none is set.
func CallerRole(c *gin.Context) string {
	return c.GetString(RoleKey)
}

func CallerID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

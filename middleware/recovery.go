package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"article-api/helper"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a 500 response and logs the stack.
func Recovery(logger *slog.Logger, h *helper.HTTPHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("request_id", c.GetString(helper.RequestIDKey)),
					slog.String("stack", string(debug.Stack())),
				)
				h.SendErrorStatus(c, http.StatusInternalServerError, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

package middleware

import (
	"log/slog"
	"time"

	"article-api/helper"
	"article-api/metrics"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one http_request entry per request. The level follows the
// status class.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		durationMs := float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)

		args := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", routeOf(c)),
			slog.Int("status", status),
			slog.Float64("duration_ms", durationMs),
		}
		if requestID := c.GetString(helper.RequestIDKey); requestID != "" {
			args = append(args, slog.String("request_id", requestID))
		}
		if userID := helper.CallerID(c); userID != "" {
			args = append(args, slog.String("user_id", userID))
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		logger.Log(c.Request.Context(), level, "http_request", args...)
	}
}

// Metrics records request counts and latency per matched route.
func Metrics(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		recorder.RecordRequest(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}

// routeOf keeps label cardinality bounded by using the route template.
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logging logs one line per request once the handler has returned.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", RequestIDFrom(c),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if id, ok := UserIDFrom(c); ok {
			attrs = append(attrs, "user_id", id)
		}

		switch {
		case status >= 500:
			slog.Error("request handled", attrs...)
		case path == "/health":
			slog.Debug("request handled", attrs...)
		default:
			slog.Info("request handled", attrs...)
		}
	}
}

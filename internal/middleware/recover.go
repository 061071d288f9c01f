package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/service"
)

// Recover turns a handler panic into a 500 envelope.
func Recover(notifier service.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic recovered in handler",
					"panic", r,
					"stack", string(debug.Stack()),
					"request_id", RequestIDFrom(c),
					"path", c.Request.URL.Path,
				)
				if notifier != nil {
					notifier.LogError(fmt.Errorf("panic: %v", r), c.Request.Method+" "+c.Request.URL.Path)
				}
				if c.Writer.Written() {
					c.Abort()
					return
				}
				AbortWithError(c, domain.Internal(nil), "")
			}
		}()
		c.Next()
	}
}

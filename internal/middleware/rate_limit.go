package middleware

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/ratelimit"
)

// KeyFunc names the rate limit bucket for a request. An empty key skips
// limiting.
type KeyFunc func(c *gin.Context) string

func ByIP(prefix string) KeyFunc {
	return func(c *gin.Context) string {
		return prefix + ":ip:" + c.ClientIP()
	}
}

// ByUser keys on the authenticated user and must run after Auth.
func ByUser(prefix string) KeyFunc {
	return func(c *gin.Context) string {
		id, ok := UserIDFrom(c)
		if !ok {
			return ""
		}
		return prefix + ":user:" + strconv.FormatInt(id, 10)
	}
}

// RateLimit rejects requests over the limiter's budget with 429. Store
// failures let the request through.
func RateLimit(l *ratelimit.Limiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if k == "" {
			c.Next()
			return
		}

		allowed, err := l.Allow(c.Request.Context(), k)
		if err != nil {
			slog.Error("rate limit check failed", "error", err, "key", k, "request_id", RequestIDFrom(c))
		}
		if !allowed {
			slog.Debug("rate limited", "key", k)
			AbortWithError(c, domain.ErrTooManyRequests, "")
			return
		}
		c.Next()
	}
}

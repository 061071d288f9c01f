package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/auth"
	"github.com/refrain2333/link-ai/internal/domain"
)

const (
	requestIDKey = "request_id"
	claimsKey    = "claims"
	userKey      = "user"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserLoader interface {
	Profile(ctx context.Context, userID int64) (*domain.User, error)
}

// Auth requires a valid bearer token and stores its claims on the context.
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			AbortWithError(c, domain.ErrTokenMissing, "")
			return
		}

		claims, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, domain.AsError(err), "")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin loads the authenticated user and rejects non-admins. It must
// run after Auth.
func RequireAdmin(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := UserIDFrom(c)
		if !ok {
			AbortWithError(c, domain.ErrTokenMissing, "")
			return
		}
		user, err := users.Profile(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, domain.ErrTokenInvalid, "")
			return
		}
		if !user.IsAdmin() {
			AbortWithError(c, domain.ErrAdminOnly, "")
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func ClaimsFrom(c *gin.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey)
	cl, _ := claims.(*auth.Claims)
	return cl
}

// UserIDFrom returns the authenticated user id, if any.
func UserIDFrom(c *gin.Context) (int64, bool) {
	cl := ClaimsFrom(c)
	if cl == nil {
		return 0, false
	}
	return cl.UserID, true
}

// UserFrom returns the user loaded by RequireAdmin.
func UserFrom(c *gin.Context) *domain.User {
	u, _ := c.Get(userKey)
	user, _ := u.(*domain.User)
	return user
}

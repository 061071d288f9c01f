package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/auth"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "middleware-test-secret"

type fakeUsers map[int64]*domain.User

func (f fakeUsers) Profile(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int, error) {
	return 0, errors.New("db down")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(&domain.User{ID: 7, Name: "n", Email: "e@x.com"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Auth(issuer), func(c *gin.Context) {
		id, _ := UserIDFrom(c)
		OK(c, id)
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lower-case scheme", "bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := do(r, req)
			assert.Equal(t, tc.status, rec.Code)
			env := decode(t, rec)
			assert.Equal(t, tc.status, env.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "success", env.Message)
				assert.EqualValues(t, 7, env.Data)
			} else {
				assert.Nil(t, env.Data)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	users := fakeUsers{
		1: {ID: 1, Role: domain.RoleUser},
		2: {ID: 2, Role: domain.RoleAdmin},
	}

	r := gin.New()
	r.GET("/admin", Auth(issuer), RequireAdmin(users), func(c *gin.Context) {
		OK(c, UserFrom(c).ID)
	})

	for id, want := range map[int64]int{1: http.StatusForbidden, 2: http.StatusOK, 3: http.StatusUnauthorized} {
		token, err := issuer.Issue(&domain.User{ID: id})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, want, do(r, req).Code, "user %d", id)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 2, time.Hour)
	r := gin.New()
	r.POST("/auth/login", RateLimit(limiter, ByIP("auth")), func(c *gin.Context) { OK(c, nil) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		return do(r, req).Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := ratelimit.NewLimiter(failingStore{}, 1, time.Minute)
	r := gin.New()
	r.GET("/x", RateLimit(limiter, ByIP("x")), func(c *gin.Context) { OK(c, nil) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestRateLimit_ByUserWithoutAuthSkips(t *testing.T) {
	limiter := ratelimit.NewLimiter(failingStore{}, 1, time.Minute)
	r := gin.New()
	r.GET("/x", RateLimit(limiter, ByUser("chat")), func(c *gin.Context) { OK(c, nil) })
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { OK(c, RequestIDFrom(c)) })

	rec := do(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := rec.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, decode(t, rec).Data)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", do(r, req).Header().Get(HeaderRequestID))
}

type countingNotifier struct{ errs int }

func (n *countingNotifier) LogRegistration(*domain.User) {}
func (n *countingNotifier) LogError(error, string)       { n.errs++ }

func TestRecover(t *testing.T) {
	n := &countingNotifier{}
	r := gin.New()
	r.Use(RequestID(), Logging(), Recover(n))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, http.StatusInternalServerError, env.Code)
	assert.Equal(t, "internal server error", env.Message)
	assert.Equal(t, 1, n.errs)
}

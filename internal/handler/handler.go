package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/middleware"
	"github.com/refrain2333/link-ai/internal/ratelimit"
	"github.com/refrain2333/link-ai/internal/service"
)

// Handler holds all dependencies needed by the HTTP handlers.
type Handler struct {
	auth        *service.AuthService
	chats       *service.ChatService
	models      *service.ModelService
	pipeline    *service.ChatPipeline
	notifier    service.Notifier
	authLimiter *ratelimit.Limiter
	chatLimiter *ratelimit.Limiter
	health      func(ctx context.Context) error
	dev         bool
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	AuthService  *service.AuthService
	ChatService  *service.ChatService
	ModelService *service.ModelService
	Pipeline     *service.ChatPipeline
	Notifier     service.Notifier
	AuthLimiter  *ratelimit.Limiter
	ChatLimiter  *ratelimit.Limiter
	// HealthCheck is optional; nil reports healthy.
	HealthCheck func(ctx context.Context) error
	Development bool
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	useJSONFieldNames()
	return &Handler{
		auth:        deps.AuthService,
		chats:       deps.ChatService,
		models:      deps.ModelService,
		pipeline:    deps.Pipeline,
		notifier:    deps.Notifier,
		authLimiter: deps.AuthLimiter,
		chatLimiter: deps.ChatLimiter,
		health:      deps.HealthCheck,
		dev:         deps.Development,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.handleHealth)

	authGroup := r.Group("/auth")
	if h.authLimiter != nil {
		authGroup.Use(middleware.RateLimit(h.authLimiter, middleware.ByIP("auth")))
	}
	authGroup.POST("/register", h.handleRegister)
	authGroup.POST("/login", h.handleLogin)

	authed := r.Group("", middleware.Auth(h.auth))

	authed.GET("/chats", h.handleListChats)
	authed.POST("/chats", h.handleCreateChat)
	authed.GET("/chats/:id", h.handleGetChat)
	authed.DELETE("/chats/:id", h.handleDeleteChat)

	authed.PATCH("/chat/:id/title", h.handleRenameChat)
	authed.PATCH("/chat/:id/model", h.handleSetChatModel)
	authed.DELETE("/chat/:id/messages", h.handleClearMessages)
	authed.GET("/chat/models", h.handleListModels)
	send := []gin.HandlerFunc{h.handleSendMessage}
	if h.chatLimiter != nil {
		send = append([]gin.HandlerFunc{middleware.RateLimit(h.chatLimiter, middleware.ByUser("chat"))}, send...)
	}
	authed.POST("/chat/message", send...)

	authed.GET("/user/profile", h.handleProfile)
	authed.PUT("/user/profile", h.handleUpdateProfile)
	authed.GET("/user/stats", h.handleStats)
	authed.POST("/user/password", h.handleChangePassword)

	admin := authed.Group("/admin", middleware.RequireAdmin(h.auth))
	admin.GET("/models", h.handleAdminListModels)
	admin.POST("/models", h.handleAdminCreateModel)
	admin.PATCH("/models/:id", h.handleAdminUpdateModel)
}

func (h *Handler) handleHealth(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.respondError(c, domain.Unavailable("database unavailable").With(err))
			return
		}
	}
	middleware.OK(c, gin.H{"status": "ok"})
}

// respondError writes the error envelope. Server-side failures are logged
// with request context and forwarded to the ops notifier.
func (h *Handler) respondError(c *gin.Context, err error) {
	if service.IsCancellation(err) {
		h.clientGone(c)
		return
	}
	e := domain.AsError(err)
	message := e.Message
	if e.Status >= 500 {
		h.report(c, err)
		if h.dev && e.Kind == domain.KindInternal && e.Cause != nil {
			message = e.Error()
		}
	}
	middleware.AbortWithError(c, e, message)
}

// statusClientClosedRequest marks requests abandoned by the client in logs.
const statusClientClosedRequest = 499

func (h *Handler) clientGone(c *gin.Context) {
	slog.Info("client disconnected during request",
		"request_id", middleware.RequestIDFrom(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"user_id", userID(c),
	)
	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatus(statusClientClosedRequest)
}

func (h *Handler) report(c *gin.Context, err error) {
	e := domain.AsError(err)
	userID, _ := middleware.UserIDFrom(c)
	slog.Error("request failed",
		"error", err,
		"kind", e.Kind,
		"request_id", middleware.RequestIDFrom(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"user_id", userID,
	)
	if h.notifier != nil && (e.Kind == domain.KindInternal || e.Kind == domain.KindUpstream) {
		h.notifier.LogError(err, c.Request.Method+" "+c.FullPath())
	}
}

// bindJSON decodes the body into v and converts binding failures into a
// validation error naming the first failing field.
func bindJSON(c *gin.Context, v any) error {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.Validation(fe.Field(), validationMessage(fe))
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return domain.Validation(typeErr.Field, typeErr.Field+" has the wrong type")
	}
	if errors.Is(err, io.EOF) {
		return domain.Validation("body", "request body is required")
	}
	return domain.Validation("body", "invalid JSON body")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "email":
		return fe.Field() + " must be a valid address"
	default:
		return fe.Field() + " is invalid"
	}
}

var jsonNamesOnce sync.Once

// useJSONFieldNames makes gin's validator report JSON field names.
func useJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

var errInvalidQuery = domain.Validation("query", "invalid query parameters")

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation("id", "id must be a positive integer")
	}
	return id, nil
}

// userID returns the authenticated user id. Routes using it sit behind
// middleware.Auth.
func userID(c *gin.Context) int64 {
	id, _ := middleware.UserIDFrom(c)
	return id
}

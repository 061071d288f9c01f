package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	linkai "github.com/refrain2333/link-ai"
	"github.com/refrain2333/link-ai/internal/auth"
	"github.com/refrain2333/link-ai/internal/config"
	"github.com/refrain2333/link-ai/internal/handler"
	"github.com/refrain2333/link-ai/internal/llm"
	"github.com/refrain2333/link-ai/internal/middleware"
	"github.com/refrain2333/link-ai/internal/ratelimit"
	"github.com/refrain2333/link-ai/internal/repository"
	"github.com/refrain2333/link-ai/internal/repository/memstore"
	"github.com/refrain2333/link-ai/internal/service"
	"github.com/refrain2333/link-ai/internal/telegram"
	"github.com/refrain2333/link-ai/internal/tokenizer"
)

func main() {
	// Setup structured logging; the level is raised or lowered once config is read
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.SlogLevel())

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var (
		pool  *pgxpool.Pool
		store repository.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err = repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		})
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		migrationsFS, err := fs.Sub(linkai.MigrationsFS, "migrations")
		if err != nil {
			slog.Error("failed to load embedded migrations", "error", err)
			os.Exit(1)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		store = repository.NewPostgresStore(pool)
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		store = memstore.New()
	}

	tokenizer.SetDefaultEncoding(cfg.TokenEncoding)
	defer tokenizer.Release()

	// Telegram ops logger
	var notifier service.Notifier
	opsLogger, err := telegram.New(cfg)
	if err != nil {
		slog.Error("failed to create telegram logger", "error", err)
		os.Exit(1)
	}
	if opsLogger != nil {
		notifier = opsLogger
		defer opsLogger.Close()
	}

	// Initialize services
	models := service.NewModelService(store)
	if _, err := models.Seed(ctx, cfg); err != nil {
		slog.Error("failed to seed upstream model", "error", err)
		os.Exit(1)
	}
	authService := service.NewAuthService(store, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL), cfg.InitialCreditsDecimal(), notifier)
	chatService := service.NewChatService(store, models)
	pipeline := service.NewChatPipeline(store, models, llm.NewRegistry(&http.Client{}), service.PipelineConfigFrom(cfg), notifier)

	// Rate limiting
	var limitStore interface {
		ratelimit.Store
		ratelimit.Cleaner
	}
	if cfg.RateLimitStore == "postgres" {
		limitStore = ratelimit.NewPostgresStore(pool)
	} else {
		limitStore = ratelimit.NewMemoryStore()
	}
	go ratelimit.RunCleanup(ctx, limitStore, config.RateLimitCleanup, config.RateLimitStaleAge)

	var healthCheck func(context.Context) error
	if pool != nil {
		healthCheck = pool.Ping
	}

	h := handler.New(handler.Deps{
		AuthService:  authService,
		ChatService:  chatService,
		ModelService: models,
		Pipeline:     pipeline,
		Notifier:     notifier,
		AuthLimiter:  ratelimit.NewLimiter(limitStore, cfg.AuthRateLimitPerMinute, config.RateLimitWindow),
		ChatLimiter:  ratelimit.NewLimiter(limitStore, cfg.RateLimitPerMinute, config.RateLimitWindow),
		HealthCheck:  healthCheck,
		Development:  cfg.IsDevelopment(),
	})

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recover(notifier),
	)
	h.Register(router)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	go func() {
		slog.Info("starting http server", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}
	slog.Info("server stopped gracefully")
}

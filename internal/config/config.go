package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Core
	AppEnv      string `env:"APP_ENV" envDefault:"production"`
	Port        int    `env:"PORT" envDefault:"3000"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Database pool
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`

	// Auth
	JWTSecret      string        `env:"JWT_SECRET,required"`
	JWTTTL         time.Duration `env:"JWT_TTL" envDefault:"168h"`
	InitialCredits float64       `env:"INITIAL_CREDITS" envDefault:"100"`

	// Upstream model seeded at startup
	UpstreamProvider string  `env:"UPSTREAM_PROVIDER" envDefault:"openai"`
	UpstreamBaseURL  string  `env:"UPSTREAM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	UpstreamAPIKey   string  `env:"UPSTREAM_API_KEY"`
	UpstreamModel    string  `env:"UPSTREAM_MODEL"`
	UpstreamPrice    float64 `env:"UPSTREAM_CREDITS_PER_1K" envDefault:"0"`

	// Chat pipeline
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"60s"`
	Temperature     float64       `env:"MODEL_TEMPERATURE" envDefault:"0.7"`
	MaxTokens       int           `env:"MODEL_MAX_TOKENS" envDefault:"4096"`
	HistoryWindow   int           `env:"HISTORY_WINDOW" envDefault:"10"`
	TokenEncoding   string        `env:"TOKEN_ENCODING" envDefault:"cl100k_base"`

	// Rate limiting
	RateLimitStore         string `env:"RATE_LIMIT_STORE" envDefault:"memory"`
	RateLimitPerMinute     int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	AuthRateLimitPerMinute int    `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"10"`

	// Telegram logging
	TelegramBotToken     string `env:"TELEGRAM_BOT_TOKEN"`
	LogTelegramChatID    int64  `env:"TELEGRAM_LOG_CHAT_ID"`
	LogTopicError        int    `env:"TELEGRAM_LOG_TOPIC_ERROR"`
	LogTopicRegistration int    `env:"TELEGRAM_LOG_TOPIC_REGISTRATION"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < MinJWTSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLen)
	}
	if c.DatabaseURL == "" && !c.IsDevelopment() {
		return errors.New("DATABASE_URL is required outside development")
	}
	if c.HistoryWindow < 0 {
		return errors.New("HISTORY_WINDOW must not be negative")
	}
	switch c.RateLimitStore {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimitStore)
	}
	if c.RateLimitStore == "postgres" && c.DatabaseURL == "" {
		return errors.New("RATE_LIMIT_STORE=postgres requires DATABASE_URL")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) InitialCreditsDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.InitialCredits)
}

func (c *Config) UpstreamPriceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.UpstreamPrice)
}

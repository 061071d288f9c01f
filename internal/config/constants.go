package config

import "time"

const (
	// Message limits
	MaxContentLength = 10000
	TitleMaxRunes    = 50
	MaxTitleLength   = 100
	DefaultChatTitle = "New chat"

	// Display name bounds
	MaxNameLength = 64

	// Password bounds (bcrypt ignores bytes past 72)
	MinPasswordLength = 6
	MaxPasswordLength = 72

	MinJWTSecretLen = 16

	// Enabled model list cache
	ModelCacheDuration = time.Minute

	// Chat list pagination
	DefaultChatsPerPage = 20
	MaxChatsPerPage     = 100

	// Rate limit window
	RateLimitWindow = time.Minute

	// Stale rate limit bucket cleanup
	RateLimitCleanup  = 60 * time.Second
	RateLimitStaleAge = 10 * time.Minute

	// HTTP server
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 10 * time.Second

	// Detached write after a client disconnect
	PersistTimeout = 10 * time.Second

	// Telegram log message limit
	MaxTelegramMessageLen = 4096
)

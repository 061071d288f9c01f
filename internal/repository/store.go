package repository

import (
	"context"
	"time"

	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/shopspring/decimal"
)

// Store is the persistence gateway used by the services. Lookups that miss
// return the matching domain not-found sentinel; unique violations return
// the matching conflict sentinel.
type Store interface {
	// WithinTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Store) error) error

	CreateUser(ctx context.Context, u domain.NewUser) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	// GetUserByEmailForUpdate locks the row until the enclosing transaction ends.
	GetUserByEmailForUpdate(ctx context.Context, email string) (*domain.User, error)
	RecordLogin(ctx context.Context, userID int64, ip string, at time.Time) error
	UpdateUserName(ctx context.Context, userID int64, name string) (*domain.User, error)
	UpdateUserPassword(ctx context.Context, userID int64, hash string) error
	// DebitUserCredits subtracts amount from credits, adds it to credits_used
	// and returns the remaining balance.
	DebitUserCredits(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	GetUserStats(ctx context.Context, userID int64) (*domain.UserStats, error)

	CreateChat(ctx context.Context, userID int64, title string, modelID *int64) (*domain.Chat, error)
	GetChatForUser(ctx context.Context, chatID, userID int64) (*domain.Chat, error)
	ListChatsByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Chat, error)
	CountChatsByUser(ctx context.Context, userID int64) (int64, error)
	UpdateChatTitle(ctx context.Context, chatID, userID int64, title string) (*domain.Chat, error)
	UpdateChatModel(ctx context.Context, chatID, userID int64, modelID *int64) (*domain.Chat, error)
	TouchChat(ctx context.Context, chatID int64, at time.Time) error
	DeleteChat(ctx context.Context, chatID, userID int64) error

	CreateMessage(ctx context.Context, m domain.Message) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
	// ListRecentMessages returns at most limit messages, oldest first.
	ListRecentMessages(ctx context.Context, chatID int64, limit int) ([]domain.Message, error)
	ListMessages(ctx context.Context, chatID int64) ([]domain.Message, error)
	CountMessages(ctx context.Context, chatID int64) (int64, error)
	DeleteChatMessages(ctx context.Context, chatID int64) (int64, error)

	GetModelConfig(ctx context.Context, id int64) (*domain.ModelConfig, error)
	FirstEnabledModelConfig(ctx context.Context) (*domain.ModelConfig, error)
	ListModelConfigs(ctx context.Context, enabledOnly bool) ([]domain.ModelConfig, error)
	CreateModelConfig(ctx context.Context, m domain.ModelConfig) (*domain.ModelConfig, error)
	UpdateModelConfig(ctx context.Context, id int64, upd domain.ModelConfigUpdate) (*domain.ModelConfig, error)
	// UpsertModelConfigByName inserts m or refreshes provider, base URL and
	// credential of the existing config with the same name.
	UpsertModelConfigByName(ctx context.Context, m domain.ModelConfig) (*domain.ModelConfig, error)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/repository/sqlc"
	"github.com/shopspring/decimal"
)

// PostgresStore implements Store on top of a pgx pool and the generated
// queries. A PostgresStore returned to a WithinTx callback has no pool and
// runs every query on the open transaction.
type PostgresStore struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, queries: sqlc.New(db)}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresStore{queries: s.queries.WithTx(tx)}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	row, err := s.queries.CreateUser(ctx, sqlc.CreateUserParams{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Role:         string(u.Role),
		Credits:      u.Credits,
	})
	if err != nil {
		return nil, mapErr(err, nil, domain.ErrEmailTaken)
	}
	return rowToUser(row), nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return nil, mapErr(err, domain.ErrUserNotFound, nil)
	}
	return rowToUser(row), nil
}

func (s *PostgresStore) GetUserByEmailForUpdate(ctx context.Context, email string) (*domain.User, error) {
	row, err := s.queries.GetUserByEmailForUpdate(ctx, email)
	if err != nil {
		return nil, mapErr(err, domain.ErrUserNotFound, nil)
	}
	return rowToUser(row), nil
}

func (s *PostgresStore) RecordLogin(ctx context.Context, userID int64, ip string, at time.Time) error {
	var ipPtr *string
	if ip != "" {
		ipPtr = &ip
	}
	return s.queries.UpdateUserLastLogin(ctx, sqlc.UpdateUserLastLoginParams{
		ID:          userID,
		LastLoginAt: timeToPgTimestamptz(at),
		LastLoginIp: ipPtr,
	})
}

func (s *PostgresStore) UpdateUserName(ctx context.Context, userID int64, name string) (*domain.User, error) {
	row, err := s.queries.UpdateUserName(ctx, sqlc.UpdateUserNameParams{ID: userID, Name: name})
	if err != nil {
		return nil, mapErr(err, domain.ErrUserNotFound, nil)
	}
	return rowToUser(row), nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, userID int64, hash string) error {
	return s.queries.UpdateUserPassword(ctx, sqlc.UpdateUserPasswordParams{ID: userID, PasswordHash: hash})
}

func (s *PostgresStore) DebitUserCredits(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	credits, err := s.queries.DebitUserCredits(ctx, sqlc.DebitUserCreditsParams{ID: userID, Credits: amount})
	if err != nil {
		return decimal.Zero, mapErr(err, domain.ErrUserNotFound, nil)
	}
	return credits, nil
}

func (s *PostgresStore) GetUserStats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	row, err := s.queries.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return &domain.UserStats{
		ChatCount:    row.ChatCount,
		MessageCount: row.MessageCount,
		TotalTokens:  row.TotalTokens,
	}, nil
}

func (s *PostgresStore) CreateChat(ctx context.Context, userID int64, title string, modelID *int64) (*domain.Chat, error) {
	row, err := s.queries.CreateChat(ctx, sqlc.CreateChatParams{UserID: userID, Title: title, ModelID: modelID})
	if err != nil {
		return nil, err
	}
	return rowToChat(row), nil
}

func (s *PostgresStore) GetChatForUser(ctx context.Context, chatID, userID int64) (*domain.Chat, error) {
	row, err := s.queries.GetChatForUser(ctx, sqlc.GetChatForUserParams{ID: chatID, UserID: userID})
	if err != nil {
		return nil, mapErr(err, domain.ErrChatNotFound, nil)
	}
	return rowToChat(row), nil
}

func (s *PostgresStore) ListChatsByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Chat, error) {
	rows, err := s.queries.ListChatsByUser(ctx, sqlc.ListChatsByUserParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}
	chats := make([]domain.Chat, 0, len(rows))
	for _, r := range rows {
		chats = append(chats, *rowToChat(r))
	}
	return chats, nil
}

func (s *PostgresStore) CountChatsByUser(ctx context.Context, userID int64) (int64, error) {
	return s.queries.CountChatsByUser(ctx, userID)
}

func (s *PostgresStore) UpdateChatTitle(ctx context.Context, chatID, userID int64, title string) (*domain.Chat, error) {
	row, err := s.queries.UpdateChatTitle(ctx, sqlc.UpdateChatTitleParams{ID: chatID, UserID: userID, Title: title})
	if err != nil {
		return nil, mapErr(err, domain.ErrChatNotFound, nil)
	}
	return rowToChat(row), nil
}

func (s *PostgresStore) UpdateChatModel(ctx context.Context, chatID, userID int64, modelID *int64) (*domain.Chat, error) {
	row, err := s.queries.UpdateChatModel(ctx, sqlc.UpdateChatModelParams{ID: chatID, UserID: userID, ModelID: modelID})
	if err != nil {
		return nil, mapErr(err, domain.ErrChatNotFound, nil)
	}
	return rowToChat(row), nil
}

func (s *PostgresStore) TouchChat(ctx context.Context, chatID int64, at time.Time) error {
	return s.queries.TouchChat(ctx, sqlc.TouchChatParams{ID: chatID, UpdatedAt: timeToPgTimestamptz(at)})
}

func (s *PostgresStore) DeleteChat(ctx context.Context, chatID, userID int64) error {
	n, err := s.queries.DeleteChat(ctx, sqlc.DeleteChatParams{ID: chatID, UserID: userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

func (s *PostgresStore) CreateMessage(ctx context.Context, m domain.Message) (*domain.Message, error) {
	row, err := s.queries.CreateMessage(ctx, sqlc.CreateMessageParams{
		ChatID:           m.ChatID,
		Role:             string(m.Role),
		Content:          m.Content,
		Reasoning:        m.Reasoning,
		PromptTokens:     int32(m.PromptTokens),
		CompletionTokens: int32(m.CompletionTokens),
		TotalTokens:      int32(m.TotalTokens),
		ResponseTime:     m.ResponseTime,
		ModelID:          m.ModelID,
		ModelName:        m.ModelName,
	})
	if err != nil {
		return nil, err
	}
	return rowToMessage(row), nil
}

func (s *PostgresStore) DeleteMessage(ctx context.Context, id int64) error {
	return s.queries.DeleteMessage(ctx, id)
}

func (s *PostgresStore) ListRecentMessages(ctx context.Context, chatID int64, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	rows, err := s.queries.ListRecentMessages(ctx, sqlc.ListRecentMessagesParams{ChatID: chatID, Limit: int32(limit)})
	if err != nil {
		return nil, err
	}
	return rowsToMessages(rows), nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, chatID int64) ([]domain.Message, error) {
	rows, err := s.queries.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return rowsToMessages(rows), nil
}

func (s *PostgresStore) CountMessages(ctx context.Context, chatID int64) (int64, error) {
	return s.queries.CountMessages(ctx, chatID)
}

func (s *PostgresStore) DeleteChatMessages(ctx context.Context, chatID int64) (int64, error) {
	return s.queries.DeleteChatMessages(ctx, chatID)
}

func (s *PostgresStore) GetModelConfig(ctx context.Context, id int64) (*domain.ModelConfig, error) {
	row, err := s.queries.GetModelConfig(ctx, id)
	if err != nil {
		return nil, mapErr(err, domain.ErrModelNotFound, nil)
	}
	return rowToModelConfig(row), nil
}

func (s *PostgresStore) FirstEnabledModelConfig(ctx context.Context) (*domain.ModelConfig, error) {
	row, err := s.queries.FirstEnabledModelConfig(ctx)
	if err != nil {
		return nil, mapErr(err, domain.ErrNoEnabledModel, nil)
	}
	return rowToModelConfig(row), nil
}

func (s *PostgresStore) ListModelConfigs(ctx context.Context, enabledOnly bool) ([]domain.ModelConfig, error) {
	var (
		rows []sqlc.ModelConfig
		err  error
	)
	if enabledOnly {
		rows, err = s.queries.ListEnabledModelConfigs(ctx)
	} else {
		rows, err = s.queries.ListModelConfigs(ctx)
	}
	if err != nil {
		return nil, err
	}
	models := make([]domain.ModelConfig, 0, len(rows))
	for _, r := range rows {
		models = append(models, *rowToModelConfig(r))
	}
	return models, nil
}

func (s *PostgresStore) CreateModelConfig(ctx context.Context, m domain.ModelConfig) (*domain.ModelConfig, error) {
	row, err := s.queries.CreateModelConfig(ctx, sqlc.CreateModelConfigParams{
		Name:         m.Name,
		DisplayName:  m.DisplayName,
		Provider:     string(m.Provider),
		BaseUrl:      m.BaseURL,
		ApiKey:       m.APIKey,
		Enabled:      m.Enabled,
		SortOrder:    int32(m.SortOrder),
		CreditsPer1k: m.CreditsPer1K,
	})
	if err != nil {
		return nil, mapErr(err, nil, domain.ErrModelNameTaken)
	}
	return rowToModelConfig(row), nil
}

func (s *PostgresStore) UpdateModelConfig(ctx context.Context, id int64, upd domain.ModelConfigUpdate) (*domain.ModelConfig, error) {
	row, err := s.queries.UpdateModelConfig(ctx, sqlc.UpdateModelConfigParams{
		DisplayName:  upd.DisplayName,
		BaseUrl:      upd.BaseURL,
		ApiKey:       upd.APIKey,
		Enabled:      upd.Enabled,
		SortOrder:    int32PtrFromIntPtr(upd.SortOrder),
		CreditsPer1k: nullDecimal(upd.CreditsPer1K),
		ID:           id,
	})
	if err != nil {
		return nil, mapErr(err, domain.ErrModelNotFound, nil)
	}
	return rowToModelConfig(row), nil
}

func (s *PostgresStore) UpsertModelConfigByName(ctx context.Context, m domain.ModelConfig) (*domain.ModelConfig, error) {
	row, err := s.queries.UpsertModelConfigByName(ctx, sqlc.UpsertModelConfigByNameParams{
		Name:         m.Name,
		DisplayName:  m.DisplayName,
		Provider:     string(m.Provider),
		BaseUrl:      m.BaseURL,
		ApiKey:       m.APIKey,
		CreditsPer1k: m.CreditsPer1K,
	})
	if err != nil {
		return nil, err
	}
	return rowToModelConfig(row), nil
}

var _ Store = (*PostgresStore)(nil)

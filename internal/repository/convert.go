package repository

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/repository/sqlc"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// mapErr translates driver errors into domain errors.
func mapErr(err error, notFound, conflict *domain.Error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && conflict != nil {
		return conflict
	}
	return err
}

func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if ts.Valid {
		t := ts.Time
		return &t
	}
	return nil
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func int32PtrFromIntPtr(v *int) *int32 {
	if v == nil {
		return nil
	}
	i := int32(*v)
	return &i
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func rowToUser(row sqlc.User) *domain.User {
	return &domain.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Name:         row.Name,
		Role:         domain.Role(row.Role),
		Credits:      row.Credits,
		CreditsUsed:  row.CreditsUsed,
		LastLoginAt:  pgTimestamptzToTimePtr(row.LastLoginAt),
		LastLoginIP:  row.LastLoginIp,
		CreatedAt:    pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:    pgTimestamptzToTime(row.UpdatedAt),
	}
}

func rowToChat(row sqlc.Chat) *domain.Chat {
	return &domain.Chat{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		ModelID:   row.ModelID,
		CreatedAt: pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt: pgTimestamptzToTime(row.UpdatedAt),
	}
}

func rowToMessage(row sqlc.Message) *domain.Message {
	return &domain.Message{
		ID:               row.ID,
		ChatID:           row.ChatID,
		Role:             domain.MessageRole(row.Role),
		Content:          row.Content,
		Reasoning:        row.Reasoning,
		PromptTokens:     int(row.PromptTokens),
		CompletionTokens: int(row.CompletionTokens),
		TotalTokens:      int(row.TotalTokens),
		ResponseTime:     row.ResponseTime,
		ModelID:          row.ModelID,
		ModelName:        row.ModelName,
		CreatedAt:        pgTimestamptzToTime(row.CreatedAt),
	}
}

func rowsToMessages(rows []sqlc.Message) []domain.Message {
	out := make([]domain.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToMessage(r))
	}
	return out
}

func rowToModelConfig(row sqlc.ModelConfig) *domain.ModelConfig {
	return &domain.ModelConfig{
		ID:           row.ID,
		Name:         row.Name,
		DisplayName:  row.DisplayName,
		Provider:     domain.Provider(row.Provider),
		BaseURL:      row.BaseUrl,
		APIKey:       row.ApiKey,
		Enabled:      row.Enabled,
		SortOrder:    int(row.SortOrder),
		CreditsPer1K: row.CreditsPer1k,
		CreatedAt:    pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:    pgTimestamptzToTime(row.UpdatedAt),
	}
}

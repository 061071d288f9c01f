package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/refrain2333/link-ai/internal/repository/sqlc"
)

// PostgresStore keeps counters in the rate_limits table so that several
// server instances share them.
type PostgresStore struct {
	queries *sqlc.Queries
	now     func() time.Time
}

func NewPostgresStore(db sqlc.DBTX) *PostgresStore {
	return &PostgresStore{queries: sqlc.New(db), now: time.Now}
}

func (s *PostgresStore) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	count, err := s.queries.HitRateLimit(ctx, sqlc.HitRateLimitParams{
		Key:         key,
		WindowStart: pgtype.Timestamptz{Time: windowStart(s.now(), window), Valid: true},
	})
	if err != nil {
		return 0, fmt.Errorf("hit rate limit: %w", err)
	}
	return int(count), nil
}

func (s *PostgresStore) Cleanup(ctx context.Context, cutoff time.Time) error {
	if err := s.queries.CleanupRateLimits(ctx, pgtype.Timestamptz{Time: cutoff, Valid: true}); err != nil {
		return fmt.Errorf("cleanup rate limits: %w", err)
	}
	return nil
}

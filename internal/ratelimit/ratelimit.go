// Package ratelimit counts requests per key in fixed time windows.
package ratelimit

import (
	"context"
	"time"
)

// Store increments the counter for key in the window containing now and
// returns the new count.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (int, error)
}

// Limiter allows at most limit hits per key per window.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

func NewLimiter(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow records a hit for key and reports whether it is within the limit.
// A non-positive limit disables limiting.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	count, err := l.store.Hit(ctx, key, l.window)
	if err != nil {
		return true, err
	}
	return count <= l.limit, nil
}

func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}

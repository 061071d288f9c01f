package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type bucketKey struct {
	key   string
	start time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	buckets map[bucketKey]int
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[bucketKey]int), now: time.Now}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int, error) {
	k := bucketKey{key: key, start: windowStart(s.now(), window)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[k]++
	return s.buckets[k], nil
}

// Cleanup drops buckets whose window started before cutoff.
func (s *MemoryStore) Cleanup(_ context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.buckets {
		if k.start.Before(cutoff) {
			delete(s.buckets, k)
		}
	}
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Cleaner is a Store whose stale windows can be dropped.
type Cleaner interface {
	Cleanup(ctx context.Context, cutoff time.Time) error
}

// RunCleanup removes windows older than staleAge every interval until ctx
// is done.
func RunCleanup(ctx context.Context, c Cleaner, interval, staleAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Cleanup(ctx, time.Now().Add(-staleAge)); err != nil {
				slog.Error("rate limit cleanup", "error", err)
			}
		}
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/refrain2333/link-ai/internal/domain"
)

// ModelsCache holds the enabled model list for ttl. Invalidate bumps a
// generation so a load that started before it is never stored.
type ModelsCache struct {
	mu        sync.RWMutex
	models    []domain.ModelConfig
	loadedAt  time.Time
	ttl       time.Duration
	gen       uint64
	clockFunc func() time.Time
}

func NewModelsCache(ttl time.Duration) *ModelsCache {
	return &ModelsCache{ttl: ttl, clockFunc: time.Now}
}

func (c *ModelsCache) fresh() ([]domain.ModelConfig, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.models != nil && c.clockFunc().Sub(c.loadedAt) < c.ttl {
		return c.models, c.gen, true
	}
	return nil, c.gen, false
}

// GetOrLoad returns the cached list, calling load when it is missing or
// expired.
func (c *ModelsCache) GetOrLoad(ctx context.Context, load func(context.Context) ([]domain.ModelConfig, error)) ([]domain.ModelConfig, error) {
	models, gen, ok := c.fresh()
	if ok {
		return models, nil
	}

	models, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []domain.ModelConfig{}
	}

	c.mu.Lock()
	if c.gen == gen {
		c.models = models
		c.loadedAt = c.clockFunc()
	}
	c.mu.Unlock()
	return models, nil
}

func (c *ModelsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.models = nil
}

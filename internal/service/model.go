package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/refrain2333/link-ai/internal/config"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/repository"
	"github.com/shopspring/decimal"
)

type ModelService struct {
	store repository.Store
	cache *ModelsCache
}

func NewModelService(store repository.Store) *ModelService {
	return &ModelService{store: store, cache: NewModelsCache(config.ModelCacheDuration)}
}

// ListEnabled returns the enabled models ordered by sort order then id.
func (s *ModelService) ListEnabled(ctx context.Context) ([]domain.ModelConfig, error) {
	models, err := s.cache.GetOrLoad(ctx, func(ctx context.Context) ([]domain.ModelConfig, error) {
		return s.store.ListModelConfigs(ctx, true)
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

func (s *ModelService) ListAll(ctx context.Context) ([]domain.ModelConfig, error) {
	return s.store.ListModelConfigs(ctx, false)
}

func validProvider(p domain.Provider) bool {
	return p == domain.ProviderOpenAI || p == domain.ProviderGemini
}

func (s *ModelService) Create(ctx context.Context, m domain.ModelConfig) (*domain.ModelConfig, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return nil, domain.Validation("name", "name is required")
	}
	if m.Provider == "" {
		m.Provider = domain.ProviderOpenAI
	}
	if !validProvider(m.Provider) {
		return nil, domain.Validation("provider", "provider must be openai or gemini")
	}
	if m.CreditsPer1K.IsNegative() {
		return nil, domain.Validation("creditsPer1k", "creditsPer1k must not be negative")
	}
	if strings.TrimSpace(m.DisplayName) == "" {
		m.DisplayName = m.Name
	}

	created, err := s.store.CreateModelConfig(ctx, m)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return created, nil
}

func (s *ModelService) Update(ctx context.Context, id int64, upd domain.ModelConfigUpdate) (*domain.ModelConfig, error) {
	if upd.CreditsPer1K != nil && upd.CreditsPer1K.IsNegative() {
		return nil, domain.Validation("creditsPer1k", "creditsPer1k must not be negative")
	}
	updated, err := s.store.UpdateModelConfig(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return updated, nil
}

// Resolve picks the model for a turn: the override if it names an enabled
// model, else the chat's model if enabled, else the first enabled model.
func (s *ModelService) Resolve(ctx context.Context, override, chatModel *int64) (*domain.ModelConfig, error) {
	for _, id := range []*int64{override, chatModel} {
		if id == nil {
			continue
		}
		m, err := s.store.GetModelConfig(ctx, *id)
		if err != nil {
			if errors.Is(err, domain.ErrModelNotFound) {
				continue
			}
			return nil, fmt.Errorf("get model: %w", err)
		}
		if m.Enabled {
			return m, nil
		}
	}

	m, err := s.store.FirstEnabledModelConfig(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoEnabledModel) {
			return nil, domain.ErrNoEnabledModel
		}
		return nil, fmt.Errorf("first enabled model: %w", err)
	}
	return m, nil
}

// Seed upserts the model described by the UPSTREAM_* settings. It does
// nothing when UPSTREAM_MODEL is empty.
func (s *ModelService) Seed(ctx context.Context, cfg *config.Config) (*domain.ModelConfig, error) {
	if cfg.UpstreamModel == "" {
		return nil, nil
	}
	provider := domain.Provider(strings.ToLower(cfg.UpstreamProvider))
	if !validProvider(provider) {
		return nil, fmt.Errorf("unknown UPSTREAM_PROVIDER %q", cfg.UpstreamProvider)
	}

	m, err := s.store.UpsertModelConfigByName(ctx, domain.ModelConfig{
		Name:         cfg.UpstreamModel,
		DisplayName:  cfg.UpstreamModel,
		Provider:     provider,
		BaseURL:      cfg.UpstreamBaseURL,
		APIKey:       cfg.UpstreamAPIKey,
		CreditsPer1K: decimal.Max(cfg.UpstreamPriceDecimal(), decimal.Zero),
	})
	if err != nil {
		return nil, fmt.Errorf("seed model: %w", err)
	}
	s.cache.Invalidate()
	slog.Info("upstream model seeded", "model", m.Name, "id", m.ID, "provider", m.Provider)
	return m, nil
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/refrain2333/link-ai/internal/auth"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/llm"
	"github.com/refrain2333/link-ai/internal/repository/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

// fakeProvider replays canned chunks or a canned result and records every
// request it receives.
type fakeProvider struct {
	mu       sync.Mutex
	requests []llm.Request

	chunks []llm.Chunk
	result *llm.Result
	err    error
	// errAfter fails the stream after this many chunks when err is set.
	errAfter int
	// gate, when set, is waited on after the first chunk.
	gate chan struct{}
	// onChunk runs after each chunk has been handed to the pipeline.
	onChunk func(i int)
}

func (f *fakeProvider) record(req llm.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := append([]llm.Message(nil), req.Messages...)
	req.Messages = msgs
	f.requests = append(f.requests, req)
}

func (f *fakeProvider) Requests() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.requests...)
}

func (f *fakeProvider) Complete(ctx context.Context, req llm.Request) (*llm.Result, error) {
	f.record(req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	res := &llm.Result{}
	for _, c := range f.chunks {
		res.Content += c.Content
		res.Reasoning += c.Reasoning
		if c.Usage != nil {
			res.Usage = *c.Usage
		}
	}
	return res, nil
}

func (f *fakeProvider) Stream(ctx context.Context, req llm.Request, fn func(llm.Chunk) error) error {
	f.record(req)
	for i, c := range f.chunks {
		if f.err != nil && i == f.errAfter {
			return f.err
		}
		if err := fn(c); err != nil {
			return err
		}
		if f.onChunk != nil {
			f.onChunk(i)
		}
		if f.gate != nil && i == 0 {
			select {
			case <-f.gate:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if f.err != nil && f.errAfter >= len(f.chunks) {
		return f.err
	}
	return nil
}

type fakeSource struct {
	provider llm.Provider
	err      error
}

func (s fakeSource) For(context.Context, *domain.ModelConfig) (llm.Provider, error) {
	return s.provider, s.err
}

type recordingNotifier struct {
	mu            sync.Mutex
	registrations []*domain.User
	errors        []error
}

func (n *recordingNotifier) LogRegistration(u *domain.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registrations = append(n.registrations, u)
}

func (n *recordingNotifier) LogError(err error, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, err)
}

type fixture struct {
	store    *memstore.Store
	models   *ModelService
	chats    *ChatService
	auth     *AuthService
	pipeline *ChatPipeline
	provider *fakeProvider
	notifier *recordingNotifier
	user     *domain.User
	model    *domain.ModelConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:    memstore.New(),
		provider: &fakeProvider{},
		notifier: &recordingNotifier{},
	}
	f.models = NewModelService(f.store)
	f.chats = NewChatService(f.store, f.models)
	f.auth = NewAuthService(f.store, auth.NewTokenIssuer(testSecret, time.Hour), decimal.NewFromInt(100), f.notifier)
	f.pipeline = NewChatPipeline(f.store, f.models, fakeSource{provider: f.provider}, PipelineConfig{
		HistoryWindow:   10,
		Temperature:     0.7,
		MaxTokens:       4096,
		UpstreamTimeout: 5 * time.Second,
	}, f.notifier)

	user, err := f.store.CreateUser(ctx, domain.NewUser{
		Email:        "owner@example.com",
		PasswordHash: "x",
		Name:         "owner",
		Role:         domain.RoleUser,
		Credits:      decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	f.user = user

	model, err := f.store.CreateModelConfig(ctx, domain.ModelConfig{
		Name:        "gpt-test",
		DisplayName: "GPT Test",
		Provider:    domain.ProviderOpenAI,
		Enabled:     true,
	})
	require.NoError(t, err)
	f.model = model

	return f
}

func usage(p, c int) *domain.Usage {
	return &domain.Usage{PromptTokens: p, CompletionTokens: c, TotalTokens: p + c}
}

func int64Ptr(v int64) *int64 { return &v }

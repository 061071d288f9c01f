package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/refrain2333/link-ai/internal/config"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/llm"
	"github.com/refrain2333/link-ai/internal/repository"
	"github.com/refrain2333/link-ai/internal/tokenizer"
)

type EventType string

const (
	EventContent EventType = "content"
	EventDone    EventType = "done"
	EventError   EventType = "error"
)

// Event is delivered to an EventSink while a turn runs. Err is set only on
// EventError and is always a *domain.Error.
type Event struct {
	Type    EventType
	Content string
	Err     *domain.Error
}

// EventSink observes a turn. It is called from the goroutine running
// SendMessage.
type EventSink func(Event)

// ProviderSource returns the client for a model config.
type ProviderSource interface {
	For(ctx context.Context, m *domain.ModelConfig) (llm.Provider, error)
}

type SendMessageInput struct {
	Content string
	ChatID  *int64
	ModelID *int64
	Stream  bool
}

type PipelineConfig struct {
	HistoryWindow   int
	Temperature     float64
	MaxTokens       int
	UpstreamTimeout time.Duration
}

func PipelineConfigFrom(cfg *config.Config) PipelineConfig {
	return PipelineConfig{
		HistoryWindow:   cfg.HistoryWindow,
		Temperature:     cfg.Temperature,
		MaxTokens:       cfg.MaxTokens,
		UpstreamTimeout: cfg.UpstreamTimeout,
	}
}

// ChatPipeline runs conversational turns: it resolves the chat and model,
// assembles context, calls the upstream model and persists both sides of
// the exchange. At most one turn per chat runs at a time.
type ChatPipeline struct {
	store     repository.Store
	models    *ModelService
	providers ProviderSource
	cfg       PipelineConfig
	locks     *KeyedMutex
	notifier  Notifier
	now       func() time.Time
}

func NewChatPipeline(store repository.Store, models *ModelService, providers ProviderSource, cfg PipelineConfig, notifier Notifier) *ChatPipeline {
	return &ChatPipeline{
		store:     store,
		models:    models,
		providers: providers,
		cfg:       cfg,
		locks:     NewKeyedMutex(),
		notifier:  orNop(notifier),
		now:       time.Now,
	}
}

// turn carries the state of one SendMessage call.
type turn struct {
	userID   int64
	chat     *domain.Chat
	model    *domain.ModelConfig
	context  []llm.Message
	userMsg  *domain.Message
	started  time.Time
	content  strings.Builder
	thinking strings.Builder
	usage    domain.Usage
	sink     EventSink
}

func (t *turn) emit(e Event) {
	if t.sink != nil {
		t.sink(e)
	}
}

func validateContent(content string) (string, error) {
	if !utf8.ValidString(content) {
		return "", domain.Validation("content", "content must be valid UTF-8")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", domain.Validation("content", "content must not be empty")
	}
	if utf8.RuneCountInString(content) > config.MaxContentLength {
		return "", domain.Validation("content", fmt.Sprintf("content must be at most %d characters", config.MaxContentLength))
	}
	return content, nil
}

// deriveTitle returns the first TitleMaxRunes runes of content, with an
// ellipsis when truncated.
func deriveTitle(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= config.TitleMaxRunes {
		return content
	}
	return string([]rune(content)[:config.TitleMaxRunes]) + "..."
}

// SendMessage executes one turn for userID. Errors raised before the
// upstream call are returned without touching sink; upstream failures are
// also reported to sink as an EventError.
func (p *ChatPipeline) SendMessage(ctx context.Context, userID int64, in SendMessageInput, sink EventSink) (*domain.AIResponse, error) {
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	t := &turn{userID: userID, sink: sink}

	var chatModel *int64
	if in.ChatID != nil {
		chat, err := p.store.GetChatForUser(ctx, *in.ChatID, userID)
		if err != nil {
			return nil, err
		}
		t.chat = chat
		chatModel = chat.ModelID
	}

	t.model, err = p.models.Resolve(ctx, in.ModelID, chatModel)
	if err != nil {
		return nil, err
	}
	if err := p.checkCredits(ctx, userID, t.model); err != nil {
		return nil, err
	}
	provider, err := p.providers.For(ctx, t.model)
	if err != nil {
		return nil, domain.Upstream(err)
	}

	if t.chat == nil {
		t.chat, err = p.store.CreateChat(ctx, userID, deriveTitle(content), &t.model.ID)
		if err != nil {
			return nil, fmt.Errorf("create chat: %w", err)
		}
	}

	unlock, err := p.locks.Lock(ctx, t.chat.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := p.assembleContext(ctx, t, content); err != nil {
		return nil, err
	}

	t.userMsg, err = p.store.CreateMessage(ctx, domain.Message{
		ChatID:       t.chat.ID,
		Role:         domain.MessageRoleUser,
		Content:      content,
		PromptTokens: tokenizer.Estimate(content),
		TotalTokens:  tokenizer.Estimate(content),
	})
	if err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	if err := p.invoke(ctx, t, provider, in.Stream); err != nil {
		return nil, p.fail(ctx, t, err)
	}

	return p.finalize(ctx, t), nil
}

func (p *ChatPipeline) checkCredits(ctx context.Context, userID int64, m *domain.ModelConfig) error {
	if m.IsFree() {
		return nil
	}
	user, err := p.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Credits.IsPositive() {
		return domain.ErrInsufficientCredits
	}
	return nil
}

func (p *ChatPipeline) assembleContext(ctx context.Context, t *turn, content string) error {
	history, err := p.store.ListRecentMessages(ctx, t.chat.ID, p.cfg.HistoryWindow)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	t.context = make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		t.context = append(t.context, llm.Message{Role: m.Role.Wire(), Content: m.Content})
	}
	t.context = append(t.context, llm.Message{Role: domain.MessageRoleUser.Wire(), Content: content})
	return nil
}

func (p *ChatPipeline) invoke(ctx context.Context, t *turn, provider llm.Provider, stream bool) error {
	upCtx := ctx
	if p.cfg.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		upCtx, cancel = context.WithTimeout(ctx, p.cfg.UpstreamTimeout)
		defer cancel()
	}

	req := llm.Request{
		Model:       t.model.Name,
		Messages:    t.context,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	}
	t.started = p.now()

	if stream {
		err := provider.Stream(upCtx, req, func(c llm.Chunk) error {
			t.thinking.WriteString(c.Reasoning)
			if c.Content != "" {
				t.content.WriteString(c.Content)
				t.emit(Event{Type: EventContent, Content: c.Content})
			}
			if c.Usage != nil {
				t.usage = *c.Usage
			}
			return nil
		})
		if err != nil {
			return err
		}
		t.emit(Event{Type: EventDone})
		return nil
	}

	res, err := provider.Complete(upCtx, req)
	if err != nil {
		return err
	}
	t.content.WriteString(res.Content)
	t.thinking.WriteString(res.Reasoning)
	t.usage = res.Usage
	if res.Content != "" {
		t.emit(Event{Type: EventContent, Content: res.Content})
	}
	t.emit(Event{Type: EventDone})
	return nil
}

// fail handles an aborted upstream call. A caller that went away after
// part of the reply arrived keeps that part; every other failure removes
// the user message written for this turn.
func (p *ChatPipeline) fail(ctx context.Context, t *turn, cause error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && t.content.Len() > 0 {
		slog.Info("client cancelled turn, keeping partial reply",
			"chat_id", t.chat.ID, "user_id", t.userID, "chars", t.content.Len())
		p.finalize(ctx, t)
		return ctxErr
	}

	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.PersistTimeout)
	defer cancel()
	if err := p.store.DeleteMessage(detached, t.userMsg.ID); err != nil {
		slog.Error("compensate user message", "error", err, "message_id", t.userMsg.ID, "chat_id", t.chat.ID)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	derr := domain.Upstream(cause)
	slog.Warn("upstream call failed", "error", cause, "chat_id", t.chat.ID, "model", t.model.Name,
		"upstream_status", domain.UpstreamStatusOf(cause))
	t.emit(Event{Type: EventError, Err: derr})
	return derr
}

// approximateUsage counts the turn locally when the provider reported no
// usage. The numbers follow the chat framing convention and need not match
// the provider's billing.
func approximateUsage(msgs []llm.Message, reply string) domain.Usage {
	framed := make([]tokenizer.Message, 0, len(msgs))
	for _, m := range msgs {
		framed = append(framed, tokenizer.Message{Role: m.Role, Content: m.Content})
	}

	prompt, err := tokenizer.CountMessageTokens(framed)
	if err != nil {
		slog.Warn("count prompt tokens", "error", err)
		prompt = 0
		for _, m := range msgs {
			prompt += tokenizer.Estimate(m.Content)
		}
	}
	completion := tokenizer.Estimate(reply)
	return domain.Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion}
}

// finalize stores the assistant reply, bumps the chat and debits credits in
// one transaction. Storage failures are logged; the reply is returned
// regardless.
func (p *ChatPipeline) finalize(ctx context.Context, t *turn) *domain.AIResponse {
	elapsed := p.now().Sub(t.started)
	duration := math.Round(elapsed.Seconds()*1000) / 1000

	reply := t.content.String()
	var reasoning *string
	if t.thinking.Len() > 0 {
		r := t.thinking.String()
		reasoning = &r
	}

	usage := t.usage
	if usage.IsZero() {
		usage = approximateUsage(t.context, reply+t.thinking.String())
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	resp := &domain.AIResponse{
		ChatID:    t.chat.ID,
		Content:   reply,
		Reasoning: reasoning,
		ModelID:   t.model.ID,
		Model:     t.model.Name,
		Duration:  duration,
		Usage:     usage,
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.PersistTimeout)
	defer cancel()

	modelName := t.model.Name
	cost := t.model.Cost(usage.TotalTokens)
	err := p.store.WithinTx(persistCtx, func(tx repository.Store) error {
		msg, err := tx.CreateMessage(persistCtx, domain.Message{
			ChatID:           t.chat.ID,
			Role:             domain.MessageRoleAssistant,
			Content:          reply,
			Reasoning:        reasoning,
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
			ResponseTime:     &duration,
			ModelID:          &t.model.ID,
			ModelName:        &modelName,
		})
		if err != nil {
			return fmt.Errorf("persist assistant message: %w", err)
		}
		resp.MessageID = msg.ID

		if err := tx.TouchChat(persistCtx, t.chat.ID, p.now()); err != nil {
			return fmt.Errorf("touch chat: %w", err)
		}
		if cost.IsPositive() {
			if _, err := tx.DebitUserCredits(persistCtx, t.userID, cost); err != nil {
				return fmt.Errorf("debit credits: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		resp.MessageID = 0
		slog.Error("finalize turn", "error", err, "chat_id", t.chat.ID, "user_id", t.userID)
		p.notifier.LogError(err, fmt.Sprintf("finalize turn chat=%d", t.chat.ID))
	}
	return resp
}

// IsCancellation reports whether err comes from the caller going away.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Package memstore is an in-memory repository.Store used in development
// when no database is configured, and by service tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/repository"
	"github.com/shopspring/decimal"
)

type state struct {
	nextID   int64
	users    map[int64]domain.User
	chats    map[int64]domain.Chat
	messages map[int64]domain.Message
	models   map[int64]domain.ModelConfig
}

func (st *state) clone() *state {
	cp := &state{
		nextID:   st.nextID,
		users:    make(map[int64]domain.User, len(st.users)),
		chats:    make(map[int64]domain.Chat, len(st.chats)),
		messages: make(map[int64]domain.Message, len(st.messages)),
		models:   make(map[int64]domain.ModelConfig, len(st.models)),
	}
	for k, v := range st.users {
		cp.users[k] = v
	}
	for k, v := range st.chats {
		cp.chats[k] = v
	}
	for k, v := range st.messages {
		cp.messages[k] = v
	}
	for k, v := range st.models {
		cp.models[k] = v
	}
	return cp
}

// Store keeps every table in maps guarded by one mutex. Transactions hold
// the mutex for their whole duration and restore a snapshot on error.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
	now  func() time.Time
}

func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		st: &state{
			users:    make(map[int64]domain.User),
			chats:    make(map[int64]domain.Chat),
			messages: make(map[int64]domain.Message),
			models:   make(map[int64]domain.ModelConfig),
		},
		now: time.Now,
	}
}

// SetClock replaces the time source used for created/updated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) id() int64 {
	s.st.nextID++
	return s.st.nextID
}

func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: s.st, inTx: true, now: s.now}); err != nil {
		*s.st = *snapshot
		return err
	}
	return ctx.Err()
}

func (s *Store) CreateUser(_ context.Context, u domain.NewUser) (*domain.User, error) {
	defer s.lock()()
	for _, existing := range s.st.users {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	now := s.now()
	user := domain.User{
		ID:           s.id(),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Role:         u.Role,
		Credits:      u.Credits,
		CreditsUsed:  decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.st.users[user.ID] = user
	return &user, nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	defer s.lock()()
	u, ok := s.st.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmailForUpdate(_ context.Context, email string) (*domain.User, error) {
	defer s.lock()()
	for _, u := range s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *Store) RecordLogin(_ context.Context, userID int64, ip string, at time.Time) error {
	defer s.lock()()
	u, ok := s.st.users[userID]
	if !ok {
		return nil
	}
	u.LastLoginAt = &at
	if ip != "" {
		u.LastLoginIP = &ip
	} else {
		u.LastLoginIP = nil
	}
	u.UpdatedAt = s.now()
	s.st.users[userID] = u
	return nil
}

func (s *Store) UpdateUserName(_ context.Context, userID int64, name string) (*domain.User, error) {
	defer s.lock()()
	u, ok := s.st.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Name = name
	u.UpdatedAt = s.now()
	s.st.users[userID] = u
	return &u, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, userID int64, hash string) error {
	defer s.lock()()
	u, ok := s.st.users[userID]
	if !ok {
		return nil
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now()
	s.st.users[userID] = u
	return nil
}

func (s *Store) DebitUserCredits(_ context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	defer s.lock()()
	u, ok := s.st.users[userID]
	if !ok {
		return decimal.Zero, domain.ErrUserNotFound
	}
	u.Credits = u.Credits.Sub(amount)
	u.CreditsUsed = u.CreditsUsed.Add(amount)
	u.UpdatedAt = s.now()
	s.st.users[userID] = u
	return u.Credits, nil
}

func (s *Store) GetUserStats(_ context.Context, userID int64) (*domain.UserStats, error) {
	defer s.lock()()
	stats := &domain.UserStats{}
	owned := make(map[int64]bool)
	for _, c := range s.st.chats {
		if c.UserID == userID {
			owned[c.ID] = true
			stats.ChatCount++
		}
	}
	for _, m := range s.st.messages {
		if owned[m.ChatID] {
			stats.MessageCount++
			stats.TotalTokens += int64(m.TotalTokens)
		}
	}
	return stats, nil
}

func (s *Store) CreateChat(_ context.Context, userID int64, title string, modelID *int64) (*domain.Chat, error) {
	defer s.lock()()
	if _, ok := s.st.users[userID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	now := s.now()
	c := domain.Chat{
		ID:        s.id(),
		UserID:    userID,
		Title:     title,
		ModelID:   modelID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.st.chats[c.ID] = c
	return &c, nil
}

func (s *Store) GetChatForUser(_ context.Context, chatID, userID int64) (*domain.Chat, error) {
	defer s.lock()()
	c, ok := s.st.chats[chatID]
	if !ok || c.UserID != userID {
		return nil, domain.ErrChatNotFound
	}
	return &c, nil
}

func (s *Store) ListChatsByUser(_ context.Context, userID int64, limit, offset int) ([]domain.Chat, error) {
	defer s.lock()()
	chats := make([]domain.Chat, 0)
	for _, c := range s.st.chats {
		if c.UserID == userID {
			chats = append(chats, c)
		}
	}
	sort.Slice(chats, func(i, j int) bool {
		if !chats[i].UpdatedAt.Equal(chats[j].UpdatedAt) {
			return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
		}
		return chats[i].ID > chats[j].ID
	})
	return page(chats, limit, offset), nil
}

func (s *Store) CountChatsByUser(_ context.Context, userID int64) (int64, error) {
	defer s.lock()()
	var n int64
	for _, c := range s.st.chats {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) updateChat(chatID, userID int64, apply func(*domain.Chat)) (*domain.Chat, error) {
	c, ok := s.st.chats[chatID]
	if !ok || c.UserID != userID {
		return nil, domain.ErrChatNotFound
	}
	apply(&c)
	c.UpdatedAt = s.now()
	s.st.chats[chatID] = c
	return &c, nil
}

func (s *Store) UpdateChatTitle(_ context.Context, chatID, userID int64, title string) (*domain.Chat, error) {
	defer s.lock()()
	return s.updateChat(chatID, userID, func(c *domain.Chat) { c.Title = title })
}

func (s *Store) UpdateChatModel(_ context.Context, chatID, userID int64, modelID *int64) (*domain.Chat, error) {
	defer s.lock()()
	return s.updateChat(chatID, userID, func(c *domain.Chat) { c.ModelID = modelID })
}

func (s *Store) TouchChat(_ context.Context, chatID int64, at time.Time) error {
	defer s.lock()()
	c, ok := s.st.chats[chatID]
	if !ok {
		return nil
	}
	c.UpdatedAt = at
	s.st.chats[chatID] = c
	return nil
}

func (s *Store) DeleteChat(_ context.Context, chatID, userID int64) error {
	defer s.lock()()
	c, ok := s.st.chats[chatID]
	if !ok || c.UserID != userID {
		return domain.ErrChatNotFound
	}
	delete(s.st.chats, chatID)
	for id, m := range s.st.messages {
		if m.ChatID == chatID {
			delete(s.st.messages, id)
		}
	}
	return nil
}

func (s *Store) CreateMessage(_ context.Context, m domain.Message) (*domain.Message, error) {
	defer s.lock()()
	if _, ok := s.st.chats[m.ChatID]; !ok {
		return nil, domain.ErrChatNotFound
	}
	m.ID = s.id()
	m.CreatedAt = s.now()
	s.st.messages[m.ID] = m
	return &m, nil
}

func (s *Store) DeleteMessage(_ context.Context, id int64) error {
	defer s.lock()()
	delete(s.st.messages, id)
	return nil
}

// chatMessages returns the chat's messages ordered by (created_at, id).
func (s *Store) chatMessages(chatID int64) []domain.Message {
	msgs := make([]domain.Message, 0)
	for _, m := range s.st.messages {
		if m.ChatID == chatID {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
	return msgs
}

func (s *Store) ListRecentMessages(_ context.Context, chatID int64, limit int) ([]domain.Message, error) {
	defer s.lock()()
	msgs := s.chatMessages(chatID)
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (s *Store) ListMessages(_ context.Context, chatID int64) ([]domain.Message, error) {
	defer s.lock()()
	return s.chatMessages(chatID), nil
}

func (s *Store) CountMessages(_ context.Context, chatID int64) (int64, error) {
	defer s.lock()()
	var n int64
	for _, m := range s.st.messages {
		if m.ChatID == chatID {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteChatMessages(_ context.Context, chatID int64) (int64, error) {
	defer s.lock()()
	var n int64
	for id, m := range s.st.messages {
		if m.ChatID == chatID {
			delete(s.st.messages, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) GetModelConfig(_ context.Context, id int64) (*domain.ModelConfig, error) {
	defer s.lock()()
	m, ok := s.st.models[id]
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	return &m, nil
}

func (s *Store) sortedModels(enabledOnly bool) []domain.ModelConfig {
	models := make([]domain.ModelConfig, 0, len(s.st.models))
	for _, m := range s.st.models {
		if enabledOnly && !m.Enabled {
			continue
		}
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].SortOrder != models[j].SortOrder {
			return models[i].SortOrder < models[j].SortOrder
		}
		return models[i].ID < models[j].ID
	})
	return models
}

func (s *Store) FirstEnabledModelConfig(_ context.Context) (*domain.ModelConfig, error) {
	defer s.lock()()
	models := s.sortedModels(true)
	if len(models) == 0 {
		return nil, domain.ErrNoEnabledModel
	}
	return &models[0], nil
}

func (s *Store) ListModelConfigs(_ context.Context, enabledOnly bool) ([]domain.ModelConfig, error) {
	defer s.lock()()
	return s.sortedModels(enabledOnly), nil
}

func (s *Store) findModelByName(name string) (domain.ModelConfig, bool) {
	for _, m := range s.st.models {
		if m.Name == name {
			return m, true
		}
	}
	return domain.ModelConfig{}, false
}

func (s *Store) CreateModelConfig(_ context.Context, m domain.ModelConfig) (*domain.ModelConfig, error) {
	defer s.lock()()
	if _, ok := s.findModelByName(m.Name); ok {
		return nil, domain.ErrModelNameTaken
	}
	now := s.now()
	m.ID = s.id()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.st.models[m.ID] = m
	return &m, nil
}

func (s *Store) UpdateModelConfig(_ context.Context, id int64, upd domain.ModelConfigUpdate) (*domain.ModelConfig, error) {
	defer s.lock()()
	m, ok := s.st.models[id]
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	if upd.DisplayName != nil {
		m.DisplayName = *upd.DisplayName
	}
	if upd.BaseURL != nil {
		m.BaseURL = *upd.BaseURL
	}
	if upd.APIKey != nil {
		m.APIKey = *upd.APIKey
	}
	if upd.Enabled != nil {
		m.Enabled = *upd.Enabled
	}
	if upd.SortOrder != nil {
		m.SortOrder = *upd.SortOrder
	}
	if upd.CreditsPer1K != nil {
		m.CreditsPer1K = *upd.CreditsPer1K
	}
	m.UpdatedAt = s.now()
	s.st.models[id] = m
	return &m, nil
}

func (s *Store) UpsertModelConfigByName(_ context.Context, m domain.ModelConfig) (*domain.ModelConfig, error) {
	defer s.lock()()
	now := s.now()
	if existing, ok := s.findModelByName(m.Name); ok {
		existing.Provider = m.Provider
		existing.BaseURL = m.BaseURL
		existing.APIKey = m.APIKey
		existing.UpdatedAt = now
		s.st.models[existing.ID] = existing
		return &existing, nil
	}
	m.ID = s.id()
	m.Enabled = true
	m.SortOrder = 0
	m.CreatedAt = now
	m.UpdatedAt = now
	s.st.models[m.ID] = m
	return &m, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

var _ repository.Store = (*Store)(nil)

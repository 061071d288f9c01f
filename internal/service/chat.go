package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/refrain2333/link-ai/internal/config"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/repository"
)

type ChatPage struct {
	Items    []domain.Chat `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

type ChatService struct {
	store  repository.Store
	models *ModelService
}

func NewChatService(store repository.Store, models *ModelService) *ChatService {
	return &ChatService{store: store, models: models}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > config.MaxTitleLength {
		return "", domain.Validation("title", fmt.Sprintf("title must be at most %d characters", config.MaxTitleLength))
	}
	return title, nil
}

func (s *ChatService) ListChats(ctx context.Context, userID int64, page, pageSize int) (*ChatPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = config.DefaultChatsPerPage
	}
	if pageSize > config.MaxChatsPerPage {
		pageSize = config.MaxChatsPerPage
	}

	chats, err := s.store.ListChatsByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	total, err := s.store.CountChatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count chats: %w", err)
	}
	return &ChatPage{Items: chats, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *ChatService) CreateChat(ctx context.Context, userID int64, title string, modelID *int64) (*domain.Chat, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = config.DefaultChatTitle
	}
	if modelID != nil {
		if err := s.requireEnabledModel(ctx, *modelID); err != nil {
			return nil, err
		}
	}
	return s.store.CreateChat(ctx, userID, title, modelID)
}

func (s *ChatService) GetChat(ctx context.Context, userID, chatID int64) (*domain.ChatWithMessages, error) {
	chat, err := s.store.GetChatForUser(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return &domain.ChatWithMessages{Chat: *chat, Messages: msgs}, nil
}

func (s *ChatService) RenameChat(ctx context.Context, userID, chatID int64, title string) (*domain.Chat, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, domain.Validation("title", "title is required")
	}
	return s.store.UpdateChatTitle(ctx, chatID, userID, title)
}

func (s *ChatService) SetChatModel(ctx context.Context, userID, chatID, modelID int64) (*domain.Chat, error) {
	if _, err := s.store.GetChatForUser(ctx, chatID, userID); err != nil {
		return nil, err
	}
	if err := s.requireEnabledModel(ctx, modelID); err != nil {
		return nil, err
	}
	return s.store.UpdateChatModel(ctx, chatID, userID, &modelID)
}

func (s *ChatService) DeleteChat(ctx context.Context, userID, chatID int64) error {
	return s.store.DeleteChat(ctx, chatID, userID)
}

func (s *ChatService) ClearMessages(ctx context.Context, userID, chatID int64) (int64, error) {
	if _, err := s.store.GetChatForUser(ctx, chatID, userID); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteChatMessages(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("clear messages: %w", err)
	}
	return n, nil
}

func (s *ChatService) requireEnabledModel(ctx context.Context, modelID int64) error {
	m, err := s.store.GetModelConfig(ctx, modelID)
	if err != nil {
		return err
	}
	if !m.Enabled {
		return domain.ErrModelNotFound
	}
	return nil
}

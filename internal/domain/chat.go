package domain

import "time"

type Chat struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	ModelID   *int64    `json:"modelId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MessageRole string

const (
	MessageRoleSystem    MessageRole = "SYSTEM"
	MessageRoleUser      MessageRole = "USER"
	MessageRoleAssistant MessageRole = "ASSISTANT"
)

// Wire returns the lower-case role name used by model providers.
func (r MessageRole) Wire() string {
	switch r {
	case MessageRoleSystem:
		return "system"
	case MessageRoleAssistant:
		return "assistant"
	default:
		return "user"
	}
}

type Message struct {
	ID               int64       `json:"id"`
	ChatID           int64       `json:"chatId"`
	Role             MessageRole `json:"role"`
	Content          string      `json:"content"`
	Reasoning        *string     `json:"reasoning"`
	PromptTokens     int         `json:"promptTokens"`
	CompletionTokens int         `json:"completionTokens"`
	TotalTokens      int         `json:"totalTokens"`
	ResponseTime     *float64    `json:"responseTime"`
	ModelID          *int64      `json:"modelId"`
	ModelName        *string     `json:"modelName"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// ChatWithMessages is a chat together with its messages, oldest first.
type ChatWithMessages struct {
	Chat
	Messages []Message `json:"messages"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// ModelConfig is an upstream model available to chats.
type ModelConfig struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	DisplayName  string          `json:"displayName"`
	Provider     Provider        `json:"provider"`
	BaseURL      string          `json:"baseUrl,omitempty"`
	APIKey       string          `json:"-"`
	Enabled      bool            `json:"enabled"`
	SortOrder    int             `json:"sortOrder"`
	CreditsPer1K decimal.Decimal `json:"creditsPer1k"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (m *ModelConfig) IsFree() bool {
	return m.CreditsPer1K.IsZero()
}

// Cost returns the credit cost of totalTokens on this model.
func (m *ModelConfig) Cost(totalTokens int) decimal.Decimal {
	if m.IsFree() || totalTokens <= 0 {
		return decimal.Zero
	}
	return m.CreditsPer1K.Mul(decimal.NewFromInt(int64(totalTokens))).Div(decimal.NewFromInt(1000))
}

// ModelConfigUpdate holds optional fields for a partial update.
type ModelConfigUpdate struct {
	DisplayName  *string
	BaseURL      *string
	APIKey       *string
	Enabled      *bool
	SortOrder    *int
	CreditsPer1K *decimal.Decimal
}

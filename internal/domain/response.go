package domain

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

func (u Usage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0
}

// AIResponse is the result of one conversational turn.
type AIResponse struct {
	ChatID    int64   `json:"chatId"`
	MessageID int64   `json:"messageId"`
	Content   string  `json:"content"`
	Reasoning *string `json:"reasoning"`
	ModelID   int64   `json:"modelId"`
	Model     string  `json:"model"`
	Duration  float64 `json:"duration"`
	Usage     Usage   `json:"usage"`
}

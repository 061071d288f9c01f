// Package llm holds the upstream model clients used by the chat pipeline.
package llm

import (
	"context"
	"fmt"

	"github.com/refrain2333/link-ai/internal/domain"
)

// Message is one conversation turn in provider wire form ("system",
// "user" or "assistant").
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Chunk is one streamed increment. Usage is set only on chunks that carry
// usage counters.
type Chunk struct {
	Content   string
	Reasoning string
	Usage     *domain.Usage
}

type Result struct {
	Content   string
	Reasoning string
	Usage     domain.Usage
}

// Provider talks to one upstream model API.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Result, error)
	// Stream calls fn for every chunk in arrival order. An error returned by
	// fn stops the stream and is returned unchanged.
	Stream(ctx context.Context, req Request, fn func(Chunk) error) error
}

// StatusError is a non-2xx response from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) UpstreamStatus() int { return e.StatusCode }

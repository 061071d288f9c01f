// Package tokenizer counts text tokens for usage accounting.
//
// Counts are produced by a BPE encoder and are an approximation of what a
// model provider bills: they match OpenAI models using the same encoding
// and are only indicative for other providers.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const (
	DefaultEncoding = "cl100k_base"

	// Chat framing overhead per message and for the primed assistant reply.
	tokensPerMessage = 3
	tokensReplyPrime = 3
)

var (
	mu       sync.RWMutex
	encoders = map[string]*tiktoken.Tiktoken{}
	loadOnce sync.Once

	defaultEncoding = DefaultEncoding
)

// Message is a role/content pair as sent to a chat model.
type Message struct {
	Role    string
	Content string
}

// SetDefaultEncoding changes the encoding used by CountTokens and
// CountMessageTokens. It is meant to be called once at startup.
func SetDefaultEncoding(name string) {
	if name == "" {
		name = DefaultEncoding
	}
	mu.Lock()
	defaultEncoding = name
	mu.Unlock()
}

// Encoder returns the cached encoder for name, building it on first use.
func Encoder(name string) (*tiktoken.Tiktoken, error) {
	loadOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	mu.RLock()
	enc, ok := encoders[name]
	mu.RUnlock()
	if ok {
		return enc, nil
	}

	mu.Lock()
	defer mu.Unlock()
	if enc, ok := encoders[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", name, err)
	}
	encoders[name] = enc
	return enc, nil
}

// Release drops all cached encoders. The next call rebuilds them.
func Release() {
	mu.Lock()
	encoders = map[string]*tiktoken.Tiktoken{}
	mu.Unlock()
}

func currentEncoding() string {
	mu.RLock()
	defer mu.RUnlock()
	return defaultEncoding
}

// CountTokens returns the number of tokens in text under the default encoding.
func CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := Encoder(currentEncoding())
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountMessageTokens counts a chat transcript the way chat models frame it:
// a fixed overhead per message plus its role and content, plus the tokens
// priming the assistant reply.
func CountMessageTokens(messages []Message) (int, error) {
	total := 0
	for _, m := range messages {
		role, err := CountTokens(m.Role)
		if err != nil {
			return 0, err
		}
		content, err := CountTokens(m.Content)
		if err != nil {
			return 0, err
		}
		total += tokensPerMessage + role + content
	}
	return total + tokensReplyPrime, nil
}

// Estimate is CountTokens falling back to a four-bytes-per-token heuristic
// when the encoder is unavailable.
func Estimate(text string) int {
	n, err := CountTokens(text)
	if err != nil {
		return (len(text) + 3) / 4
	}
	return n
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/refrain2333/link-ai/internal/domain"
	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, baseURL, apiKey string) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// geminiContents splits system turns into the system instruction and maps
// the rest onto user/model contents.
func geminiContents(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
			continue
		case "assistant":
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleUser),
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}
	return contents, cfg
}

// geminiChunk extracts text, thoughts and usage from one response.
func geminiChunk(resp *genai.GenerateContentResponse) Chunk {
	var out Chunk
	if resp == nil {
		return out
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var text, thought strings.Builder
		for _, p := range resp.Candidates[0].Content.Parts {
			if p == nil {
				continue
			}
			if p.Thought {
				thought.WriteString(p.Text)
			} else {
				text.WriteString(p.Text)
			}
		}
		out.Content = text.String()
		out.Reasoning = thought.String()
	}
	if um := resp.UsageMetadata; um != nil && (um.PromptTokenCount > 0 || um.CandidatesTokenCount > 0) {
		completion := int(um.CandidatesTokenCount + um.ThoughtsTokenCount)
		out.Usage = &domain.Usage{
			PromptTokens:     int(um.PromptTokenCount),
			CompletionTokens: completion,
			TotalTokens:      int(um.PromptTokenCount) + completion,
		}
	}
	return out
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	return err
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Result, error) {
	contents, cfg := geminiContents(req)
	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, geminiError(err)
	}

	chunk := geminiChunk(resp)
	result := &Result{Content: chunk.Content, Reasoning: chunk.Reasoning}
	if chunk.Usage != nil {
		result.Usage = *chunk.Usage
	}
	return result, nil
}

func (c *GeminiClient) Stream(ctx context.Context, req Request, fn func(Chunk) error) error {
	contents, cfg := geminiContents(req)
	for resp, err := range c.client.Models.GenerateContentStream(ctx, req.Model, contents, cfg) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return geminiError(err)
		}
		chunk := geminiChunk(resp)
		if chunk.Content == "" && chunk.Reasoning == "" && chunk.Usage == nil {
			continue
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return ctx.Err()
}

var _ Provider = (*GeminiClient)(nil)

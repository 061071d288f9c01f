package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"

	"github.com/refrain2333/link-ai/internal/domain"
)

// Registry hands out provider clients per model config. A model whose
// provider, base URL or credential changed gets a fresh client and the old
// one is dropped.
type Registry struct {
	httpClient *http.Client

	mu      sync.Mutex
	clients map[int64]registryEntry
}

type registryEntry struct {
	fingerprint string
	provider    Provider
}

func NewRegistry(httpClient *http.Client) *Registry {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Registry{httpClient: httpClient, clients: make(map[int64]registryEntry)}
}

func fingerprint(m *domain.ModelConfig) string {
	sum := sha256.Sum256([]byte(string(m.Provider) + "\x00" + m.BaseURL + "\x00" + m.APIKey))
	return hex.EncodeToString(sum[:])
}

func (r *Registry) For(ctx context.Context, m *domain.ModelConfig) (Provider, error) {
	fp := fingerprint(m)

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.clients[m.ID]; ok && e.fingerprint == fp {
		return e.provider, nil
	}

	var p Provider
	switch m.Provider {
	case domain.ProviderOpenAI, "":
		p = NewOpenAIClient(m.BaseURL, m.APIKey, r.httpClient)
	case domain.ProviderGemini:
		// The genai client outlives the request that first needed it.
		gc, err := NewGeminiClient(context.WithoutCancel(ctx), m.BaseURL, m.APIKey)
		if err != nil {
			return nil, err
		}
		p = gc
	default:
		return nil, fmt.Errorf("unknown provider %q", m.Provider)
	}

	r.clients[m.ID] = registryEntry{fingerprint: fp, provider: p}
	return p, nil
}

// Len reports the number of cached clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Package aiclient provides thin HTTP adapters for the AI assistants probed
// during visibility runs. Each adapter sends a single user query and returns
// the assistant's raw text answer.
package aiclient

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/pkg/httpretry"
)

const (
	// Temperature is kept low so repeated runs stay comparable.
	Temperature = 0.1
	// MaxTokens caps the answer length per query.
	MaxTokens = 800
	// CallTimeout bounds a single model call.
	CallTimeout = 30 * time.Second
)

// Adapter asks one AI assistant one question.
type Adapter interface {
	ID() domain.AIModel
	Ask(ctx context.Context, query string) (string, error)
}

// Registry holds the configured adapters keyed by model.
type Registry struct {
	adapters map[domain.AIModel]Adapter
}

// NewRegistry builds a registry from the environment: an adapter is active
// iff its API key is set.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[domain.AIModel]Adapter)}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		r.adapters[domain.ModelOpenAI] = NewOpenAIAdapter(key)
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		r.adapters[domain.ModelAnthropic] = NewAnthropicAdapter(key)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		r.adapters[domain.ModelGemini] = NewGeminiAdapter(key)
	}
	return r
}

// NewRegistryWith builds a registry from explicit adapters, for wiring and tests.
func NewRegistryWith(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.AIModel]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.ID()] = a
	}
	return r
}

// ActiveModels returns the models with a configured adapter, in canonical
// order. In dry-run mode every known model is considered active since no
// API call will be made.
func (r *Registry) ActiveModels(dryRun bool) []domain.AIModel {
	if dryRun {
		return domain.AllModels()
	}
	var models []domain.AIModel
	for _, m := range domain.AllModels() {
		if _, ok := r.adapters[m]; ok {
			models = append(models, m)
		}
	}
	return models
}

// Adapter returns the adapter for a model, or nil if not configured.
func (r *Registry) Adapter(model domain.AIModel) Adapter {
	return r.adapters[model]
}

// newHTTPClient is shared by all adapters: 429 and 5xx answers are retried
// with backoff before the error surfaces to the runner.
func newHTTPClient() httpretry.Doer {
	return httpretry.New(&http.Client{Timeout: CallTimeout}, 2)
}

func apiError(model domain.AIModel, status int, msg string) error {
	if msg == "" {
		return fmt.Errorf("%s: unexpected status %d", model, status)
	}
	return fmt.Errorf("%s: API error: %s", model, msg)
}

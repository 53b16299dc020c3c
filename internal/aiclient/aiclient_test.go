package aiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eurkai/prospecting/internal/domain"
)

type stubAdapter struct {
	id domain.AIModel
}

func (s stubAdapter) ID() domain.AIModel { return s.id }
func (s stubAdapter) Ask(ctx context.Context, query string) (string, error) {
	return "", nil
}

func TestRegistry_ActiveModels(t *testing.T) {
	r := NewRegistryWith(stubAdapter{id: domain.ModelAnthropic})

	models := r.ActiveModels(false)
	if len(models) != 1 || models[0] != domain.ModelAnthropic {
		t.Errorf("ActiveModels(false) = %v, want [anthropic]", models)
	}

	// Dry run probes every model regardless of configured keys.
	models = r.ActiveModels(true)
	if len(models) != 3 {
		t.Errorf("ActiveModels(true) = %v, want all 3 models", models)
	}
}

func TestRegistry_CanonicalOrder(t *testing.T) {
	r := NewRegistryWith(
		stubAdapter{id: domain.ModelGemini},
		stubAdapter{id: domain.ModelOpenAI},
		stubAdapter{id: domain.ModelAnthropic},
	)
	models := r.ActiveModels(false)
	want := []domain.AIModel{domain.ModelOpenAI, domain.ModelAnthropic, domain.ModelGemini}
	for i := range want {
		if models[i] != want[i] {
			t.Fatalf("ActiveModels order = %v, want %v", models, want)
		}
	}
}

func TestOpenAIAdapter_Ask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature != 0.1 || req.MaxTokens != 800 {
			t.Errorf("temperature=%v maxTokens=%d", req.Temperature, req.MaxTokens)
		}
		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []struct {
				Message      openAIMessage `json:"message"`
				FinishReason string        `json:"finish_reason"`
			}{{Message: openAIMessage{Role: "assistant", Content: "Je recommande Toitures Bernard."}}},
		})
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter("test-key")
	adapter.baseURL = srv.URL

	answer, err := adapter.Ask(context.Background(), "Meilleur couvreur à Lyon ?")
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if answer != "Je recommande Toitures Bernard." {
		t.Errorf("answer = %q", answer)
	}
}

func TestOpenAIAdapter_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter("test-key")
	adapter.baseURL = srv.URL

	_, err := adapter.Ask(context.Background(), "q")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Ask error = %v, want rate limited", err)
	}
}

func TestAnthropicAdapter_Ask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version = %q", got)
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "claude-haiku-4-5-20251001" {
			t.Errorf("model = %q", req.Model)
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"Couverture Sud est bien notée."}]}`))
	}))
	defer srv.Close()

	adapter := NewAnthropicAdapter("test-key")
	adapter.baseURL = srv.URL

	answer, err := adapter.Ask(context.Background(), "Meilleur couvreur à Lyon ?")
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if answer != "Couverture Sud est bien notée." {
		t.Errorf("answer = %q", answer)
	}
}

func TestGeminiAdapter_Ask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-1.5-flash:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Toitures Bernard, sans hésiter."}]}}]}`))
	}))
	defer srv.Close()

	adapter := NewGeminiAdapter("test-key")
	adapter.baseURL = srv.URL

	answer, err := adapter.Ask(context.Background(), "Meilleur couvreur à Lyon ?")
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if answer != "Toitures Bernard, sans hésiter." {
		t.Errorf("answer = %q", answer)
	}
}

func TestGeminiAdapter_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	adapter := NewGeminiAdapter("test-key")
	adapter.baseURL = srv.URL

	if _, err := adapter.Ask(context.Background(), "q"); err == nil {
		t.Error("expected error on empty candidates")
	}
}

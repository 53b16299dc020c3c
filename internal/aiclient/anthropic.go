package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/pkg/httpretry"
)

const (
	anthropicModel   = "claude-haiku-4-5-20251001"
	anthropicVersion = "2023-06-01"
)

// AnthropicAdapter calls the Anthropic messages API.
type AnthropicAdapter struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient httpretry.Doer
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicAdapter(apiKey string) *AnthropicAdapter {
	return &AnthropicAdapter{
		apiKey:     apiKey,
		model:      anthropicModel,
		baseURL:    "https://api.anthropic.com/v1",
		httpClient: newHTTPClient(),
	}
}

func (a *AnthropicAdapter) ID() domain.AIModel { return domain.ModelAnthropic }

func (a *AnthropicAdapter) Ask(ctx context.Context, query string) (string, error) {
	request := anthropicRequest{
		Model:       a.model,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: query}},
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body))
	}
	if response.Error != nil {
		return "", apiError(domain.ModelAnthropic, resp.StatusCode, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(domain.ModelAnthropic, resp.StatusCode, "")
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("%s: empty content in response", domain.ModelAnthropic)
	}
	return response.Content[0].Text, nil
}

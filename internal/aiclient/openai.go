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

const openAIModel = "gpt-4o-mini"

// OpenAIAdapter calls the OpenAI chat completions API.
type OpenAIAdapter struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient httpretry.Doer
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{
		apiKey:     apiKey,
		model:      openAIModel,
		baseURL:    "https://api.openai.com/v1",
		httpClient: newHTTPClient(),
	}
}

func (o *OpenAIAdapter) ID() domain.AIModel { return domain.ModelOpenAI }

func (o *OpenAIAdapter) Ask(ctx context.Context, query string) (string, error) {
	request := openAIRequest{
		Model:       o.model,
		Messages:    []openAIMessage{{Role: "user", Content: query}},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body))
	}
	if response.Error != nil {
		return "", apiError(domain.ModelOpenAI, resp.StatusCode, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(domain.ModelOpenAI, resp.StatusCode, "")
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", domain.ModelOpenAI)
	}
	return response.Choices[0].Message.Content, nil
}

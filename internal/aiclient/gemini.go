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

const geminiModel = "gemini-1.5-flash"

// GeminiAdapter calls the Google Generative Language API.
type GeminiAdapter struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient httpretry.Doer
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func NewGeminiAdapter(apiKey string) *GeminiAdapter {
	return &GeminiAdapter{
		apiKey:     apiKey,
		model:      geminiModel,
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		httpClient: newHTTPClient(),
	}
}

func (g *GeminiAdapter) ID() domain.AIModel { return domain.ModelGemini }

func (g *GeminiAdapter) Ask(ctx context.Context, query string) (string, error) {
	request := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: query}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     Temperature,
			MaxOutputTokens: MaxTokens,
		},
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body))
	}
	if response.Error != nil {
		return "", apiError(domain.ModelGemini, resp.StatusCode, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(domain.ModelGemini, resp.StatusCode, "")
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s: empty candidates in response", domain.ModelGemini)
	}
	return response.Candidates[0].Content.Parts[0].Text, nil
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// OpenAIGenerator calls an OpenAI-compatible /v1/chat/completions endpoint.
type OpenAIGenerator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// OpenAIGeneratorConfig configures the chat-completions client.
type OpenAIGeneratorConfig struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewOpenAIGenerator creates a chat-completions client.
func NewOpenAIGenerator(cfg OpenAIGeneratorConfig) *OpenAIGenerator {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIGenerator{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     os.Getenv(cfg.APIKeyEnv),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends the prompt as a single user message and returns the first
// choice's text plus total token usage. All failures are *GenerationError.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt, model string) (*Generation, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("marshal request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GenerationError{Err: fmt.Errorf("backend returned %s", resp.Status)}
	}
	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return nil, &GenerationError{Err: fmt.Errorf("no choices returned")}
	}
	return &Generation{Text: out.Choices[0].Message.Content, TokensUsed: out.Usage.TotalTokens}, nil
}

// Close is a no-op for the HTTP client.
func (g *OpenAIGenerator) Close() error { return nil }

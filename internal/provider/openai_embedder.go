package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// OpenAIEmbedder calls an OpenAI-compatible /v1/embeddings endpoint.
// One instance is shared by every concurrent pipeline run, so the observed
// dimension is an atomic.
type OpenAIEmbedder struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions atomic.Int64
}

// OpenAIEmbedderConfig configures the embeddings client.
type OpenAIEmbedderConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewOpenAIEmbedder creates an embeddings client. The API key is read from the
// environment variable named by APIKeyEnv; an empty key is allowed for
// backends that do not authenticate (e.g. a local inference server).
func NewOpenAIEmbedder(cfg OpenAIEmbedderConfig) *OpenAIEmbedder {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIEmbedder{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     os.Getenv(cfg.APIKeyEnv),
		model:      model,
	}
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for text. All failures, including
// non-2xx statuses and malformed bodies, are returned as *EmbeddingError.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Input: text, Model: e.model})
	if err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("marshal request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &EmbeddingError{Err: fmt.Errorf("backend returned %s", resp.Status)}
	}
	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, &EmbeddingError{Err: fmt.Errorf("no embedding returned")}
	}
	vec := out.Data[0].Embedding
	e.dimensions.CompareAndSwap(0, int64(len(vec)))
	return vec, nil
}

// Dimensions returns the dimensionality observed on the first successful
// Embed call, or 0 before any call succeeded.
func (e *OpenAIEmbedder) Dimensions() int { return int(e.dimensions.Load()) }

// Close is a no-op for the HTTP client.
func (e *OpenAIEmbedder) Close() error { return nil }

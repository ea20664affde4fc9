package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
)

// MockEmbedder is a deterministic embedder for tests and offline runs. It
// derives a fixed-dimension unit vector from the text hash, so the same text
// always gets the same embedding.
type MockEmbedder struct {
	dimensions int
	FailWith   error // when set, Embed returns this wrapped in *EmbeddingError
}

// NewMockEmbedder returns an embedder producing deterministic embeddings of
// the given dimensions (384 when non-positive, matching common MiniLM models).
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a normalized deterministic embedding based on the text hash.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.FailWith != nil {
		return nil, &EmbeddingError{Err: e.FailWith}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := int(h.Sum32())
	emb := make([]float32, e.dimensions)
	for i := range emb {
		emb[i] = float32(math.Sin(float64(seed*(i+1)))*0.1 + 0.01)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		norm := 1.0 / math.Sqrt(sum)
		for i := range emb {
			emb[i] *= float32(norm)
		}
	}
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op.
func (e *MockEmbedder) Close() error { return nil }

// MockGenerator is a canned generator for tests. It records the last prompt it
// received and answers with a fixed text and token count.
type MockGenerator struct {
	Answer     string
	Tokens     int
	FailWith   error // when set, Generate returns this wrapped in *GenerationError
	LastPrompt string
	LastModel  string
	Calls      int
}

// Generate returns the canned answer, recording the prompt and model.
func (g *MockGenerator) Generate(ctx context.Context, prompt, model string) (*Generation, error) {
	g.Calls++
	g.LastPrompt = prompt
	g.LastModel = model
	if g.FailWith != nil {
		return nil, &GenerationError{Err: g.FailWith}
	}
	answer := g.Answer
	if answer == "" {
		answer = fmt.Sprintf("mock answer to %q", model)
	}
	return &Generation{Text: answer, TokensUsed: g.Tokens}, nil
}

// Close is a no-op.
func (g *MockGenerator) Close() error { return nil }

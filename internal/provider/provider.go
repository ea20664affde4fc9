// Package provider defines the embedding and generation provider contracts
// and OpenAI-compatible HTTP implementations of both.
package provider

import "context"

// Embedder converts text into a fixed-length vector. Dimensionality is
// provider-defined and must be uniform for the lifetime of one index instance.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}

// Generation is the outcome of one generation call.
type Generation struct {
	Text       string
	TokensUsed int
}

// Generator produces natural-language text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (*Generation, error)
	Close() error
}

// EmbeddingError marks a failure in the embedding provider. The pipeline
// surfaces it to the caller unmodified; no local recovery is attempted.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return "embedding failed: " + e.Err.Error() }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError marks a failure in the generation provider.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

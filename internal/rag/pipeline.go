package rag

import (
	"context"
	"fmt"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/provider"
	"github.com/hyperjump/kotae/internal/vector"
	"go.uber.org/zap"
)

// Pipeline answers a question in one sequential pass: validate, embed, search,
// assemble prompt, generate. Provider failures abort the run and propagate
// unmodified; the pipeline never retries. Cancellation is whatever deadline
// the caller puts on ctx.
type Pipeline struct {
	index     *vector.Index
	embedder  provider.Embedder
	generator provider.Generator
	defaults  models.QueryDefaults
	logger    *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger for debug events.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline with the given dependencies. Instances are
// constructed once at service start and injected; tests build fresh ones.
func NewPipeline(
	index *vector.Index,
	embedder provider.Embedder,
	generator provider.Generator,
	defaults models.QueryDefaults,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		index:     index,
		embedder:  embedder,
		generator: generator,
		defaults:  defaults,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the full pipeline for one request. An empty retrieval result
// is not an error: the generator is still called with a no-context prompt.
func (p *Pipeline) Process(ctx context.Context, req *models.QueryRequest) (*models.QueryResult, error) {
	if err := req.Validate(p.defaults); err != nil {
		return nil, err
	}

	queryVec, err := p.embedder.Embed(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := p.index.Query(queryVec, req.TopK, *req.ScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if p.logger != nil {
		p.logger.Debug("retrieved context",
			zap.Int("hits", len(hits)),
			zap.Int("top_k", req.TopK),
			zap.Float64("score_threshold", *req.ScoreThreshold),
		)
	}

	snippets := make([]string, len(hits))
	retrieved := make([]models.RetrievedContext, len(hits))
	var scoreSum float64
	for i, h := range hits {
		if s, ok := h.Attributes["content"].(string); ok {
			snippets[i] = s
		}
		retrieved[i] = models.RetrievedContext{ID: h.ID, Score: h.Score, Attributes: h.Attributes}
		scoreSum += h.Score
	}

	prompt := AssemblePrompt(req.Text, snippets)
	gen, err := p.generator.Generate(ctx, prompt, req.Model)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	avg := 0.0
	if len(hits) > 0 {
		avg = scoreSum / float64(len(hits))
	}
	return &models.QueryResult{
		Retrieved:     retrieved,
		Answer:        gen.Text,
		TokensUsed:    gen.TokensUsed,
		ContextCount:  len(hits),
		AvgSimilarity: avg,
	}, nil
}

package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest marks a query request rejected before any provider call.
var ErrInvalidRequest = errors.New("invalid request")

// QueryRequest is a retrieval-augmented question. ScoreThreshold is a pointer
// so an explicit 0 is distinct from unset (0 is a meaningful threshold).
type QueryRequest struct {
	Text           string   `json:"text"`
	TopK           int      `json:"top_k,omitempty"`
	ScoreThreshold *float64 `json:"score_threshold,omitempty"`
	Model          string   `json:"model,omitempty"`
}

// QueryDefaults are fallback values applied by Validate for unset fields.
type QueryDefaults struct {
	TopK           int
	ScoreThreshold float64
	Model          string
}

// Validate checks the request and applies defaults for unset fields.
// Returns an error wrapping ErrInvalidRequest if the text is empty, TopK is
// negative or zero after defaulting, or the score threshold is outside [-1, 1].
func (q *QueryRequest) Validate(defaults QueryDefaults) error {
	if q.Text == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrInvalidRequest)
	}
	if q.TopK == 0 {
		q.TopK = defaults.TopK
	}
	if q.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidRequest, q.TopK)
	}
	if q.ScoreThreshold == nil {
		v := defaults.ScoreThreshold
		q.ScoreThreshold = &v
	}
	if *q.ScoreThreshold < -1 || *q.ScoreThreshold > 1 {
		return fmt.Errorf("%w: score_threshold must be in [-1, 1], got %g", ErrInvalidRequest, *q.ScoreThreshold)
	}
	if q.Model == "" {
		q.Model = defaults.Model
	}
	return nil
}

// RetrievedContext is one retrieved index entry as returned to the caller.
type RetrievedContext struct {
	ID         string                 `json:"id"`
	Score      float64                `json:"score"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// QueryResult is the aggregated outcome of one pipeline run.
type QueryResult struct {
	Retrieved     []RetrievedContext `json:"retrieved"`
	Answer        string             `json:"answer"`
	TokensUsed    int                `json:"tokens_used"`
	ContextCount  int                `json:"context_count"`
	AvgSimilarity float64            `json:"avg_similarity"`
}

// QueryLogEntry is one persisted record of an answered query.
type QueryLogEntry struct {
	ID            string    `json:"id" db:"id"`
	Question      string    `json:"question" db:"question"`
	Model         string    `json:"model" db:"model"`
	Answer        string    `json:"answer" db:"answer"`
	TokensUsed    int       `json:"tokens_used" db:"tokens_used"`
	ContextCount  int       `json:"context_count" db:"context_count"`
	AvgSimilarity float64   `json:"avg_similarity" db:"avg_similarity"`
	DurationMs    int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

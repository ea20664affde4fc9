// Package models defines core data structures for documents, queries, and answers.
package models

import "time"

// Document represents a stored document with metadata and its embedding.
// The embedding is persisted so the in-memory vector index can be rebuilt
// from storage on startup without re-calling the embedding provider.
type Document struct {
	ID        string                 `json:"id" db:"id"`
	Content   string                 `json:"content" db:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	Embedding []float32              `json:"-" db:"embedding"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// DocumentInput is the input for ingesting a document.
type DocumentInput struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

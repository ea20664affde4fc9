// Package storage defines persistence for documents and the query log.
// The documents table is the source of record; the in-memory vector index is
// a volatile cache rebuilt from the embeddings stored here.
package storage

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Storage defines document and query-log persistence operations.
type Storage interface {
	// Document operations. Writes go through UpsertDocument so re-ingesting
	// an id replaces the stored row.
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpsertDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	// LoadAll iterates every stored document, invoking fn for each. Used to
	// rebuild the vector index on startup.
	LoadAll(ctx context.Context, fn func(doc *models.Document) error) error

	// Query log
	AppendQueryLog(ctx context.Context, entry *models.QueryLogEntry) error
	ListQueryLog(ctx context.Context, limit int) ([]*models.QueryLogEntry, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountQueries(ctx context.Context) (int64, error)

	Close() error
}

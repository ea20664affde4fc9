package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/provider"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"go.uber.org/zap"
)

// Ingestor embeds document text and places it in both the source-of-record
// store and the in-memory vector index.
type Ingestor struct {
	index    *vector.Index
	embedder provider.Embedder
	storage  storage.Storage
	logger   *zap.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithIngestLogger sets a logger for debug events.
func WithIngestLogger(l *zap.Logger) IngestorOption {
	return func(ing *Ingestor) { ing.logger = l }
}

// NewIngestor creates an ingestor with the given dependencies.
func NewIngestor(index *vector.Index, embedder provider.Embedder, store storage.Storage, opts ...IngestorOption) *Ingestor {
	ing := &Ingestor{index: index, embedder: embedder, storage: store}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest embeds text and indexes it under a fresh ID, which is returned.
// If embedding fails nothing is persisted or indexed.
func (ing *Ingestor) Ingest(ctx context.Context, text string, attrs map[string]interface{}) (string, error) {
	id := uuid.New().String()
	if err := ing.IngestWithID(ctx, id, text, attrs); err != nil {
		return "", err
	}
	return id, nil
}

// IngestWithID embeds text and indexes it under the given ID, replacing any
// existing document with that ID. Used by the file watcher, which derives
// stable IDs from file paths.
func (ing *Ingestor) IngestWithID(ctx context.Context, id, text string, attrs map[string]interface{}) error {
	embedding, err := ing.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}

	doc := &models.Document{
		ID:        id,
		Content:   text,
		Metadata:  attrs,
		Embedding: embedding,
	}
	if err := ing.storage.UpsertDocument(ctx, doc); err != nil {
		return fmt.Errorf("persist document: %w", err)
	}

	indexAttrs := make(map[string]interface{}, len(attrs)+1)
	for k, v := range attrs {
		indexAttrs[k] = v
	}
	indexAttrs["content"] = text
	if err := ing.index.Upsert(id, embedding, indexAttrs); err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	if ing.logger != nil {
		ing.logger.Debug("document ingested", zap.String("id", id), zap.Int("dimensions", len(embedding)))
	}
	return nil
}

// Delete removes the document from storage and drops its cached vector.
func (ing *Ingestor) Delete(ctx context.Context, id string) error {
	if err := ing.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	ing.index.Remove(id)
	return nil
}

// Rebuild repopulates the vector index from stored embeddings. The index is
// cleared first, so after a restart the cache matches the source of record.
// Documents persisted without an embedding are skipped.
func (ing *Ingestor) Rebuild(ctx context.Context) (int, error) {
	ing.index.Clear()
	count := 0
	err := ing.storage.LoadAll(ctx, func(doc *models.Document) error {
		if len(doc.Embedding) == 0 {
			return nil
		}
		attrs := make(map[string]interface{}, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			attrs[k] = v
		}
		attrs["content"] = doc.Content
		if err := ing.index.Upsert(doc.ID, doc.Embedding, attrs); err != nil {
			return fmt.Errorf("restore document %s: %w", doc.ID, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	if ing.logger != nil {
		ing.logger.Debug("vector index rebuilt", zap.Int("documents", count))
	}
	return count, nil
}

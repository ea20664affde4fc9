package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/provider"
	"go.uber.org/zap"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("query request", zap.String("text", req.Text), zap.Int("top_k", req.TopK))

	start := time.Now()
	result, err := s.pipeline.Process(r.Context(), &req)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	tokensUsedTotal.Add(float64(result.TokensUsed))

	// The pipeline computes; the caller persists.
	entry := &models.QueryLogEntry{
		ID:            uuid.New().String(),
		Question:      req.Text,
		Model:         req.Model,
		Answer:        result.Answer,
		TokensUsed:    result.TokensUsed,
		ContextCount:  result.ContextCount,
		AvgSimilarity: result.AvgSimilarity,
		DurationMs:    time.Since(start).Milliseconds(),
	}
	if err := s.storage.AppendQueryLog(r.Context(), entry); err != nil {
		s.logger.Warn("failed to persist query log", zap.Error(err))
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) respondPipelineError(w http.ResponseWriter, err error) {
	var embErr *provider.EmbeddingError
	var genErr *provider.GenerationError
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &embErr):
		pipelineFailuresTotal.WithLabelValues("embedding").Inc()
		s.logger.Error("embedding provider failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &genErr):
		pipelineFailuresTotal.WithLabelValues("generation").Inc()
		s.logger.Error("generation provider failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		pipelineFailuresTotal.WithLabelValues("internal").Inc()
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Content == "" {
		s.respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	s.logger.Debug("ingest request", zap.Int("content_length", len(input.Content)))

	id, err := s.ingestor.Ingest(r.Context(), input.Content, input.Metadata)
	if err != nil {
		var embErr *provider.EmbeddingError
		if errors.As(err, &embErr) {
			pipelineFailuresTotal.WithLabelValues("embedding").Inc()
			s.logger.Error("ingest embedding failed", zap.Error(err))
			s.respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id, "status": "ingested"})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	docs, err := s.storage.ListDocuments(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if err := s.ingestor.Delete(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", s.config.Retrieval.QueryLogLimit)
	entries, err := s.storage.ListQueryLog(r.Context(), limit)
	if err != nil {
		s.logger.Error("list queries failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*models.QueryLogEntry{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"queries": entries})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	queryCount, err := s.storage.CountQueries(ctx)
	if err != nil {
		s.logger.Error("status: count queries failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"documents":  docCount,
		"queries":    queryCount,
		"index_size": s.index.Size(),
		"config": map[string]interface{}{
			"embedding_model":  s.config.Embedding.Model,
			"generation_model": s.config.Generation.Model,
			"top_k":            s.config.Retrieval.TopK,
			"score_threshold":  s.config.Retrieval.ScoreThreshold,
			"database_path":    s.config.Storage.DatabasePath,
		},
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

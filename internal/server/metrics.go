package server

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hyperjump/kotae/internal/vector"
	"github.com/prometheus/client_golang/prometheus"
)

// pipelineBuckets covers embedding plus generation latencies, 100ms to 120s.
var pipelineBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// requestsTotal counts all HTTP requests by method, route, and status class.
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kotae_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// requestDuration records HTTP request duration in seconds by route.
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kotae_request_duration_seconds",
			Help:    "Request duration",
			Buckets: pipelineBuckets,
		},
		[]string{"route"},
	)

	// metricsIndex is the index the gauge below reads; set by NewServer.
	metricsIndex atomic.Pointer[vector.Index]

	// indexSize reads the index on scrape, so startup rebuilds and
	// watcher-driven ingests are reflected, not just HTTP writes.
	indexSize = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "kotae_index_size",
			Help: "Vector index entries",
		},
		func() float64 {
			ix := metricsIndex.Load()
			if ix == nil {
				return 0
			}
			return float64(ix.Size())
		},
	)

	// pipelineFailuresTotal counts aborted pipeline runs by failure kind.
	pipelineFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kotae_pipeline_failures_total",
			Help: "Pipeline failures",
		},
		[]string{"kind"},
	)

	// tokensUsedTotal counts tokens reported by the generation provider.
	tokensUsedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kotae_generation_tokens_total",
			Help: "Generation tokens consumed",
		},
	)
)

func init() {
	prometheus.MustRegister(
		requestsTotal,
		requestDuration,
		indexSize,
		pipelineFailuresTotal,
		tokensUsedTotal,
	)
}

// metricsMiddleware records request count and duration per route.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		statusClass := strconv.Itoa(sw.status/100) + "xx"
		requestsTotal.WithLabelValues(r.Method, route, statusClass).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

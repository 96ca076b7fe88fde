// Package api provides the REST surface of the reputation engine.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/engine"
	"github.com/dotrep-network/dotrep/internal/infra/observability"
)

// FlagStore is the flag persistence the API writes to and reads from.
// Both the in-memory log and the sqlite store satisfy it.
type FlagStore interface {
	Append(ctx context.Context, rec domain.FlagRecord) (domain.FlagRecord, error)
	FlagsFor(ctx context.Context, target string) ([]domain.FlagRecord, error)
	Since(ctx context.Context, cutoff time.Time) ([]domain.FlagRecord, error)
}

// Server is the reputation HTTP API server.
type Server struct {
	engine         *engine.Engine
	flags          FlagStore
	metricsEnabled bool
	metrics        *observability.Metrics
}

// NewServer creates a new API server over the engine and flag store.
func NewServer(e *engine.Engine, flags FlagStore) *Server {
	return &Server{engine: e, flags: flags}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics(m *observability.Metrics) {
	s.metricsEnabled = true
	s.metrics = m
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler(timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"actors": s.engine.Graph().NodeCount(),
			"edges":  s.engine.Graph().EdgeCount(),
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/reputation/{actor}", s.handleReputation)
		r.Get("/reputation/{actor}/adjusted", s.handleReputationAdjusted)
		r.Post("/reputation/batch", s.handleReputationBatch)
		r.Get("/sybil/{actor}", s.handleSybil)
		r.Post("/flags", s.handleFileFlag)
		r.Get("/flags/{target}/analysis", s.handleFlagAnalysis)
		r.Get("/flags/insights", s.handleFlagInsights)
		r.Get("/audit/{actor}", s.handleAudit)
		r.Post("/graph", s.handleLoadGraph)
		r.Post("/graph/interactions", s.handleInteractions)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

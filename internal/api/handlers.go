package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/audit"
	"github.com/dotrep-network/dotrep/internal/infra/flagging"
)

// maxBatchActors bounds a single batch request.
const maxBatchActors = 1000

func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	actor := chi.URLParam(r, "actor")
	result := s.engine.Compute(r.Context(), actor)
	status := http.StatusOK
	if !s.engine.Graph().Has(actor) {
		status = http.StatusNotFound // sentinel body still carries the details
	}
	writeJSON(w, status, result)
}

func (s *Server) handleReputationAdjusted(w http.ResponseWriter, r *http.Request) {
	actor := chi.URLParam(r, "actor")
	result, err := s.engine.ComputeAdjusted(r.Context(), actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type batchRequest struct {
	Actors []string `json:"actors"`
}

func (s *Server) handleReputationBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(req.Actors) == 0 {
		writeError(w, http.StatusBadRequest, "actors list is empty")
		return
	}
	if len(req.Actors) > maxBatchActors {
		writeError(w, http.StatusBadRequest, "too many actors in one batch")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": s.engine.ComputeBatch(r.Context(), req.Actors),
	})
}

func (s *Server) handleSybil(w http.ResponseWriter, r *http.Request) {
	actor := chi.URLParam(r, "actor")
	result := s.engine.Compute(r.Context(), actor)
	writeJSON(w, http.StatusOK, map[string]any{
		"actor":         actor,
		"risk":          result.Risk,
		"sybil_penalty": result.SybilPenalty,
	})
}

func (s *Server) handleFileFlag(w http.ResponseWriter, r *http.Request) {
	var rec domain.FlagRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	stored, err := s.flags.Append(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.FlagsFiled.Inc()
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleFlagAnalysis(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")
	window := flagging.DefaultWindow
	if v := r.URL.Query().Get("window_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "window_hours must be a positive integer")
			return
		}
		window = time.Duration(n) * time.Hour
	}
	flags, err := s.flags.FlagsFor(r.Context(), target)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	recent := flagging.Within(flags, time.Now().Add(-window))
	writeJSON(w, http.StatusOK, s.engine.Analyzer().Analyze(target, recent))
}

func (s *Server) handleFlagInsights(w http.ResponseWriter, r *http.Request) {
	windowHours := 24
	if v := r.URL.Query().Get("window_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "window_hours must be a positive integer")
			return
		}
		windowHours = n
	}
	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)
	flags, err := s.flags.Since(r.Context(), cutoff)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	insights := s.engine.Analyzer().Insights(flags, windowHours)
	if s.metrics != nil {
		for range insights.Alerts {
			s.metrics.BrigadeAlerts.Inc()
		}
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	actor := chi.URLParam(r, "actor")
	g := s.engine.Graph()
	if !g.Has(actor) {
		writeError(w, http.StatusNotFound, "actor not found")
		return
	}

	cfg := audit.DefaultConfig()
	if v := r.URL.Query().Get("sample"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SampleSize = n
		}
	}
	now := time.Now()
	auditor := audit.New(cfg, g.Snapshot(), nil)
	writeJSON(w, http.StatusOK, auditor.Explain(actor, 5, now))
}

func (s *Server) handleLoadGraph(w http.ResponseWriter, r *http.Request) {
	var data domain.GraphData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := s.engine.Graph().Load(data); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"actors": s.engine.Graph().NodeCount(),
		"edges":  s.engine.Graph().EdgeCount(),
	})
}

type interactionsRequest struct {
	Interactions []domain.Interaction `json:"interactions"`
}

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	var req interactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(req.Interactions) == 0 {
		writeError(w, http.StatusBadRequest, "interactions list is empty")
		return
	}
	if err := s.engine.ApplyInteractions(req.Interactions); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": len(req.Interactions),
		"actors":  s.engine.Graph().NodeCount(),
		"edges":   s.engine.Graph().EdgeCount(),
	})
}

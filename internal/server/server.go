// Package server exposes the planning endpoint. Transport is a thin
// shell: all behavior lives in the agent orchestrator.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mosif16/VidKit/internal/agent"
)

// Server hosts the agent reel endpoint
type Server struct {
	logger       zerolog.Logger
	orchestrator *agent.Orchestrator
	mux          *http.ServeMux
}

// planResponse is the wire shape of a planning run
type planResponse struct {
	Status          string                 `json:"status"`
	Plan            agent.ReelPlan         `json:"plan"`
	Candidates      []agent.Candidate      `json:"candidates"`
	Score           agent.PlanScore        `json:"score"`
	ScoreReport     agent.ScoreReport      `json:"score_report"`
	EditSuggestions []agent.EditSuggestion `json:"edit_suggestions"`
	Sync            *agent.SyncAdjustment  `json:"sync,omitempty"`
	Execution       agent.ExecutionReport  `json:"execution"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// New creates the HTTP server around an orchestrator.
func New(logger zerolog.Logger, orch *agent.Orchestrator) *Server {
	s := &Server{
		logger:       logger.With().Str("component", "server").Logger(),
		orchestrator: orch,
		mux:          http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /agent/reel", s.handlePlanReel)
	return s
}

// Handler returns the routing handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Msg("serving agent api")
	return srv.ListenAndServe()
}

// planRequest is the endpoint payload: the plan request plus run
// controls.
type planRequest struct {
	agent.ReelPlanRequest
	DryRun    *bool            `json:"dry_run,omitempty"`
	Telemetry *agent.Telemetry `json:"telemetry,omitempty"`
}

func (s *Server) handlePlanReel(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json payload: "+err.Error())
		return
	}

	opts := agent.RunOptions{
		DryRun:    true, // encoding is opt-in
		Telemetry: req.Telemetry,
	}
	if req.DryRun != nil {
		opts.DryRun = *req.DryRun
	}

	res, err := s.orchestrator.Run(r.Context(), req.ReelPlanRequest, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, agent.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, planResponse{
		Status:          "ok",
		Plan:            res.Plan,
		Candidates:      res.Candidates,
		Score:           res.Score,
		ScoreReport:     res.ScoreReport,
		EditSuggestions: res.EditSuggestions,
		Sync:            res.Sync,
		Execution:       res.Execution,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.logger.Warn().Int("status", status).Str("error", msg).Msg("request rejected")
	s.writeJSON(w, status, errorResponse{Status: "error", Error: msg})
}

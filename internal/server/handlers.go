package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Nagakninja/Compliance-Guardian/internal/db"
	"github.com/Nagakninja/Compliance-Guardian/internal/pipeline"
)

// AuditRequest is the body for POST /audits and POST /audits/stream.
type AuditRequest struct {
	VideoURL string `json:"video_url" validate:"required"`
	VideoID  string `json:"video_id,omitempty"`
}

// AuditStatusResponse is the response for GET /audits/{id}. Result carries
// the persisted verdict artifact when the run has one.
type AuditStatusResponse struct {
	RunID       string          `json:"run_id"`
	VideoID     string          `json:"video_id"`
	VideoURL    string          `json:"video_url"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
	CompletedAt string          `json:"completed_at,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

var requestValidator = validator.New()

func (s *Server) decodeAuditRequest(w http.ResponseWriter, r *http.Request) (*AuditRequest, bool) {
	var req AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if err := requestValidator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return nil, false
	}
	return &req, true
}

// handleRunAudit runs a full audit synchronously and returns the final state.
func (s *Server) handleRunAudit(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAuditRequest(w, r)
	if !ok {
		return
	}

	state := s.runner.Run(r.Context(), pipeline.RunOptions{
		VideoURL:    req.VideoURL,
		VideoID:     req.VideoID,
		DatabaseURL: s.databaseURL,
	})

	s.jsonResponse(w, http.StatusOK, state.Result())
}

// handleRunAuditStream runs an audit while streaming progress as SSE events,
// ending with a "complete" event carrying the final state.
func (s *Server) handleRunAuditStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAuditRequest(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	state := s.runner.Run(r.Context(), pipeline.RunOptions{
		VideoURL:    req.VideoURL,
		VideoID:     req.VideoID,
		DatabaseURL: s.databaseURL,
		OnProgress: func(event pipeline.ProgressEvent) {
			_ = sse.WriteEvent("progress", event)
		},
	})

	_ = sse.WriteEvent("result", state.Result())
	sse.WriteComplete(state.VideoID, string(state.FinalStatus))
}

// handleListAudits lists recent audit runs, optionally filtered by video_id
// and status query parameters.
func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	runs, err := s.db.ListRuns(r.Context(), db.RunFilters{
		VideoID: r.URL.Query().Get("video_id"),
		Status:  r.URL.Query().Get("status"),
		Limit:   limit,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, runs)
}

// handleGetAudit returns the status of a persisted audit run.
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Audit run not found")
		return
	}

	resp := AuditStatusResponse{
		RunID:     run.ID.String(),
		VideoID:   run.VideoID,
		VideoURL:  run.VideoURL,
		Status:    run.Status,
		CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	if verdict, err := s.db.GetArtifact(r.Context(), runID, db.StepVerdict); err == nil && len(verdict) > 0 {
		resp.Result = verdict
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleGetAuditReport returns the persisted markdown report for a run.
func (s *Server) handleGetAuditReport(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	report, err := s.db.GetTextArtifact(r.Context(), runID, db.StepReport)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if report == "" {
		s.errorResponse(w, http.StatusNotFound, "Report not found")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report))
}

// handleSearchRules runs an ad-hoc retrieval query against the rule
// knowledge base, for inspecting what the auditor would see.
func (s *Server) handleSearchRules(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.errorResponse(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}
	if s.retriever == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Rule retrieval is not configured")
		return
	}

	topK := 0
	if v := r.URL.Query().Get("k"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "Query parameter k must be a positive integer")
			return
		}
		topK = parsed
	}

	snippets, err := s.retriever.Search(r.Context(), query, topK)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Retrieval error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"snippets": snippets})
}

func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Run ID is required")
		return uuid.Nil, false
	}
	runID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return uuid.Nil, false
	}
	return runID, true
}

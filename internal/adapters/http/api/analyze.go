package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// AnalyzeHandler handles the analysis endpoints.
type AnalyzeHandler struct {
	analyzer  Analyzer
	submitter Submitter
	settings  Settings
	validate  *validator.Validate
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(analyzer Analyzer, submitter Submitter, settings Settings, validate *validator.Validate) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer, submitter: submitter, settings: settings, validate: validate}
}

// analyzeRequest mirrors the OpenAPI schema of the analyze endpoints.
type analyzeRequest struct {
	CVText         string `json:"cv_text"`
	JobDescription string `json:"job_description"`
}

type realtimeResponse struct {
	AnalysisID   string `json:"analysis_id"`
	SessionID    string `json:"session_id"`
	Status       string `json:"status"`
	WebSocketURL string `json:"websocket_url"`
}

// HandleAnalyze handles POST /api/analyze requests.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	res, err := h.analyzer.Analyze(r.Context(), req.CVText, req.JobDescription)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleAnalyzeEnhanced handles POST /api/analyze-enhanced requests.
func (h *AnalyzeHandler) HandleAnalyzeEnhanced(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_enhanced"
	if !h.settings.Features.EnhancedAnalysis {
		writeError(w, http.StatusForbidden, "feature_disabled", fmt.Errorf("%s: enhanced analysis is disabled", op))
		return
	}
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	res, err := h.analyzer.AnalyzeEnhanced(r.Context(), req.CVText, req.JobDescription)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleAnalyzeRealtime handles POST /api/analyze-realtime?session_id=S requests.
// Progress is pushed to /ws/analysis?session_id=S.
func (h *AnalyzeHandler) HandleAnalyzeRealtime(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_realtime"
	if !h.settings.Features.Realtime {
		writeError(w, http.StatusForbidden, "feature_disabled", fmt.Errorf("%s: real-time analysis is disabled", op))
		return
	}
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	job, err := h.submitter.Submit(r.Context(), r.URL.Query().Get("session_id"), req.CVText, req.JobDescription)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, realtimeResponse{
		AnalysisID:   job.ID,
		SessionID:    job.SessionID,
		Status:       "queued",
		WebSocketURL: "/ws/analysis?session_id=" + job.SessionID,
	})
}

func (h *AnalyzeHandler) decode(w http.ResponseWriter, r *http.Request, op string) (analyzeRequest, bool) {
	var req analyzeRequest
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return req, false
	}
	// UTF-8 runes take up to four bytes.
	limit := int64(h.settings.MaxCVLength+h.settings.MaxJobLength)*4 + 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return req, false
	}
	if err := h.validate.Var(req.CVText, fmt.Sprintf("required,max=%d", h.settings.MaxCVLength)); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fieldError("cv_text", err)))
		return req, false
	}
	if err := h.validate.Var(req.JobDescription, fmt.Sprintf("required,max=%d", h.settings.MaxJobLength)); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fieldError("job_description", err)))
		return req, false
	}
	return req, true
}

func fieldError(field string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "required":
			return errMissing(field)
		case "max":
			return fmt.Errorf("%s exceeds %s characters", field, verrs[0].Param())
		}
	}
	return fmt.Errorf("invalid %s: %w", field, err)
}

package api

import (
	"net/http"
	"strings"

	"github.com/okian/cvscreen/internal/adapters/repository"
	"github.com/okian/cvscreen/internal/domain/model"
)

// AnalysisHandler serves stored analyses.
type AnalysisHandler struct {
	deps Reader
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps Reader) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

type analysisResponse struct {
	Analysis model.AnalysisRecord `json:"analysis"`
	Rank     int                  `json:"rank"`
}

// HandleGetAnalysis handles GET /api/analyses/{id} requests.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analysis"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	rec, entry, err := h.deps.Analysis(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{Analysis: rec, Rank: entry.Rank})
}

// ShortlistHandler serves the ranked analyses of one job.
type ShortlistHandler struct {
	deps     Reader
	maxLimit int
}

// NewShortlistHandler creates a new shortlist handler.
func NewShortlistHandler(deps Reader, maxLimit int) *ShortlistHandler {
	return &ShortlistHandler{deps: deps, maxLimit: maxLimit}
}

const defaultShortlistLimit = 10

type shortlistResponse struct {
	JobKey  string             `json:"job_key"`
	Entries []repository.Entry `json:"entries"`
}

// HandleGetShortlist handles GET /api/shortlist?job_key=K&limit=N requests.
func (h *ShortlistHandler) HandleGetShortlist(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_shortlist"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	jobKey := strings.TrimSpace(q.Get("job_key"))
	if jobKey == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errMissing("job_key")))
		return
	}
	n := defaultShortlistLimit
	if raw := q.Get("limit"); raw != "" {
		v, ok := parsePositive(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	if h.maxLimit > 0 && n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.Shortlist(r.Context(), jobKey, n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if entries == nil {
		entries = []repository.Entry{}
	}
	writeJSON(w, http.StatusOK, shortlistResponse{JobKey: jobKey, Entries: entries})
}

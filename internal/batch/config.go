// Package batch screens a set of CV files against one job description
// through a running cvscreen server and reports the resulting shortlist.
package batch

import (
	"errors"
	"time"
)

// Errors returned by Run.
var (
	ErrNoCandidates   = errors.New("no CV files to screen")
	ErrUnhealthy      = errors.New("service is not healthy")
	ErrInconsistent   = errors.New("shortlist is inconsistent with submitted analyses")
	ErrUnexpectedCode = errors.New("unexpected status code")
)

// Config holds configuration for a batch run.
type Config struct {
	BaseURL    string        // Base URL of the service
	JobFile    string        // Job description, plain text
	CVPaths    []string      // CV files or directories of CV files
	TopN       int           // Shortlist entries to fetch
	Workers    int           // Concurrent submissions
	Timeout    time.Duration // HTTP request timeout
	Enhanced   bool          // Use /api/analyze-enhanced
	OutputFile string        // Optional JSON report
	Verbose    bool
}

// Candidate is one screened CV.
type Candidate struct {
	File       string   `json:"file"`
	AnalysisID string   `json:"analysis_id"`
	Name       string   `json:"candidate_name"`
	Score      float64  `json:"overall_score"`
	Label      string   `json:"label"`
	RedFlags   []string `json:"red_flags,omitempty"`
	Parser     string   `json:"parser"`
	Error      string   `json:"error,omitempty"`

	jobKey string
}

// Entry is one shortlist row as served by the API.
type Entry struct {
	Rank          int     `json:"rank"`
	AnalysisID    string  `json:"analysis_id"`
	CandidateName string  `json:"candidate_name"`
	Score         float64 `json:"overall_score"`
	Label         string  `json:"label"`
}

// Report is the outcome of a run.
type Report struct {
	JobKey     string        `json:"job_key"`
	Candidates []Candidate   `json:"candidates"`
	Shortlist  []Entry       `json:"shortlist"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration_ns"`
}

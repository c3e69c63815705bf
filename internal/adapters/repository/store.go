// Package repository stores analysis results and ranks them per job.
package repository

import (
	"context"
	"time"

	"github.com/okian/cvscreen/internal/domain/model"
)

// Entry is one row of a job shortlist.
type Entry struct {
	Rank          int         `json:"rank"`
	AnalysisID    string      `json:"analysis_id"`
	CandidateName string      `json:"candidate_name"`
	Score         float64     `json:"overall_score"`
	Label         model.Label `json:"label"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Store keeps analysis results, ranked per job key.
type Store interface {
	// Save stores rec. Saving an existing ID replaces the previous result.
	Save(ctx context.Context, rec model.AnalysisRecord) error

	// Get returns a stored analysis. Returns ErrNotFound if unknown.
	Get(ctx context.Context, analysisID string) (model.AnalysisRecord, error)

	// Rank returns the shortlist row of an analysis within its job.
	Rank(ctx context.Context, analysisID string) (Entry, error)

	// TopN returns the best n analyses of a job, by score desc then ID asc.
	TopN(ctx context.Context, jobKey string, n int) ([]Entry, error)

	// Count returns the number of stored analyses.
	Count(ctx context.Context) int

	Close() error
}

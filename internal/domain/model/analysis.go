package model

import "time"

// Parser names reported in analysis results.
const (
	ParserRegex = "regex"
	ParserLLM   = "llm"
)

// AnalysisJob is a real-time analysis request waiting in the queue.
type AnalysisJob struct {
	ID          string    // analysis id returned to the client
	SessionID   string    // WebSocket session that receives progress
	CVText      string    // raw CV text
	JobText     string    // raw job description
	Fingerprint string    // dedupe key of the submission
	SubmittedAt time.Time // enqueue time
}

// AnalysisRecord is a stored analysis result.
type AnalysisRecord struct {
	ID            string             `json:"analysis_id"`
	JobKey        string             `json:"job_key"`
	JobTitle      string             `json:"job_title"`
	SessionID     string             `json:"session_id,omitempty"`
	CandidateName string             `json:"candidate_name"`
	Parser        string             `json:"parser,omitempty"`
	Score         ComprehensiveScore `json:"score"`
	Enhanced      *EnhancedScores    `json:"enhanced,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// AnalysisResult is the answer to a synchronous analysis request.
type AnalysisResult struct {
	AnalysisID       string             `json:"analysis_id"`
	JobKey           string             `json:"job_key"`
	Candidate        Candidate          `json:"candidate"`
	Job              JobRequirements    `json:"job"`
	Score            ComprehensiveScore `json:"score"`
	Enhanced         *EnhancedScores    `json:"enhanced,omitempty"`
	Parser           string             `json:"parser"`
	ProcessingTimeMS int64              `json:"processing_time_ms"`
}

// Record converts the result into its stored form.
func (r AnalysisResult) Record(createdAt time.Time) AnalysisRecord {
	return AnalysisRecord{
		ID:            r.AnalysisID,
		JobKey:        r.JobKey,
		JobTitle:      r.Job.Title,
		CandidateName: r.Candidate.Name,
		Parser:        r.Parser,
		Score:         r.Score,
		Enhanced:      r.Enhanced,
		CreatedAt:     createdAt,
	}
}

package ws

import (
	"time"

	"github.com/okian/cvscreen/internal/domain/process"
)

// Message types.
const (
	TypeConnectionEstablished = "connection_established"
	TypeProcessUpdate         = "process_update"
	TypeAnalysisComplete      = "analysis_complete"
	TypeAnalysisFailed        = "analysis_failed"
	TypeSessionList           = "session_list"
	TypePing                  = "ping"
	TypePong                  = "pong"
	TypeError                 = "error"
)

// Message is the envelope of every server-to-client message.
type Message struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ProcessUpdate describes the state of one analysis step.
type ProcessUpdate struct {
	StepID               string         `json:"step_id" validate:"required"`
	StepName             string         `json:"step_name" validate:"required"`
	Status               process.Status `json:"status" validate:"required,oneof=started in_progress completed failed intervention_required"`
	Confidence           float64        `json:"confidence" validate:"gte=0,lte=1"`
	Explanation          string         `json:"explanation"`
	Details              map[string]any `json:"details,omitempty"`
	RequiresIntervention bool           `json:"requires_intervention"`
	InterventionType     string         `json:"intervention_type,omitempty"`
}

// SessionInfo summarizes a session for the monitor.
type SessionInfo struct {
	SessionID       string `json:"session_id"`
	Active          bool   `json:"active"`
	ConnectionCount int    `json:"connection_count"`
	QueuedMessages  int    `json:"queued_messages"`
}

type clientMessage struct {
	Type string `json:"type"`
}

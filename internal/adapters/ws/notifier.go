package ws

import (
	"context"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/process"
	"github.com/okian/cvscreen/pkg/logger"
)

// Step reports a finished or started pipeline step with its explanation.
func (h *Hub) Step(ctx context.Context, sessionID string, pc process.Context, status process.Status) {
	ex := process.Explain(pc)
	update := ProcessUpdate{
		StepName:    string(pc.Step),
		Status:      status,
		Confidence:  clamp01(pc.Confidence),
		Explanation: ex.Detailed,
		Details: map[string]any{
			"title":           ex.StepName,
			"headline":        ex.Headline,
			"confidence_text": ex.ConfidenceText,
			"evidence":        ex.Evidence,
			"suggestions":     ex.Suggestions,
			"technical":       ex.Technical,
		},
	}
	if status == process.StatusStarted {
		update.Explanation = ex.Headline
		update.Details = nil
	}
	if err := h.SendProcessUpdate(ctx, sessionID, update); err != nil {
		h.logger.Warn(ctx, "process update rejected", logger.String("step", string(pc.Step)), logger.Error(err))
	}
}

// Complete announces a finished analysis.
func (h *Hub) Complete(ctx context.Context, sessionID string, rec model.AnalysisRecord) {
	h.Broadcast(ctx, sessionID, Message{
		Type: TypeAnalysisComplete,
		Data: map[string]any{
			"analysis_id": rec.ID,
			"job_key":     rec.JobKey,
			"result":      rec.Score,
		},
	})
}

// Failed announces a failed analysis.
func (h *Hub) Failed(ctx context.Context, sessionID, analysisID string, err error) {
	h.Broadcast(ctx, sessionID, Message{
		Type: TypeAnalysisFailed,
		Data: map[string]any{
			"analysis_id": analysisID,
			"error":       err.Error(),
		},
	})
}

func clamp01(x float64) float64 {
	return max(0, min(1, x))
}

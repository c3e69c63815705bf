package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/pkg/logger"
	"github.com/okian/cvscreen/pkg/metrics"
)

// TextGenerator produces a free-form text completion for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Assistant answers recruiter questions about the candidates of a
// conversation.
type Assistant struct {
	settings
	gen TextGenerator
}

// NewAssistant creates an Assistant around gen.
func NewAssistant(gen TextGenerator, opts ...Option) *Assistant {
	return &Assistant{settings: newSettings(opts), gen: gen}
}

// Reply answers message given the earlier turns of the conversation.
func (a *Assistant) Reply(ctx context.Context, history []model.ChatTurn, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	out, err := a.gen.GenerateText(ctx, a.conversation(history, message))
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordLLMCall("error", latency)
		return "", fmt.Errorf("chat reply: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		metrics.RecordLLMCall("invalid", latency)
		return "", ErrEmptyResponse
	}
	metrics.RecordLLMCall("success", latency)
	a.log.Debug(ctx, "chat reply generated",
		logger.Int("turns", len(history)),
		logger.Float64("latency_ms", latency))
	return out, nil
}

// conversation renders the system instructions, the history and the new
// message as one prompt. The input cap applies to the whole transcript, so
// the oldest turns go first.
func (a *Assistant) conversation(history []model.ChatTurn, message string) string {
	message = truncateRunes(message, a.maxInput)
	budget := a.maxInput - len([]rune(message))

	var turns []string
	for i := len(history) - 1; i >= 0 && budget > 0; i-- {
		line := speaker(history[i].Role) + ": " + history[i].Content
		n := len([]rune(line))
		if n > budget {
			break
		}
		budget -= n
		turns = append(turns, line)
	}

	var b strings.Builder
	b.WriteString(assistantInstructions)
	b.WriteString("\n\nConversation:\n")
	for i := len(turns) - 1; i >= 0; i-- {
		b.WriteString(turns[i])
		b.WriteString("\n")
	}
	b.WriteString("Recruiter: ")
	b.WriteString(message)
	b.WriteString("\nAssistant:")
	return b.String()
}

func speaker(role string) string {
	if role == model.RoleAssistant {
		return "Assistant"
	}
	return "Recruiter"
}

const assistantInstructions = `You are a CV screening assistant for recruiters. Answer questions about the
candidates and job descriptions in the conversation below.
Judge technical skills, the quality and progression of experience, communication
and growth potential. Support every conclusion with evidence from the CV, name
strengths and gaps, and suggest interview questions where useful. Watch for job
hopping, unexplained gaps, and skills that do not match the claimed seniority.
End an assessment with a confidence from 1 to 10. Answer in plain text.`

package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/okian/cvscreen/internal/domain/engine"
	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/pkg/logger"
	"github.com/okian/cvscreen/pkg/metrics"
)

// ChatResponder answers free-form questions, usually through an LLM.
type ChatResponder interface {
	Reply(ctx context.Context, history []model.ChatTurn, message string) (string, error)
}

// Reply sources, used as metric labels.
const (
	sourceCommand  = "command"
	sourceAnalysis = "analysis"
	sourceLLM      = "llm"
	sourceFallback = "fallback"
)

const (
	defaultChatHistory  = 10
	defaultChatSessions = 10_000
	shownSkills         = 10
)

// Commands and the words that ask for outreach, which is not offered.
var (
	helpCommands     = map[string]bool{"help": true, "/help": true}
	clearCommands    = map[string]bool{"clear": true, "/clear": true}
	outreachKeywords = []string{"email", "linkedin", "connect"}
)

// conversation is the state of one chat session.
type conversation struct {
	history   []model.ChatTurn
	cvText    string
	candidate model.Candidate
	parser    string
	jobText   string
	touched   time.Time
}

// Chat answers one message of a chat session. A file message stores the CV
// of the session and a job message its job description; once both are known
// they are scored like Analyze. Text messages are commands or questions for
// the responder. An empty sessionID starts a new session.
func (s *Service) Chat(ctx context.Context, sessionID string, msg model.ChatMessage) (model.ChatReply, error) {
	if msg.Type == "" {
		msg.Type = model.ChatText
	}
	if err := s.checkChat(msg); err != nil {
		return model.ChatReply{}, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conv := s.chatSession(sessionID)
	reply, source := s.answer(ctx, conv, msg)
	reply.SessionID = sessionID
	metrics.RecordChatMessage(msg.Type, source)

	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	if source == sourceCommand && clearCommands[normalize(msg.Content)] {
		return reply, nil
	}
	conv.history = append(conv.history,
		model.ChatTurn{Role: model.RoleUser, Content: turnText(msg)},
		model.ChatTurn{Role: model.RoleAssistant, Content: reply.Content},
	)
	if extra := len(conv.history) - s.chatHistory; extra > 0 {
		conv.history = append([]model.ChatTurn(nil), conv.history[extra:]...)
	}
	return reply, nil
}

func (s *Service) answer(ctx context.Context, conv *conversation, msg model.ChatMessage) (model.ChatReply, string) {
	switch msg.Type {
	case model.ChatFile:
		return s.chatCV(ctx, conv, msg)
	case model.ChatJob:
		return s.chatJob(ctx, conv, msg)
	case model.ChatText:
		return s.chatText(ctx, conv, msg)
	default:
		return systemReply("I can only read text, file and job messages."), sourceCommand
	}
}

func (s *Service) chatCV(ctx context.Context, conv *conversation, msg model.ChatMessage) (model.ChatReply, string) {
	lctx, cancel := context.WithTimeout(ctx, s.enhancedTimeout)
	cv, parser := s.parseCV(lctx, msg.Content)
	cancel()

	s.chatMu.Lock()
	conv.cvText, conv.candidate, conv.parser = msg.Content, cv, parser
	jobText := conv.jobText
	s.chatMu.Unlock()

	if jobText != "" {
		return s.chatMatch(ctx, msg.Content, jobText, cv, parser)
	}

	skills := cv.Skills
	more := ""
	if len(skills) > shownSkills {
		skills, more = skills[:shownSkills], ", ..."
	}
	content := fmt.Sprintf("CV read for %s.\nExperience: %.1f years\nSkills: %s%s\n\n"+
		"Send a job description to get a match score, or ask a question about this candidate.",
		cv.Name, cv.TotalExperienceYears(), strings.Join(skills, ", "), more)
	return model.ChatReply{Content: content, Type: model.ChatText, Candidate: &cv}, sourceAnalysis
}

func (s *Service) chatJob(ctx context.Context, conv *conversation, msg model.ChatMessage) (model.ChatReply, string) {
	s.chatMu.Lock()
	conv.jobText = msg.Content
	cvText, cv, parser := conv.cvText, conv.candidate, conv.parser
	s.chatMu.Unlock()

	if cvText == "" {
		return systemReply("Job description saved. Upload a CV to score it against this role."), sourceAnalysis
	}
	return s.chatMatch(ctx, cvText, msg.Content, cv, parser)
}

// chatMatch scores the session's candidate against its job description and
// stores the result in the job's shortlist.
func (s *Service) chatMatch(ctx context.Context, cvText, jobText string, cv model.Candidate, parser string) (model.ChatReply, string) {
	start := time.Now()
	res, err := s.score(ctx, start, cvText, jobText, cv, s.jobParser.Parse(jobText), parser, false)
	if err == nil {
		s.record(ctx, modeChat, res)
	}
	if err != nil {
		s.logger.Warn(ctx, "chat analysis failed", logger.Error(err))
		return systemReply("I could not score this CV against the job description. Please try again."), sourceFallback
	}
	return model.ChatReply{
		Content:   matchSummary(res),
		Type:      model.ChatText,
		Candidate: &res.Candidate,
		Analysis:  &res,
	}, sourceAnalysis
}

func (s *Service) chatText(ctx context.Context, conv *conversation, msg model.ChatMessage) (model.ChatReply, string) {
	text := normalize(msg.Content)
	switch {
	case helpCommands[text]:
		return model.ChatReply{Content: chatHelp, Type: model.ChatText}, sourceCommand
	case clearCommands[text]:
		s.chatMu.Lock()
		*conv = conversation{touched: conv.touched}
		s.chatMu.Unlock()
		return systemReply("Conversation cleared. How can I help with CV screening?"), sourceCommand
	case asksOutreach(text):
		return systemReply("Email and LinkedIn outreach are not available. I can analyse CVs and match them to job descriptions."), sourceCommand
	}

	if s.responder == nil {
		return systemReply("Free-form questions need the language model, which is not configured. Type help to see what I can do."), sourceFallback
	}
	s.chatMu.Lock()
	history := append([]model.ChatTurn(nil), conv.history...)
	s.chatMu.Unlock()

	out, err := s.responder.Reply(ctx, history, msg.Content)
	if err != nil {
		s.logger.Warn(ctx, "chat reply failed", logger.Error(err))
		return systemReply("I am having trouble reaching the language model. Please try again in a moment."), sourceFallback
	}
	return model.ChatReply{Content: out, Type: model.ChatText}, sourceLLM
}

// chatSession returns the session state, creating it when new. At the
// session cap the least recently used session is dropped.
func (s *Service) chatSession(sessionID string) *conversation {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()

	now := s.now()
	if conv, ok := s.chats[sessionID]; ok {
		conv.touched = now
		return conv
	}
	if len(s.chats) >= s.chatSessions {
		var oldest string
		var at time.Time
		for id, conv := range s.chats {
			if oldest == "" || conv.touched.Before(at) {
				oldest, at = id, conv.touched
			}
		}
		delete(s.chats, oldest)
	}
	conv := &conversation{touched: now}
	s.chats[sessionID] = conv
	return conv
}

// ChatHistory returns a copy of the turns kept for a session.
func (s *Service) ChatHistory(sessionID string) []model.ChatTurn {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	conv, ok := s.chats[sessionID]
	if !ok {
		return nil
	}
	return append([]model.ChatTurn(nil), conv.history...)
}

func (s *Service) checkChat(msg model.ChatMessage) error {
	limit := s.maxJobLength
	if msg.Type == model.ChatFile {
		limit = s.maxCVLength
	}
	switch {
	case strings.TrimSpace(msg.Content) == "":
		return fmt.Errorf("%w: message is empty", engine.ErrInvalidInput)
	case utf8.RuneCountInString(msg.Content) > limit:
		return fmt.Errorf("%w: message exceeds %d characters", engine.ErrInvalidInput, limit)
	}
	return nil
}

// turnText is what the history keeps of a user message. Documents are
// replaced by a short note.
func turnText(msg model.ChatMessage) string {
	switch msg.Type {
	case model.ChatFile:
		if msg.FileName != "" {
			return "[uploaded CV " + msg.FileName + "]"
		}
		return "[uploaded CV]"
	case model.ChatJob:
		return "[job description]"
	}
	return msg.Content
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func asksOutreach(text string) bool {
	for _, k := range outreachKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func systemReply(content string) model.ChatReply {
	return model.ChatReply{Content: content, Type: model.ChatSystem}
}

func matchSummary(res model.AnalysisResult) string {
	sc := res.Score
	var b strings.Builder
	fmt.Fprintf(&b, "Overall score: %.0f/100 (%s)\n", sc.OverallScore, sc.Label)
	fmt.Fprintf(&b, "Candidate: %s\n", res.Candidate.Name)
	fmt.Fprintf(&b, "Skills: %.1f  Experience: %.1f  Education: %.1f\n", sc.SkillsMatch, sc.ExperienceRelevance, sc.EducationMatch)
	if len(sc.MatchedSkills) > 0 {
		fmt.Fprintf(&b, "Matched skills: %s\n", strings.Join(sc.MatchedSkills, ", "))
	}
	if len(sc.MissingSkills) > 0 {
		fmt.Fprintf(&b, "Missing skills: %s\n", strings.Join(sc.MissingSkills, ", "))
	}
	if len(sc.RedFlags) > 0 {
		fmt.Fprintf(&b, "Red flags: %s\n", strings.Join(sc.RedFlags, "; "))
	}
	b.WriteString("\nAsk me for more detail on any part of the match.")
	return b.String()
}

const chatHelp = `CV screening assistant

Send a CV as a file message (the text returned by /api/upload) and a job
description as a job message; once both are present I score the match.
Ask questions about the candidate in text messages.

Commands:
  help   show this help
  clear  forget this conversation`

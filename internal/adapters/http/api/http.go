// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/cvscreen/internal/adapters/mq/queue"
	"github.com/okian/cvscreen/internal/adapters/repository"
	"github.com/okian/cvscreen/internal/domain/dedupe"
	"github.com/okian/cvscreen/internal/domain/engine"
	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/extract/textextract"
)

// Analyzer scores a CV against a job description synchronously.
type Analyzer interface {
	Analyze(ctx context.Context, cvText, jobText string) (model.AnalysisResult, error)
	AnalyzeEnhanced(ctx context.Context, cvText, jobText string) (model.AnalysisResult, error)
}

// Submitter queues a real-time analysis whose progress goes to a WebSocket session.
type Submitter interface {
	Submit(ctx context.Context, sessionID, cvText, jobText string) (model.AnalysisJob, error)
}

// Reader exposes stored analyses.
type Reader interface {
	Analysis(ctx context.Context, id string) (model.AnalysisRecord, repository.Entry, error)
	Shortlist(ctx context.Context, jobKey string, n int) ([]repository.Entry, error)
}

// Chatter answers messages of a screening conversation.
type Chatter interface {
	Chat(ctx context.Context, sessionID string, msg model.ChatMessage) (model.ChatReply, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Analyzer
	Submitter
	Reader
	Chatter
}

// Sockets serves the WebSocket endpoints.
type Sockets interface {
	ServeSession(w http.ResponseWriter, r *http.Request, sessionID string)
	ServeMonitor(w http.ResponseWriter, r *http.Request)
}

// Server wires HTTP routes for the screening API.
type Server struct {
	settings Settings
	limiter  *RateLimiter

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	analyzeHandler   *AnalyzeHandler
	uploadHandler    *UploadHandler
	chatHandler      *ChatHandler
	analysisHandler  *AnalysisHandler
	shortlistHandler *ShortlistHandler
	configHandler    *ConfigHandler
	socketHandler    *SocketHandler
	monitorHandler   *monitorHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{settings: DefaultSettings()}
	for _, opt := range opts {
		opt(&cfg)
	}
	st := cfg.settings
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonName)

	s := &Server{
		settings:         st,
		healthHandler:    NewHealthHandler(st.Version),
		statsHandler:     NewStatsHandler(statsProvider),
		analyzeHandler:   NewAnalyzeHandler(deps, deps, st, validate),
		uploadHandler:    NewUploadHandler(st),
		chatHandler:      NewChatHandler(deps, st, validate),
		analysisHandler:  NewAnalysisHandler(deps),
		shortlistHandler: NewShortlistHandler(deps, st.MaxShortlistLimit),
		configHandler:    NewConfigHandler(st),
		socketHandler:    NewSocketHandler(cfg.sockets, cfg.tokens),
		monitorHandler:   newMonitorHandler(),
	}
	if st.Features.RateLimiting && st.RateLimitCalls > 0 {
		s.limiter = cfg.limiter
		if s.limiter == nil {
			// Entries are validated with the configuration; bad ones are not trusted.
			proxies, _ := ParseProxies(st.TrustedProxies)
			s.limiter = NewRateLimiter(st.RateLimitCalls, st.RateLimitWindow, WithTrustedProxies(proxies))
		}
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/health", s.route("health", s.healthHandler.HandleHealth, false))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", s.route("stats", s.statsHandler.HandleStats, false))
	mux.HandleFunc("/monitor", s.monitorHandler.HandleMonitor)

	mux.HandleFunc("/api/upload", s.route("upload", s.uploadHandler.HandleUpload, true))
	mux.HandleFunc("/api/chat", s.route("chat", s.chatHandler.HandleChat, true))
	mux.HandleFunc("/api/analyze", s.route("analyze", s.analyzeHandler.HandleAnalyze, true))
	mux.HandleFunc("/api/analyze-enhanced", s.route("analyze_enhanced", s.analyzeHandler.HandleAnalyzeEnhanced, true))
	mux.HandleFunc("/api/analyze-realtime", s.route("analyze_realtime", s.analyzeHandler.HandleAnalyzeRealtime, true))
	mux.HandleFunc("/api/analyses/", s.route("analyses", s.analysisHandler.HandleGetAnalysis, false))
	mux.HandleFunc("/api/shortlist", s.route("shortlist", s.shortlistHandler.HandleGetShortlist, false))
	mux.HandleFunc("/api/config", s.route("config", s.configHandler.HandleConfig, false))

	mux.HandleFunc("/ws/analysis", MetricsMiddleware(s.socketHandler.HandleSession, "ws_analysis"))
	mux.HandleFunc("/ws/monitor", MetricsMiddleware(s.socketHandler.HandleMonitor, "ws_monitor"))
}

// route wraps h with metrics, CORS and, when limited, rate limiting.
func (s *Server) route(endpoint string, h http.HandlerFunc, limited bool) http.HandlerFunc {
	if limited && s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	return MetricsMiddleware(CORSMiddleware(s.settings.CORSOrigins, h), endpoint)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure translates an upstream error to its status and code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, engine.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, dedupe.ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, queue.ErrFull), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, textextract.ErrUnsupportedType):
		return http.StatusBadRequest, "unsupported_file_type"
	case errors.Is(err, textextract.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, textextract.ErrEmptyText):
		return http.StatusUnprocessableEntity, "empty_document"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cvscreen/internal/adapters/http/api"
	"github.com/okian/cvscreen/internal/adapters/http/site"
	"github.com/okian/cvscreen/internal/adapters/http/swagger"
	"github.com/okian/cvscreen/internal/adapters/llm"
	"github.com/okian/cvscreen/internal/adapters/mq/worker"
	"github.com/okian/cvscreen/internal/adapters/ws"
	service "github.com/okian/cvscreen/internal/app"
	"github.com/okian/cvscreen/internal/config"
	"github.com/okian/cvscreen/internal/domain/classify"
	"github.com/okian/cvscreen/internal/domain/engine"
	"github.com/okian/cvscreen/internal/domain/redflags"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	"github.com/okian/cvscreen/pkg/logger"
	"github.com/okian/cvscreen/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	wsMaxQueued       = 100
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the screening HTTP server (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logger.Get()

	tax, err := loadTaxonomy(cfg.TaxonomyFile)
	if err != nil {
		return err
	}
	parser, assistant, err := newLLM(ctx, cfg)
	if err != nil {
		log.Warn(ctx, "llm unavailable; using regex extractor", logger.Error(err))
	}

	hub := ws.NewHub(
		ws.WithMaxQueued(wsMaxQueued),
		ws.WithQueueTTL(cfg.SessionQueueTTL),
		ws.WithAllowedOrigins(cfg.CORSOrigins),
		ws.WithLogger(log.Named("ws")),
	)
	defer hub.Close()

	svc := newService(cfg, tax, parser, assistant, hub, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop(context.Background())

	opts := []api.Option{api.WithSettings(settingsFrom(cfg, parser != nil, assistant != nil)), api.WithSockets(hub)}
	tokens, err := api.NewTokens(cfg.SecretKey)
	if err != nil {
		log.Warn(ctx, "monitor socket disabled", logger.Error(err))
	} else {
		opts = append(opts, api.WithTokens(tokens))
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc, svc, opts...).Register(ctx, mux)

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.EnhancedTimeout + readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("version", version),
			logger.Int("workers", cfg.WorkerCount),
			logger.Bool("llm", parser != nil),
			logger.Bool("llm_chat", assistant != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// loadTaxonomy reads the taxonomy file, or returns the built-in one when
// path is empty.
func loadTaxonomy(path string) (*taxonomy.Taxonomy, error) {
	if path == "" {
		return taxonomy.Default(), nil
	}
	tax, err := taxonomy.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	return tax, nil
}

// newLLM builds the CV parser and the chat assistant over one Gemini client.
// Either is nil when its feature is off; both are nil when no key is set.
func newLLM(ctx context.Context, c *config.Config) (*llm.Parser, *llm.Assistant, error) {
	if (!c.Features.LLMParsing && !c.Features.LLMChat) || c.GeminiAPIKey == "" {
		return nil, nil, nil
	}
	gen, err := llm.NewGeminiGenerator(ctx, c.GeminiAPIKey, c.GeminiModel)
	if err != nil {
		return nil, nil, err
	}
	opts := []llm.Option{
		llm.WithTimeout(c.EnhancedTimeout),
		llm.WithMaxInput(c.MaxCVLength),
		llm.WithLogger(logger.Get().Named("llm")),
	}

	var assistant *llm.Assistant
	if c.Features.LLMChat {
		assistant = llm.NewAssistant(gen, opts...)
	}
	if !c.Features.LLMParsing {
		return nil, assistant, nil
	}
	parser, err := llm.NewParser(gen, opts...)
	if err != nil {
		return nil, assistant, err
	}
	return parser, assistant, nil
}

func thresholdsFrom(s config.Scoring) engine.Thresholds {
	return engine.Thresholds{
		Classify: classify.Thresholds{
			JobMinScore:       s.JobDomainMinScore,
			CandidateMinScore: s.CandidateDomainMinScore,
		},
		RedFlags: redflags.Thresholds{
			SkillGapRatio:       s.SkillGapRatio,
			ExperienceGapRatio:  s.ExperienceGapRatio,
			JobHoppingMinRoles:  s.JobHoppingMinRoles,
			JobHoppingMaxTenure: s.JobHoppingMaxTenure,
		},
		PenaltyPerFlag: s.PenaltyPerFlag,
	}
}

// newService builds the screening service from configuration. parser,
// assistant and notifier may be nil.
func newService(c *config.Config, tax *taxonomy.Taxonomy, parser *llm.Parser, assistant *llm.Assistant, notifier worker.Notifier, log logger.Logger) *service.Service {
	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(c.WorkerCount),
		service.WithQueueSize(c.QueueSize),
		service.WithDedupeSize(c.DedupeSize),
		service.WithShortlistSize(c.ShortlistSize),
		service.WithTextLimits(c.MaxCVLength, c.MaxJobLength),
		service.WithEnhancedTimeout(c.EnhancedTimeout),
		service.WithTaxonomy(tax),
		service.WithThresholds(thresholdsFrom(c.Scoring)),
		service.WithFeatures(c.Features.EnhancedAnalysis, c.Features.Realtime),
		service.WithChatLimits(c.ChatHistory, c.ChatSessions),
	}
	if parser != nil {
		opts = append(opts, service.WithCVParser(parser))
	}
	if assistant != nil {
		opts = append(opts, service.WithChatResponder(assistant))
	}
	if notifier != nil {
		opts = append(opts, service.WithNotifier(notifier))
	}
	return service.New(opts...)
}

// settingsFrom maps configuration onto the limits the handlers enforce.
func settingsFrom(c *config.Config, llmParsing, llmChat bool) api.Settings {
	return api.Settings{
		AppName:           "cvscreen",
		Version:           version,
		MaxCVLength:       c.MaxCVLength,
		MaxJobLength:      c.MaxJobLength,
		MaxFileSizeMB:     c.MaxFileSizeMB,
		AllowedFileTypes:  c.AllowedFileTypes,
		MaxShortlistLimit: c.MaxShortlistLimit,
		RateLimitCalls:    c.RateLimitCalls,
		RateLimitWindow:   c.RateLimitWindow,
		CORSOrigins:       c.CORSOrigins,
		TrustedProxies:    c.TrustedProxies,
		Features: api.Features{
			EnhancedAnalysis: c.Features.EnhancedAnalysis,
			Realtime:         c.Features.Realtime,
			LLMParsing:       llmParsing,
			LLMChat:          llmChat,
			RateLimiting:     c.Features.RateLimiting,
		},
	}
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater updates service metrics until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if analyses, ok := stats["analyses"].(int); ok {
		metrics.UpdateShortlistEntries(analyses)
	}
}

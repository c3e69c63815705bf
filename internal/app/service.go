// Package service wires the parsers, the scoring engine and the real-time
// pipeline into the operations the HTTP API and the CLI need.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/okian/cvscreen/internal/adapters/mq/queue"
	"github.com/okian/cvscreen/internal/adapters/mq/worker"
	"github.com/okian/cvscreen/internal/adapters/repository"
	"github.com/okian/cvscreen/internal/domain/dedupe"
	"github.com/okian/cvscreen/internal/domain/engine"
	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/process"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	"github.com/okian/cvscreen/internal/extract/cvparser"
	"github.com/okian/cvscreen/internal/extract/jobparser"
	"github.com/okian/cvscreen/pkg/logger"
	"github.com/okian/cvscreen/pkg/metrics"
)

// CVParser turns CV text into a candidate, e.g. through an LLM.
type CVParser interface {
	ParseCV(ctx context.Context, text string) (model.Candidate, error)
}

// Service implements the API dependencies of the screening service.
type Service struct {
	mu sync.RWMutex

	// Scoring
	tax        *taxonomy.Taxonomy
	thresholds engine.Thresholds
	engine     *engine.Engine
	cvParser   *cvparser.Parser
	jobParser  *jobparser.Parser
	llm        CVParser
	responder  ChatResponder

	// Chat sessions
	chatMu       sync.Mutex
	chats        map[string]*conversation
	chatHistory  int
	chatSessions int

	// Real-time pipeline, built by Start
	store    repository.Store
	deduper  dedupe.Deduper
	queue    queue.Queue
	pool     *worker.Pool
	notifier worker.Notifier

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	shortlistSize   int
	maxCVLength     int
	maxJobLength    int
	enhancedTimeout time.Duration
	enhancedEnabled bool
	realtimeEnabled bool

	started bool
	cancel  context.CancelFunc
	now     func() time.Time

	logger logger.Logger
}

// New constructs a Service. Scoring works right away; storing analyses and
// real-time submissions need Start.
func New(opts ...Option) *Service {
	s := &Service{
		tax:             taxonomy.Default(),
		thresholds:      engine.DefaultThresholds(),
		notifier:        nopNotifier{},
		workerCount:     runtime.NumCPU(),
		queueSize:       1_000,
		dedupeSize:      10_000,
		shortlistSize:   50_000,
		maxCVLength:     50_000,
		maxJobLength:    10_000,
		enhancedTimeout: 60 * time.Second,
		enhancedEnabled: true,
		realtimeEnabled: true,
		chats:           make(map[string]*conversation),
		chatHistory:     defaultChatHistory,
		chatSessions:    defaultChatSessions,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.engine = engine.New(
		engine.WithTaxonomy(s.tax),
		engine.WithThresholds(s.thresholds),
		engine.WithObserver(observe),
	)
	s.cvParser = cvparser.New(cvparser.WithTaxonomy(s.tax))
	s.jobParser = jobparser.New(jobparser.WithTaxonomy(s.tax))
	return s
}

// Start builds the shortlist store, the queue and the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting screening service")

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.store = repository.NewTreapStore(runCtx, repository.WithMaxEntries(s.shortlistSize))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(runCtx, s.workerCount, s.queue, s, s.store, s.notifier,
		worker.WithReleaser(s.deduper),
		worker.WithJobTimeout(s.enhancedTimeout),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "screening service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("shortlist_size", s.shortlistSize),
		logger.Bool("llm_parsing", s.llm != nil),
	)
	return nil
}

// Stop drains the queue and shuts the pipeline down.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping screening service")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "error closing shortlist store", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "screening service stopped")
}

// Submit queues a real-time analysis. Progress goes to sessionID; an empty
// session gets a fresh one.
func (s *Service) Submit(ctx context.Context, sessionID, cvText, jobText string) (model.AnalysisJob, error) {
	if !s.realtimeEnabled {
		return model.AnalysisJob{}, fmt.Errorf("real-time analysis: %w", ErrFeatureDisabled)
	}
	st, err := s.running()
	if err != nil {
		return model.AnalysisJob{}, err
	}
	if err := s.checkTexts(cvText, jobText); err != nil {
		return model.AnalysisJob{}, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	fp := dedupe.Fingerprint(sessionID, cvText, jobText)
	if st.deduper.SeenAndRecord(ctx, fp) {
		metrics.RecordAnalysisDuplicate()
		return model.AnalysisJob{}, fmt.Errorf("session %s: %w", sessionID, dedupe.ErrDuplicate)
	}

	job := model.AnalysisJob{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		CVText:      cvText,
		JobText:     jobText,
		Fingerprint: fp,
		SubmittedAt: s.now(),
	}
	if err := st.queue.Enqueue(ctx, job); err != nil {
		st.deduper.Unrecord(ctx, fp)
		return model.AnalysisJob{}, fmt.Errorf("enqueue analysis: %w", err)
	}
	s.logger.Debug(ctx, "analysis queued",
		logger.String("analysis_id", job.ID),
		logger.String("session_id", sessionID),
	)
	return job, nil
}

// Analysis returns a stored analysis and its rank within its job shortlist.
func (s *Service) Analysis(ctx context.Context, id string) (model.AnalysisRecord, repository.Entry, error) {
	st, err := s.running()
	if err != nil {
		return model.AnalysisRecord{}, repository.Entry{}, err
	}
	rec, err := st.store.Get(ctx, id)
	if err != nil {
		return model.AnalysisRecord{}, repository.Entry{}, err
	}
	entry, err := st.store.Rank(ctx, id)
	if err != nil {
		return model.AnalysisRecord{}, repository.Entry{}, err
	}
	return rec, entry, nil
}

// Shortlist returns the best n analyses of a job.
func (s *Service) Shortlist(ctx context.Context, jobKey string, n int) ([]repository.Entry, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	return st.store.TopN(ctx, jobKey, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"shortlistSize": s.shortlistSize,
		"llmParsing":    s.llm != nil,
		"llmChat":       s.responder != nil,
		"domains":       len(s.tax.Domains()),
	}
	s.chatMu.Lock()
	stats["chatSessions"] = len(s.chats)
	s.chatMu.Unlock()
	if s.started {
		queueLen := s.queue.Len()
		stats["queueLength"] = queueLen
		stats["inFlight"] = s.deduper.Size()
		stats["analyses"] = s.store.Count(ctx)
		if jobs, ok := s.store.(interface{ Jobs() int }); ok {
			stats["jobs"] = jobs.Jobs()
		}
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}

// Taxonomy returns the taxonomy the service scores with.
func (s *Service) Taxonomy() *taxonomy.Taxonomy { return s.tax }

type pipelineState struct {
	store   repository.Store
	deduper dedupe.Deduper
	queue   queue.Queue
}

func (s *Service) running() (pipelineState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return pipelineState{}, ErrNotStarted
	}
	return pipelineState{store: s.store, deduper: s.deduper, queue: s.queue}, nil
}

func (s *Service) save(ctx context.Context, rec model.AnalysisRecord) error {
	st, err := s.running()
	if err != nil {
		return err
	}
	return st.store.Save(ctx, rec)
}

func (s *Service) checkTexts(cvText, jobText string) error {
	switch {
	case strings.TrimSpace(cvText) == "":
		return fmt.Errorf("%w: cv text is empty", engine.ErrInvalidInput)
	case strings.TrimSpace(jobText) == "":
		return fmt.Errorf("%w: job description is empty", engine.ErrInvalidInput)
	case utf8.RuneCountInString(cvText) > s.maxCVLength:
		return fmt.Errorf("%w: cv text exceeds %d characters", engine.ErrInvalidInput, s.maxCVLength)
	case utf8.RuneCountInString(jobText) > s.maxJobLength:
		return fmt.Errorf("%w: job description exceeds %d characters", engine.ErrInvalidInput, s.maxJobLength)
	}
	return nil
}

type nopNotifier struct{}

func (nopNotifier) Step(context.Context, string, process.Context, process.Status) {}
func (nopNotifier) Complete(context.Context, string, model.AnalysisRecord)         {}
func (nopNotifier) Failed(context.Context, string, string, error)                  {}

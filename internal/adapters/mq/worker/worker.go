// Package worker runs queued real-time analyses and reports their progress.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/process"
	"github.com/okian/cvscreen/pkg/logger"
	"github.com/okian/cvscreen/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultJobTimeout   = 60 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Pipeline turns a queued job into a stored-ready analysis, reporting each
// finished step through progress.
type Pipeline interface {
	Run(ctx context.Context, job model.AnalysisJob, progress func(process.Context)) (model.AnalysisRecord, error)
}

// Saver persists finished analyses.
type Saver interface {
	Save(ctx context.Context, rec model.AnalysisRecord) error
}

// Notifier delivers progress to the session that submitted the job.
type Notifier interface {
	Step(ctx context.Context, sessionID string, pc process.Context, status process.Status)
	Complete(ctx context.Context, sessionID string, rec model.AnalysisRecord)
	Failed(ctx context.Context, sessionID, analysisID string, err error)
}

// Releaser forgets a submission fingerprint once its job is done.
type Releaser interface {
	Unrecord(ctx context.Context, fp string)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.AnalysisJob
}

type nopReleaser struct{}

func (nopReleaser) Unrecord(context.Context, string) {}

// InMemoryWorker processes jobs from a shared channel.
type InMemoryWorker struct {
	jobs       <-chan model.AnalysisJob
	pipeline   Pipeline
	saver      Saver
	notifier   Notifier
	releaser   Releaser
	jobTimeout time.Duration
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from jobs.
func NewInMemoryWorker(jobs <-chan model.AnalysisJob, pipeline Pipeline, saver Saver, notifier Notifier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		jobs:       jobs,
		pipeline:   pipeline,
		saver:      saver,
		notifier:   notifier,
		releaser:   nopReleaser{},
		jobTimeout: defaultJobTimeout,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes jobs until ctx is done, Shutdown is called or the channel closes.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "analysis failed", logger.String("analysis_id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after the job in progress.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job model.AnalysisJob) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	w.notifier.Step(jobCtx, job.SessionID, process.Context{Step: process.StepCVParsing}, process.StatusStarted)
	rec, err := w.pipeline.Run(jobCtx, job, func(pc process.Context) {
		w.notifier.Step(jobCtx, job.SessionID, pc, process.StatusCompleted)
	})
	if err == nil {
		err = w.saver.Save(jobCtx, rec)
	}
	// Released before notifying so a client may resubmit on completion.
	w.releaser.Unrecord(ctx, job.Fingerprint)
	if err != nil {
		metrics.RecordWorkerError()
		w.notifier.Failed(ctx, job.SessionID, job.ID, err)
		return fmt.Errorf("analysis %s: %w", job.ID, err)
	}

	metrics.RecordAnalysis("realtime", string(rec.Score.Label), rec.Score.OverallScore, float64(time.Since(start).Milliseconds()))
	w.notifier.Complete(ctx, job.SessionID, rec)
	w.logger.Info(ctx, "analysis complete",
		logger.String("analysis_id", rec.ID),
		logger.Float64("overall", rec.Score.OverallScore),
		logger.String("label", string(rec.Score.Label)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates a pool. workerCount below one means one worker per CPU.
func NewPool(ctx context.Context, workerCount int, q Queue, pipeline Pipeline, saver Saver, notifier Notifier, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	jobs := q.Dequeue(ctx)
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(jobs, pipeline, saver, notifier, workerOpts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Shutdown closes the queue, lets workers drain it and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	select {
	case <-finished:
		metrics.UpdateWorkerCount(0)
		return nil
	case <-shutdownCtx.Done():
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
}

// Package worker runs the scoring stage: it drains the submission queue,
// scores drawings, and records accepted results in the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/enso/internal/adapters/ledger"
	"github.com/okian/enso/internal/domain/inflight"
	"github.com/okian/enso/internal/domain/model"
	"github.com/okian/enso/internal/domain/vision"
	"github.com/okian/enso/pkg/logger"
	"github.com/okian/enso/pkg/metrics"
)

// Default worker configuration constants. Scoring is CPU bound (decode and
// contour tracing), so the pool defaults to one worker per core rather
// than oversubscribing.
const (
	poolShutdownTimeout   = 30 * time.Second
	workerShutdownTimeout = 5 * time.Second
)

// Job aliases the queue payload for readability.
type Job = model.Job

// Scorer computes a circularity score from raw image bytes.
type Scorer interface {
	Score(ctx context.Context, data []byte) (vision.Result, error)
}

// Recorder persists scored submissions.
type Recorder interface {
	Record(ctx context.Context, sub model.Submission) error
}

// Releaser frees the in-flight slot of a (user, day) pair once its job
// resolves.
type Releaser interface {
	Release(ctx context.Context, key inflight.Key)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes queued submissions until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// ScoringWorker implements Worker: one goroutine scoring one submission at
// a time, which caps concurrent image decodes at the pool size.
type ScoringWorker struct {
	queue    Queue
	scorer   Scorer
	recorder Recorder
	releaser Releaser
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewScoringWorker creates a new worker with configuration options.
func NewScoringWorker(queue Queue, scorer Scorer, recorder Recorder, releaser Releaser, opts ...Option) *ScoringWorker {
	w := &ScoringWorker{
		queue:    queue,
		scorer:   scorer,
		recorder: recorder,
		releaser: releaser,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *ScoringWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Queue closed and drained.
				return
			}
			w.processJob(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *ScoringWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob scores one submission and records the result. The in-flight
// slot is released whatever happens, and exactly one outcome is sent back.
func (w *ScoringWorker) processJob(ctx context.Context, job Job) {
	defer w.releaser.Release(ctx, inflight.Key{UserID: job.UserID, Day: job.Day})

	scoreStart := time.Now()
	result, err := w.scorer.Score(ctx, job.Image)
	metrics.RecordScoringDuration(time.Since(scoreStart).Seconds())

	if err != nil {
		metrics.RecordSubmission(outcomeLabel(err))
		w.logger.Warn(ctx, "submission rejected",
			logger.String("job_id", job.ID),
			logger.Int64("user_id", job.UserID),
			logger.String("day", job.Day.String()),
			logger.Error(err),
		)
		w.reply(ctx, job, model.Outcome{Err: fmt.Errorf("score submission %s: %w", job.ID, err)})
		return
	}

	sub := model.Submission{
		UserID:      job.UserID,
		Day:         job.Day,
		Score:       result.Score,
		SubmittedAt: job.ReceivedAt,
	}

	if err := w.recorder.Record(ctx, sub); err != nil {
		metrics.RecordSubmission(outcomeLabel(err))
		if errors.Is(err, ledger.ErrDuplicateSubmission) {
			w.logger.Info(ctx, "duplicate lost the daily race",
				logger.Int64("user_id", job.UserID),
				logger.String("day", job.Day.String()),
			)
		} else {
			w.logger.Error(ctx, "recording scored submission failed",
				logger.String("job_id", job.ID),
				logger.Int64("user_id", job.UserID),
				logger.Float64("score", result.Score),
				logger.Error(err),
			)
		}
		// The drawing scored fine; the caller still gets the number even
		// though it was not saved.
		w.reply(ctx, job, model.Outcome{Submission: sub, Err: err})
		return
	}

	metrics.RecordSubmission("accepted")
	metrics.ObserveScore(result.Score)
	w.logger.Debug(ctx, "submission recorded",
		logger.String("job_id", job.ID),
		logger.Int64("user_id", job.UserID),
		logger.Float64("score", result.Score),
		logger.Int("contours", result.Contours),
	)
	w.reply(ctx, job, model.Outcome{Submission: sub})
}

// reply delivers the outcome without ever blocking the worker. The reply
// channel is buffered with capacity 1 and each job gets exactly one send.
func (w *ScoringWorker) reply(ctx context.Context, job Job, out model.Outcome) {
	if job.Result == nil {
		return
	}
	select {
	case job.Result <- out:
	default:
		w.logger.Error(ctx, "job reply channel full, outcome dropped",
			logger.String("job_id", job.ID),
		)
	}
}

// outcomeLabel buckets a failure for the submissions metric.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, vision.ErrDecodeFailed):
		return "rejected_decode"
	case errors.Is(err, vision.ErrNoShapeFound):
		return "rejected_no_shape"
	case errors.Is(err, ledger.ErrDuplicateSubmission):
		return "duplicate"
	case errors.Is(err, ledger.ErrStore):
		return "store_failed"
	default:
		return "failed"
	}
}

// Pool manages the scoring workers.
type Pool struct {
	workers []*ScoringWorker
	queue   Queue

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a pool of workerCount scoring workers. A count below one
// falls back to one worker per CPU.
func NewPool(workerCount int, queue Queue, scorer Scorer, recorder Recorder, releaser Releaser) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:  make([]*ScoringWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewScoringWorker(
			queue,
			scorer,
			recorder,
			releaser,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop stops all workers without draining the queue.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, worker := range p.workers {
		close(worker.shutdown)
	}
	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue, lets workers drain what was already accepted,
// and waits for them to finish.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}

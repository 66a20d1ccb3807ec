// Package service provides the core business service that implements
// the dependencies required by the HTTP API: the daily circle-drawing
// submission pipeline and its ranked leaderboard.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/enso/internal/adapters/ledger"
	jobqueue "github.com/okian/enso/internal/adapters/mq/queue"
	workerpool "github.com/okian/enso/internal/adapters/mq/worker"
	"github.com/okian/enso/internal/announce"
	challenge "github.com/okian/enso/internal/domain/challenge"
	"github.com/okian/enso/internal/domain/inflight"
	"github.com/okian/enso/internal/domain/model"
	"github.com/okian/enso/internal/domain/vision"
	"github.com/okian/enso/pkg/logger"
	"github.com/okian/enso/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize    = 256
	stopDrainTimeout    = 30 * time.Second
	submissionIDPrefix  = "sub-"
	defaultDatabasePath = "enso.db"
)

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank        int       `json:"rank"`
	UserID      int64     `json:"user_id"`
	Score       float64   `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Service implements the submission pipeline: duplicate check, in-flight
// gate, queued scoring, and the durable ledger behind the leaderboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	ledger    ledger.Ledger
	scorer    vision.Scorer
	gate      inflight.Gate
	queue     *jobqueue.InMemoryQueue
	pool      *workerpool.Pool
	announcer *announce.Announcer
	clock     challenge.Clock

	// Configuration
	dbPath      string
	queueSize   int
	workerCount int
	threshold   int
	maxPixels   int

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the SQLite database path. ledger.MemoryPath keeps the
// ledger in process memory.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLuminanceThreshold sets the scorer's ink cutoff.
func WithLuminanceThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithMaxImagePixels bounds the decoded image area.
func WithMaxImagePixels(px int) Option {
	return func(s *Service) {
		if px > 0 {
			s.maxPixels = px
		}
	}
}

// WithClock sets the canonical clock the challenge day derives from.
func WithClock(clock challenge.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLedger injects a ledger, overriding the SQLite one Start would open.
func WithLedger(l ledger.Ledger) Option {
	return func(s *Service) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithAnnouncer attaches a daily challenge announcer.
func WithAnnouncer(a *announce.Announcer) Option {
	return func(s *Service) {
		if a != nil {
			s.announcer = a
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:      defaultDatabasePath,
		queueSize:   defaultQueueSize,
		workerCount: runtime.NumCPU(),
		clock:       challenge.UTCClock{},
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting circle challenge service...")

	if s.ledger == nil {
		l, err := ledger.Open(s.dbPath)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		s.ledger = l
		s.logger.Info(ctx, "submission ledger open", logger.String("path", s.dbPath))
	}

	var visionOpts []vision.Option
	if s.threshold > 0 {
		visionOpts = append(visionOpts, vision.WithLuminanceThreshold(s.threshold))
	}
	if s.maxPixels > 0 {
		visionOpts = append(visionOpts, vision.WithMaxPixels(s.maxPixels))
	}
	s.scorer = vision.New(visionOpts...)

	s.gate = inflight.NewGate()
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.scorer, s.ledger, s.gate)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.pool.Start(runCtx)
	if s.announcer != nil {
		s.announcer.Start(runCtx)
	}

	s.started = true
	s.logger.Info(ctx, "circle challenge service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("day", challenge.Today(s.clock).String()),
	)

	return nil
}

// Stop gracefully shuts down the service: close intake, drain accepted
// jobs, then release the ledger.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopDrainTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping circle challenge service...")

	if s.pool != nil {
		// Shutdown closes the queue and waits for workers to drain it.
		_ = s.pool.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			s.logger.Error(ctx, "closing ledger failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "circle challenge service stopped")
}

// Today returns the current challenge day from the canonical clock.
func (s *Service) Today() challenge.Day {
	return challenge.Today(s.clock)
}

// Submit runs one drawing through the pipeline: duplicate check, in-flight
// gate, queued scoring, ledger write. It blocks until the submission
// resolves or ctx is canceled. The returned submission carries the score
// even when the error is a ledger storage failure, so callers can report
// "scored but unsaved" accurately.
func (s *Service) Submit(ctx context.Context, userID int64, image []byte) (model.Submission, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return model.Submission{}, ErrNotStarted
	}

	// The day is derived exactly once; the same value keys the duplicate
	// check, the gate, and the eventual ledger row.
	now := s.clock.Now()
	day := challenge.DayOf(now)

	// Fast path: users who already hold a score today never cost a decode.
	submitted, err := s.ledger.HasSubmitted(ctx, userID, day)
	if err != nil {
		return model.Submission{}, err
	}
	if submitted {
		metrics.RecordSubmission("duplicate")
		return model.Submission{}, ErrAlreadySubmitted
	}

	key := inflight.Key{UserID: userID, Day: day}
	if !s.gate.Acquire(ctx, key) {
		metrics.RecordSubmission("in_flight")
		return model.Submission{}, ErrSubmissionInFlight
	}
	metrics.UpdateInflightPairs(s.gate.Size())

	job := model.Job{
		ID:         submissionIDPrefix + uuid.NewString(),
		UserID:     userID,
		Day:        day,
		Image:      image,
		ReceivedAt: now,
		Result:     make(chan model.Outcome, 1),
	}

	if !s.queue.Enqueue(ctx, job) {
		s.gate.Release(ctx, key)
		metrics.UpdateInflightPairs(s.gate.Size())
		return model.Submission{}, ErrBusy
	}

	select {
	case out := <-job.Result:
		metrics.UpdateInflightPairs(s.gate.Size())
		if out.Err != nil {
			// The storage key is the true uniqueness enforcement; a race
			// that slipped past the fast path resolves here.
			if errors.Is(out.Err, ledger.ErrDuplicateSubmission) {
				return model.Submission{}, ErrAlreadySubmitted
			}
			return out.Submission, out.Err
		}
		return out.Submission, nil
	case <-ctx.Done():
		// The worker still resolves the job and releases the gate; the
		// buffered reply channel keeps it from blocking on us.
		return model.Submission{}, fmt.Errorf("submission abandoned: %w", ctx.Err())
	}
}

// Leaderboard returns the ranked entries for a day, best first, truncated
// to limit when limit is positive. A zero day means today.
func (s *Service) Leaderboard(ctx context.Context, day challenge.Day, limit int) ([]Entry, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	if day.IsZero() {
		day = challenge.Today(s.clock)
	}

	rows, err := s.ledger.RankedScores(ctx, day)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{
			Rank:        i + 1,
			UserID:      row.UserID,
			Score:       row.Score,
			SubmittedAt: row.SubmittedAt,
		}
	}
	return entries, nil
}

// HasSubmitted reports whether the user already holds a score for the day.
func (s *Service) HasSubmitted(ctx context.Context, userID int64, day challenge.Day) (bool, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return false, ErrNotStarted
	}
	return s.ledger.HasSubmitted(ctx, userID, day)
}

// AnnounceNow triggers the challenge announcement immediately.
func (s *Service) AnnounceNow(ctx context.Context) error {
	s.mu.RLock()
	a := s.announcer
	s.mu.RUnlock()
	if a == nil {
		return announce.ErrNoWebhook
	}
	return a.AnnounceNow(ctx)
}

// NextAnnouncement returns when the daily prompt next fires; the zero time
// when no announcer is attached.
func (s *Service) NextAnnouncement() time.Time {
	s.mu.RLock()
	a := s.announcer
	s.mu.RUnlock()
	if a == nil {
		return time.Time{}
	}
	return a.NextAnnouncement()
}

// UpdateAnnouncerSettings applies reloaded announcer configuration.
func (s *Service) UpdateAnnouncerSettings(webhookURL, timezone, mention string) error {
	s.mu.RLock()
	a := s.announcer
	s.mu.RUnlock()
	if a == nil {
		return announce.ErrNoWebhook
	}
	return a.UpdateSettings(webhookURL, timezone, mention)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if !s.started {
		return stats
	}

	day := challenge.Today(s.clock)
	stats["day"] = day.String()
	stats["workerCount"] = s.pool.Size()
	stats["queueLength"] = s.queue.Len(ctx)
	stats["inflight"] = s.gate.Size()

	if total, err := s.ledger.Count(ctx); err == nil {
		stats["totalSubmissions"] = total
		if today, derr := s.ledger.CountDay(ctx, day); derr == nil {
			stats["todaySubmissions"] = today
			metrics.UpdateLedgerSize(total, today)
		}
	}

	metrics.UpdateInflightPairs(s.gate.Size())

	return stats
}

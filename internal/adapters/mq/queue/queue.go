// Package queue buffers submissions between intake and the scoring workers.
//
// The queue is deliberately small: every queued job holds a caller waiting
// on its reply channel, so depth is backpressure, not storage.
package queue

import (
	"context"
	"sync"

	"github.com/okian/enso/internal/domain/model"
	"github.com/okian/enso/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 256
)

// Job is the payload type flowing through the queue.
type Job = model.Job

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue. It returns false when the queue is
	// full or closed; the caller owns the backpressure response and must
	// resolve the job's reply channel itself.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns the channel workers consume jobs from. The channel
	// is closed once the queue closes and its buffer drains, so shutdown
	// never strands an accepted job.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops intake. Buffered jobs remain consumable.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueDepth(0, q.capacity)

	return q
}

// Enqueue adds a job to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool {
	// RLock excludes Close, so the send below can never hit a closed channel.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejection("closed")
		return false
	}

	select {
	case q.jobs <- j:
		metrics.UpdateQueueDepth(len(q.jobs), q.capacity)
		return true
	case <-ctx.Done():
		metrics.RecordQueueRejection("cancelled")
		return false
	default:
		metrics.RecordQueueRejection("full")
		return false
	}
}

// Dequeue returns the channel workers consume jobs from. The internal
// channel is handed out directly: a job read by a worker is processed by
// that worker, never dropped between channels on cancellation.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Job {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.jobs)
	metrics.UpdateQueueDepth(size, q.capacity)
	return size
}

// Close stops intake and lets consumers drain the remaining buffer.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.jobs)
	q.closed = true

	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

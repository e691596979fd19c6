// Package queue holds prediction jobs between the HTTP handlers and the
// persistence workers.
package queue

import (
	"context"
	"sync"

	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Job is the payload flowing through the queue.
type Job = model.PredictionJob

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a job. It returns false when the queue is full or closed.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns the channel jobs are delivered on. The channel is
	// closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	Len(ctx context.Context) int
	Capacity() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool { //nolint:gocritic // hugeParam: jobs travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		metrics.RecordQueueRejected()
		return false
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs))
		return true
	default:
		metrics.RecordQueueRejected()
		return false
	}
}

func (q *InMemoryQueue) Dequeue(context.Context) <-chan Job {
	return q.jobs
}

func (q *InMemoryQueue) Len(context.Context) int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	return size
}

func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops accepting jobs. Jobs already buffered remain readable.
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

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

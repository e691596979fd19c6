// Package worker drains the prediction queue into the document store and
// announces each stored prediction.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/sves-daq/backend/internal/adapters/mq/queue"
	"github.com/sves-daq/backend/internal/adapters/notify"
	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/pkg/logger"
	"github.com/sves-daq/backend/pkg/metrics"
)

const (
	defaultJobTimeout   = 10 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Persister stores a document under a generated id.
type Persister interface {
	Add(ctx context.Context, collection string, doc model.Document) (string, error)
}

// Notifier announces a stored prediction.
type Notifier interface {
	Publish(ctx context.Context, n notify.PredictionNotification) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker persists jobs until its queue closes or it is stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	persister  Persister
	notifier   Notifier
	name       string
	jobTimeout time.Duration

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

func NewInMemoryWorker(q Queue, persister Persister, notifier Notifier, opts ...Option) *InMemoryWorker {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	w := &InMemoryWorker{
		queue:      q,
		persister:  persister,
		notifier:   notifier,
		name:       "worker",
		jobTimeout: defaultJobTimeout,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the queue channel closes, ctx is done or
// Shutdown is called. A closed queue is drained first.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, j); err != nil {
				w.logger.Error(ctx, "prediction job failed",
					logger.String("jobId", j.JobID),
					logger.String("testId", j.TestID),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker without waiting for the queue to drain.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown %s: %w", w.name, ctx.Err())
	}
}

// processJob stores the job and publishes a notification. The job keeps
// going when the request that produced it has already finished, so it
// runs on a context detached from cancellation and bounded by jobTimeout.
func (w *InMemoryWorker) processJob(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	start := time.Now()
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.jobTimeout)
	defer cancel()

	id, err := w.persister.Add(jobCtx, model.CollectionPredictions, j.Document())
	metrics.RecordWorkerJob(float64(time.Since(start).Microseconds())/1000, err != nil)
	if err != nil {
		return fmt.Errorf("persist prediction: %w", err)
	}

	n := notify.PredictionNotification{
		PredictionID: id,
		TestID:       j.TestID,
		Model:        j.ModelType,
		Value:        j.Value,
		Confidence:   j.Confidence,
		Timestamp:    j.Timestamp,
	}
	if err := w.notifier.Publish(jobCtx, n); err != nil {
		// The prediction is stored; a lost notification is only logged.
		w.logger.Warn(ctx, "prediction notification failed",
			logger.String("predictionId", id), logger.Error(err))
	}
	return nil
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below one uses NumCPU.
func NewPool(workerCount int, q Queue, persister Persister, notifier Notifier) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, persister, notifier, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

func (p *Pool) Size() int { return len(p.workers) }

func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and lets the workers drain what is buffered.
// Workers still busy when ctx (or the pool timeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			timedOut++
			w.stopOnce.Do(func() { close(w.shutdown) })
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut > 0 {
		p.logger.Warn(ctx, "workers did not drain before shutdown deadline", logger.Int("workers", timedOut))
		return fmt.Errorf("worker pool shutdown: %d workers timed out: %w", timedOut, drainCtx.Err())
	}
	return nil
}

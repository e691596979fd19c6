// Package service wires the prediction engine, document store and
// persistence pipeline into the operations the HTTP API depends on.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/sves-daq/backend/internal/adapters/mq/queue"
	"github.com/sves-daq/backend/internal/adapters/mq/worker"
	"github.com/sves-daq/backend/internal/adapters/notify"
	"github.com/sves-daq/backend/internal/adapters/repository"
	"github.com/sves-daq/backend/internal/domain/dedupe"
	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/prediction"
	"github.com/sves-daq/backend/pkg/logger"
	"github.com/sves-daq/backend/pkg/metrics"
)

const (
	defaultQueueSize   = 10000
	defaultDedupeSize  = 100000
	defaultPluginDelay = time.Second
	stopTimeout        = 30 * time.Second
)

// Service implements the API dependencies of the SVES-DAQ backend.
type Service struct {
	mu sync.RWMutex

	engine   *prediction.Engine
	store    repository.Store
	notifier notify.Notifier
	deduper  dedupe.Deduper
	queue    queue.Queue
	pool     *worker.Pool

	workerCount int
	queueSize   int
	dedupeSize  int
	pluginDelay time.Duration
	now         func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service. Without WithStore it keeps documents in memory.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		pluginDelay: defaultPluginDelay,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = prediction.NewEngine()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start creates the persistence pipeline and starts its workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store, s.notifier)
	// Workers outlive the start context; Stop drains them.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains the persistence queue, then closes the notifier and store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping service")

	ctx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.notifier.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}

	s.started = false
	s.logger.Info(ctx, "service stopped")
	return errors.Join(errs...)
}

// Store exposes the document store, mostly for seeding and tests.
func (s *Service) Store() repository.Store {
	return s.store
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	stats["queueLength"] = s.queue.Len(ctx)
	stats["idempotencyKeys"] = s.deduper.Size()
	if n, err := s.store.Count(ctx, model.CollectionPredictions); err == nil {
		stats["storedPredictions"] = n
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	return stats
}

// pipeline returns the persistence components once Start has run.
func (s *Service) pipeline() (dedupe.Deduper, queue.Queue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deduper, s.queue, s.started
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(prediction.TimestampLayout)
}

package service

import (
	"time"

	"github.com/sves-daq/backend/internal/adapters/notify"
	"github.com/sves-daq/backend/internal/adapters/repository"
	"github.com/sves-daq/backend/internal/domain/prediction"
	"github.com/sves-daq/backend/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the document store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithNotifier sets where stored predictions are announced.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithEngine replaces the prediction engine, mostly to pin jitter and clock.
func WithEngine(e *prediction.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the persistence queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithPluginRunDelay sets the simulated plugin processing time. Zero runs
// plugins immediately.
func WithPluginRunDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.pluginDelay = d
		}
	}
}

// WithClock sets the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

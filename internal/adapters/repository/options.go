package repository

import (
	"github.com/sves-daq/backend/pkg/logger"
)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithIDGenerator replaces uuid ids, mostly for tests.
func WithIDGenerator(fn func() string) MemoryOption {
	return func(s *MemoryStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// GormOption configures a GormStore.
type GormOption func(*gormSettings)

type gormSettings struct {
	log         logger.Logger
	autoMigrate bool
	maxOpen     int
}

// WithLogger routes gorm's SQL log through l.
func WithLogger(l logger.Logger) GormOption {
	return func(s *gormSettings) { s.log = l }
}

// WithAutoMigrate controls creation of the documents table on open.
func WithAutoMigrate(enabled bool) GormOption {
	return func(s *gormSettings) { s.autoMigrate = enabled }
}

// WithMaxOpenConns caps the connection pool.
func WithMaxOpenConns(n int) GormOption {
	return func(s *gormSettings) {
		if n > 0 {
			s.maxOpen = n
		}
	}
}

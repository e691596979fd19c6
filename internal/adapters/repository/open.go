package repository

import (
	"context"
	"fmt"

	"github.com/sves-daq/backend/pkg/logger"
)

// DriverMemory selects the in-process store.
const DriverMemory = "memory"

// Open returns the store for driver: memory, mysql or sqlite.
func Open(ctx context.Context, driver, dsn string, log logger.Logger) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverMySQL, DriverSQLite:
		opts := []GormOption{WithAutoMigrate(true)}
		if log != nil {
			opts = append(opts, WithLogger(log))
		}
		if driver == DriverSQLite {
			// SQLite serialises writers; one connection avoids lock errors.
			opts = append(opts, WithMaxOpenConns(1))
		}
		s, err := OpenGorm(ctx, driver, dsn, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
}

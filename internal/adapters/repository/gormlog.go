package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sves-daq/backend/pkg/logger"
)

const slowQuery = 200 * time.Millisecond

// gormLogger forwards gorm's log to the service logger.
type gormLogger struct {
	log   logger.Logger
	level gormlogger.LogLevel
}

func newGormLogger(l logger.Logger) gormlogger.Interface {
	return &gormLogger{log: l.Named("gorm"), level: gormlogger.Warn}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.log.Info(ctx, msg, logger.Any("args", args))
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.log.Warn(ctx, msg, logger.Any("args", args))
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.log.Error(ctx, msg, logger.Any("args", args))
	}
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.log.Error(ctx, "query failed", logger.String("sql", sql), logger.Int("rows", int(rows)),
			logger.Duration("elapsed", elapsed), logger.Error(err))
	case elapsed > slowQuery && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn(ctx, "slow query", logger.String("sql", sql), logger.Int("rows", int(rows)),
			logger.Duration("elapsed", elapsed))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug(ctx, "query", logger.String("sql", sql), logger.Int("rows", int(rows)),
			logger.Duration("elapsed", elapsed))
	}
}

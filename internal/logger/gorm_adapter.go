package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// slowQuery is the duration above which a preference store query is
// reported. The store holds a handful of rows; anything slower than this
// points at a locked sqlite file or a remote postgres.
const slowQuery = 200 * time.Millisecond

// GormAdapter implements gorm's logger.Interface for the preference store.
// Entries carry the store driver and, when the query runs under a view
// server request, its request id.
type GormAdapter struct {
	logger *Logger
	level  gormlogger.LogLevel
	driver string
}

// NewGormAdapter creates an adapter logging at the given application level
func NewGormAdapter(logger *Logger, level, driver string) *GormAdapter {
	return &GormAdapter{logger: logger, level: gormLevel(level), driver: driver}
}

// LogMode returns a copy of the adapter at level
func (g *GormAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *GormAdapter) fields(extra map[string]interface{}) *FieldLogger {
	f := map[string]interface{}{"store": g.driver}
	for k, v := range extra {
		f[k] = v
	}
	return g.logger.WithFields(f)
}

func (g *GormAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Info {
		g.fields(nil).InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (g *GormAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.fields(nil).WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (g *GormAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Error {
		g.fields(nil).ErrorContext(ctx, fmt.Sprintf(msg, data...), nil)
	}
}

// Trace reports failed and slow queries, and every query at debug level.
// A missing preference row is the normal first-run case and is not logged.
func (g *GormAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	f := g.fields(map[string]interface{}{
		"sql":        sql,
		"rows":       rows,
		"elapsed_ms": elapsed.Milliseconds(),
	})

	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	switch {
	case failed && g.level >= gormlogger.Error:
		f.ErrorContext(ctx, "preference store query failed", err)
	case elapsed > slowQuery && g.level >= gormlogger.Warn:
		f.WarnContext(ctx, "slow preference store query")
	case g.level >= gormlogger.Info:
		f.DebugContext(ctx, "preference store query")
	}
}

// gormLevel maps logging.store.level to gorm: SQL statements are only shown
// at debug.
func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

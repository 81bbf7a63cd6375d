// Package gormlog forwards gorm statement traces to the global zerolog logger.
package gormlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config of the adapter.
type Config struct {
	// SlowThreshold marks statements slower than this at warn level. Zero
	// disables the check.
	SlowThreshold time.Duration

	// Component is added to every event.
	Component string
}

// ConfigDefault is the default config.
var ConfigDefault = Config{ //nolint:gochecknoglobals
	SlowThreshold: time.Second,
	Component:     "gorm",
}

// Logger implements gorm's logger.Interface on top of zerolog.
type Logger struct {
	cfg   Config
	level gormlogger.LogLevel
}

// New creates a gorm logger. Without config ConfigDefault is used.
func New(config ...Config) *Logger {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}

	return &Logger{cfg: cfg, level: gormlogger.Info}
}

// LogMode returns a copy logging at level.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.level = level

	return &c
}

// Info logs at debug level, gorm info messages are diagnostics.
func (l *Logger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.event(zerolog.DebugLevel).Msg(fmt.Sprintf(msg, args...))
	}
}

// Warn logs at warn level.
func (l *Logger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.event(zerolog.WarnLevel).Msg(fmt.Sprintf(msg, args...))
	}
}

// Error logs at error level.
func (l *Logger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.event(zerolog.ErrorLevel).Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace logs one executed statement.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	var ev *zerolog.Event

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		ev = l.event(zerolog.ErrorLevel).Err(err)
	case l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold && l.level >= gormlogger.Warn:
		ev = l.event(zerolog.WarnLevel).Dur("threshold", l.cfg.SlowThreshold)
	case l.level >= gormlogger.Info:
		ev = l.event(zerolog.DebugLevel)
	default:
		return
	}

	sql, rows := fc()

	ev.Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("statement")
}

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	return log.WithLevel(level).Str("component", l.cfg.Component)
}

package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// GormLogger sends the snapshot store's SQL log to zap, tagged with the request's ids
type GormLogger struct {
	logger        *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
}

var _ gormlogger.Interface = (*GormLogger)(nil)

// NewGormLogger creates a GORM logger under the "storage" name
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowThreshold
	}
	return &GormLogger{
		logger:        zapLogger.Named("storage"),
		logLevel:      level,
		slowThreshold: slowThreshold,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.logLevel < min {
		return
	}
	WithLogger(ctx, l.logger).Zap().Sugar().Logf(lvl, msg, data...)
}

// Trace logs one statement. A missing row is a normal snapshot miss and is not logged.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent || errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	msg, lvl, extra := l.classify(elapsed, err)
	if msg == "" {
		return
	}

	sql, rows := fc()
	fields := append([]zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}, extra...)
	WithLogger(ctx, l.logger).Zap().Log(lvl, msg, fields...)
}

func (l *GormLogger) classify(elapsed time.Duration, err error) (string, zapcore.Level, []zap.Field) {
	switch {
	case err != nil:
		if l.logLevel >= gormlogger.Error {
			return "SQL Error", zapcore.ErrorLevel, []zap.Field{zap.Error(err)}
		}
	case elapsed > l.slowThreshold:
		if l.logLevel >= gormlogger.Warn {
			return "Slow SQL", zapcore.WarnLevel, []zap.Field{zap.Duration("threshold", l.slowThreshold)}
		}
	}
	if l.logLevel >= gormlogger.Info {
		return "SQL Query", zapcore.DebugLevel, nil
	}
	return "", zapcore.DebugLevel, nil
}

// MapGormLogLevel maps the configured log level name to a GORM log level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey int

const (
	loggerCtxKey ctxKey = iota
	requestIDCtxKey
)

// WithContext attaches logger to ctx. The logger should not already carry
// request or trace ids; ContextLogger adds them when it writes.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerCtxKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}

// ContextLogger writes through a base logger, adding the request id and the
// active span's trace and span ids from its context to every entry.
//
//	logger.L(ctx).Info("order created", zap.Int64("order_id", id))
type ContextLogger struct {
	ctx  context.Context
	base *zap.Logger
}

// L returns a ContextLogger over the logger attached to ctx
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, base: FromContext(ctx)}
}

// WithLogger returns a ContextLogger for ctx that writes to logger instead
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextLogger{ctx: ctx, base: logger}
}

func (cl *ContextLogger) contextFields() []zap.Field {
	var fields []zap.Field
	if id := GetRequestID(cl.ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if sc := trace.SpanFromContext(cl.ctx).SpanContext(); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return fields
}

func (cl *ContextLogger) log(lvl zapcore.Level, msg string, fields []zap.Field) {
	ce := cl.base.WithOptions(zap.AddCallerSkip(2)).Check(lvl, msg)
	if ce == nil {
		return
	}
	ce.Write(append(cl.contextFields(), fields...)...)
}

// With returns a child ContextLogger carrying fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, base: cl.base.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.log(zapcore.DebugLevel, msg, fields)
}

func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.log(zapcore.InfoLevel, msg, fields)
}

func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.log(zapcore.WarnLevel, msg, fields)
}

func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.log(zapcore.ErrorLevel, msg, fields)
}

// Zap returns a plain zap logger with the context ids baked in
func (cl *ContextLogger) Zap() *zap.Logger {
	if fields := cl.contextFields(); len(fields) > 0 {
		return cl.base.With(fields...)
	}
	return cl.base
}

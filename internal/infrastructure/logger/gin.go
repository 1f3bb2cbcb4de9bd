package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ginLoggerKey = "logger"

// AccessLogOption tunes the access log written by GinMiddleware
type AccessLogOption func(*accessLog)

type accessLog struct {
	quiet map[string]struct{}
}

// WithQuietPaths logs successful requests on these paths at debug level.
// Failures are still reported at warn or error.
func WithQuietPaths(paths ...string) AccessLogOption {
	return func(a *accessLog) {
		for _, p := range paths {
			a.quiet[p] = struct{}{}
		}
	}
}

// GinMiddleware writes one access log line per request and hands a request-scoped
// logger to handlers, on the gin context and on the request context.
func GinMiddleware(logger *zap.Logger, opts ...AccessLogOption) gin.HandlerFunc {
	al := &accessLog{quiet: map[string]struct{}{}}
	for _, opt := range opts {
		opt(al)
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetString("request_id")

		reqLogger := logger.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		ctx := WithContext(c.Request.Context(), reqLogger)
		if requestID != "" {
			ctx = WithRequestID(ctx, requestID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set(ginLoggerKey, WithLogger(ctx, reqLogger).Zap())

		c.Next()

		status := c.Writer.Status()
		_, quiet := al.quiet[c.Request.URL.Path]
		ce := WithLogger(c.Request.Context(), reqLogger).Zap().Check(accessLevel(status, quiet), "HTTP Request")
		if ce == nil {
			return
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" && route != c.Request.URL.Path {
			fields = append(fields, zap.String("route", route))
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		ce.Write(fields...)
	}
}

func accessLevel(status int, quiet bool) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case quiet:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Recovery turns a handler panic into a logged 500 with the API error envelope
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := c.GetString("request_id")
			logger.Error("Panic recovered",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("error", rec),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, panicEnvelope(requestID))
		}()
		c.Next()
	}
}

func panicEnvelope(requestID string) gin.H {
	body := gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	}
	if requestID != "" {
		body["request_id"] = requestID
	}
	return gin.H{"success": false, "error": body}
}

// GetGinLogger returns the request-scoped logger, or a no-op logger outside GinMiddleware
func GetGinLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ginLoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

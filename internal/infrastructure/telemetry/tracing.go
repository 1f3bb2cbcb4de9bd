package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for checkout and gateway spans
const TracerName = "gastroshop-storefront"

// Span attribute keys
const (
	SpanAttrOrderID       = "order_id"
	SpanAttrPaymentID     = "payment_id"
	SpanAttrPaymentStatus = "payment_status"
	SpanAttrCheckoutState = "checkout_state"
	SpanAttrLineCount     = "line_count"
	SpanAttrAmount        = "amount_cents"
	SpanAttrSlug          = "slug"
)

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartServiceSpan starts an internal span named "<service>.<method>". keyValues
// alternate key and value, as in SetAttributes. The caller ends the span.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "submit", telemetry.SpanAttrLineCount, n)
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, keyValues ...any) (context.Context, trace.Span) {
	return tracer().Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(kvAttributes(keyValues)...))
}

// StartClientSpan starts a span around a call to the storefront backend
func StartClientSpan(ctx context.Context, name string, keyValues ...any) (context.Context, trace.Span) {
	return tracer().Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(kvAttributes(keyValues)...))
}

// SetAttributes sets alternating key/value pairs on span; pairs whose key is not a string are dropped
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	if attrs := kvAttributes(keyValues); len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}

// RecordError records err on span and marks the span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(kvAttributes(keyValues)...))
}

// GetTraceID returns the hex trace id of the span in ctx, or "" without one
func GetTraceID(ctx context.Context) string {
	if id := trace.SpanContextFromContext(ctx).TraceID(); id.IsValid() {
		return id.String()
	}
	return ""
}

func kvAttributes(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, attributeOf(key, keyValues[i+1]))
		}
	}
	return attrs
}

func attributeOf(key string, value any) attribute.KeyValue {
	k := attribute.Key(key)
	switch v := value.(type) {
	case string:
		return k.String(v)
	case bool:
		return k.Bool(v)
	case int:
		return k.Int(v)
	case int32:
		return k.Int64(int64(v))
	case int64:
		return k.Int64(v)
	case float64:
		return k.Float64(v)
	case time.Duration:
		return k.Int64(v.Milliseconds())
	case []string:
		return k.StringSlice(v)
	case fmt.Stringer:
		return k.String(v.String())
	default:
		return k.String(fmt.Sprint(v))
	}
}

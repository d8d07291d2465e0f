package client

import (
	"context"
	"time"

	"github.com/fjacquet/hrdir/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerWrapper makes tracing nil-safe: without a provider every span is a noop.
type TracerWrapper struct {
	tracer trace.Tracer
}

// NewTracerWrapper creates a wrapper around tp, falling back to a noop provider.
func NewTracerWrapper(tp trace.TracerProvider, instrumentationName string) *TracerWrapper {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &TracerWrapper{tracer: tp.Tracer(instrumentationName)}
}

// StartSpan starts a span of the given kind with optional initial attributes.
func (w *TracerWrapper) StartSpan(ctx context.Context, operation string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return w.tracer.Start(ctx, operation, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// Tracer returns the underlying tracer.
func (w *TracerWrapper) Tracer() trace.Tracer {
	return w.tracer
}

// recordHTTPAttributes records HTTP semantic convention attributes on the span.
func recordHTTPAttributes(span trace.Span, method, url string, statusCode, attempt int, responseSize int64, duration time.Duration) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.String(telemetry.AttrHTTPMethod, method),
		attribute.String(telemetry.AttrHTTPURL, url),
		attribute.Int(telemetry.AttrHTTPStatusCode, statusCode),
		attribute.Int(telemetry.AttrHTTPAttempt, attempt),
		attribute.Int64(telemetry.AttrHTTPResponseContentLength, responseSize),
		attribute.Float64(telemetry.AttrHTTPDurationMS, float64(duration.Milliseconds())),
	)
}

// recordError records an error on the span and sets the span status to error.
func recordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(telemetry.AttrError, err.Error()))
}

// injectTraceContext adds W3C trace context headers to a copy of headers.
// Nothing is added unless a global propagator is configured.
func injectTraceContext(ctx context.Context, headers map[string]string) map[string]string {
	carrier := propagation.MapCarrier{}
	for k, v := range headers {
		carrier.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	result := make(map[string]string, len(carrier))
	for k, v := range carrier {
		result[k] = v
	}
	return result
}

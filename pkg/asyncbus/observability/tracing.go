package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the asyncbus tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("asyncbus")

// SpanManager handles dispatch span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartDispatchSpan starts a span covering one fan-out dispatch.
	StartDispatchSpan(ctx context.Context) (context.Context, trace.Span)

	// EndSpan completes a dispatch span.
	EndSpan(span trace.Span)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartDispatchSpan starts a span for one fan-out dispatch.
func (m *otelSpanManager) StartDispatchSpan(ctx context.Context) (context.Context, trace.Span) {
	return tracer.Start(ctx, "asyncbus.dispatch",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan completes a dispatch span.
func (m *otelSpanManager) EndSpan(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

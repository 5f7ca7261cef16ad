// Package observability provides metrics and tracing for the bus.
//
// Metrics and spans go through OpenTelemetry; both have no-op
// implementations for when observability is disabled.
package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records bus metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublished records an event accepted into the queue.
	RecordPublished(ctx context.Context)

	// RecordDropped records an event rejected because the queue was full.
	// Unlike the bus's one-time log diagnostic, every drop is counted.
	RecordDropped(ctx context.Context)

	// RecordDispatched records one completed dispatch with its duration.
	RecordDispatched(ctx context.Context, duration time.Duration)

	// RecordQueueDepth samples the number of pending events.
	RecordQueueDepth(ctx context.Context, depth int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	published       metric.Int64Counter
	dropped         metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	queueDepth      metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the instruments on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("asyncbus")

	published, err := meter.Int64Counter("asyncbus.events.published",
		metric.WithDescription("Number of events accepted into the queue"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("asyncbus.events.dropped",
		metric.WithDescription("Number of events dropped on queue overflow"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("asyncbus.dispatch.latency_ms",
		metric.WithDescription("Fan-out dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64Histogram("asyncbus.queue.depth",
		metric.WithDescription("Pending events sampled at publish time"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		published:       published,
		dropped:         dropped,
		dispatchLatency: dispatchLatency,
		queueDepth:      queueDepth,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If instrument initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPublished records an accepted event.
func (m *otelMetrics) RecordPublished(ctx context.Context) {
	m.published.Add(ctx, 1)
}

// RecordDropped records an overflow drop.
func (m *otelMetrics) RecordDropped(ctx context.Context) {
	m.dropped.Add(ctx, 1)
}

// RecordDispatched records a completed dispatch.
func (m *otelMetrics) RecordDispatched(ctx context.Context, duration time.Duration) {
	m.dispatchLatency.Record(ctx, float64(duration.Milliseconds()))
}

// RecordQueueDepth samples the pending-event count.
func (m *otelMetrics) RecordQueueDepth(ctx context.Context, depth int64) {
	m.queueDepth.Record(ctx, depth)
}

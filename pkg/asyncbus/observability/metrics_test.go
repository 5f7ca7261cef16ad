package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a reader plus cleanup.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// counterTotal sums all data points of an int64 counter.
func counterTotal(t *testing.T, m *metricdata.Metrics) int64 {
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum data")
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
}

func TestRecordPublishedAndDropped(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordPublished(ctx)
	m.RecordPublished(ctx)
	m.RecordPublished(ctx)
	m.RecordDropped(ctx)

	rm := collectMetrics(t, reader)

	published := findMetric(rm, "asyncbus.events.published")
	require.NotNil(t, published)
	assert.Equal(t, int64(3), counterTotal(t, published))

	dropped := findMetric(rm, "asyncbus.events.dropped")
	require.NotNil(t, dropped)
	assert.Equal(t, int64(1), counterTotal(t, dropped))
}

func TestRecordDispatched(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordDispatched(ctx, 25*time.Millisecond)
	m.RecordDispatched(ctx, 75*time.Millisecond)

	rm := collectMetrics(t, reader)

	latency := findMetric(rm, "asyncbus.dispatch.latency_ms")
	require.NotNil(t, latency)

	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected float64 histogram data")

	var count uint64
	var sum float64
	for _, dp := range hist.DataPoints {
		count += dp.Count
		sum += dp.Sum
	}
	assert.Equal(t, uint64(2), count)
	assert.InDelta(t, 100.0, sum, 0.001)
}

func TestRecordQueueDepth(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordQueueDepth(ctx, 5)
	m.RecordQueueDepth(ctx, 12)

	rm := collectMetrics(t, reader)

	depth := findMetric(rm, "asyncbus.queue.depth")
	require.NotNil(t, depth)

	hist, ok := depth.Data.(metricdata.Histogram[int64])
	require.True(t, ok, "expected int64 histogram data")

	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

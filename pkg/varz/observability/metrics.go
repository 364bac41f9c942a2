package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records registry metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records a var reaching the store.
	RecordPublish(ctx context.Context, registry string, overwrite bool)

	// RecordDropped records a publish rejected before reaching the store.
	RecordDropped(ctx context.Context, registry, reason string)

	// RecordSnapshot records a snapshot and the number of entries it copied.
	RecordSnapshot(ctx context.Context, registry string, entries int)

	// RecordPoisoned records a store reset after a panic under the lock.
	RecordPoisoned(ctx context.Context, registry, op string)

	// RecordCollect records a collection of readings.
	RecordCollect(ctx context.Context, registry string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes       metric.Int64Counter
	dropped         metric.Int64Counter
	snapshots       metric.Int64Counter
	snapshotEntries metric.Int64Histogram
	poisoned        metric.Int64Counter
	collectLatency  metric.Float64Histogram
	collectErrors   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("varz")

	publishes, err := meter.Int64Counter("varz.publishes",
		metric.WithDescription("Number of vars published"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("varz.publishes.dropped",
		metric.WithDescription("Number of publishes rejected before reaching the store"),
	)
	if err != nil {
		return nil, err
	}

	snapshots, err := meter.Int64Counter("varz.snapshots",
		metric.WithDescription("Number of registry snapshots"),
	)
	if err != nil {
		return nil, err
	}

	snapshotEntries, err := meter.Int64Histogram("varz.snapshot.entries",
		metric.WithDescription("Entries copied per snapshot"),
	)
	if err != nil {
		return nil, err
	}

	poisoned, err := meter.Int64Counter("varz.poisoned",
		metric.WithDescription("Number of store resets after a panic under the lock"),
	)
	if err != nil {
		return nil, err
	}

	collectLatency, err := meter.Float64Histogram("varz.collect.latency_ms",
		metric.WithDescription("Collect latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	collectErrors, err := meter.Int64Counter("varz.collect.errors",
		metric.WithDescription("Number of collections that stopped early"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:       publishes,
		dropped:         dropped,
		snapshots:       snapshots,
		snapshotEntries: snapshotEntries,
		poisoned:        poisoned,
		collectLatency:  collectLatency,
		collectErrors:   collectErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
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

// RecordPublish records a publish.
func (m *otelMetrics) RecordPublish(ctx context.Context, registry string, overwrite bool) {
	m.publishes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("registry", registry),
		attribute.Bool("overwrite", overwrite),
	))
}

// RecordDropped records a dropped publish.
func (m *otelMetrics) RecordDropped(ctx context.Context, registry, reason string) {
	m.dropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("registry", registry),
		attribute.String("reason", reason),
	))
}

// RecordSnapshot records a snapshot.
func (m *otelMetrics) RecordSnapshot(ctx context.Context, registry string, entries int) {
	attrs := metric.WithAttributes(attribute.String("registry", registry))
	m.snapshots.Add(ctx, 1, attrs)
	m.snapshotEntries.Record(ctx, int64(entries), attrs)
}

// RecordPoisoned records a poison recovery.
func (m *otelMetrics) RecordPoisoned(ctx context.Context, registry, op string) {
	m.poisoned.Add(ctx, 1, metric.WithAttributes(
		attribute.String("registry", registry),
		attribute.String("op", op),
	))
}

// RecordCollect records a collection.
func (m *otelMetrics) RecordCollect(ctx context.Context, registry string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("registry", registry),
		attribute.Bool("success", err == nil),
	}
	m.collectLatency.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))

	if err != nil {
		m.collectErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

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
	// RecordRegistration records one successful registration.
	RecordRegistration(ctx context.Context, registryID string, tokened bool)

	// RecordUnregistration records registrations removed by one unregister call.
	RecordUnregistration(ctx context.Context, registryID string, removed int)

	// RecordDispatch records a cleanup callback invocation with its
	// duration and error status.
	RecordDispatch(ctx context.Context, registryID string, duration time.Duration, err error)

	// RecordDrain records handles taken off the cleanup queue by one
	// drain pass.
	RecordDrain(ctx context.Context, registryID string, drained int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	registrations   metric.Int64Counter
	unregistrations metric.Int64Counter
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	callbackErrors  metric.Int64Counter
	queueDrained    metric.Int64Counter
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
	meter := otel.Meter("rhino")

	registrations, err := meter.Int64Counter("rhino.registrations",
		metric.WithDescription("Number of finalization registrations created"),
	)
	if err != nil {
		return nil, err
	}

	unregistrations, err := meter.Int64Counter("rhino.unregistrations",
		metric.WithDescription("Number of registrations removed by token"),
	)
	if err != nil {
		return nil, err
	}

	dispatches, err := meter.Int64Counter("rhino.cleanup.dispatches",
		metric.WithDescription("Number of cleanup callbacks invoked"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("rhino.cleanup.latency_ms",
		metric.WithDescription("Cleanup callback latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	callbackErrors, err := meter.Int64Counter("rhino.callback.errors",
		metric.WithDescription("Number of cleanup callbacks that failed or panicked"),
	)
	if err != nil {
		return nil, err
	}

	queueDrained, err := meter.Int64Counter("rhino.queue.drained",
		metric.WithDescription("Number of handles taken off the cleanup queue"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		registrations:   registrations,
		unregistrations: unregistrations,
		dispatches:      dispatches,
		dispatchLatency: dispatchLatency,
		callbackErrors:  callbackErrors,
		queueDrained:    queueDrained,
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

// RecordRegistration records one successful registration.
func (m *otelMetrics) RecordRegistration(ctx context.Context, registryID string, tokened bool) {
	attrs := []attribute.KeyValue{
		attribute.String("registry.id", registryID),
		attribute.Bool("tokened", tokened),
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordUnregistration records removals from one unregister call.
func (m *otelMetrics) RecordUnregistration(ctx context.Context, registryID string, removed int) {
	attrs := []attribute.KeyValue{
		attribute.String("registry.id", registryID),
	}
	m.unregistrations.Add(ctx, int64(removed), metric.WithAttributes(attrs...))
}

// RecordDispatch records a cleanup callback invocation.
func (m *otelMetrics) RecordDispatch(ctx context.Context, registryID string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("registry.id", registryID),
	}

	m.dispatches.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds())/1000.0, metric.WithAttributes(attrs...))

	if err != nil {
		m.callbackErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordDrain records handles drained in one pass.
func (m *otelMetrics) RecordDrain(ctx context.Context, registryID string, drained int) {
	attrs := []attribute.KeyValue{
		attribute.String("registry.id", registryID),
	}
	m.queueDrained.Add(ctx, int64(drained), metric.WithAttributes(attrs...))
}

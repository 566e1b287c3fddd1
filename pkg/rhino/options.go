package rhino

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/anivar/rhino/pkg/rhino/collector"
	"github.com/anivar/rhino/pkg/rhino/config"
	"github.com/anivar/rhino/pkg/rhino/journal"
	"github.com/anivar/rhino/pkg/rhino/observability"
)

// options holds registry configuration.
type options struct {
	logger         *slog.Logger
	collector      collector.Collector[Object]
	newCollector   func() collector.Collector[Object]
	journal        journal.Store
	ownsJournal    bool
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	drainInterval  time.Duration
}

// defaultOptions returns the default registry configuration: GC-backed
// collector, opportunistic draining only, no journal, observability off.
func defaultOptions() options {
	return options{
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a registry at construction.
type Option func(*options)

// WithLogger sets the logger for registry events. Log lines carry the
// registry_id field. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCollector dedicates a collector to the registry under
// construction. A collector must not be shared between registries: each
// registry drains the queue it owns, and a handle drained by the wrong
// registry is lost.
//
// Use WithCollectorFactory instead when the same option set serves
// multiple registries, as with Install.
func WithCollector(c collector.Collector[Object]) Option {
	return func(o *options) {
		o.collector = c
	}
}

// WithCollectorFactory sets the constructor used to produce a fresh
// collector per registry. Install-ed constructors apply their options
// to every `new FinalizationRegistry`, so a factory is the only safe
// way to override the collector there.
//
// Default: collector.NewGC.
func WithCollectorFactory(fn func() collector.Collector[Object]) Option {
	return func(o *options) {
		o.newCollector = fn
	}
}

// WithJournal enables the lifecycle audit trail. Every register,
// unregister, and dispatch appends one entry. Journal write failures
// are logged and dropped, never surfaced to callers.
//
// The caller keeps ownership of the store and closes it after the
// registry.
func WithJournal(store journal.Store) Option {
	return func(o *options) {
		o.journal = store
	}
}

// WithMetrics enables OpenTelemetry metrics for registry operations.
// Uses the global meter provider; configure it before creating the
// registry. Default: disabled (no-op recorder).
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		if enabled {
			o.metrics = observability.NewMetricsRecorder()
		} else {
			o.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans around drain passes and
// callback invocations. Uses the global tracer provider. Default:
// disabled.
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracingEnabled = enabled
		if enabled {
			o.spans = observability.NewSpanManager()
		} else {
			o.spans = observability.NoopSpanManager{}
		}
	}
}

// WithDrainInterval enables a background drain loop owned by the
// registry. The loop wakes on the collector's readiness signal and at
// least every interval; Close stops it. A non-positive interval leaves
// the loop disabled (opportunistic draining only).
func WithDrainInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.drainInterval = interval
		}
	}
}

// OptionsFromConfig maps a configuration onto registry options.
//
// Recognized keys:
//
//	drain_interval  duration   background drain loop interval
//	journal_path    string     SQLite journal location (":memory:" works)
//	metrics         bool       OpenTelemetry metrics
//	tracing         bool       OpenTelemetry tracing
//
// A journal store opened here is owned by the registry and closed by
// its Close.
func OptionsFromConfig(cfg config.Config) ([]Option, error) {
	var opts []Option

	if d := cfg.Duration("drain_interval", 0); d > 0 {
		opts = append(opts, WithDrainInterval(d))
	}
	if cfg.Bool("metrics", false) {
		opts = append(opts, WithMetrics(true))
	}
	if cfg.Bool("tracing", false) {
		opts = append(opts, WithTracing(true))
	}
	if path := cfg.String("journal_path", ""); path != "" {
		js, err := journal.NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("open journal %q: %w", path, err)
		}
		opts = append(opts, func(o *options) {
			o.journal = js
			o.ownsJournal = true
		})
	}

	return opts, nil
}

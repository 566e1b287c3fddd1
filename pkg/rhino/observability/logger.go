// Package observability provides production-grade observability features
// for rhino finalization registries: structured logging, metrics, and
// distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds registry context to a logger.
// Returns a new logger with a registry_id field.
//
// Example:
//
//	enriched := EnrichLogger(logger, "fr-1a2b3c4d")
//	enriched.Info("doing work") // includes registry_id
func EnrichLogger(logger *slog.Logger, registryID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("registry_id", registryID),
	)
}

// LogRegistryOpen logs registry creation.
func LogRegistryOpen(logger *slog.Logger, registryID string) {
	if logger == nil {
		return
	}
	logger.Info("registry opened",
		slog.String("registry_id", registryID),
	)
}

// LogRegistryClose logs registry shutdown.
func LogRegistryClose(logger *slog.Logger, registryID string, dispatched uint64) {
	if logger == nil {
		return
	}
	logger.Info("registry closed",
		slog.String("registry_id", registryID),
		slog.Uint64("dispatched", dispatched),
	)
}

// LogRegister logs a new registration.
func LogRegister(logger *slog.Logger, registryID string, handleID uint64, tokened bool) {
	if logger == nil {
		return
	}
	logger.Debug("target registered",
		slog.String("registry_id", registryID),
		slog.Uint64("handle_id", handleID),
		slog.Bool("tokened", tokened),
	)
}

// LogUnregister logs a token-keyed bulk removal.
func LogUnregister(logger *slog.Logger, registryID string, removed int) {
	if logger == nil {
		return
	}
	logger.Debug("registrations removed",
		slog.String("registry_id", registryID),
		slog.Int("removed", removed),
	)
}

// LogDispatch logs one completed cleanup callback.
func LogDispatch(logger *slog.Logger, registryID string, handleID uint64, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("cleanup dispatched",
		slog.String("registry_id", registryID),
		slog.Uint64("handle_id", handleID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCallbackError logs a cleanup callback failure. Callback errors are
// isolated, never propagated, so this is their only trace.
func LogCallbackError(logger *slog.Logger, registryID string, handleID uint64, err error) {
	if logger == nil {
		return
	}
	logger.Error("cleanup callback failed",
		slog.String("registry_id", registryID),
		slog.Uint64("handle_id", handleID),
		slog.String("error", err.Error()),
	)
}

// LogDrainComplete logs the outcome of a drain pass.
func LogDrainComplete(logger *slog.Logger, registryID string, drained, invoked int) {
	if logger == nil {
		return
	}
	logger.Debug("drain complete",
		slog.String("registry_id", registryID),
		slog.Int("drained", drained),
		slog.Int("invoked", invoked),
	)
}

// LogJournalError logs a journal write failure (non-fatal).
func LogJournalError(logger *slog.Logger, registryID string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write failed",
		slog.String("registry_id", registryID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds. Cleanup callbacks routinely finish in well under a
// millisecond, so the value keeps its fractional part.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000.0
	}
}

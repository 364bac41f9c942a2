// Package observability provides observability features for varz
// registries: structured logging, metrics, and distributed tracing.
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
// Returns a new logger with registry and registry_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "default", "5f0c...")
//	enriched.Info("doing work") // includes registry, registry_id
func EnrichLogger(logger *slog.Logger, registryName, registryID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("registry", registryName),
		slog.String("registry_id", registryID),
	)
}

// LogInit logs successful registry initialization.
func LogInit(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Info("registry initialized")
}

// LogInitRejected logs an Init call that found the gate already claimed.
func LogInitRejected(logger *slog.Logger, state string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("registry init rejected",
		slog.String("state", state),
		slog.String("error", err.Error()),
	)
}

// LogPublish logs a var being published.
func LogPublish(logger *slog.Logger, name string, overwrite bool) {
	if logger == nil {
		return
	}
	logger.Debug("var published",
		slog.String("name", name),
		slog.Bool("overwrite", overwrite),
	)
}

// LogDropped logs a publish that was discarded before reaching the store.
func LogDropped(logger *slog.Logger, name, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("publish dropped",
		slog.String("name", name),
		slog.String("reason", reason),
	)
}

// LogSnapshot logs a completed snapshot.
func LogSnapshot(logger *slog.Logger, entries int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("snapshot taken",
		slog.Int("entries", entries),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogPoisoned logs a store reset after a panic inside a critical section.
func LogPoisoned(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Error("registry store poisoned, reset to empty",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogCollect logs a completed collection of var readings.
func LogCollect(logger *slog.Logger, entries int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("collect completed",
		slog.Int("entries", entries),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCollectError logs a collection that stopped early.
func LogCollectError(logger *slog.Logger, err error, entries int) {
	if logger == nil {
		return
	}
	logger.Warn("collect failed",
		slog.String("error", err.Error()),
		slog.Int("entries", entries),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}

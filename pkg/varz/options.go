package varz

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/randalmurphal/varz/pkg/varz/config"
)

// registryConfig holds configuration for a Registry.
type registryConfig struct {
	name           string
	logger         *slog.Logger
	metricsEnabled bool
	tracingEnabled bool
	parallelism    int
}

// defaultRegistryConfig returns the default registry configuration.
func defaultRegistryConfig() registryConfig {
	return registryConfig{
		name:        "default",
		logger:      slog.Default(),
		parallelism: 1,
	}
}

// Option configures a Registry.
type Option func(*registryConfig)

// WithName sets the registry name used in logs, metrics and spans.
// Default: "default"
func WithName(name string) Option {
	return func(c *registryConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets the logger for registry events.
// Default: slog.Default(). Pass nil to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *registryConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for registry operations.
// Default: false
//
// Metrics use the global OTel meter provider. Configure it before
// constructing the registry:
//
//	otel.SetMeterProvider(provider)
//	reg := varz.NewRegistry(varz.WithMetrics(true))
func WithMetrics(enabled bool) Option {
	return func(c *registryConfig) {
		c.metricsEnabled = enabled
	}
}

// WithTracing enables OpenTelemetry spans around Collect.
// Default: false
func WithTracing(enabled bool) Option {
	return func(c *registryConfig) {
		c.tracingEnabled = enabled
	}
}

// WithCollectParallelism sets how many vars Collect reads concurrently
// unless the call overrides it with WithParallelism.
// Default: 1 (sequential). Values below 1 are ignored.
func WithCollectParallelism(n int) Option {
	return func(c *registryConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// OptionsFromConfig builds registry options from a config table.
//
// Recognized keys:
//   - name (string)
//   - metrics, tracing (bool)
//   - log_level: debug, info, warn, error
//   - log_format: text or json; when log_level or log_format is set, a
//     logger writing to stderr is created
//   - collect_parallelism (int)
func OptionsFromConfig(cfg config.Config) ([]Option, error) {
	opts := []Option{
		WithName(cfg.String("name", "")),
		WithMetrics(cfg.Bool("metrics", false)),
		WithTracing(cfg.Bool("tracing", false)),
		WithCollectParallelism(cfg.Int("collect_parallelism", 0)),
	}

	if cfg.Has("log_level") || cfg.Has("log_format") {
		logger, err := newLogger(cfg.String("log_level", "info"), cfg.String("log_format", "text"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLogger(logger))
	}
	return opts, nil
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	hopts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, hopts)), nil
	default:
		return nil, fmt.Errorf("log_format: unsupported format %q", format)
	}
}

// collectConfig holds configuration for a single Collect call.
type collectConfig struct {
	parallelism int
}

// CollectOption configures a single Collect call.
type CollectOption func(*collectConfig)

// WithParallelism reads up to n vars concurrently.
// Values below 1 are ignored.
func WithParallelism(n int) CollectOption {
	return func(c *collectConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

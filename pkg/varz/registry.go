package varz

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/randalmurphal/varz/pkg/varz/observability"
	"github.com/randalmurphal/varz/pkg/varz/store"
)

// Entry is a published var copied out of a Registry.
type Entry struct {
	Name string
	Var  Var
}

// Registry maps names to published vars.
//
// It is safe for concurrent use. A Registry keeps every published Var
// reachable, so a Var lives at least as long as it stays published.
type Registry struct {
	id          string
	name        string
	vars        *store.Store[string, Var]
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
	parallelism int
}

// NewRegistry creates an empty Registry.
//
// Most programs use the process-wide registry through Init, Publish and
// Vars. NewRegistry is for code that passes a registry explicitly, and
// for tests that need one of their own.
func NewRegistry(opts ...Option) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	r := &Registry{
		id:          uuid.New().String(),
		name:        cfg.name,
		metrics:     observability.NoopMetrics{},
		spans:       observability.NoopSpanManager{},
		parallelism: cfg.parallelism,
	}
	r.logger = observability.EnrichLogger(cfg.logger, r.name, r.id)
	if cfg.metricsEnabled {
		r.metrics = observability.NewMetricsRecorder()
	}
	if cfg.tracingEnabled {
		r.spans = observability.NewSpanManager()
	}
	r.vars = store.New[string, Var](store.WithPoisonHandler(r.handlePoison))
	return r
}

// ID returns the unique identifier generated for this registry.
func (r *Registry) ID() string { return r.id }

// Name returns the registry name.
func (r *Registry) Name() string { return r.name }

// Publish inserts or overwrites the var stored under name.
//
// Concurrent publishes are serialized; the last writer wins. An empty
// name or a nil var is dropped and logged.
func (r *Registry) Publish(name string, v Var) {
	if name == "" {
		r.drop(name, "empty name")
		return
	}
	if isNilVar(v) {
		r.drop(name, "nil var")
		return
	}

	overwrite := r.vars.Set(name, v)
	observability.LogPublish(r.logger, name, overwrite)
	r.metrics.RecordPublish(context.Background(), r.name, overwrite)
}

// Snapshot returns a point-in-time copy of every published entry.
//
// The copy reflects the set of entries at one instant; each Var still
// reports its live value when read. Entries are sorted by name, but
// callers should not depend on any order. The result is never nil.
func (r *Registry) Snapshot() []Entry {
	done := observability.TimedOperation()

	raw := r.vars.Snapshot()
	out := make([]Entry, len(raw))
	for i, e := range raw {
		out[i] = Entry{Name: e.Key, Var: e.Value}
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Name, b.Name) })

	observability.LogSnapshot(r.logger, len(out), done())
	r.metrics.RecordSnapshot(context.Background(), r.name, len(out))
	return out
}

// Lookup returns the var published under name.
func (r *Registry) Lookup(name string) (Var, bool) {
	return r.vars.Get(name)
}

// Len returns the number of published vars.
func (r *Registry) Len() int {
	return r.vars.Len()
}

// Poisoned returns how many times the registry has discarded its entries
// after a panic while its lock was held.
func (r *Registry) Poisoned() int64 {
	return r.vars.Poisoned()
}

func (r *Registry) drop(name, reason string) {
	observability.LogDropped(r.logger, name, reason)
	r.metrics.RecordDropped(context.Background(), r.name, reason)
}

// handlePoison runs after the store has released its lock, so the logger
// may publish to r.
func (r *Registry) handlePoison(err *store.PoisonError) {
	observability.LogPoisoned(r.logger, err.Op, err)
	r.metrics.RecordPoisoned(context.Background(), r.name, err.Op)
}

func isNilVar(v Var) bool {
	if v == nil {
		return true
	}
	i, ok := v.(*Int)
	return ok && i == nil
}

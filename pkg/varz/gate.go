package varz

import (
	"sync/atomic"

	"github.com/randalmurphal/varz/pkg/varz/observability"
)

// State is the lifecycle state of a Gate.
type State int32

const (
	// StateUninitialized is the initial state; no registry exists.
	StateUninitialized State = iota
	// StateInitializing means one goroutine has claimed the gate and is
	// constructing the registry.
	StateInitializing
	// StateReady is terminal; the registry is published and never changes.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Gate constructs a Registry at most once and hands it out without locking.
//
// The readiness check is a single atomic load. Only the goroutine that wins
// the Uninitialized to Initializing compare-and-swap builds a registry, and
// the registry pointer is stored before the state becomes Ready, so a reader
// that observes Ready always sees a fully constructed registry.
//
// The zero value is ready to use. A Gate must not be copied after first use.
type Gate struct {
	state atomic.Int32
	reg   atomic.Pointer[Registry]
}

// Init constructs the gate's registry.
//
// Exactly one call succeeds. Later calls never replace the registry:
// once the gate is ready they return it together with
// ErrAlreadyInitialized; while another goroutine is still constructing it
// they return ErrInitInProgress. If construction panics the gate returns
// to StateUninitialized before the panic propagates.
func (g *Gate) Init(opts ...Option) (*Registry, error) {
	for {
		if g.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
			return g.build(opts), nil
		}

		switch st := g.State(); st {
		case StateReady:
			r := g.reg.Load()
			observability.LogInitRejected(r.logger, st.String(), ErrAlreadyInitialized)
			return r, ErrAlreadyInitialized
		case StateInitializing:
			// No registry logger exists yet; the error is the signal.
			return nil, ErrInitInProgress
		}
		// Rolled back after a failed construction; try to claim it again.
	}
}

func (g *Gate) build(opts []Option) *Registry {
	committed := false
	defer func() {
		if !committed {
			g.state.Store(int32(StateUninitialized))
		}
	}()

	r := NewRegistry(opts...)
	g.reg.Store(r)
	g.state.Store(int32(StateReady))
	committed = true

	observability.LogInit(r.logger)
	return r
}

// Registry returns the gate's registry once it is ready.
// It never blocks; before Init completes it reports false.
func (g *Gate) Registry() (*Registry, bool) {
	if g.State() != StateReady {
		return nil, false
	}
	return g.reg.Load(), true
}

// State returns the current lifecycle state.
func (g *Gate) State() State {
	return State(g.state.Load())
}

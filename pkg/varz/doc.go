/*
Package varz provides a process-wide registry of named, lazily evaluated
variables for monitoring.

# Overview

Independent parts of a program publish vars under string names. A
monitoring consumer later takes a snapshot of everything published and
reads each var's current value on demand. The registry never computes
values itself; it only stores the set of vars.

Two kinds of var are provided:
  - Int: a counter backed by an atomic int64
  - Func: a function called every time the var is read

Any type with a Value() string method can be published.

# Basic Usage

Initialize the process-wide registry once at startup, then publish from
anywhere:

	var requests = varz.NewInt(0)

	func main() {
	    if err := varz.Init(); err != nil {
	        log.Fatal(err)
	    }
	    varz.Publish("requests", requests)
	    varz.Publish("goroutines", varz.Func(func() string {
	        return strconv.Itoa(runtime.NumGoroutine())
	    }))

	    // ...
	    requests.Add(1)

	    entries, ok := varz.Vars()
	    if ok {
	        for _, e := range entries {
	            fmt.Println(e.Name, e.Var.Value())
	        }
	    }
	}

# Initialization

The process-wide registry sits behind a Gate, a three-state machine
(uninitialized, initializing, ready) driven by a compare-and-swap. Exactly
one Init call constructs the registry. Later calls return
ErrAlreadyInitialized and leave the registry in place, so readers never
see it swapped out.

Until Init completes the registry is simply absent:
  - Publish does nothing and the var is lost
  - Vars returns ok == false

This is a designed degraded mode, not an error. Publish after Init.

# Explicit Registries

Code below the program's outer boundary should take a *Registry as a
parameter instead of using package state:

	func RegisterHandlers(reg *varz.Registry) {
	    reg.Publish("handlers.loaded", varz.NewInt(3))
	}

	reg, _ := varz.Default()
	RegisterHandlers(reg)

NewRegistry creates a standalone registry, which is also the way to get
a fresh one in tests.

# Snapshots and Collection

Registry.Snapshot copies the (name, var) pairs under the registry lock.
It freezes which vars exist, not their values. Registry.Collect takes a
snapshot and reads every var, honoring context cancellation between
reads and optionally reading several vars concurrently:

	readings, err := reg.Collect(ctx, varz.WithParallelism(4))

# Ownership

A registry holds ordinary references to published vars. The garbage
collector keeps every published var alive for as long as the registry
can reach it; callers have no lifetime obligations.

# Lock Recovery

A panic while the registry lock is held never leaves the lock held. The
registry discards its entries, logs the failure, counts it in Poisoned,
and re-panics to the goroutine that caused it. See package store.

# Observability

Registries log through slog (slog.Default unless WithLogger is given)
and can record OpenTelemetry metrics and spans:

	reg := varz.NewRegistry(
	    varz.WithName("api"),
	    varz.WithMetrics(true),
	    varz.WithTracing(true),
	)

Options can also be loaded from a YAML, JSON, or TOML file with
OptionsFromConfig.
*/
package varz

// Package store provides a generic, mutex-guarded map used as the backing
// store for published variables.
//
// Every operation takes the same exclusive lock. Reads are expected to be
// rare compared to the cost of a finer-grained scheme, so there is no
// separate read path.
//
// # Basic Usage
//
//	s := store.New[string, int]()
//	s.Set("requests", 1)
//	s.Set("requests", 2) // overwrites
//
//	for _, e := range s.Snapshot() {
//	    fmt.Println(e.Key, e.Value)
//	}
//
// # Snapshots
//
// Snapshot copies every pair while holding the lock and returns a fresh
// slice. Entries added after the lock is released never appear in it, and
// mutating the returned slice never affects the store.
//
// # Poisoning
//
// Go mutexes cannot be poisoned: each critical section releases its lock
// with defer, so a panic inside one never leaves the store locked. The map
// itself may however be left half-updated. When a panic escapes a critical
// section the store:
//
//  1. discards the map and rebuilds an empty one,
//  2. increments the counter reported by Poisoned,
//  3. releases the lock and calls the handler installed with
//     WithPoisonHandler, and
//  4. re-panics with a *PoisonError wrapping the original value.
//
// Only the goroutine whose critical section failed observes the panic.
// Every later caller finds a usable, empty store.
//
//	s := store.New[any, int](store.WithPoisonHandler(func(err *store.PoisonError) {
//	    slog.Error("store reset", "op", err.Op, "error", err)
//	}))
package store

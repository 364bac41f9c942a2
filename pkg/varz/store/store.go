package store

import (
	"sync"
	"sync/atomic"
)

// Entry is a single key/value pair copied out of a Store.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Store is a thread-safe map guarded by a single exclusive lock.
//
// The zero value is ready to use.
type Store[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]V
	poisoned atomic.Int64
	onPoison func(*PoisonError)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	onPoison func(*PoisonError)
}

// WithPoisonHandler installs fn to be called after the store recovers from
// a panic inside a critical section. fn runs after the lock is released and
// may use the store.
func WithPoisonHandler(fn func(*PoisonError)) Option {
	return func(o *options) {
		o.onPoison = fn
	}
}

// New creates a new empty store.
func New[K comparable, V any](opts ...Option) *Store[K, V] {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Store[K, V]{
		entries:  make(map[K]V),
		onPoison: o.onPoison,
	}
}

// Set inserts or overwrites the value for key.
// It reports whether an existing value was replaced.
func (s *Store[K, V]) Set(key K, value V) (replaced bool) {
	s.locked("set", func() {
		_, replaced = s.entries[key]
		s.entries[key] = value
	})
	return replaced
}

// Get returns the value for a key and whether it exists.
func (s *Store[K, V]) Get(key K) (value V, ok bool) {
	s.locked("get", func() {
		value, ok = s.entries[key]
	})
	return value, ok
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() (n int) {
	s.locked("len", func() {
		n = len(s.entries)
	})
	return n
}

// Snapshot returns a point-in-time copy of every entry.
// The order is not guaranteed. The result is never nil.
func (s *Store[K, V]) Snapshot() (out []Entry[K, V]) {
	s.locked("snapshot", func() {
		out = make([]Entry[K, V], 0, len(s.entries))
		for k, v := range s.entries {
			out = append(out, Entry[K, V]{Key: k, Value: v})
		}
	})
	return out
}

// Poisoned returns how many times the store has been reset after a panic
// inside a critical section.
func (s *Store[K, V]) Poisoned() int64 {
	return s.poisoned.Load()
}

// locked runs fn with the lock held and applies the poison policy if fn
// panics. The handler and the re-panic happen after the lock is released.
func (s *Store[K, V]) locked(op string, fn func()) {
	if perr := s.run(op, fn); perr != nil {
		if s.onPoison != nil {
			s.onPoison(perr)
		}
		panic(perr)
	}
}

func (s *Store[K, V]) run(op string, fn func()) (perr *PoisonError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.entries = make(map[K]V)
			s.poisoned.Add(1)
			perr = &PoisonError{Op: op, Value: r}
		}
	}()

	if s.entries == nil {
		s.entries = make(map[K]V)
	}
	fn()
	return nil
}

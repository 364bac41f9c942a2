package varz

import (
	"strconv"
	"sync/atomic"
)

// Var is anything that can report its current value as text.
//
// Value must be safe for concurrent use, must not fail, and may return a
// different result on every call.
type Var interface {
	Value() string
}

// Compile-time interface checks.
var (
	_ Var = (*Int)(nil)
	_ Var = Func(nil)
)

// Int is a counter backed by an atomically updated int64.
//
// The zero value is ready to use.
type Int struct {
	n atomic.Int64
}

// NewInt returns an Int holding initial.
func NewInt(initial int64) *Int {
	v := &Int{}
	v.n.Store(initial)
	return v
}

// Add adds delta and returns the new value.
func (v *Int) Add(delta int64) int64 { return v.n.Add(delta) }

// Set replaces the current value.
func (v *Int) Set(value int64) { v.n.Store(value) }

// Load returns the current value.
func (v *Int) Load() int64 { return v.n.Load() }

// Value renders the current count in base 10.
func (v *Int) Value() string {
	return strconv.FormatInt(v.n.Load(), 10)
}

// Func is a Var computed by calling a function.
//
// The function runs synchronously on the caller's goroutine every time
// Value is called; nothing is cached. It is responsible for the thread
// safety of whatever it reads.
type Func func() string

// Value calls f. A nil Func reports the empty string.
func (f Func) Value() string {
	if f == nil {
		return ""
	}
	return f()
}

package varz

// std is the process-wide gate behind the package-level functions.
var std = new(Gate)

// Init constructs the process-wide registry.
//
// Call it once at program start, before publishing. A second call returns
// ErrAlreadyInitialized and leaves the existing registry in place.
func Init(opts ...Option) error {
	_, err := std.Init(opts...)
	return err
}

// Publish inserts or overwrites a var in the process-wide registry.
//
// Before Init it does nothing and the var is lost.
func Publish(name string, v Var) {
	if r, ok := std.Registry(); ok {
		r.Publish(name, v)
	}
}

// Vars returns a snapshot of the process-wide registry.
//
// ok is false before Init. After Init the result is non-nil, and empty
// when nothing has been published.
func Vars() (entries []Entry, ok bool) {
	r, ok := std.Registry()
	if !ok {
		return nil, false
	}
	return r.Snapshot(), true
}

// Default returns the process-wide registry once it is initialized, for
// passing explicitly to code that should not depend on package state.
func Default() (*Registry, bool) {
	return std.Registry()
}

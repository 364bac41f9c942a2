package varz

import "errors"

// Sentinel errors for gate initialization.
var (
	// ErrAlreadyInitialized indicates Init was called on a gate that is
	// already ready. The existing registry is kept.
	ErrAlreadyInitialized = errors.New("registry already initialized")

	// ErrInitInProgress indicates Init lost the race to another goroutine
	// that is still constructing the registry.
	ErrInitInProgress = errors.New("registry initialization in progress")
)

// Sentinel errors for collection.
var (
	// ErrNilContext indicates Collect was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

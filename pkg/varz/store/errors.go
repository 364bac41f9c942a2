package store

import (
	"errors"
	"fmt"
)

// ErrPoisoned matches any *PoisonError via errors.Is.
var ErrPoisoned = errors.New("store poisoned")

// PoisonError reports a panic that escaped a critical section.
// The store has already been reset to empty when it is raised.
type PoisonError struct {
	// Op is the store operation that was running ("set", "snapshot", ...).
	Op string
	// Value is the value passed to the original panic.
	Value any
}

// Error implements the error interface.
func (e *PoisonError) Error() string {
	return fmt.Sprintf("store %s panicked while holding lock: %v", e.Op, e.Value)
}

// Unwrap returns the original panic value when it is an error.
func (e *PoisonError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Is reports whether target is ErrPoisoned.
func (e *PoisonError) Is(target error) bool {
	return target == ErrPoisoned
}

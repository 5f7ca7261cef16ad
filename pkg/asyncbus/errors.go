package asyncbus

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned by Start when the bus has already been
	// started (or already stopped). Starting twice is a caller bug.
	ErrAlreadyStarted = errors.New("bus already started")

	// ErrNotStarted is returned by Stop when the bus is not running.
	// Stopping before Start (or twice) is a caller bug.
	ErrNotStarted = errors.New("bus not started")
)

// LifecycleError reports a lifecycle misuse: an operation invoked in a state
// that does not permit it. It wraps ErrAlreadyStarted or ErrNotStarted so
// callers can match with errors.Is.
type LifecycleError struct {
	Op    string // "start" or "stop"
	State State  // state observed at the time of the call
	Err   error  // sentinel describing the violation
}

// Error implements the error interface.
func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s: bus is %s", e.Op, e.State)
}

// Unwrap returns the sentinel error.
func (e *LifecycleError) Unwrap() error {
	return e.Err
}

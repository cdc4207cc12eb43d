package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check exceeded the configured timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckPanicked indicates a health check panicked.
	ErrCheckPanicked = errors.New("health: check panicked")

	// ErrBind indicates the endpoint could not bind its port.
	ErrBind = errors.New("health: failed to bind endpoint")

	// ErrAlreadyStarted indicates Start was called more than once.
	ErrAlreadyStarted = errors.New("health: server already started")
)

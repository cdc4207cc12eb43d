package health

import (
	"context"
	"fmt"
	"net/http"
)

// StatusCode is the outcome of a health check, modelled after HTTP status
// codes. StatusOK is the only healthy code.
type StatusCode int

const (
	// StatusOK indicates the subsystem is functioning normally.
	StatusOK StatusCode = http.StatusOK
	// StatusUnavailable indicates the subsystem is not functioning. It is
	// substituted for subsystems whose check fails.
	StatusUnavailable StatusCode = http.StatusServiceUnavailable
)

// OK reports whether s is the healthy status code.
func (s StatusCode) OK() bool {
	return s == StatusOK
}

// String returns the string representation of the status.
func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Details is the diagnostic payload of a check. Values must be JSON
// serializable: strings, numbers, booleans, nil, slices and nested maps.
type Details map[string]any

// Result contains the outcome of a single subsystem health check.
type Result struct {
	// Status is the health status. The zero value is not OK.
	Status StatusCode

	// Details is merged into the aggregate response.
	Details Details
}

// OK creates a healthy result.
func OK(details Details) Result {
	return Result{Status: StatusOK, Details: details}
}

// Unavailable creates an unhealthy result.
func Unavailable(details Details) Result {
	return Result{Status: StatusUnavailable, Details: details}
}

// Checkable is implemented by subsystems that can report their own health.
//
// Contract:
//   - Concurrency: OnHealthCheck may be called concurrently from several
//     aggregation passes.
//   - Errors: a returned error marks the subsystem unhealthy and its Result
//     is discarded.
//   - Context: implementations should honor cancellation.
type Checkable interface {
	OnHealthCheck(ctx context.Context) (Result, error)
}

// CheckableFunc is an adapter to allow ordinary functions to be used as
// Checkables.
type CheckableFunc func(ctx context.Context) (Result, error)

// OnHealthCheck calls f(ctx).
func (f CheckableFunc) OnHealthCheck(ctx context.Context) (Result, error) {
	return f(ctx)
}

// IsHealthCheckable reports whether v implements Checkable. It never panics
// and returns false for nil.
func IsHealthCheckable(v any) bool {
	_, ok := v.(Checkable)
	return ok
}

// Package observe provides the logging and instrumentation primitives used by
// the health aggregator.
//
// It owns the structured Logger (backed by zerolog), the OpenTelemetry tracer
// and meter providers, and a Middleware that wraps a single subsystem health
// check with a span, metrics and a debug log line. It performs no health
// checking itself; the health package wires it in.
package observe

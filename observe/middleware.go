package observe

import (
	"context"
	"time"
)

// ExecuteFunc runs one subsystem health check. healthy reports whether the
// subsystem answered with an OK status; err reports a failed invocation.
type ExecuteFunc func(ctx context.Context, meta CheckMeta) (healthy bool, err error)

// Middleware wraps health check execution with observability (tracing,
// metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware with no-op tracing and metrics that
// still emits debug logs to logger.
func NopMiddleware(logger Logger) *Middleware {
	return NewMiddleware(nil, nil, logger)
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, meta CheckMeta) (bool, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		healthy, err := fn(ctx, meta)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordCheck(ctx, meta, duration, healthy, err)

		fields := []Field{
			{Key: "subsystem", Value: meta.Name},
			{Key: "healthy", Value: healthy && err == nil},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if meta.PassID != "" {
			fields = append(fields, Field{Key: "pass_id", Value: meta.PassID})
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
		}
		m.logger.Debug(ctx, "health check completed", fields...)

		return healthy, err
	}
}

// Pass starts the span for one aggregation pass. The returned function ends
// it and records pass metrics.
func (m *Middleware) Pass(ctx context.Context, passID string, checks int) (context.Context, func(healthy bool)) {
	ctx, span := m.tracer.StartPass(ctx, passID, checks)
	start := time.Now()

	return ctx, func(healthy bool) {
		m.metrics.RecordPass(ctx, time.Since(start), healthy)
		m.tracer.EndSpan(span, nil)
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

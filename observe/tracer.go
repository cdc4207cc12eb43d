package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// PassSpanName is the span name of one aggregation pass.
const PassSpanName = "health.pass"

// CheckMeta identifies one subsystem health check invocation.
type CheckMeta struct {
	Name   string // Subsystem name (required)
	PassID string // Aggregation pass the check belongs to (optional)
	Index  int    // Position of the subsystem in the registry
}

// SpanName returns the deterministic span name for this check.
// Format: health.check.<name>
func (m CheckMeta) SpanName() string {
	return "health.check." + m.Name
}

// Tracer wraps OpenTelemetry tracing with health check span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartPass starts the span covering one aggregation pass.
	StartPass(ctx context.Context, passID string, checks int) (context.Context, trace.Span)

	// StartSpan starts a new span for a single subsystem check.
	StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartPass(ctx context.Context, passID string, checks int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, PassSpanName,
		trace.WithAttributes(
			attribute.String("health.pass.id", passID),
			attribute.Int("health.pass.checks", checks),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartSpan starts a new span with check metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("health.check.name", meta.Name),
		attribute.Int("health.check.index", meta.Index),
		attribute.Bool("health.check.error", false), // Updated in EndSpan on error
	}
	if meta.PassID != "" {
		attrs = append(attrs, attribute.String("health.pass.id", meta.PassID))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("health.check.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartPass(ctx context.Context, passID string, checks int) (context.Context, trace.Span) {
	return t.noop.Start(ctx, PassSpanName)
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}

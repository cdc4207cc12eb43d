package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type middlewareFixture struct {
	mw     *Middleware
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
}

func newMiddlewareFixture(t *testing.T) middlewareFixture {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	var logs bytes.Buffer
	return middlewareFixture{
		mw:     NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NewLoggerWithWriter("debug", &logs)),
		spans:  spans,
		reader: reader,
		logs:   &logs,
	}
}

// TestMiddleware_SuccessPath verifies a healthy check records telemetry.
func TestMiddleware_SuccessPath(t *testing.T) {
	f := newMiddlewareFixture(t)

	wrapped := f.mw.Wrap(func(ctx context.Context, meta CheckMeta) (bool, error) {
		return true, nil
	})
	healthy, err := wrapped(context.Background(), CheckMeta{Name: "database", PassID: "p-1"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !healthy {
		t.Error("expected healthy result to pass through")
	}

	spans := f.spans.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "health.check.database" {
		t.Errorf("expected span name 'health.check.database', got %q", spans[0].Name())
	}

	var rm metricdata.ResourceMetrics
	if err := f.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	if findMetric(rm, "health.check.total") == nil {
		t.Error("health.check.total metric not found")
	}

	var entry map[string]any
	if err := json.Unmarshal(f.logs.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["message"] != "health check completed" || entry["level"] != "debug" {
		t.Errorf("unexpected log entry: %v", entry)
	}
	if entry["subsystem"] != "database" || entry["pass_id"] != "p-1" || entry["healthy"] != true {
		t.Errorf("unexpected log fields: %v", entry)
	}
}

// TestMiddleware_ErrorPath verifies a failed check records error telemetry.
func TestMiddleware_ErrorPath(t *testing.T) {
	f := newMiddlewareFixture(t)
	wantErr := errors.New("connection refused")

	wrapped := f.mw.Wrap(func(ctx context.Context, meta CheckMeta) (bool, error) {
		return false, wantErr
	})
	_, err := wrapped(context.Background(), CheckMeta{Name: "database"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected original error, got %v", err)
	}

	if s := f.spans.Ended()[0]; s.Status().Description != "connection refused" {
		t.Errorf("expected span error status, got %q", s.Status().Description)
	}

	var rm metricdata.ResourceMetrics
	if err := f.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	if findMetric(rm, "health.check.failures") == nil {
		t.Error("health.check.failures metric not found")
	}
	if !strings.Contains(f.logs.String(), "connection refused") {
		t.Errorf("expected error in debug log, got %s", f.logs.String())
	}
}

// TestMiddleware_PropagatesContext verifies the span context reaches the check.
func TestMiddleware_PropagatesContext(t *testing.T) {
	f := newMiddlewareFixture(t)

	var got trace.SpanContext
	wrapped := f.mw.Wrap(func(ctx context.Context, meta CheckMeta) (bool, error) {
		got = trace.SpanContextFromContext(ctx)
		return true, nil
	})
	_, _ = wrapped(context.Background(), CheckMeta{Name: "database"})

	if !got.IsValid() {
		t.Fatal("expected a valid span context inside the check")
	}
	if got.SpanID() != f.spans.Ended()[0].SpanContext().SpanID() {
		t.Error("check should run inside its own span")
	}
}

// TestMiddleware_MeasuresDuration verifies duration reaches the histogram.
func TestMiddleware_MeasuresDuration(t *testing.T) {
	f := newMiddlewareFixture(t)

	wrapped := f.mw.Wrap(func(ctx context.Context, meta CheckMeta) (bool, error) {
		time.Sleep(20 * time.Millisecond)
		return true, nil
	})
	_, _ = wrapped(context.Background(), CheckMeta{Name: "slow"})

	var rm metricdata.ResourceMetrics
	if err := f.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	found := findMetric(rm, "health.check.duration_ms")
	if found == nil {
		t.Fatal("health.check.duration_ms metric not found")
	}
	hist := found.Data.(metricdata.Histogram[float64])
	if hist.DataPoints[0].Sum < 20 {
		t.Errorf("expected duration >= 20ms, got %v", hist.DataPoints[0].Sum)
	}
}

// TestMiddleware_Pass verifies the pass span parents check spans.
func TestMiddleware_Pass(t *testing.T) {
	f := newMiddlewareFixture(t)

	ctx, end := f.mw.Pass(context.Background(), "p-9", 1)
	wrapped := f.mw.Wrap(func(ctx context.Context, meta CheckMeta) (bool, error) {
		return true, nil
	})
	_, _ = wrapped(ctx, CheckMeta{Name: "database", PassID: "p-9"})
	end(true)

	spans := f.spans.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].Name() != PassSpanName {
		t.Errorf("expected last span %q, got %q", PassSpanName, spans[1].Name())
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("check span should be a child of the pass span")
	}

	var rm metricdata.ResourceMetrics
	if err := f.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	if findMetric(rm, "health.pass.total") == nil {
		t.Error("health.pass.total metric not found")
	}
}

// TestMiddleware_DisabledNoop verifies nil components fall back to no-ops.
func TestMiddleware_DisabledNoop(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)

	wrapped := mw.Wrap(func(ctx context.Context, meta CheckMeta) (bool, error) {
		return true, nil
	})
	healthy, err := wrapped(context.Background(), CheckMeta{Name: "noop"})
	if err != nil || !healthy {
		t.Fatalf("expected healthy result, got %v, %v", healthy, err)
	}

	_, end := NopMiddleware(nil).Pass(context.Background(), "p", 0)
	end(false)
}

// TestMiddlewareFromObserver_Nil verifies a nil observer is rejected.
func TestMiddlewareFromObserver_Nil(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Fatalf("expected ErrNilObserver, got %v", err)
	}
}

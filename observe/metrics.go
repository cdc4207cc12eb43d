package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records health check metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one subsystem check. healthy is false when the
	// subsystem reported a non-OK status or failed.
	RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, healthy bool, err error)

	// RecordPass records one aggregation pass over the whole registry.
	RecordPass(ctx context.Context, duration time.Duration, healthy bool)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	checkTotal     metric.Int64Counter
	checkFailures  metric.Int64Counter
	checkUnhealthy metric.Int64Counter
	checkDuration  metric.Float64Histogram
	passTotal      metric.Int64Counter
	passDuration   metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	checkTotal, err := meter.Int64Counter(
		"health.check.total",
		metric.WithDescription("Total number of subsystem health checks"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	checkFailures, err := meter.Int64Counter(
		"health.check.failures",
		metric.WithDescription("Subsystem health checks that returned an error"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	checkUnhealthy, err := meter.Int64Counter(
		"health.check.unhealthy",
		metric.WithDescription("Subsystem health checks with a non-OK outcome"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	checkDuration, err := meter.Float64Histogram(
		"health.check.duration_ms",
		metric.WithDescription("Subsystem health check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	passTotal, err := meter.Int64Counter(
		"health.pass.total",
		metric.WithDescription("Total number of aggregation passes"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	passDuration, err := meter.Float64Histogram(
		"health.pass.duration_ms",
		metric.WithDescription("Aggregation pass duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		checkTotal:     checkTotal,
		checkFailures:  checkFailures,
		checkUnhealthy: checkUnhealthy,
		checkDuration:  checkDuration,
		passTotal:      passTotal,
		passDuration:   passDuration,
	}, nil
}

// RecordCheck records metrics for a subsystem check.
func (m *metricsImpl) RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, healthy bool, err error) {
	opt := metric.WithAttributes(attribute.String("health.check.name", meta.Name))

	m.checkTotal.Add(ctx, 1, opt)
	if err != nil {
		m.checkFailures.Add(ctx, 1, opt)
	}
	if !healthy || err != nil {
		m.checkUnhealthy.Add(ctx, 1, opt)
	}
	m.checkDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordPass records metrics for an aggregation pass.
func (m *metricsImpl) RecordPass(ctx context.Context, duration time.Duration, healthy bool) {
	opt := metric.WithAttributes(attribute.Bool("healthy", healthy))

	m.passTotal.Add(ctx, 1, opt)
	m.passDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, healthy bool, err error) {
}

func (m *noopMetrics) RecordPass(ctx context.Context, duration time.Duration, healthy bool) {}

package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

// sumValue returns the total of all data points of an int64 counter, or -1 if absent.
func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	found := findMetric(rm, name)
	if found == nil {
		return -1
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestMetrics_TotalCounterIncrements verifies health.check.total is incremented.
func TestMetrics_TotalCounterIncrements(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCheck(context.Background(), CheckMeta{Name: "database"}, 100*time.Millisecond, true, nil)

	rm := collect(t, reader)
	if got := sumValue(t, rm, "health.check.total"); got != 1 {
		t.Errorf("expected health.check.total=1, got %d", got)
	}
}

// TestMetrics_HealthyCheckCountsNoFailure verifies failure counters stay empty on success.
func TestMetrics_HealthyCheckCountsNoFailure(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCheck(context.Background(), CheckMeta{Name: "database"}, time.Millisecond, true, nil)

	rm := collect(t, reader)
	if got := sumValue(t, rm, "health.check.failures"); got > 0 {
		t.Errorf("expected no failures, got %d", got)
	}
	if got := sumValue(t, rm, "health.check.unhealthy"); got > 0 {
		t.Errorf("expected no unhealthy checks, got %d", got)
	}
}

// TestMetrics_FailureCounters verifies errors count as failed and unhealthy.
func TestMetrics_FailureCounters(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCheck(context.Background(), CheckMeta{Name: "database"}, time.Millisecond, false, errors.New("boom"))
	m.RecordCheck(context.Background(), CheckMeta{Name: "cache"}, time.Millisecond, false, nil)

	rm := collect(t, reader)
	if got := sumValue(t, rm, "health.check.failures"); got != 1 {
		t.Errorf("expected health.check.failures=1, got %d", got)
	}
	if got := sumValue(t, rm, "health.check.unhealthy"); got != 2 {
		t.Errorf("expected health.check.unhealthy=2, got %d", got)
	}
}

// TestMetrics_DurationHistogramRecords verifies the duration histogram gets a sample.
func TestMetrics_DurationHistogramRecords(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCheck(context.Background(), CheckMeta{Name: "database"}, 150*time.Millisecond, true, nil)

	rm := collect(t, reader)
	found := findMetric(rm, "health.check.duration_ms")
	if found == nil {
		t.Fatal("health.check.duration_ms metric not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 1 {
		t.Fatalf("expected one histogram sample, got %+v", hist.DataPoints)
	}
	if hist.DataPoints[0].Sum != 150 {
		t.Errorf("expected sum 150, got %v", hist.DataPoints[0].Sum)
	}
}

// TestMetrics_LabelsApplied verifies the subsystem name is attached.
func TestMetrics_LabelsApplied(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCheck(context.Background(), CheckMeta{Name: "database", Index: 2}, 10*time.Millisecond, true, nil)

	rm := collect(t, reader)
	found := findMetric(rm, "health.check.total")
	if found == nil {
		t.Fatal("health.check.total metric not found")
	}
	sum := found.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}

	v, ok := sum.DataPoints[0].Attributes.Value("health.check.name")
	if !ok {
		t.Fatal("health.check.name attribute not found")
	}
	if v.AsString() != "database" {
		t.Errorf("expected health.check.name='database', got %q", v.AsString())
	}
}

// TestMetrics_RecordPass verifies pass counters carry the healthy attribute.
func TestMetrics_RecordPass(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordPass(context.Background(), 5*time.Millisecond, true)
	m.RecordPass(context.Background(), 5*time.Millisecond, false)
	m.RecordPass(context.Background(), 5*time.Millisecond, false)

	rm := collect(t, reader)
	found := findMetric(rm, "health.pass.total")
	if found == nil {
		t.Fatal("health.pass.total metric not found")
	}
	sum := found.Data.(metricdata.Sum[int64])

	byHealthy := map[bool]int64{}
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value("healthy")
		if !ok {
			t.Fatal("healthy attribute not found")
		}
		byHealthy[v.AsBool()] += dp.Value
	}
	if byHealthy[true] != 1 || byHealthy[false] != 2 {
		t.Errorf("unexpected pass counts: %v", byHealthy)
	}
	if findMetric(rm, "health.pass.duration_ms") == nil {
		t.Error("health.pass.duration_ms metric not found")
	}
}

// TestMetrics_ConcurrentRecording verifies thread safety.
func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)

	meta := CheckMeta{Name: "concurrent"}
	const numGoroutines = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			m.RecordCheck(context.Background(), meta, time.Millisecond, true, nil)
		}()
	}

	wg.Wait()

	rm := collect(t, reader)
	if got := sumValue(t, rm, "health.check.total"); got != numGoroutines {
		t.Errorf("expected count %d, got %d", numGoroutines, got)
	}
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

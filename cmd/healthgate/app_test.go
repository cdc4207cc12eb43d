package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/healthgate/config"
	"github.com/jonwraymond/healthgate/health"
	"github.com/jonwraymond/healthgate/observe"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.HealthCheck.Port = 0
	cfg.Observe.Logging.Enabled = false
	config.ApplyDefaults(cfg)
	return cfg
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

func TestApp_ServesHealth(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	if err := a.start(ctx); err != nil {
		t.Fatalf("start() error = %v", err)
	}
	t.Cleanup(func() { _ = a.shutdown(context.Background()) })

	if a.service.State() != health.StateListening {
		t.Fatalf("State() = %v, want listening", a.service.State())
	}

	status, body := get(t, "http://"+a.service.Addr().String()+"/anything")
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", status, body)
	}

	var details map[string]any
	if err := json.Unmarshal(body, &details); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	for _, key := range []string{"process", "memory"} {
		if _, ok := details[key]; !ok {
			t.Errorf("missing %q in %s", key, body)
		}
	}
	if a.metricsAddr() != nil {
		t.Error("metrics endpoint should not be running")
	}
}

func TestApp_MetricsEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Observe.Metrics = observe.MetricsConfig{Enabled: true, Exporter: "prometheus"}
	cfg.MetricsServer = config.MetricsServer{Address: "127.0.0.1:0", Path: "/metrics"}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	if err := a.start(ctx); err != nil {
		t.Fatalf("start() error = %v", err)
	}
	t.Cleanup(func() { _ = a.shutdown(context.Background()) })

	// One pass so the health instruments have data points.
	get(t, "http://"+a.service.Addr().String()+"/")

	status, body := get(t, "http://"+a.metricsAddr().String()+"/metrics")
	if status != http.StatusOK {
		t.Fatalf("metrics status = %d", status)
	}
	for _, name := range []string{"go_goroutines", "health_pass_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

func TestApp_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.HealthCheck.Enabled = false

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	if err := a.start(ctx); err != nil {
		t.Fatalf("start() error = %v", err)
	}
	if a.service.State() != health.StateDisabled {
		t.Errorf("State() = %v, want disabled", a.service.State())
	}
	if err := a.shutdown(ctx); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestApp_InvalidObserveConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Observe.ServiceName = ""

	if _, err := newApp(context.Background(), cfg); !errors.Is(err, observe.ErrMissingServiceName) {
		t.Fatalf("newApp() error = %v, want ErrMissingServiceName", err)
	}
}

func TestPrintCheck(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.observer.Shutdown(context.Background()) })

	var buf bytes.Buffer
	if err := printCheck(ctx, &buf, a.service); err != nil {
		t.Fatalf("printCheck() error = %v", err)
	}

	var details map[string]any
	if err := json.Unmarshal(buf.Bytes(), &details); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	proc, ok := details["process"].(map[string]any)
	if !ok {
		t.Fatalf("missing process details: %s", buf.String())
	}
	if proc["instance_id"] != a.process.InstanceID() {
		t.Errorf("instance_id = %v, want %s", proc["instance_id"], a.process.InstanceID())
	}
}

func TestPrintCheck_Unhealthy(t *testing.T) {
	container := health.NewContainer()
	container.Register("db", health.CheckableFunc(func(context.Context) (health.Result, error) {
		return health.Unavailable(health.Details{"db": "down"}), nil
	}))
	svc := health.NewService(container, health.Config{}, nil)

	var buf bytes.Buffer
	err := printCheck(context.Background(), &buf, svc)
	if !errors.Is(err, errUnhealthy) {
		t.Fatalf("printCheck() error = %v, want errUnhealthy", err)
	}
	if !strings.Contains(buf.String(), `"db": "down"`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestCheckCommand_SpansGoToStderr(t *testing.T) {
	t.Setenv("HEALTHGATE_LOG_ENABLED", "false")
	t.Setenv("HEALTHGATE_TRACING_ENABLED", "true")
	t.Setenv("HEALTHGATE_TRACING_EXPORTER", "stdout")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"check", "--config", "", "--env-file", ""})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil && !errors.Is(err, errUnhealthy) {
		t.Fatalf("check error = %v", err)
	}

	var details map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &details); err != nil {
		t.Fatalf("stdout is not a single JSON document: %v\n%s", err, stdout.String())
	}
	if _, ok := details["process"]; !ok {
		t.Errorf("missing process details: %s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "health.pass") {
		t.Errorf("expected pass span on stderr, got %q", stderr.String())
	}
}

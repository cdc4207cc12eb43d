package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/healthgate/config"
	"github.com/jonwraymond/healthgate/health"
	"github.com/jonwraymond/healthgate/observe"
)

// app is a fully wired healthgate process.
type app struct {
	cfg      *config.Config
	observer observe.Observer
	logger   observe.Logger
	service  *health.Service
	process  *health.ProcessChecker

	metrics     *http.Server
	metricsLn   net.Listener
	metricsDone chan struct{}
}

// newApp builds the observer, the built-in checks and the health service.
// Nothing listens until start.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	var reg *prometheus.Registry
	if cfg.MetricsServer.Enabled() {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		cfg.Observe.Metrics.Registerer = reg
	}

	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return nil, fmt.Errorf("failed to create observer: %w", err)
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	version := cfg.Observe.Version
	if version == "" {
		version = Version
	}
	process := health.NewProcessChecker(version)

	container := health.NewContainer()
	container.Register("process", process)
	container.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))

	a := &app{
		cfg:      cfg,
		observer: obs,
		logger:   obs.Logger(),
		process:  process,
		service: health.NewService(container, cfg.HealthCheck, obs.Logger(),
			health.WithServiceName(cfg.Observe.ServiceName),
			health.WithServiceMiddleware(mw),
		),
	}

	if reg != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.MetricsServer.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		a.metrics = &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return a, nil
}

// start brings up the health endpoint and, when configured, the metrics
// endpoint.
func (a *app) start(ctx context.Context) error {
	if err := a.service.OnInit(ctx); err != nil {
		return err
	}

	if a.metrics == nil {
		return nil
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", a.cfg.MetricsServer.Address)
	if err != nil {
		return fmt.Errorf("failed to bind metrics endpoint %s: %w", a.cfg.MetricsServer.Address, err)
	}
	a.metricsLn = ln
	a.metricsDone = make(chan struct{})

	a.logger.Info(ctx, "metrics endpoint is running",
		observe.Field{Key: "address", Value: ln.Addr().String()},
		observe.Field{Key: "path", Value: a.cfg.MetricsServer.Path},
	)

	go func() {
		defer close(a.metricsDone)
		if err := a.metrics.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(context.Background(), "metrics server stopped", observe.Field{Key: "error", Value: err})
		}
	}()
	return nil
}

// metricsAddr returns the bound metrics address, or nil.
func (a *app) metricsAddr() net.Addr {
	if a.metricsLn == nil {
		return nil
	}
	return a.metricsLn.Addr()
}

// shutdown stops the servers and flushes telemetry. It returns the first
// error encountered.
func (a *app) shutdown(ctx context.Context) error {
	var errs []error

	if err := a.service.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("health server: %w", err))
	}
	if a.metricsLn != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
		<-a.metricsDone
	}
	if err := a.observer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("observer: %w", err))
	}
	return errors.Join(errs...)
}

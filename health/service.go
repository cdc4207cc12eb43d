package health

import (
	"context"
	"net"

	"github.com/jonwraymond/healthgate/observe"
)

// DefaultServiceName names the HTTP server in traces.
const DefaultServiceName = "healthgate"

// Service wires a Container, Registry, Aggregator and Server together and
// drives them from the host's init hook.
type Service struct {
	cfg       Config
	container *Container
	registry  *Registry
	agg       *Aggregator
	server    *Server
	logger    observe.Logger
}

type serviceOptions struct {
	name     string
	registry *Registry
	mw       *observe.Middleware
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

// WithServiceName sets the server name reported in HTTP spans.
func WithServiceName(name string) ServiceOption {
	return func(o *serviceOptions) {
		o.name = name
	}
}

// WithRegistry shares an existing registry instead of creating one.
func WithRegistry(r *Registry) ServiceOption {
	return func(o *serviceOptions) {
		o.registry = r
	}
}

// WithServiceMiddleware instruments every check with mw.
func WithServiceMiddleware(mw *observe.Middleware) ServiceOption {
	return func(o *serviceOptions) {
		o.mw = mw
	}
}

// NewService creates a service over container. A nil logger disables logging.
func NewService(container *Container, cfg Config, logger observe.Logger, opts ...ServiceOption) *Service {
	o := &serviceOptions{name: DefaultServiceName}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	agg := NewAggregator(o.registry,
		WithLogger(logger),
		WithMiddleware(o.mw),
		WithCheckTimeout(cfg.CheckTimeout),
	)

	return &Service{
		cfg:       cfg,
		container: container,
		registry:  o.registry,
		agg:       agg,
		server:    NewServer(cfg, agg, o.name),
		logger:    logger,
	}
}

// OnInit builds the registry and starts the endpoint. When disabled the
// registry is left untouched and nothing is bound.
func (s *Service) OnInit(ctx context.Context) error {
	if !s.cfg.Enabled {
		return s.server.Start(ctx)
	}

	n := s.registry.Ensure(s.container)
	s.logger.Debug(ctx, "health check registry ready", observe.Field{Key: "subsystems", Value: n})

	return s.server.Start(ctx)
}

// HealthCheck runs one aggregation pass, building the registry first if
// needed.
func (s *Service) HealthCheck(ctx context.Context) Response {
	s.registry.Ensure(s.container)
	return s.agg.Run(ctx)
}

// Registry returns the service registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// State returns the endpoint lifecycle state.
func (s *Service) State() State {
	return s.server.State()
}

// Addr returns the bound address, or nil unless listening.
func (s *Service) Addr() net.Addr {
	return s.server.Addr()
}

// Shutdown stops the endpoint.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

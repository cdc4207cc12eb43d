package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/jonwraymond/healthgate/observe"
)

// State is the lifecycle state of a Server.
type State int32

const (
	// StateNotStarted is the initial state.
	StateNotStarted State = iota
	// StateDisabled is terminal; the endpoint was disabled by config.
	StateDisabled
	// StateListening means the endpoint is bound and serving.
	StateListening
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateDisabled:
		return "disabled"
	case StateListening:
		return "listening"
	default:
		return "unknown"
	}
}

const readHeaderTimeout = 10 * time.Second

// Server exposes an Aggregator over HTTP on a single port.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - Lifecycle: Start succeeds at most once; later calls return
//     ErrAlreadyStarted.
type Server struct {
	cfg    Config
	router *mux.Router
	logger observe.Logger

	mu    sync.Mutex
	state atomic.Int32
	srv   *http.Server
	addr  net.Addr
	done  chan struct{}
}

// NewServer creates a server for agg. Nothing is bound until Start.
func NewServer(cfg Config, agg *Aggregator, name string) *Server {
	logger := agg.Logger()
	return &Server{
		cfg:    cfg,
		router: newRouter(name, Handler(agg), logger),
		logger: logger,
	}
}

// newRouter matches every method and path, including uncleaned paths, and
// routes them to h.
func newRouter(name string, h http.Handler, logger observe.Logger) *mux.Router {
	recovery := recoverer(logger)

	r := mux.NewRouter().SkipClean(true)
	r.Use(recovery)
	r.Use(otelmux.Middleware(name))
	r.PathPrefix("/").Handler(h)

	fallback := recovery(h)
	r.NotFoundHandler = fallback
	r.MethodNotAllowedHandler = fallback
	return r
}

// Start binds the configured port and serves in the background. When the
// endpoint is disabled it logs and returns nil without binding. Bind
// failures wrap ErrBind.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != StateNotStarted {
		return ErrAlreadyStarted
	}

	if !s.cfg.Enabled {
		s.logger.Info(ctx, "health check is disabled")
		s.state.Store(int32(StateDisabled))
		return nil
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(int(s.cfg.Port))))
	if err != nil {
		return fmt.Errorf("%w on port %d: %w", ErrBind, s.cfg.Port, err)
	}

	port := s.cfg.Port
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = uint16(tcp.Port)
	}

	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.addr = ln.Addr()
	s.done = make(chan struct{})
	s.state.Store(int32(StateListening))

	s.logger.Info(ctx, fmt.Sprintf("health check is running on port %d", port),
		observe.Field{Key: "port", Value: port},
	)

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), "health check server stopped",
				observe.Field{Key: "error", Value: err},
			)
		}
	}()

	return nil
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Addr returns the bound address, or nil unless listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown gracefully stops a listening server. It is a no-op in any other
// state.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

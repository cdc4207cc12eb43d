package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthgate/observe"
	"github.com/jonwraymond/healthgate/resilience"
)

// Response is the aggregate outcome of one health check pass.
type Response struct {
	// IsHealthy is true when every subsystem returned StatusOK.
	IsHealthy bool

	// Details is the deep merge of every successful subsystem's details in
	// registry order. Later subsystems win on colliding keys.
	Details Details
}

// Aggregator runs every registered check and folds the results into a
// single Response.
//
// Contract:
//   - Concurrency: Run is safe for concurrent use; each call is independent.
//   - Errors: subsystem failures never escape Run. They are logged and
//     counted as StatusUnavailable.
type Aggregator struct {
	registry *Registry
	logger   observe.Logger
	mw       *observe.Middleware
	timeout  *resilience.Timeout
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger for failure and unhealthy events.
func WithLogger(logger observe.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMiddleware instruments every check with tracing and metrics.
func WithMiddleware(mw *observe.Middleware) AggregatorOption {
	return func(a *Aggregator) {
		a.mw = mw
	}
}

// WithCheckTimeout bounds each subsystem check. Zero or negative disables
// the bound, which is the default.
func WithCheckTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d <= 0 {
			a.timeout = nil
			return
		}
		a.timeout = resilience.NewTimeout(resilience.TimeoutConfig{Timeout: d})
	}
}

// NewAggregator creates an aggregator over registry.
func NewAggregator(registry *Registry, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry: registry,
		logger:   observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.mw == nil {
		a.mw = observe.NopMiddleware(a.logger)
	}
	return a
}

// Logger returns the aggregator's logger.
func (a *Aggregator) Logger() observe.Logger {
	return a.logger
}

type outcome struct {
	result Result
	err    error
}

// Run invokes every registered check concurrently, waits for all of them to
// settle and merges their details in registry order.
func (a *Aggregator) Run(ctx context.Context) Response {
	entries := a.registry.snapshot()
	passID := uuid.NewString()

	ctx, end := a.mw.Pass(ctx, passID, len(entries))

	outcomes := make([]outcome, len(entries))
	var g errgroup.Group
	for i, e := range entries {
		g.Go(func() error {
			outcomes[i] = a.invoke(ctx, observe.CheckMeta{Name: e.Name, PassID: passID, Index: i}, e.Check)
			return nil
		})
	}
	_ = g.Wait()

	resp := Response{IsHealthy: true, Details: Details{}}
	for i, o := range outcomes {
		if o.err != nil {
			a.logger.Error(ctx, "failed to generate health check",
				observe.Field{Key: "error", Value: o.err},
				observe.Field{Key: "subsystem", Value: entries[i].Name},
			)
			resp.IsHealthy = false
			continue
		}
		resp.Details = Merge(resp.Details, o.result.Details)
		if !o.result.Status.OK() {
			resp.IsHealthy = false
		}
	}

	if !resp.IsHealthy {
		a.logger.Warn(ctx, "health check unhealthy response",
			observe.Field{Key: "details", Value: resp.Details},
		)
	}

	end(resp.IsHealthy)
	return resp
}

func (a *Aggregator) invoke(ctx context.Context, meta observe.CheckMeta, c Checkable) outcome {
	var out outcome
	check := a.mw.Wrap(func(ctx context.Context, meta observe.CheckMeta) (bool, error) {
		res, err := a.call(ctx, c)
		out = outcome{result: res, err: err}
		return err == nil && res.Status.OK(), err
	})
	_, _ = check(ctx, meta)
	return out
}

func (a *Aggregator) call(ctx context.Context, c Checkable) (Result, error) {
	if a.timeout == nil {
		return callCheck(ctx, c)
	}

	// Buffered so a check finishing after the deadline does not block.
	results := make(chan Result, 1)
	err := a.timeout.Execute(ctx, func(ctx context.Context) error {
		res, err := callCheck(ctx, c)
		if err != nil {
			return err
		}
		results <- res
		return nil
	})
	if errors.Is(err, resilience.ErrTimeout) {
		return Result{}, fmt.Errorf("%w: %w", ErrCheckTimeout, err)
	}
	if err != nil {
		return Result{}, err
	}
	return <-results, nil
}

func callCheck(ctx context.Context, c Checkable) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{}
			if perr, ok := p.(error); ok {
				err = fmt.Errorf("%w: %w", ErrCheckPanicked, perr)
				return
			}
			err = fmt.Errorf("%w: %v", ErrCheckPanicked, p)
		}
	}()
	return c.OnHealthCheck(ctx)
}

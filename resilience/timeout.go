package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout is applied when TimeoutConfig.Timeout is not positive.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	Timeout time.Duration
}

// Timeout bounds the duration of operations. The operation runs in its own
// goroutine and keeps running after the deadline until it observes the
// cancelled context, so operations should honor ctx.
//
// Contract:
//   - Concurrency: Execute is safe for concurrent use.
//   - Errors: a deadline hit wraps ErrTimeout; the operation's own error is
//     returned unchanged.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	return &Timeout{config: config}
}

// Execute runs op with a deadline derived from ctx.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	// Buffered so a late op does not leak its goroutine.
	done := make(chan error, 1)

	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		// op observed our deadline before we did.
		if errors.Is(err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return t.timeoutError()
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return t.timeoutError()
		}
		return ctx.Err()
	}
}

func (t *Timeout) timeoutError() error {
	return fmt.Errorf("%w after %s", ErrTimeout, t.config.Timeout)
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

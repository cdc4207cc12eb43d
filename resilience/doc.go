// Package resilience bounds the duration of blocking operations.
//
// Timeout runs an operation under a deadline and reports ErrTimeout when the
// deadline passes first. The health aggregator uses it to bound individual
// subsystem checks when a check timeout is configured:
//
//	t := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: 2 * time.Second})
//	err := t.Execute(ctx, func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
//	if errors.Is(err, resilience.ErrTimeout) {
//	    // the check hung
//	}
package resilience

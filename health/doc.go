// Package health aggregates the health of in-process subsystems and exposes
// the verdict over HTTP.
//
// # Core Concepts
//
// A subsystem takes part by implementing Checkable. Its Result carries a
// StatusCode, where only StatusOK is healthy, and a Details payload.
//
// Subsystems are registered in a Container by application wiring. A Registry
// is built once from the container, keeping only the Checkable values in
// registration order, and is read-only afterwards.
//
// # Aggregation
//
// Aggregator.Run invokes every registered check concurrently and waits for
// all of them. Details are deep-merged in registry order, so a later
// subsystem wins on a colliding key no matter which check finished first. A
// check that returns an error, panics or exceeds the optional timeout is
// logged and counted as StatusUnavailable; its details are dropped.
//
//	container := health.NewContainer()
//	container.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//	container.Register("database", db)
//
//	registry := health.NewRegistry()
//	registry.Ensure(container)
//
//	resp := health.NewAggregator(registry, health.WithLogger(logger)).Run(ctx)
//
// # HTTP Endpoint
//
// Server answers every request, whatever the method or path, with 200 when
// healthy and 503 otherwise. The body is the JSON encoding of the merged
// details. Service ties the pieces together for a host's init hook:
//
//	svc := health.NewService(container, health.Config{Enabled: true, Port: 8081}, logger)
//	if err := svc.OnInit(ctx); err != nil {
//	    return err // wraps health.ErrBind
//	}
//	defer svc.Shutdown(context.Background())
package health

package health

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// ProcessChecker reports identity information about the running process
// under the "process" key. It is always OK.
type ProcessChecker struct {
	id      string
	version string
	started time.Time
}

// NewProcessChecker creates a checker with a fresh instance id.
func NewProcessChecker(version string) *ProcessChecker {
	return &ProcessChecker{
		id:      uuid.NewString(),
		version: version,
		started: time.Now(),
	}
}

// InstanceID returns the id generated for this process.
func (p *ProcessChecker) InstanceID() string {
	return p.id
}

// OnHealthCheck returns the process details.
func (p *ProcessChecker) OnHealthCheck(ctx context.Context) (Result, error) {
	return OK(Details{
		"process": map[string]any{
			"pid":            os.Getpid(),
			"instance_id":    p.id,
			"version":        p.version,
			"started_at":     p.started.UTC().Format(time.RFC3339),
			"uptime_seconds": int64(time.Since(p.started).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"go_version":     runtime.Version(),
		},
	}), nil
}

package health

import (
	"context"
	"runtime"
)

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// WarningThreshold is the usage ratio reported as a warning level.
	// Value should be between 0 and 1. Default: 0.8 (80%)
	WarningThreshold float64

	// CriticalThreshold is the usage ratio that makes the check unavailable.
	// Value should be between 0 and 1. Default: 0.95 (95%)
	CriticalThreshold float64

	// MaxAlloc is the maximum expected allocation in bytes.
	// If zero, the memory obtained from the OS is used.
	MaxAlloc uint64
}

// MemoryChecker reports runtime memory statistics under the "memory" key.
type MemoryChecker struct {
	config MemoryCheckerConfig
	read   func(*runtime.MemStats)
}

// NewMemoryChecker creates a new memory health checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 0.1
		if config.CriticalThreshold > 1 {
			config.CriticalThreshold = 0.99
		}
	}

	return &MemoryChecker{config: config, read: runtime.ReadMemStats}
}

// Config returns the effective configuration.
func (m *MemoryChecker) Config() MemoryCheckerConfig {
	return m.config
}

// OnHealthCheck reports memory usage. It is unavailable at or above the
// critical threshold.
func (m *MemoryChecker) OnHealthCheck(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var stats runtime.MemStats
	m.read(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}

	details := map[string]any{
		"alloc_bytes":  stats.Alloc,
		"sys_bytes":    stats.Sys,
		"heap_alloc":   stats.HeapAlloc,
		"heap_in_use":  stats.HeapInuse,
		"heap_objects": stats.HeapObjects,
		"num_gc":       stats.NumGC,
		"level":        "normal",
	}

	if maxAlloc == 0 {
		details["level"] = "unknown"
		return OK(Details{"memory": details}), nil
	}

	usage := float64(stats.Alloc) / float64(maxAlloc)
	details["max_alloc"] = maxAlloc
	details["usage_percent"] = usage * 100

	switch {
	case usage >= m.config.CriticalThreshold:
		details["level"] = "critical"
		return Unavailable(Details{"memory": details}), nil
	case usage >= m.config.WarningThreshold:
		details["level"] = "warning"
	}

	return OK(Details{"memory": details}), nil
}

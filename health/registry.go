package health

import (
	"sync"
	"sync/atomic"
)

// Entry is a registered health-checkable subsystem.
type Entry struct {
	Name  string
	Check Checkable
}

// Registry is the ordered list of health-checkable subsystems. It is built
// once by Ensure and read without locks afterwards.
type Registry struct {
	mu      sync.Mutex // serializes Ensure
	entries atomic.Pointer[[]Entry]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Ensure populates the registry from c unless it already has entries.
// Subsystems implementing Checkable are appended in container order and
// the result is frozen. It returns the registry size.
func (r *Registry) Ensure(c *Container) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.snapshot()); n > 0 {
		return n
	}

	var entries []Entry
	c.Each(func(name string, v any) {
		if !IsHealthCheckable(v) {
			return
		}
		entries = append(entries, Entry{Name: name, Check: v.(Checkable)})
	})

	r.entries.Store(&entries)
	return len(entries)
}

// EnsureRegistry populates r from c. See Registry.Ensure.
func EnsureRegistry(c *Container, r *Registry) int {
	return r.Ensure(c)
}

// Len returns the number of registered subsystems.
func (r *Registry) Len() int {
	return len(r.snapshot())
}

// Entries returns a copy of the registered subsystems in order.
func (r *Registry) Entries() []Entry {
	s := r.snapshot()
	out := make([]Entry, len(s))
	copy(out, s)
	return out
}

// snapshot returns the frozen entries. Callers must not modify the slice.
func (r *Registry) snapshot() []Entry {
	if p := r.entries.Load(); p != nil {
		return *p
	}
	return nil
}

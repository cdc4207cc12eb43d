package health

import "sync"

// Container is an ordered collection of named subsystem instances assembled
// by application wiring. Values are arbitrary; only those implementing
// Checkable take part in health checks.
type Container struct {
	mu     sync.RWMutex
	order  []string
	values map[string]any
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{values: make(map[string]any)}
}

// Register adds a subsystem under name. Registering an existing name
// replaces the instance and keeps its original position.
func (c *Container) Register(name string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.values[name]; !exists {
		c.order = append(c.order, name)
	}
	c.values[name] = v
}

// Get returns the subsystem registered under name.
func (c *Container) Get(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.values[name]
	return v, ok
}

// Names returns the registered names in registration order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Len returns the number of registered subsystems.
func (c *Container) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Each calls fn for every subsystem in registration order. fn runs on a
// snapshot, so it may call back into the container.
func (c *Container) Each(fn func(name string, v any)) {
	if c == nil {
		return
	}

	c.mu.RLock()
	names := make([]string, len(c.order))
	copy(names, c.order)
	values := make([]any, len(names))
	for i, name := range names {
		values[i] = c.values[name]
	}
	c.mu.RUnlock()

	for i, name := range names {
		fn(name, values[i])
	}
}

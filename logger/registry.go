package logger

import (
	"sync"
)

// Component loggers ("engine", "inproc", ...) are derived from the global
// logger on first use and cached until the global logger is replaced.
// Register pins a logger for a component regardless of the global one.
var registry = &componentRegistry{
	pinned:  make(map[string]*Logger),
	derived: make(map[string]*Logger),
}

type componentRegistry struct {
	mu      sync.RWMutex
	gen     uint64
	pinned  map[string]*Logger
	derived map[string]*Logger
}

// invalidate drops every derived logger. Pinned loggers stay.
func (r *componentRegistry) invalidate() {
	r.mu.Lock()
	r.gen++
	clear(r.derived)
	r.mu.Unlock()
}

// Register pins l as the logger of the named component.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.pinned[name] = l
}

// Unregister removes a pinned logger so Get derives one from the global
// logger again.
func Unregister(name string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.pinned, name)
}

// Get returns the logger of the named component: the pinned one if any,
// otherwise the global logger tagged with the component name.
func Get(name string) *Logger {
	registry.mu.RLock()
	if l, ok := registry.pinned[name]; ok {
		registry.mu.RUnlock()
		return l
	}
	l, ok := registry.derived[name]
	gen := registry.gen
	registry.mu.RUnlock()
	if ok {
		return l
	}

	l = GetGlobalLogger().WithComponent(name)
	registry.mu.Lock()
	// a concurrent SetGlobalLogger makes l stale; hand it out but don't cache it
	if registry.gen == gen {
		registry.derived[name] = l
	}
	registry.mu.Unlock()
	return l
}

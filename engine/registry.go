package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/reactive/logger"
)

// Registry manages named engine factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// RegisterFactory registers a named factory. Registering a name twice
// replaces the earlier factory.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	r.mu.Lock()
	_, replaced := r.factories[name]
	r.factories[name] = factory
	r.mu.Unlock()
	if replaced {
		log().Warn("engine factory replaced", logger.Fields(logger.FieldEngine, name))
	}
}

// Create instantiates an engine using the named factory and options.
func (r *Registry) Create(name string, opts map[string]any) (Engine, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("engine factory %q not registered", name)
	}
	return factory(opts)
}

// List returns sorted names of all registered factories.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

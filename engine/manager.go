package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kbukum/reactive/config"
	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/logger"
)

// Manager resolves the default engine once and caches it.
//
// Resolution order: an engine installed with SetDefault; otherwise the
// factory named by the configured engine name; otherwise the only, or the
// alphabetically first, registered factory. A successful resolution is kept
// until Reset; a failed one is retried on the next call.
type Manager struct {
	mu       sync.Mutex
	registry *Registry
	load     func() (*config.Config, error)
	current  Engine
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithConfigLoader replaces the configuration source used during resolution.
func WithConfigLoader(load func() (*config.Config, error)) ManagerOption {
	return func(m *Manager) { m.load = load }
}

// NewManager creates a Manager resolving engines from registry.
func NewManager(registry *Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry: registry,
		load:     func() (*config.Config, error) { return config.Load() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Default returns the resolved engine, resolving it on first use.
func (m *Manager) Default() (Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return m.current, nil
	}

	e, err := m.resolve()
	if err != nil {
		log().Warn("engine resolution failed", logger.ErrorFields("engine.resolve", err))
		return nil, err
	}
	m.current = e
	log().Info("default engine resolved", logger.Fields(logger.FieldEngine, e.Name()))
	return e, nil
}

func (m *Manager) resolve() (Engine, error) {
	cfg, err := m.load()
	if err != nil {
		return nil, errors.EngineResolution("cannot load configuration").WithCause(err)
	}

	registered := m.registry.List()
	name := cfg.Engine.Name
	if name == "" {
		if len(registered) == 0 {
			return nil, errors.EngineResolution("no engine registered; import an engine package such as engine/inproc")
		}
		name = registered[0]
	}

	e, err := m.registry.Create(name, cfg.Engine.Options)
	if err != nil {
		return nil, errors.EngineResolution(fmt.Sprintf("cannot create engine %q (registered: %s)", name, strings.Join(registered, ", "))).
			WithCause(err).
			WithDetail("engine", name)
	}
	if e == nil {
		return nil, errors.EngineResolution(fmt.Sprintf("factory %q returned no engine", name))
	}
	return e, nil
}

// SetDefault installs e as the default engine, bypassing resolution.
// A nil e behaves like Reset.
func (m *Manager) SetDefault(e Engine) {
	m.mu.Lock()
	m.current = e
	m.mu.Unlock()
	if e != nil {
		log().Info("default engine set", logger.Fields(logger.FieldEngine, e.Name()))
	}
}

// Reset forgets the resolved engine so the next Default resolves again.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// --- process-wide default ---

var (
	registry = NewRegistry()
	std      = NewManager(registry)
)

// Register makes an engine factory available by name. Engine packages call
// it from init, so importing the package is enough to make it resolvable.
func Register(name string, factory Factory) {
	if factory == nil {
		panic("engine: Register factory is nil")
	}
	registry.RegisterFactory(name, factory)
}

// Registered returns the sorted names of all registered engines.
func Registered() []string {
	return registry.List()
}

// Default returns the process-wide default engine. Failures are reported as
// ENGINE_RESOLUTION errors.
func Default() (Engine, error) {
	return std.Default()
}

// SetDefault installs the process-wide default engine.
func SetDefault(e Engine) {
	std.SetDefault(e)
}

// Reset forgets the process-wide default engine.
func Reset() {
	std.Reset()
}

func log() *logger.Logger { return logger.Get("engine") }

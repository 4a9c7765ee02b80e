package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/reactive/config"
	rserrors "github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
)

type fakeEngine struct {
	name string
	opts map[string]any
}

func (e *fakeEngine) Name() string { return e.name }

func (e *fakeEngine) BuildPublisher(*graph.Graph) (flow.Publisher[any], error) {
	return nil, rserrors.UnsupportedStage(e.name, "publisher")
}

func (e *fakeEngine) BuildProcessor(*graph.Graph) (flow.Processor[any, any], error) {
	return nil, rserrors.UnsupportedStage(e.name, "processor")
}

func (e *fakeEngine) BuildSubscriber(*graph.Graph) (flow.Subscriber[any], *future.Future[any], error) {
	return nil, nil, rserrors.UnsupportedStage(e.name, "subscriber")
}

func (e *fakeEngine) Run(context.Context, *graph.Graph) (*future.Future[any], error) {
	return future.Resolved[any](nil), nil
}

func fakeFactory(name string, created *int) Factory {
	return func(opts map[string]any) (Engine, error) {
		if created != nil {
			*created++
		}
		return &fakeEngine{name: name, opts: opts}, nil
	}
}

func staticConfig(engineName string, opts map[string]any) ManagerOption {
	return WithConfigLoader(func() (*config.Config, error) {
		cfg := &config.Config{Engine: config.EngineConfig{Name: engineName, Options: opts}}
		cfg.ApplyDefaults()
		return cfg, nil
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory("zeta", fakeFactory("zeta", nil))
	r.RegisterFactory("alpha", fakeFactory("alpha", nil))
	assert.Equal(t, []string{"alpha", "zeta"}, r.List())

	e, err := r.Create("zeta", map[string]any{"k": 1})
	require.NoError(t, err)
	assert.Equal(t, "zeta", e.Name())
	assert.Equal(t, 1, e.(*fakeEngine).opts["k"])

	_, err = r.Create("missing", nil)
	assert.Error(t, err)
}

func TestManager_PicksAlphabeticallyFirst(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory("zeta", fakeFactory("zeta", nil))
	r.RegisterFactory("alpha", fakeFactory("alpha", nil))

	e, err := NewManager(r, staticConfig("", nil)).Default()
	require.NoError(t, err)
	assert.Equal(t, "alpha", e.Name())
}

func TestManager_ConfiguredName(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory("zeta", fakeFactory("zeta", nil))
	r.RegisterFactory("alpha", fakeFactory("alpha", nil))

	e, err := NewManager(r, staticConfig("zeta", map[string]any{"prefetch": 4})).Default()
	require.NoError(t, err)
	assert.Equal(t, "zeta", e.Name())
	assert.Equal(t, 4, e.(*fakeEngine).opts["prefetch"])
}

func TestManager_CachesSuccess(t *testing.T) {
	created := 0
	r := NewRegistry()
	r.RegisterFactory("only", fakeFactory("only", &created))
	m := NewManager(r, staticConfig("", nil))

	first, err := m.Default()
	require.NoError(t, err)
	second, err := m.Default()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, created)

	m.Reset()
	_, err = m.Default()
	require.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestManager_FailureIsNotCached(t *testing.T) {
	r := NewRegistry()
	m := NewManager(r, staticConfig("", nil))

	_, err := m.Default()
	require.Error(t, err)
	assert.True(t, errors.Is(err, rserrors.ErrEngineResolution))

	r.RegisterFactory("late", fakeFactory("late", nil))
	e, err := m.Default()
	require.NoError(t, err)
	assert.Equal(t, "late", e.Name())
}

func TestManager_UnknownConfiguredName(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory("alpha", fakeFactory("alpha", nil))

	_, err := NewManager(r, staticConfig("nope", nil)).Default()
	require.Error(t, err)
	assert.True(t, errors.Is(err, rserrors.ErrEngineResolution))
	assert.Contains(t, err.Error(), "alpha")
}

func TestManager_FactoryError(t *testing.T) {
	boom := errors.New("bad options")
	r := NewRegistry()
	r.RegisterFactory("broken", func(map[string]any) (Engine, error) { return nil, boom })

	_, err := NewManager(r, staticConfig("", nil)).Default()
	assert.True(t, errors.Is(err, rserrors.ErrEngineResolution))
	assert.True(t, errors.Is(err, boom))
}

func TestManager_ConfigError(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory("alpha", fakeFactory("alpha", nil))
	m := NewManager(r, WithConfigLoader(func() (*config.Config, error) {
		return nil, rserrors.InvalidConfig("broken file")
	}))

	_, err := m.Default()
	assert.True(t, errors.Is(err, rserrors.ErrEngineResolution))
	assert.True(t, errors.Is(err, rserrors.ErrInvalidConfig))
}

func TestManager_SetDefaultWins(t *testing.T) {
	created := 0
	r := NewRegistry()
	r.RegisterFactory("alpha", fakeFactory("alpha", &created))
	m := NewManager(r, staticConfig("alpha", nil))

	explicit := &fakeEngine{name: "explicit"}
	m.SetDefault(explicit)
	e, err := m.Default()
	require.NoError(t, err)
	assert.Same(t, explicit, e)
	assert.Zero(t, created)
}

func TestManager_ConcurrentDefault(t *testing.T) {
	created := 0
	r := NewRegistry()
	r.RegisterFactory("only", fakeFactory("only", &created))
	m := NewManager(r, staticConfig("", nil))

	var wg sync.WaitGroup
	engines := make([]Engine, 16)
	for i := range engines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engines[i], _ = m.Default()
		}()
	}
	wg.Wait()
	for _, e := range engines {
		assert.Same(t, engines[0], e)
	}
	assert.Equal(t, 1, created)
}

func TestPackageRegister(t *testing.T) {
	Register("engine-test-fake", fakeFactory("engine-test-fake", nil))
	assert.Contains(t, Registered(), "engine-test-fake")
	assert.Panics(t, func() { Register("engine-test-nil", nil) })

	explicit := &fakeEngine{name: "explicit"}
	SetDefault(explicit)
	t.Cleanup(Reset)
	e, err := Default()
	require.NoError(t, err)
	assert.Same(t, explicit, e)
}

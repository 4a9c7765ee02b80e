package inproc

import (
	"context"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"

	"github.com/kbukum/reactive/engine"
	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
	"github.com/kbukum/reactive/logger"
	"github.com/kbukum/reactive/validation"
)

// Name is the registration name of the in-process engine.
const Name = "inproc"

// DefaultPrefetch is the batch size used when Config.Prefetch is unset.
const DefaultPrefetch = 16

func init() {
	engine.Register(Name, factory)
}

// Config configures the in-process engine.
type Config struct {
	// Prefetch is how many elements are requested at a time from publishers
	// and processors the engine subscribes to.
	Prefetch int `mapstructure:"prefetch" validate:"min=1,max=65536"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Prefetch == 0 {
		c.Prefetch = DefaultPrefetch
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Engine runs graphs in the current process. Every subscription is driven by
// its own goroutine pulling from a lazily evaluated iterator chain, so stage
// functions only ever run on behalf of outstanding demand.
type Engine struct {
	cfg Config
	log *logger.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New creates an engine. Zero fields of cfg take their defaults.
func New(cfg Config) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, log: logger.Get(Name)}, nil
}

func factory(opts map[string]any) (engine.Engine, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(opts); err != nil {
		return nil, errors.InvalidConfig("inproc engine options").WithCause(err)
	}
	return New(cfg)
}

// Name returns "inproc".
func (e *Engine) Name() string { return Name }

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// BuildPublisher materializes a publisher graph. Every Subscribe on the
// result compiles a fresh iterator chain, so subscriptions never share state.
func (e *Engine) BuildPublisher(g *graph.Graph) (flow.Publisher[any], error) {
	if err := g.Validate(graph.ShapePublisher); err != nil {
		return nil, err
	}
	chain, err := e.compilePublisher(g.Stages())
	if err != nil {
		return nil, err
	}
	id := e.built(g)
	return e.newPublisher(chain, false, id), nil
}

// BuildProcessor materializes a processor graph. The result accepts one
// upstream subscription and one downstream subscriber.
func (e *Engine) BuildProcessor(g *graph.Graph) (flow.Processor[any, any], error) {
	if err := g.Validate(graph.ShapeProcessor); err != nil {
		return nil, err
	}
	in := newSubscriberBridge(e.prefetch())
	chain, err := e.compileChain(inlet(in), g.Stages())
	if err != nil {
		return nil, err
	}
	id := e.built(g)
	return &processor{in: in, out: e.newPublisher(chain, true, id)}, nil
}

// BuildSubscriber materializes a subscriber graph. The sink starts running
// when the subscriber receives its subscription; the future settles with
// the sink's result.
func (e *Engine) BuildSubscriber(g *graph.Graph) (flow.Subscriber[any], *future.Future[any], error) {
	if err := g.Validate(graph.ShapeSubscriber); err != nil {
		return nil, nil, err
	}
	stages := g.Stages()
	sink := stages[len(stages)-1]
	in := newSubscriberBridge(e.prefetch())
	chain, err := e.compileChain(inlet(in), stages[:len(stages)-1])
	if err != nil {
		return nil, nil, err
	}
	if err := e.checkSink(sink); err != nil {
		return nil, nil, err
	}
	id := e.built(g)
	promise := future.NewPromise[any]()
	in.onSubscribe = func() {
		go e.runSink(context.Background(), chain, sink, promise, id)
	}
	return in, promise.Future(), nil
}

// Run starts a closed graph and returns its eventual result. Cancelling ctx
// cancels this execution only.
func (e *Engine) Run(ctx context.Context, g *graph.Graph) (*future.Future[any], error) {
	if err := g.Validate(graph.ShapeClosed); err != nil {
		return nil, err
	}
	stages := g.Stages()
	sink := stages[len(stages)-1]
	chain, err := e.compilePublisher(stages[:len(stages)-1])
	if err != nil {
		return nil, err
	}
	if err := e.checkSink(sink); err != nil {
		return nil, err
	}
	id := e.built(g)
	promise := future.NewPromise[any]()
	go e.runSink(ctx, chain, sink, promise, id)
	return promise.Future(), nil
}

func (e *Engine) prefetch() int64 { return int64(e.cfg.Prefetch) }

// built logs a materialized graph and returns its pipeline id.
func (e *Engine) built(g *graph.Graph) string {
	id := uuid.NewString()
	e.log.Debug("pipeline built", logger.Fields(
		logger.FieldPipelineID, id,
		logger.FieldShape, g.Shape().String(),
		logger.FieldStages, g.Len(),
	))
	return id
}

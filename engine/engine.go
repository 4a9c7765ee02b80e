package engine

import (
	"context"

	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
)

// Engine turns graph descriptions into running streams.
//
// Build methods fail only for structural problems: a graph of the wrong shape
// or a stage the engine cannot run. Everything that goes wrong while a stream
// runs is reported through the flow protocol or the returned future.
//
// Every call produces an independent instance; an engine keeps no per-stream
// state of its own and must be safe for concurrent use.
type Engine interface {
	// Name identifies the engine, matching its registration name.
	Name() string
	// BuildPublisher materializes a publisher-shaped graph. Each Subscribe on
	// the result starts an independent execution.
	BuildPublisher(g *graph.Graph) (flow.Publisher[any], error)
	// BuildProcessor materializes a processor-shaped graph.
	BuildProcessor(g *graph.Graph) (flow.Processor[any, any], error)
	// BuildSubscriber materializes a subscriber-shaped graph. The future
	// settles with the sink's result once the stream terminates.
	BuildSubscriber(g *graph.Graph) (flow.Subscriber[any], *future.Future[any], error)
	// Run starts a closed graph. Cancelling ctx cancels this execution only.
	Run(ctx context.Context, g *graph.Graph) (*future.Future[any], error)
}

// Factory creates an engine from the options found under engine.options in
// the reactive configuration. opts may be nil.
type Factory func(opts map[string]any) (Engine, error)

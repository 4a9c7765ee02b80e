package streams

import (
	"context"

	"github.com/kbukum/reactive/engine"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
)

// CompletionRunner describes a closed stream. Nothing happens until Run;
// every Run is an independent execution.
type CompletionRunner[R any] struct {
	c      chain
	result func(any) (R, error)
}

func runnerOf[R any](c chain, result func(any) (R, error)) *CompletionRunner[R] {
	return &CompletionRunner[R]{c: c, result: result}
}

// Err returns the first error recorded while building.
func (r *CompletionRunner[R]) Err() error { return r.c.err }

// Graph returns the stream description.
func (r *CompletionRunner[R]) Graph() (*graph.Graph, error) { return r.c.result() }

// Run starts the stream on the default engine.
func (r *CompletionRunner[R]) Run(ctx context.Context) (*future.Future[R], error) {
	return r.RunWith(ctx, nil)
}

// RunWith starts the stream on e, or on the default engine when e is nil.
// A construction error is returned directly; everything that happens while
// the stream runs settles the future. Cancelling ctx cancels the execution.
func (r *CompletionRunner[R]) RunWith(ctx context.Context, e engine.Engine) (*future.Future[R], error) {
	g, err := r.Graph()
	if err != nil {
		return nil, err
	}
	if e, err = resolve(e); err != nil {
		return nil, err
	}
	f, err := e.Run(ctx, g)
	if err != nil {
		return nil, err
	}
	return future.Map(f, r.result), nil
}

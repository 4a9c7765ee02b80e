package streams

import (
	"github.com/kbukum/reactive/engine"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
)

// SubscriberBuilder describes a stream that consumes T and ends in a sink
// whose result is an R.
type SubscriberBuilder[T, R any] struct {
	c      chain
	result func(any) (R, error)
}

func subscriberOf[T, R any](c chain, result func(any) (R, error)) *SubscriberBuilder[T, R] {
	return &SubscriberBuilder[T, R]{c: c, result: result}
}

// Err returns the first error recorded while building.
func (b *SubscriberBuilder[T, R]) Err() error { return b.c.err }

// Graph returns the stream description.
func (b *SubscriberBuilder[T, R]) Graph() (*graph.Graph, error) { return b.c.result() }

// Build materializes the subscriber with the default engine.
func (b *SubscriberBuilder[T, R]) Build() (*CompletionSubscriber[T, R], error) {
	return b.BuildWith(nil)
}

// BuildWith materializes the subscriber with e, or with the default engine
// when e is nil.
func (b *SubscriberBuilder[T, R]) BuildWith(e engine.Engine) (*CompletionSubscriber[T, R], error) {
	g, err := b.Graph()
	if err != nil {
		return nil, err
	}
	if e, err = resolve(e); err != nil {
		return nil, err
	}
	sub, f, err := e.BuildSubscriber(g)
	if err != nil {
		return nil, err
	}
	return &CompletionSubscriber[T, R]{
		Subscriber: flow.RestoreSubscriber[T](sub),
		result:     future.Map(f, b.result),
	}, nil
}

// CompletionSubscriber is a subscriber paired with the result of its sink.
type CompletionSubscriber[T, R any] struct {
	flow.Subscriber[T]
	result *future.Future[R]
}

// Result settles once the stream fed to the subscriber terminates.
func (s *CompletionSubscriber[T, R]) Result() *future.Future[R] { return s.result }

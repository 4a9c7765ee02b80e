package streams

import (
	"context"
	"sync/atomic"

	rserrors "github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
	"github.com/kbukum/reactive/pipeline"
)

// as converts an element of an untyped graph back to T.
func as[T any](v any) (T, error) {
	t, ok := v.(T)
	if !ok && v != nil {
		return t, &flow.TypeError{Value: v}
	}
	return t, nil
}

func values[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func mapPayload[T, R any](fn func(context.Context, T) (R, error)) graph.Payload {
	return graph.Map{Fn: func(ctx context.Context, v any) (any, error) {
		t, err := as[T](v)
		if err != nil {
			return nil, err
		}
		return fn(ctx, t)
	}}
}

func peekPayload[T any](fn func(context.Context, T) error) graph.Payload {
	return graph.Peek{Fn: func(ctx context.Context, v any) error {
		t, err := as[T](v)
		if err != nil {
			return err
		}
		return fn(ctx, t)
	}}
}

// predicate erases a predicate. An element of the wrong type fails the
// stream with a *flow.TypeError, the same as in Map.
func predicate[T any](fn func(T) bool) func(any) (bool, error) {
	return func(v any) (bool, error) {
		t, err := as[T](v)
		if err != nil {
			return false, err
		}
		return fn(t), nil
	}
}

func flatMapPayload[T, R any](fn func(T) *PublisherBuilder[R]) graph.Payload {
	return graph.FlatMap{Fn: func(v any) (*graph.Graph, error) {
		t, err := as[T](v)
		if err != nil {
			return nil, err
		}
		inner := fn(t)
		if inner == nil {
			return nil, nil
		}
		return inner.Graph()
	}}
}

func flatMapPublisherPayload[T, R any](fn func(T) flow.Publisher[R]) graph.Payload {
	return graph.FlatMap{Fn: func(v any) (*graph.Graph, error) {
		t, err := as[T](v)
		if err != nil {
			return nil, err
		}
		pub := fn(t)
		if pub == nil {
			return nil, nil
		}
		return FromPublisher(pub).Graph()
	}}
}

func flatMapCompletionPayload[T, R any](fn func(T) *future.Future[R]) graph.Payload {
	return graph.FlatMapCompletion{Fn: func(v any) (*future.Future[any], error) {
		t, err := as[T](v)
		if err != nil {
			return nil, err
		}
		f := fn(t)
		if f == nil {
			return nil, nil
		}
		return future.Erase(f), nil
	}}
}

func flatMapIterablePayload[T, R any](fn func(T) []R) graph.Payload {
	return graph.FlatMapIterable{Fn: func(v any) ([]any, error) {
		t, err := as[T](v)
		if err != nil {
			return nil, err
		}
		return values(fn(t)), nil
	}}
}

func onErrorResumePayload[T any](fn func(error) T) graph.Payload {
	return graph.OnErrorResume{Fn: func(err error) (any, error) {
		return fn(err), nil
	}}
}

func onErrorResumeWithPayload[T any](fn func(error) *PublisherBuilder[T]) graph.Payload {
	return graph.OnErrorResumeWith{Fn: func(err error) (*graph.Graph, error) {
		fallback := fn(err)
		if fallback == nil {
			return nil, nil
		}
		return fallback.Graph()
	}}
}

func onErrorResumeWithPublisherPayload[T any](fn func(error) flow.Publisher[T]) graph.Payload {
	return graph.OnErrorResumeWith{Fn: func(err error) (*graph.Graph, error) {
		pub := fn(err)
		if pub == nil {
			return nil, nil
		}
		return FromPublisher(pub).Graph()
	}}
}

func forEachPayload[T any](fn func(context.Context, T) error) graph.Payload {
	return graph.ForEach{Fn: func(ctx context.Context, v any) error {
		t, err := as[T](v)
		if err != nil {
			return err
		}
		return fn(ctx, t)
	}}
}

func collectPayload[T, A, R any](c Collector[T, A, R]) graph.Payload {
	return graph.Collect{Collector: graph.Collector{
		Supplier: func() any { return c.Supplier() },
		Accumulator: func(acc, v any) (any, error) {
			a, err := as[A](acc)
			if err != nil {
				return nil, err
			}
			t, err := as[T](v)
			if err != nil {
				return nil, err
			}
			return c.Accumulator(a, t), nil
		},
		Finisher: func(acc any) (any, error) {
			if c.Finisher == nil {
				return as[R](acc)
			}
			a, err := as[A](acc)
			if err != nil {
				return nil, err
			}
			return c.Finisher(a), nil
		},
	}}
}

// iteratorPayload wraps a one-shot iterator. Only the first subscription
// can read it; later ones fail.
func iteratorPayload[T any](it pipeline.Iterator[T]) graph.Payload {
	src := pipeline.Erase(pipeline.From(it))
	var used atomic.Bool
	return graph.FromIterator{Open: func(ctx context.Context) (pipeline.Iterator[any], error) {
		if used.Swap(true) {
			return nil, rserrors.ContractViolation("iterator source supports a single subscriber")
		}
		return src.Iter(ctx), nil
	}}
}

func seqPayload[T any](p *pipeline.Pipeline[T]) graph.Payload {
	src := pipeline.Erase(p)
	return graph.FromIterator{Open: func(ctx context.Context) (pipeline.Iterator[any], error) {
		return src.Iter(ctx), nil
	}}
}

// Result converters turn a sink's untyped result into the runner's type.

func typed[R any](v any) (R, error) { return as[R](v) }

func nothing(any) (struct{}, error) { return struct{}{}, nil }

func first[T any](v any) (Optional[T], error) {
	r, ok := v.(graph.FirstResult)
	if !ok || !r.Found {
		return None[T](), nil
	}
	t, err := as[T](r.Value)
	if err != nil {
		return None[T](), err
	}
	return Some(t), nil
}

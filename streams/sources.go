package streams

import (
	"iter"

	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
	"github.com/kbukum/reactive/pipeline"
)

// Of emits values in order, then completes.
func Of[T any](values ...T) *PublisherBuilder[T] {
	return FromSlice(values)
}

// OfNullable emits v, or nothing when v is nil.
func OfNullable[T any](v T) *PublisherBuilder[T] {
	if flow.IsNil(v) {
		return Empty[T]()
	}
	return Of(v)
}

// FromSlice emits the elements of xs in order. The slice is copied.
func FromSlice[T any](xs []T) *PublisherBuilder[T] {
	return publisherOf[T](newSource(graph.Of{Values: values(xs)}))
}

// Empty completes immediately.
func Empty[T any]() *PublisherBuilder[T] {
	return publisherOf[T](newSource(graph.Empty{}))
}

// Failed fails immediately with err.
func Failed[T any](err error) *PublisherBuilder[T] {
	if err == nil {
		return publisherOf[T](failed(nilArg("failed", "error")))
	}
	return publisherOf[T](newSource(graph.Failed{Err: err}))
}

// FromSeq emits the values of seq. Every subscription ranges over seq
// again, so seq must be safe to iterate more than once.
func FromSeq[T any](seq iter.Seq[T]) *PublisherBuilder[T] {
	if seq == nil {
		return publisherOf[T](failed(nilArg("fromSeq", "sequence")))
	}
	return publisherOf[T](newSource(seqPayload(pipeline.FromSeq(seq))))
}

// FromIterator emits the values of it. An iterator can be read once, so
// only the first subscription succeeds; later ones fail with a contract
// violation.
func FromIterator[T any](it pipeline.Iterator[T]) *PublisherBuilder[T] {
	if it == nil {
		return publisherOf[T](failed(nilArg("fromIterator", "iterator")))
	}
	return publisherOf[T](newSource(iteratorPayload(it)))
}

// FromPublisher emits whatever p emits.
func FromPublisher[T any](p flow.Publisher[T]) *PublisherBuilder[T] {
	if p == nil {
		return publisherOf[T](failed(nilArg("fromPublisher", "publisher")))
	}
	return publisherOf[T](newSource(graph.FromPublisher{Publisher: flow.Erase(p)}))
}

// FromCompletion emits the value of f once it settles, then completes. A
// nil value fails the stream with a null-value error; a rejected f fails it
// with f's error.
func FromCompletion[T any](f *future.Future[T]) *PublisherBuilder[T] {
	return fromCompletion(f, false)
}

// FromCompletionNullable is like FromCompletion, except that a nil value
// yields an empty stream.
func FromCompletionNullable[T any](f *future.Future[T]) *PublisherBuilder[T] {
	return fromCompletion(f, true)
}

func fromCompletion[T any](f *future.Future[T], nullable bool) *PublisherBuilder[T] {
	if f == nil {
		return publisherOf[T](failed(nilArg("fromCompletion", "future")))
	}
	return publisherOf[T](newSource(graph.FromCompletion{Future: future.Erase(f), Nullable: nullable}))
}

// Iterate emits seed, fn(seed), fn(fn(seed)) and so on. Each element is
// computed only when requested.
func Iterate[T any](seed T, fn func(T) T) *PublisherBuilder[T] {
	if fn == nil {
		return publisherOf[T](failed(nilFunc("iterate")))
	}
	return publisherOf[T](newSource(graph.Iterate{Seed: seed, Next: func(v any) (any, error) {
		t, err := as[T](v)
		if err != nil {
			return nil, err
		}
		return fn(t), nil
	}}))
}

// Generate emits fn() for every requested element.
func Generate[T any](fn func() T) *PublisherBuilder[T] {
	if fn == nil {
		return publisherOf[T](failed(nilFunc("generate")))
	}
	return publisherOf[T](newSource(graph.Generate{Supply: func() (any, error) { return fn(), nil }}))
}

// Concat emits every element of a, then every element of b. b is
// subscribed only after a completes. If a fails, b is subscribed and
// cancelled at once so it can release its resources.
func Concat[T any](a, b *PublisherBuilder[T]) *PublisherBuilder[T] {
	if a == nil || b == nil {
		return publisherOf[T](failed(nilArg("concat", "publisher builder")))
	}
	first, err := a.Graph()
	if err != nil {
		return publisherOf[T](failed(err))
	}
	second, err := b.Graph()
	if err != nil {
		return publisherOf[T](failed(err))
	}
	return publisherOf[T](newSource(graph.Concat{First: first, Second: second}))
}

// Builder returns the identity processor, the starting point for reusable
// stream segments.
func Builder[T any]() *ProcessorBuilder[T, T] {
	return processorOf[T, T](chain{graph: graph.NewProcessor()})
}

// FromProcessor wraps an existing processor.
func FromProcessor[T, R any](p flow.Processor[T, R]) *ProcessorBuilder[T, R] {
	if p == nil {
		return processorOf[T, R](failed(nilArg("fromProcessor", "processor")))
	}
	return processorOf[T, R](newProcessor(graph.Processor{Processor: flow.EraseProcessor(p)}))
}

// FromSubscriber wraps an existing subscriber. The result completes when
// the subscriber receives a terminal signal and fails if it cancels.
func FromSubscriber[T any](s flow.Subscriber[T]) *SubscriberBuilder[T, struct{}] {
	if s == nil {
		return subscriberOf[T](failed(nilArg("fromSubscriber", "subscriber")), nothing)
	}
	return subscriberOf[T](newProcessor(graph.ToSubscriber{Subscriber: flow.EraseSubscriber(s)}), nothing)
}

// Coupled joins a subscriber and a publisher into one processor. Inbound
// elements go to sub; outbound elements come from pub. When either side
// terminates, the other is cancelled, and a failure of sub fails the
// outbound stream.
func Coupled[T, X, R any](sub *SubscriberBuilder[T, X], pub *PublisherBuilder[R]) *ProcessorBuilder[T, R] {
	if sub == nil || pub == nil {
		return processorOf[T, R](failed(nilArg("coupled", "builder")))
	}
	in, err := sub.Graph()
	if err != nil {
		return processorOf[T, R](failed(err))
	}
	out, err := pub.Graph()
	if err != nil {
		return processorOf[T, R](failed(err))
	}
	return processorOf[T, R](newProcessor(graph.Coupled{Subscriber: in, Publisher: out}))
}

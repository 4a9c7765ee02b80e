package streams

import (
	"context"

	"github.com/kbukum/reactive/engine"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
)

// ProcessorBuilder describes a reusable stream segment that consumes T and
// produces R. It has neither a source nor a sink.
type ProcessorBuilder[T, R any] struct {
	c chain
}

func processorOf[T, R any](c chain) *ProcessorBuilder[T, R] { return &ProcessorBuilder[T, R]{c: c} }

func (b *ProcessorBuilder[T, R]) with(p graph.Payload) *ProcessorBuilder[T, R] {
	return processorOf[T, R](b.c.append(p))
}

func (b *ProcessorBuilder[T, R]) fail(err error) *ProcessorBuilder[T, R] {
	return processorOf[T, R](b.c.check(err))
}

// Err returns the first error recorded while building.
func (b *ProcessorBuilder[T, R]) Err() error { return b.c.err }

// Graph returns the segment description.
func (b *ProcessorBuilder[T, R]) Graph() (*graph.Graph, error) { return b.c.result() }

// Filter forwards the elements for which pred holds.
func (b *ProcessorBuilder[T, R]) Filter(pred func(R) bool) *ProcessorBuilder[T, R] {
	if pred == nil {
		return b.fail(nilFunc("filter"))
	}
	return b.with(graph.Filter{Pred: predicate(pred)})
}

// Peek calls fn with every element and forwards it unchanged.
func (b *ProcessorBuilder[T, R]) Peek(fn func(context.Context, R) error) *ProcessorBuilder[T, R] {
	if fn == nil {
		return b.fail(nilFunc("peek"))
	}
	return b.with(peekPayload(fn))
}

// Limit forwards at most n elements, then cancels upstream and completes.
func (b *ProcessorBuilder[T, R]) Limit(n int64) *ProcessorBuilder[T, R] {
	return b.with(graph.Limit{N: n})
}

// Skip drops the first n elements.
func (b *ProcessorBuilder[T, R]) Skip(n int64) *ProcessorBuilder[T, R] {
	return b.with(graph.Skip{N: n})
}

// TakeWhile forwards elements while pred holds.
func (b *ProcessorBuilder[T, R]) TakeWhile(pred func(R) bool) *ProcessorBuilder[T, R] {
	if pred == nil {
		return b.fail(nilFunc("takeWhile"))
	}
	return b.with(graph.TakeWhile{Pred: predicate(pred)})
}

// DropWhile drops elements while pred holds.
func (b *ProcessorBuilder[T, R]) DropWhile(pred func(R) bool) *ProcessorBuilder[T, R] {
	if pred == nil {
		return b.fail(nilFunc("dropWhile"))
	}
	return b.with(graph.DropWhile{Pred: predicate(pred)})
}

// Distinct drops elements equal to an earlier one.
func (b *ProcessorBuilder[T, R]) Distinct() *ProcessorBuilder[T, R] {
	return b.with(graph.Distinct{})
}

// OnError calls fn with a failure before it is forwarded.
func (b *ProcessorBuilder[T, R]) OnError(fn func(error)) *ProcessorBuilder[T, R] {
	if fn == nil {
		return b.fail(nilFunc("onError"))
	}
	return b.with(graph.OnError{Fn: fn})
}

// OnErrorResume replaces a failure with the element fn returns.
func (b *ProcessorBuilder[T, R]) OnErrorResume(fn func(error) R) *ProcessorBuilder[T, R] {
	if fn == nil {
		return b.fail(nilFunc("onErrorResume"))
	}
	return b.with(onErrorResumePayload(fn))
}

// OnErrorResumeWith replaces a failure with the stream fn returns.
func (b *ProcessorBuilder[T, R]) OnErrorResumeWith(fn func(error) *PublisherBuilder[R]) *ProcessorBuilder[T, R] {
	if fn == nil {
		return b.fail(nilFunc("onErrorResumeWith"))
	}
	return b.with(onErrorResumeWithPayload(fn))
}

// OnErrorResumeWithPublisher replaces a failure with the publisher fn
// returns.
func (b *ProcessorBuilder[T, R]) OnErrorResumeWithPublisher(fn func(error) flow.Publisher[R]) *ProcessorBuilder[T, R] {
	if fn == nil {
		return b.fail(nilFunc("onErrorResumeWithPublisher"))
	}
	return b.with(onErrorResumeWithPublisherPayload(fn))
}

// OnTerminate calls fn once when the stream completes, fails or is
// cancelled.
func (b *ProcessorBuilder[T, R]) OnTerminate(fn func()) *ProcessorBuilder[T, R] {
	if fn == nil {
		return b.fail(nilFunc("onTerminate"))
	}
	return b.with(graph.OnTerminate{Fn: fn})
}

// OnComplete calls fn when the stream completes normally.
func (b *ProcessorBuilder[T, R]) OnComplete(fn func()) *ProcessorBuilder[T, R] {
	if fn == nil {
		return b.fail(nilFunc("onComplete"))
	}
	return b.with(graph.OnComplete{Fn: fn})
}

// ToList collects every element in arrival order.
func (b *ProcessorBuilder[T, R]) ToList() *SubscriberBuilder[T, []R] {
	return ThenCollect(b, ToSlice[R]())
}

// FindFirst yields the first element, or None for an empty stream.
func (b *ProcessorBuilder[T, R]) FindFirst() *SubscriberBuilder[T, Optional[R]] {
	return subscriberOf[T](b.c.append(graph.FindFirst{}), first[R])
}

// ForEach calls fn with every element.
func (b *ProcessorBuilder[T, R]) ForEach(fn func(context.Context, R) error) *SubscriberBuilder[T, struct{}] {
	if fn == nil {
		return subscriberOf[T](b.c.check(nilFunc("forEach")), nothing)
	}
	return subscriberOf[T](b.c.append(forEachPayload(fn)), nothing)
}

// Ignore consumes and discards every element.
func (b *ProcessorBuilder[T, R]) Ignore() *SubscriberBuilder[T, struct{}] {
	return subscriberOf[T](b.c.append(graph.ForEach{Fn: func(context.Context, any) error { return nil }}), nothing)
}

// Cancel cancels upstream as soon as the subscriber is subscribed.
func (b *ProcessorBuilder[T, R]) Cancel() *SubscriberBuilder[T, struct{}] {
	return subscriberOf[T](b.c.append(graph.Cancel{}), nothing)
}

// To hands the stream to s.
func (b *ProcessorBuilder[T, R]) To(s flow.Subscriber[R]) *SubscriberBuilder[T, struct{}] {
	if s == nil {
		return subscriberOf[T](b.c.check(nilArg("to", "subscriber")), nothing)
	}
	return subscriberOf[T](b.c.append(graph.ToSubscriber{Subscriber: flow.EraseSubscriber(s)}), nothing)
}

// Build materializes the segment with the default engine.
func (b *ProcessorBuilder[T, R]) Build() (flow.Processor[T, R], error) {
	return b.BuildWith(nil)
}

// BuildWith materializes the segment with e, or with the default engine
// when e is nil. The processor accepts one upstream and one downstream.
func (b *ProcessorBuilder[T, R]) BuildWith(e engine.Engine) (flow.Processor[T, R], error) {
	g, err := b.Graph()
	if err != nil {
		return nil, err
	}
	if e, err = resolve(e); err != nil {
		return nil, err
	}
	p, err := e.BuildProcessor(g)
	if err != nil {
		return nil, err
	}
	return flow.RestoreProcessor[T, R](p), nil
}

// ThenMap emits fn(x) for every element x of the segment.
func ThenMap[T, R, S any](b *ProcessorBuilder[T, R], fn func(context.Context, R) (S, error)) *ProcessorBuilder[T, S] {
	if fn == nil {
		return processorOf[T, S](b.c.check(nilFunc("map")))
	}
	return processorOf[T, S](b.c.append(mapPayload(fn)))
}

// ThenFlatMap concatenates the streams fn returns.
func ThenFlatMap[T, R, S any](b *ProcessorBuilder[T, R], fn func(R) *PublisherBuilder[S]) *ProcessorBuilder[T, S] {
	if fn == nil {
		return processorOf[T, S](b.c.check(nilFunc("flatMap")))
	}
	return processorOf[T, S](b.c.append(flatMapPayload(fn)))
}

// ThenFlatMapPublisher concatenates the publishers fn returns.
func ThenFlatMapPublisher[T, R, S any](b *ProcessorBuilder[T, R], fn func(R) flow.Publisher[S]) *ProcessorBuilder[T, S] {
	if fn == nil {
		return processorOf[T, S](b.c.check(nilFunc("flatMapPublisher")))
	}
	return processorOf[T, S](b.c.append(flatMapPublisherPayload(fn)))
}

// ThenFlatMapCompletion emits the values of the futures fn returns, in order.
func ThenFlatMapCompletion[T, R, S any](b *ProcessorBuilder[T, R], fn func(R) *future.Future[S]) *ProcessorBuilder[T, S] {
	if fn == nil {
		return processorOf[T, S](b.c.check(nilFunc("flatMapCompletion")))
	}
	return processorOf[T, S](b.c.append(flatMapCompletionPayload(fn)))
}

// ThenFlatMapIterable emits the elements of the slices fn returns.
func ThenFlatMapIterable[T, R, S any](b *ProcessorBuilder[T, R], fn func(R) []S) *ProcessorBuilder[T, S] {
	if fn == nil {
		return processorOf[T, S](b.c.check(nilFunc("flatMapIterable")))
	}
	return processorOf[T, S](b.c.append(flatMapIterablePayload(fn)))
}

// ThenVia appends another processor segment.
func ThenVia[T, R, S any](b *ProcessorBuilder[T, R], p *ProcessorBuilder[R, S]) *ProcessorBuilder[T, S] {
	if p == nil {
		return processorOf[T, S](b.c.check(nilArg("via", "processor builder")))
	}
	return processorOf[T, S](b.c.then(p.c))
}

// ThenViaProcessor routes the segment's output through an existing processor.
func ThenViaProcessor[T, R, S any](b *ProcessorBuilder[T, R], p flow.Processor[R, S]) *ProcessorBuilder[T, S] {
	if p == nil {
		return processorOf[T, S](b.c.check(nilArg("viaProcessor", "processor")))
	}
	return processorOf[T, S](b.c.append(graph.Processor{Processor: flow.EraseProcessor(p)}))
}

// ThenCollect folds the segment's output with c.
func ThenCollect[T, R, A, S any](b *ProcessorBuilder[T, R], c Collector[R, A, S]) *SubscriberBuilder[T, S] {
	if err := c.validate("collect"); err != nil {
		return subscriberOf[T](b.c.check(err), typed[S])
	}
	return subscriberOf[T](b.c.append(collectPayload(c)), typed[S])
}

// ThenReduce folds the segment's output into identity with fn.
func ThenReduce[T, R, S any](b *ProcessorBuilder[T, R], identity S, fn func(S, R) S) *SubscriberBuilder[T, S] {
	if fn == nil {
		return subscriberOf[T](b.c.check(nilFunc("reduce")), typed[S])
	}
	return ThenCollect(b, Reducing(identity, fn))
}

// ThenInto completes the segment with a subscriber segment.
func ThenInto[T, R, S any](b *ProcessorBuilder[T, R], s *SubscriberBuilder[R, S]) *SubscriberBuilder[T, S] {
	if s == nil {
		return subscriberOf[T](b.c.check(nilArg("into", "subscriber builder")), typed[S])
	}
	return subscriberOf[T](b.c.then(s.c), s.result)
}

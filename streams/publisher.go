package streams

import (
	"context"

	"github.com/kbukum/reactive/engine"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
)

// PublisherBuilder describes a stream with a source that produces T.
type PublisherBuilder[T any] struct {
	c chain
}

func publisherOf[T any](c chain) *PublisherBuilder[T] { return &PublisherBuilder[T]{c: c} }

func (b *PublisherBuilder[T]) with(p graph.Payload) *PublisherBuilder[T] {
	return publisherOf[T](b.c.append(p))
}

func (b *PublisherBuilder[T]) fail(err error) *PublisherBuilder[T] {
	return publisherOf[T](b.c.check(err))
}

// Err returns the first error recorded while building.
func (b *PublisherBuilder[T]) Err() error { return b.c.err }

// Graph returns the stream description.
func (b *PublisherBuilder[T]) Graph() (*graph.Graph, error) { return b.c.result() }

// Filter forwards the elements for which pred holds.
func (b *PublisherBuilder[T]) Filter(pred func(T) bool) *PublisherBuilder[T] {
	if pred == nil {
		return b.fail(nilFunc("filter"))
	}
	return b.with(graph.Filter{Pred: predicate(pred)})
}

// Peek calls fn with every element and forwards it unchanged. An error
// from fn fails the stream.
func (b *PublisherBuilder[T]) Peek(fn func(context.Context, T) error) *PublisherBuilder[T] {
	if fn == nil {
		return b.fail(nilFunc("peek"))
	}
	return b.with(peekPayload(fn))
}

// Limit forwards at most n elements, then cancels upstream and completes.
// Limit(0) completes without requesting anything.
func (b *PublisherBuilder[T]) Limit(n int64) *PublisherBuilder[T] {
	return b.with(graph.Limit{N: n})
}

// Skip drops the first n elements.
func (b *PublisherBuilder[T]) Skip(n int64) *PublisherBuilder[T] {
	return b.with(graph.Skip{N: n})
}

// TakeWhile forwards elements while pred holds. At the first element
// failing pred it cancels upstream and completes.
func (b *PublisherBuilder[T]) TakeWhile(pred func(T) bool) *PublisherBuilder[T] {
	if pred == nil {
		return b.fail(nilFunc("takeWhile"))
	}
	return b.with(graph.TakeWhile{Pred: predicate(pred)})
}

// DropWhile drops elements while pred holds and forwards everything from
// the first element failing pred.
func (b *PublisherBuilder[T]) DropWhile(pred func(T) bool) *PublisherBuilder[T] {
	if pred == nil {
		return b.fail(nilFunc("dropWhile"))
	}
	return b.with(graph.DropWhile{Pred: predicate(pred)})
}

// Distinct drops elements equal to an earlier one. Every element is
// remembered for the lifetime of the stream. Elements must be comparable
// with ==; an element that is not fails the stream.
func (b *PublisherBuilder[T]) Distinct() *PublisherBuilder[T] {
	return b.with(graph.Distinct{})
}

// OnError calls fn with a failure before it is forwarded.
func (b *PublisherBuilder[T]) OnError(fn func(error)) *PublisherBuilder[T] {
	if fn == nil {
		return b.fail(nilFunc("onError"))
	}
	return b.with(graph.OnError{Fn: fn})
}

// OnErrorResume replaces a failure with the element fn returns, then
// completes.
func (b *PublisherBuilder[T]) OnErrorResume(fn func(error) T) *PublisherBuilder[T] {
	if fn == nil {
		return b.fail(nilFunc("onErrorResume"))
	}
	return b.with(onErrorResumePayload(fn))
}

// OnErrorResumeWith replaces a failure with the stream fn returns.
func (b *PublisherBuilder[T]) OnErrorResumeWith(fn func(error) *PublisherBuilder[T]) *PublisherBuilder[T] {
	if fn == nil {
		return b.fail(nilFunc("onErrorResumeWith"))
	}
	return b.with(onErrorResumeWithPayload(fn))
}

// OnErrorResumeWithPublisher replaces a failure with the publisher fn
// returns.
func (b *PublisherBuilder[T]) OnErrorResumeWithPublisher(fn func(error) flow.Publisher[T]) *PublisherBuilder[T] {
	if fn == nil {
		return b.fail(nilFunc("onErrorResumeWithPublisher"))
	}
	return b.with(onErrorResumeWithPublisherPayload(fn))
}

// OnTerminate calls fn once when the stream completes, fails or is
// cancelled.
func (b *PublisherBuilder[T]) OnTerminate(fn func()) *PublisherBuilder[T] {
	if fn == nil {
		return b.fail(nilFunc("onTerminate"))
	}
	return b.with(graph.OnTerminate{Fn: fn})
}

// OnComplete calls fn when the stream completes normally.
func (b *PublisherBuilder[T]) OnComplete(fn func()) *PublisherBuilder[T] {
	if fn == nil {
		return b.fail(nilFunc("onComplete"))
	}
	return b.with(graph.OnComplete{Fn: fn})
}

// ToList collects every element in arrival order.
func (b *PublisherBuilder[T]) ToList() *CompletionRunner[[]T] {
	return Collect(b, ToSlice[T]())
}

// FindFirst yields the first element, or None for an empty stream. Upstream
// is cancelled as soon as the first element arrives.
func (b *PublisherBuilder[T]) FindFirst() *CompletionRunner[Optional[T]] {
	return runnerOf(b.c.append(graph.FindFirst{}), first[T])
}

// ForEach calls fn with every element. An error from fn fails the run and
// cancels upstream.
func (b *PublisherBuilder[T]) ForEach(fn func(context.Context, T) error) *CompletionRunner[struct{}] {
	if fn == nil {
		return runnerOf(b.c.check(nilFunc("forEach")), nothing)
	}
	return runnerOf(b.c.append(forEachPayload(fn)), nothing)
}

// Ignore consumes and discards every element.
func (b *PublisherBuilder[T]) Ignore() *CompletionRunner[struct{}] {
	return runnerOf(b.c.append(graph.ForEach{Fn: func(context.Context, any) error { return nil }}), nothing)
}

// Cancel cancels the stream as soon as it starts.
func (b *PublisherBuilder[T]) Cancel() *CompletionRunner[struct{}] {
	return runnerOf(b.c.append(graph.Cancel{}), nothing)
}

// To hands the stream to s. The run completes when s receives a terminal
// signal and fails with a cancellation error if s cancels.
func (b *PublisherBuilder[T]) To(s flow.Subscriber[T]) *CompletionRunner[struct{}] {
	if s == nil {
		return runnerOf(b.c.check(nilArg("to", "subscriber")), nothing)
	}
	return runnerOf(b.c.append(graph.ToSubscriber{Subscriber: flow.EraseSubscriber(s)}), nothing)
}

// Build materializes the stream with the default engine.
func (b *PublisherBuilder[T]) Build() (flow.Publisher[T], error) {
	return b.BuildWith(nil)
}

// BuildWith materializes the stream with e, or with the default engine when
// e is nil. Every subscriber of the result gets an independent execution.
func (b *PublisherBuilder[T]) BuildWith(e engine.Engine) (flow.Publisher[T], error) {
	g, err := b.Graph()
	if err != nil {
		return nil, err
	}
	if e, err = resolve(e); err != nil {
		return nil, err
	}
	pub, err := e.BuildPublisher(g)
	if err != nil {
		return nil, err
	}
	return flow.Restore[T](pub), nil
}

// Map emits fn(x) for every element x. An error from fn fails the stream
// and cancels upstream.
func Map[T, R any](b *PublisherBuilder[T], fn func(context.Context, T) (R, error)) *PublisherBuilder[R] {
	if fn == nil {
		return publisherOf[R](b.c.check(nilFunc("map")))
	}
	return publisherOf[R](b.c.append(mapPayload(fn)))
}

// FlatMap emits all elements of the stream fn returns for each element,
// one inner stream at a time and in order.
func FlatMap[T, R any](b *PublisherBuilder[T], fn func(T) *PublisherBuilder[R]) *PublisherBuilder[R] {
	if fn == nil {
		return publisherOf[R](b.c.check(nilFunc("flatMap")))
	}
	return publisherOf[R](b.c.append(flatMapPayload(fn)))
}

// FlatMapPublisher is FlatMap for functions returning a publisher.
func FlatMapPublisher[T, R any](b *PublisherBuilder[T], fn func(T) flow.Publisher[R]) *PublisherBuilder[R] {
	if fn == nil {
		return publisherOf[R](b.c.check(nilFunc("flatMapPublisher")))
	}
	return publisherOf[R](b.c.append(flatMapPublisherPayload(fn)))
}

// FlatMapCompletion emits the value of the future fn returns for each
// element. Futures are awaited one at a time, so order is preserved.
func FlatMapCompletion[T, R any](b *PublisherBuilder[T], fn func(T) *future.Future[R]) *PublisherBuilder[R] {
	if fn == nil {
		return publisherOf[R](b.c.check(nilFunc("flatMapCompletion")))
	}
	return publisherOf[R](b.c.append(flatMapCompletionPayload(fn)))
}

// FlatMapIterable emits every element of the slice fn returns for each
// element.
func FlatMapIterable[T, R any](b *PublisherBuilder[T], fn func(T) []R) *PublisherBuilder[R] {
	if fn == nil {
		return publisherOf[R](b.c.check(nilFunc("flatMapIterable")))
	}
	return publisherOf[R](b.c.append(flatMapIterablePayload(fn)))
}

// Via routes the stream through a processor segment.
func Via[T, R any](b *PublisherBuilder[T], p *ProcessorBuilder[T, R]) *PublisherBuilder[R] {
	if p == nil {
		return publisherOf[R](b.c.check(nilArg("via", "processor builder")))
	}
	return publisherOf[R](b.c.then(p.c))
}

// ViaProcessor routes the stream through an existing processor.
func ViaProcessor[T, R any](b *PublisherBuilder[T], p flow.Processor[T, R]) *PublisherBuilder[R] {
	if p == nil {
		return publisherOf[R](b.c.check(nilArg("viaProcessor", "processor")))
	}
	return publisherOf[R](b.c.append(graph.Processor{Processor: flow.EraseProcessor(p)}))
}

// Collect folds the stream with c.
func Collect[T, A, R any](b *PublisherBuilder[T], c Collector[T, A, R]) *CompletionRunner[R] {
	if err := c.validate("collect"); err != nil {
		return runnerOf(b.c.check(err), typed[R])
	}
	return runnerOf(b.c.append(collectPayload(c)), typed[R])
}

// Reduce folds the stream into identity with fn.
func Reduce[T, R any](b *PublisherBuilder[T], identity R, fn func(R, T) R) *CompletionRunner[R] {
	if fn == nil {
		return runnerOf(b.c.check(nilFunc("reduce")), typed[R])
	}
	return Collect(b, Reducing(identity, fn))
}

// Into completes the stream with a subscriber segment.
func Into[T, R any](b *PublisherBuilder[T], s *SubscriberBuilder[T, R]) *CompletionRunner[R] {
	if s == nil {
		return runnerOf(b.c.check(nilArg("into", "subscriber builder")), typed[R])
	}
	return runnerOf(b.c.then(s.c), s.result)
}

package flow

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc[T any] func(s Subscriber[T])

// Subscribe calls f(s).
func (f PublisherFunc[T]) Subscribe(s Subscriber[T]) { f(s) }

// SubscriberFuncs adapts a set of callbacks to the Subscriber interface.
// Nil callbacks are ignored.
type SubscriberFuncs[T any] struct {
	Subscribe func(s Subscription)
	Next      func(v T)
	Error     func(err error)
	Complete  func()
}

var _ Subscriber[any] = (*SubscriberFuncs[any])(nil)

func (f *SubscriberFuncs[T]) OnSubscribe(s Subscription) {
	if f.Subscribe != nil {
		f.Subscribe(s)
	}
}

func (f *SubscriberFuncs[T]) OnNext(v T) {
	if f.Next != nil {
		f.Next(v)
	}
}

func (f *SubscriberFuncs[T]) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

func (f *SubscriberFuncs[T]) OnComplete() {
	if f.Complete != nil {
		f.Complete()
	}
}

// NoopSubscription ignores demand and cancellation. It is handed to
// subscribers that must be told about a terminal signal before any
// subscription exists.
type NoopSubscription struct{}

func (NoopSubscription) Request(int64) {}
func (NoopSubscription) Cancel()       {}

// Erase adapts a typed Publisher to one producing untyped elements.
func Erase[T any](p Publisher[T]) Publisher[any] {
	if e, ok := p.(typedPublisher[T]); ok {
		return e.inner
	}
	return erasedPublisher[T]{inner: p}
}

// Restore adapts an untyped Publisher to a typed one. Elements that are not
// a T fail the stream with a type error rather than panicking.
func Restore[T any](p Publisher[any]) Publisher[T] {
	if e, ok := p.(erasedPublisher[T]); ok {
		return e.inner
	}
	return typedPublisher[T]{inner: p}
}

// EraseSubscriber adapts a typed Subscriber to one accepting untyped elements.
func EraseSubscriber[T any](s Subscriber[T]) Subscriber[any] {
	if r, ok := s.(restoredSubscriber[T]); ok {
		return r.inner
	}
	return &erasedSubscriber[T]{inner: s}
}

// RestoreSubscriber adapts an untyped Subscriber to a typed one.
func RestoreSubscriber[T any](s Subscriber[any]) Subscriber[T] {
	return restoredSubscriber[T]{inner: s}
}

type erasedPublisher[T any] struct {
	inner Publisher[T]
}

func (p erasedPublisher[T]) Subscribe(s Subscriber[any]) {
	p.inner.Subscribe(RestoreSubscriber[T](s))
}

type typedPublisher[T any] struct {
	inner Publisher[any]
}

func (p typedPublisher[T]) Subscribe(s Subscriber[T]) {
	p.inner.Subscribe(EraseSubscriber(s))
}

type restoredSubscriber[T any] struct {
	inner Subscriber[any]
}

func (s restoredSubscriber[T]) OnSubscribe(sub Subscription) { s.inner.OnSubscribe(sub) }
func (s restoredSubscriber[T]) OnNext(v T)                   { s.inner.OnNext(v) }
func (s restoredSubscriber[T]) OnError(err error)            { s.inner.OnError(err) }
func (s restoredSubscriber[T]) OnComplete()                  { s.inner.OnComplete() }

// erasedSubscriber converts untyped elements back to T. A mismatch cancels
// upstream and fails the subscriber exactly once.
type erasedSubscriber[T any] struct {
	inner Subscriber[T]
	sub   Subscription
	done  bool
}

func (s *erasedSubscriber[T]) OnSubscribe(sub Subscription) {
	s.sub = sub
	s.inner.OnSubscribe(sub)
}

func (s *erasedSubscriber[T]) OnNext(v any) {
	if s.done {
		return
	}
	typed, ok := v.(T)
	if !ok && v != nil {
		s.done = true
		if s.sub != nil {
			s.sub.Cancel()
		}
		s.inner.OnError(&TypeError{Value: v})
		return
	}
	s.inner.OnNext(typed)
}

func (s *erasedSubscriber[T]) OnError(err error) {
	if !s.done {
		s.done = true
		s.inner.OnError(err)
	}
}

func (s *erasedSubscriber[T]) OnComplete() {
	if !s.done {
		s.done = true
		s.inner.OnComplete()
	}
}

// EraseProcessor adapts a typed Processor to one with untyped elements on
// both sides.
func EraseProcessor[T, R any](p Processor[T, R]) Processor[any, any] {
	return processor[any, any]{Subscriber: EraseSubscriber[T](p), Publisher: Erase[R](p)}
}

// RestoreProcessor adapts an untyped Processor to a typed one.
func RestoreProcessor[T, R any](p Processor[any, any]) Processor[T, R] {
	return processor[T, R]{Subscriber: RestoreSubscriber[T](p), Publisher: Restore[R](p)}
}

type processor[T, R any] struct {
	Subscriber[T]
	Publisher[R]
}

package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kbukum/reactive/flow"
)

// Subscriber records every signal it receives and checks them against the
// protocol rules. It requests Initial elements on subscribe; further demand
// is up to the test.
type Subscriber[T any] struct {
	initial int64

	subscribed chan struct{}
	done       chan struct{}
	inSignal   atomic.Bool

	mu          sync.Mutex
	sub         flow.Subscription
	values      []T
	err         error
	completed   bool
	terminals   int
	outstanding int64
	signals     []string
	violations  []string
}

var _ flow.Subscriber[int] = (*Subscriber[int])(nil)

// NewSubscriber creates a subscriber that requests initial elements as soon
// as it is subscribed. Zero requests nothing.
func NewSubscriber[T any](initial int64) *Subscriber[T] {
	return &Subscriber[T]{
		initial:    initial,
		subscribed: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (s *Subscriber[T]) OnSubscribe(sub flow.Subscription) {
	s.enter("onSubscribe")
	s.mu.Lock()
	if s.sub != nil {
		s.violations = append(s.violations, "onSubscribe called twice")
		s.mu.Unlock()
		s.leave()
		sub.Cancel()
		return
	}
	s.sub = sub
	s.mu.Unlock()
	close(s.subscribed)
	s.leave()

	// a synchronous publisher may signal from inside Request
	if s.initial > 0 {
		s.Request(s.initial)
	}
}

func (s *Subscriber[T]) OnNext(v T) {
	s.enter("onNext")
	defer s.leave()

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.terminals > 0:
		s.violations = append(s.violations, fmt.Sprintf("onNext(%v) after terminal signal", v))
	case s.outstanding <= 0:
		s.violations = append(s.violations, fmt.Sprintf("onNext(%v) without demand", v))
	}
	if s.outstanding != flow.Unbounded {
		s.outstanding--
	}
	s.values = append(s.values, v)
	s.signals = append(s.signals, fmt.Sprintf("next(%v)", v))
}

func (s *Subscriber[T]) OnError(err error) {
	s.enter("onError")
	defer s.leave()
	s.terminal(fmt.Sprintf("error(%v)", err), func() { s.err = err })
}

func (s *Subscriber[T]) OnComplete() {
	s.enter("onComplete")
	defer s.leave()
	s.terminal("complete", func() { s.completed = true })
}

func (s *Subscriber[T]) terminal(sig string, record func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, sig)
	s.terminals++
	if s.terminals > 1 {
		s.violations = append(s.violations, sig+" after terminal signal")
		return
	}
	record()
	close(s.done)
}

func (s *Subscriber[T]) enter(signal string) {
	if !s.inSignal.CompareAndSwap(false, true) {
		s.mu.Lock()
		s.violations = append(s.violations, "concurrent "+signal)
		s.mu.Unlock()
	}
}

func (s *Subscriber[T]) leave() { s.inSignal.Store(false) }

// Request signals demand for n more elements.
func (s *Subscriber[T]) Request(n int64) {
	s.mu.Lock()
	sub := s.sub
	if n > 0 {
		s.outstanding = flow.AddDemand(s.outstanding, n)
	}
	s.mu.Unlock()
	if sub != nil {
		sub.Request(n)
	}
}

// Cancel cancels the subscription.
func (s *Subscriber[T]) Cancel() {
	s.mu.Lock()
	sub := s.sub
	s.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// AwaitSubscribed waits for OnSubscribe.
func (s *Subscriber[T]) AwaitSubscribed(tb testing.TB) {
	tb.Helper()
	wait(tb, s.subscribed, "onSubscribe")
}

// Await waits for a terminal signal.
func (s *Subscriber[T]) Await(tb testing.TB) {
	tb.Helper()
	wait(tb, s.done, "a terminal signal")
}

// Done is closed when the first terminal signal arrives.
func (s *Subscriber[T]) Done() <-chan struct{} { return s.done }

// Values returns the elements received so far.
func (s *Subscriber[T]) Values() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.values...)
}

// Err returns the error delivered by OnError, if any.
func (s *Subscriber[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Completed reports whether OnComplete was delivered.
func (s *Subscriber[T]) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Signals returns every signal received, in order, e.g. "next(1)",
// "complete", "error(boom)".
func (s *Subscriber[T]) Signals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.signals...)
}

// Violations lists the protocol rules broken by the publisher.
func (s *Subscriber[T]) Violations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.violations...)
}

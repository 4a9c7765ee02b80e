package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
)

// Publisher emits a fixed sequence to every subscriber, strictly on demand,
// and records what its subscribers request and whether they cancel.
type Publisher[T any] struct {
	values []T
	err    error

	mu   sync.Mutex
	subs []*Probe[T]
}

var _ flow.Publisher[int] = (*Publisher[int])(nil)

// NewPublisher creates a publisher that emits values and then completes.
func NewPublisher[T any](values ...T) *Publisher[T] {
	return &Publisher[T]{values: values}
}

// FailWith makes the publisher fail with err after emitting its values.
func (p *Publisher[T]) FailWith(err error) *Publisher[T] {
	p.err = err
	return p
}

func (p *Publisher[T]) Subscribe(s flow.Subscriber[T]) {
	probe := &Probe[T]{pub: p, sub: s}
	p.mu.Lock()
	p.subs = append(p.subs, probe)
	p.mu.Unlock()
	s.OnSubscribe(probe)
	probe.drain()
}

// Probes returns the subscriptions made so far, oldest first.
func (p *Publisher[T]) Probes() []*Probe[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Probe[T](nil), p.subs...)
}

// Subscribed reports how many times Subscribe was called.
func (p *Publisher[T]) Subscribed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Cancelled reports whether any subscription was cancelled.
func (p *Publisher[T]) Cancelled() bool {
	for _, probe := range p.Probes() {
		if probe.Cancelled() {
			return true
		}
	}
	return false
}

// Emitted returns the number of elements emitted across all subscriptions.
func (p *Publisher[T]) Emitted() int {
	n := 0
	for _, probe := range p.Probes() {
		n += probe.Emitted()
	}
	return n
}

// Probe is one subscription to a Publisher.
type Probe[T any] struct {
	pub *Publisher[T]
	sub flow.Subscriber[T]

	mu         sync.Mutex
	requested  int64
	demand     int64
	index      int
	cancelled  bool
	terminated bool
	draining   bool
}

// Request adds demand and emits what it allows. Recursive calls from
// within OnNext only add demand; the outer call keeps emitting.
func (s *Probe[T]) Request(n int64) {
	s.mu.Lock()
	if s.cancelled || s.terminated {
		s.mu.Unlock()
		return
	}
	if n <= 0 {
		s.terminated = true
		s.mu.Unlock()
		s.sub.OnError(errors.ContractViolation(fmt.Sprintf("request(%d): demand must be positive", n)))
		return
	}
	s.requested = flow.AddDemand(s.requested, n)
	s.demand = flow.AddDemand(s.demand, n)
	s.mu.Unlock()
	s.drain()
}

func (s *Probe[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.terminated {
		s.cancelled = true
	}
}

func (s *Probe[T]) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for {
		switch {
		case s.cancelled || s.terminated:
			s.draining = false
			s.mu.Unlock()
			return
		case s.index == len(s.pub.values):
			s.terminated, s.draining = true, false
			s.mu.Unlock()
			if s.pub.err != nil {
				s.sub.OnError(s.pub.err)
			} else {
				s.sub.OnComplete()
			}
			return
		case s.demand == 0:
			s.draining = false
			s.mu.Unlock()
			return
		}
		v := s.pub.values[s.index]
		s.index++
		if s.demand != flow.Unbounded {
			s.demand--
		}
		s.mu.Unlock()
		s.sub.OnNext(v)
		s.mu.Lock()
	}
}

// Requested returns the total demand signalled.
func (s *Probe[T]) Requested() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested
}

// Emitted returns the number of elements delivered.
func (s *Probe[T]) Emitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Cancelled reports whether the subscriber cancelled before a terminal signal.
func (s *Probe[T]) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// ManualPublisher accepts a single subscriber and lets the test send
// arbitrary signals to it, including ones that break the protocol.
type ManualPublisher[T any] struct {
	subscribed chan struct{}
	cancelled  chan struct{}

	mu        sync.Mutex
	sub       flow.Subscriber[T]
	requested int64
	cancel    sync.Once
}

var _ flow.Publisher[int] = (*ManualPublisher[int])(nil)

// NewManualPublisher creates an idle manual publisher.
func NewManualPublisher[T any]() *ManualPublisher[T] {
	return &ManualPublisher[T]{
		subscribed: make(chan struct{}),
		cancelled:  make(chan struct{}),
	}
}

func (p *ManualPublisher[T]) Subscribe(s flow.Subscriber[T]) {
	p.mu.Lock()
	if p.sub != nil {
		p.mu.Unlock()
		s.OnSubscribe(flow.NoopSubscription{})
		s.OnError(errors.ContractViolation("manual publisher supports a single subscriber"))
		return
	}
	p.sub = s
	p.mu.Unlock()
	s.OnSubscribe(manualSubscription[T]{p})
	close(p.subscribed)
}

type manualSubscription[T any] struct{ p *ManualPublisher[T] }

func (s manualSubscription[T]) Request(n int64) {
	s.p.mu.Lock()
	s.p.requested = flow.AddDemand(s.p.requested, n)
	s.p.mu.Unlock()
}

func (s manualSubscription[T]) Cancel() {
	s.p.cancel.Do(func() { close(s.p.cancelled) })
}

// AwaitSubscribed waits until a subscriber has received its subscription.
func (p *ManualPublisher[T]) AwaitSubscribed(tb testing.TB) {
	tb.Helper()
	wait(tb, p.subscribed, "subscribe")
}

// AwaitCancelled waits until the subscriber cancels.
func (p *ManualPublisher[T]) AwaitCancelled(tb testing.TB) {
	tb.Helper()
	wait(tb, p.cancelled, "cancel")
}

// Requested returns the total demand signalled so far.
func (p *ManualPublisher[T]) Requested() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requested
}

// IsCancelled reports whether the subscriber cancelled.
func (p *ManualPublisher[T]) IsCancelled() bool {
	select {
	case <-p.cancelled:
		return true
	default:
		return false
	}
}

// Emit sends OnNext(v) regardless of demand.
func (p *ManualPublisher[T]) Emit(v T) { p.subscriber().OnNext(v) }

// Complete sends OnComplete.
func (p *ManualPublisher[T]) Complete() { p.subscriber().OnComplete() }

// Fail sends OnError(err).
func (p *ManualPublisher[T]) Fail(err error) { p.subscriber().OnError(err) }

func (p *ManualPublisher[T]) subscriber() flow.Subscriber[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub
}

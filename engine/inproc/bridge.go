package inproc

import (
	"context"
	"sync"

	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/pipeline"
)

type signal struct {
	value any
	err   error
	done  bool
}

// subscriberBridge receives signals from a publisher and exposes them as an
// iterator. It requests in batches of prefetch and never holds more than
// prefetch elements plus one terminal signal.
type subscriberBridge struct {
	prefetch   int64
	signals    chan signal
	subscribed chan struct{}

	// onSubscribe, if set, runs once after the first valid subscription.
	onSubscribe func()

	mu          sync.Mutex
	sub         flow.Subscription
	outstanding int64
	queued      int64
	terminated  bool
	closed      bool

	// finished is only touched by the consuming goroutine.
	finished bool
}

var (
	_ flow.Subscriber[any]    = (*subscriberBridge)(nil)
	_ pipeline.Iterator[any] = (*subscriberBridge)(nil)
)

func newSubscriberBridge(prefetch int64) *subscriberBridge {
	return &subscriberBridge{
		prefetch:   prefetch,
		signals:    make(chan signal, prefetch+1),
		subscribed: make(chan struct{}),
	}
}

// inlet wraps a bridge as the head of a pipeline.
func inlet(b *subscriberBridge) *pipeline.Pipeline[any] {
	return pipeline.From[any](b)
}

func (b *subscriberBridge) OnSubscribe(s flow.Subscription) {
	if s == nil {
		return
	}
	b.mu.Lock()
	if b.sub != nil {
		b.mu.Unlock()
		// a second subscription is a protocol error; keep the first one
		s.Cancel()
		return
	}
	b.sub = s
	closed := b.closed
	b.mu.Unlock()
	close(b.subscribed)
	if closed {
		s.Cancel()
		return
	}
	if b.onSubscribe != nil {
		b.onSubscribe()
	}
}

func (b *subscriberBridge) OnNext(v any) {
	b.mu.Lock()
	if b.terminated || b.closed {
		b.mu.Unlock()
		return
	}
	var violation error
	switch {
	case b.outstanding <= 0:
		violation = errors.ContractViolation("onNext signalled without outstanding demand")
	case flow.IsNil(v):
		violation = errors.NullValue("onNext element")
	}
	if violation != nil {
		b.terminated = true
		b.push(signal{err: violation})
		sub := b.sub
		b.mu.Unlock()
		if sub != nil {
			sub.Cancel()
		}
		return
	}
	b.outstanding--
	b.queued++
	b.push(signal{value: v})
	b.mu.Unlock()
}

func (b *subscriberBridge) OnError(err error) {
	if err == nil {
		err = errors.NullValue("onError cause")
	}
	b.terminal(signal{err: err})
}

func (b *subscriberBridge) OnComplete() {
	b.terminal(signal{done: true})
}

func (b *subscriberBridge) terminal(sig signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.terminated || b.closed {
		return
	}
	b.terminated = true
	b.push(sig)
}

// push must be called with mu held. Demand accounting keeps the channel
// from ever being full.
func (b *subscriberBridge) push(sig signal) {
	select {
	case b.signals <- sig:
	default:
	}
}

// Next returns the next element received from upstream, requesting more
// when the local buffer runs low.
func (b *subscriberBridge) Next(ctx context.Context) (any, bool, error) {
	if b.finished {
		return nil, false, nil
	}
	select {
	case <-b.subscribed:
	case sig := <-b.signals:
		return b.deliver(sig)
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
	b.replenish()
	select {
	case sig := <-b.signals:
		return b.deliver(sig)
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (b *subscriberBridge) deliver(sig signal) (any, bool, error) {
	if sig.err != nil || sig.done {
		b.finished = true
		return nil, false, sig.err
	}
	b.mu.Lock()
	b.queued--
	b.mu.Unlock()
	return sig.value, true, nil
}

func (b *subscriberBridge) replenish() {
	b.mu.Lock()
	have := b.outstanding + b.queued
	if b.closed || b.terminated || have > b.prefetch/2 {
		b.mu.Unlock()
		return
	}
	n := b.prefetch - have
	b.outstanding += n
	sub := b.sub
	b.mu.Unlock()
	sub.Request(n)
}

// Finished reports a buffered terminal signal with no elements ahead of it.
func (b *subscriberBridge) Finished() bool {
	if b.finished {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.terminated && b.queued == 0
}

// Close cancels the upstream subscription, now or as soon as it arrives.
func (b *subscriberBridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	sub, terminated := b.sub, b.terminated
	b.mu.Unlock()
	if sub != nil && !terminated {
		sub.Cancel()
	}
	return nil
}

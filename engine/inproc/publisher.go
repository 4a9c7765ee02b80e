package inproc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/logger"
	"github.com/kbukum/reactive/pipeline"
)

// iterPublisher publishes the values of a compiled pipeline. Each
// subscription gets its own iterator chain and drain goroutine.
type iterPublisher struct {
	engine *Engine
	chain  *pipeline.Pipeline[any]
	id     string
	single bool
	used   atomic.Bool
}

func (e *Engine) newPublisher(chain *pipeline.Pipeline[any], single bool, id string) *iterPublisher {
	return &iterPublisher{engine: e, chain: chain, id: id, single: single}
}

// Subscribe starts an independent execution for s.
func (p *iterPublisher) Subscribe(s flow.Subscriber[any]) {
	p.subscribe(context.Background(), s)
}

func (p *iterPublisher) subscribe(ctx context.Context, s flow.Subscriber[any]) *subscription {
	if s == nil {
		p.engine.log.Error("subscribe called with nil subscriber", logger.Fields(logger.FieldPipelineID, p.id))
		return nil
	}
	if p.single && !p.used.CompareAndSwap(false, true) {
		s.OnSubscribe(flow.NoopSubscription{})
		s.OnError(errors.ContractViolation("publisher supports a single subscriber"))
		return nil
	}
	sub := newSubscription(ctx, p, s)
	if !sub.start() {
		return nil
	}
	go sub.run()
	return sub
}

// subscription tracks demand for one subscriber and drives its iterator
// chain from a single goroutine, so signals are delivered serially.
type subscription struct {
	pub        *iterPublisher
	ctx        context.Context
	cancel     context.CancelFunc
	downstream flow.Subscriber[any]
	log        *logger.Logger
	wake       chan struct{}
	cancelled  atomic.Bool
	started    time.Time

	mu        sync.Mutex
	demand    int64
	violation error
}

func newSubscription(parent context.Context, pub *iterPublisher, s flow.Subscriber[any]) *subscription {
	ctx, cancel := context.WithCancel(parent)
	return &subscription{
		pub:        pub,
		ctx:        ctx,
		cancel:     cancel,
		downstream: s,
		log:        pub.engine.log.WithFields(logger.Fields(logger.FieldPipelineID, pub.id)),
		wake:       make(chan struct{}, 1),
		started:    time.Now(),
	}
}

// Request adds n to the outstanding demand. A non-positive n fails the
// subscription with a contract violation.
func (s *subscription) Request(n int64) {
	s.mu.Lock()
	if n <= 0 {
		if s.violation == nil {
			s.violation = errors.ContractViolation(fmt.Sprintf("request(%d): demand must be positive", n))
		}
	} else {
		s.demand = flow.AddDemand(s.demand, n)
	}
	s.mu.Unlock()
	s.notify()
}

// Cancel stops the execution and releases the iterator chain. Cancelling
// after a terminal signal does nothing.
func (s *subscription) Cancel() {
	if s.cancelled.CompareAndSwap(false, true) {
		s.cancel()
		s.notify()
	}
}

func (s *subscription) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) state() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.demand, s.violation
}

func (s *subscription) consume() {
	s.mu.Lock()
	if s.demand != flow.Unbounded {
		s.demand--
	}
	s.mu.Unlock()
}

// start hands the subscription to the subscriber and reports whether it is
// still live afterwards.
func (s *subscription) start() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.subscriberPanicked("onSubscribe", r)
			ok = false
		}
	}()
	s.downstream.OnSubscribe(s)
	return true
}

func (s *subscription) run() {
	defer s.cancel()
	s.log.Debug("subscription started")

	it, err := openChain(s.ctx, s.pub.chain)
	if err != nil {
		s.terminate(nil, err)
		return
	}

	var (
		pending    any
		hasPending bool
	)
	for {
		if s.cancelled.Load() {
			s.release(it)
			s.log.Debug("subscription cancelled")
			return
		}
		demand, violation := s.state()
		if violation != nil {
			s.terminate(it, violation)
			return
		}
		if err := s.ctx.Err(); err != nil {
			// the parent context is gone, Cancel would have been seen above
			s.terminate(it, contextError(s.ctx, err))
			return
		}
		if demand == 0 && (hasPending || !pipeline.Finished(it)) {
			select {
			case <-s.wake:
			case <-s.ctx.Done():
			}
			continue
		}
		if hasPending {
			hasPending = false
			s.consume()
			if !s.emit(pending) {
				s.release(it)
				return
			}
			continue
		}

		v, ok, err := pull(s.ctx, it)
		if s.cancelled.Load() {
			continue
		}
		if err != nil {
			s.terminate(it, contextError(s.ctx, err))
			return
		}
		if !ok {
			s.terminate(it, nil)
			return
		}
		if flow.IsNil(v) {
			s.terminate(it, errors.NullValue("stream element"))
			return
		}
		if demand == 0 {
			pending, hasPending = v, true
			continue
		}
		s.consume()
		if !s.emit(v) {
			s.release(it)
			return
		}
	}
}

// terminate releases the chain, then signals completion (err == nil) or
// failure downstream, unless the subscription was cancelled meanwhile.
func (s *subscription) terminate(it pipeline.Iterator[any], err error) {
	s.release(it)
	if s.cancelled.Load() {
		return
	}
	s.cancelled.Store(true)
	fields := logger.DurationFields("subscription", time.Since(s.started))
	defer s.recoverSignal("terminal")
	if err != nil {
		s.log.Debug("subscription failed", logger.MergeWithError(fields, err))
		s.downstream.OnError(err)
		return
	}
	s.log.Debug("subscription completed", fields)
	s.downstream.OnComplete()
}

// emit delivers v and reports whether the subscription is still live.
func (s *subscription) emit(v any) (ok bool) {
	if s.cancelled.Load() {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			s.subscriberPanicked("onNext", r)
			ok = false
		}
	}()
	s.downstream.OnNext(v)
	return true
}

func (s *subscription) recoverSignal(signal string) {
	if r := recover(); r != nil {
		s.subscriberPanicked(signal, r)
	}
}

// subscriberPanicked treats a panicking subscriber as having cancelled.
func (s *subscription) subscriberPanicked(signal string, r any) {
	s.cancelled.Store(true)
	s.cancel()
	s.log.Error("subscriber panicked; subscription cancelled", logger.Fields(
		logger.FieldSignal, signal,
		logger.FieldError, fmt.Sprint(r),
	))
}

func (s *subscription) release(it pipeline.Iterator[any]) {
	if err := closeChain(it); err != nil {
		s.log.Debug("closing pipeline failed", logger.MergeWithError(nil, err))
	}
}

// openChain creates an iterator chain, converting a panic into a failure.
func openChain(ctx context.Context, chain *pipeline.Pipeline[any]) (it pipeline.Iterator[any], err error) {
	defer func() {
		if r := recover(); r != nil {
			it, err = nil, errors.Panicked("subscribe", r)
		}
	}()
	return chain.Iter(ctx), nil
}

// pull calls Next, converting a panic in stage code into a failure.
func pull(ctx context.Context, it pipeline.Iterator[any]) (v any, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, ok, err = nil, false, errors.Panicked("pipeline", r)
		}
	}()
	return it.Next(ctx)
}

// closeChain closes it, converting a panic in stage code into an error.
func closeChain(it pipeline.Iterator[any]) (err error) {
	if it == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Panicked("close", r)
		}
	}()
	return it.Close()
}

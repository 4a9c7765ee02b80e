package inproc

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
	"github.com/kbukum/reactive/logger"
	"github.com/kbukum/reactive/pipeline"
)

// runSink drains chain into sink and settles promise with the result. The
// chain is closed, cancelling upstream, before the promise settles.
func (e *Engine) runSink(ctx context.Context, chain *pipeline.Pipeline[any], sink graph.Stage, promise *future.Promise[any], id string) {
	if ts, ok := sink.Payload().(graph.ToSubscriber); ok {
		e.newPublisher(chain, true, id).subscribe(ctx, &settlingSubscriber{target: ts.Subscriber, promise: promise})
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log := e.log.WithFields(logger.Fields(logger.FieldPipelineID, id, logger.FieldStage, sink.Kind().String()))
	log.Debug("sink started")
	start := time.Now()

	it, err := openChain(ctx, chain)
	var result any
	if err == nil {
		result, err = drain(ctx, it, sink.Payload())
	}
	if cerr := closeChain(it); cerr != nil {
		log.Debug("closing pipeline failed", logger.MergeWithError(nil, cerr))
	}
	fields := logger.DurationFields("sink", time.Since(start))
	if err != nil {
		err = contextError(ctx, err)
		log.Debug("sink failed", logger.MergeWithError(fields, err))
		promise.Reject(err)
		return
	}
	log.Debug("sink completed", fields)
	promise.Resolve(result)
}

// drain consumes it according to the sink payload.
func drain(ctx context.Context, it pipeline.Iterator[any], payload graph.Payload) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, errors.Panicked("sink", r)
		}
	}()

	switch p := payload.(type) {
	case graph.Cancel:
		return nil, nil
	case graph.FindFirst:
		v, ok, err := next(ctx, it)
		if err != nil {
			return nil, err
		}
		return graph.FirstResult{Value: v, Found: ok}, nil
	case graph.ForEach:
		for {
			v, ok, err := next(ctx, it)
			if err != nil || !ok {
				return nil, err
			}
			if err := p.Fn(ctx, v); err != nil {
				return nil, err
			}
		}
	case graph.Collect:
		c := p.Collector
		acc := c.Supplier()
		for {
			v, ok, err := next(ctx, it)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			if acc, err = c.Accumulator(acc, v); err != nil {
				return nil, err
			}
		}
		if c.Finisher == nil {
			return acc, nil
		}
		return c.Finisher(acc)
	default:
		return nil, errors.UnsupportedStage(Name, "sink")
	}
}

// next pulls one element and rejects nil elements.
func next(ctx context.Context, it pipeline.Iterator[any]) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok, err := it.Next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	if flow.IsNil(v) {
		return nil, false, errors.NullValue("stream element")
	}
	return v, true, nil
}

// contextError reports failures caused by cancelling ctx as CANCELLED while
// keeping the context error reachable through errors.Is.
func contextError(ctx context.Context, err error) error {
	if ctx.Err() == nil || !stderrors.Is(err, ctx.Err()) {
		return err
	}
	return errors.Cancelled("execution cancelled").WithCause(err)
}

// settlingSubscriber forwards signals to a user subscriber and settles the
// run's promise when the stream terminates or the subscriber cancels.
type settlingSubscriber struct {
	target  flow.Subscriber[any]
	promise *future.Promise[any]
}

func (s *settlingSubscriber) OnSubscribe(sub flow.Subscription) {
	defer s.guard("onSubscribe")
	s.target.OnSubscribe(&settlingSubscription{Subscription: sub, promise: s.promise})
}

func (s *settlingSubscriber) OnNext(v any) {
	defer s.guard("onNext")
	s.target.OnNext(v)
}

func (s *settlingSubscriber) OnError(err error) {
	defer s.promise.Reject(err)
	s.target.OnError(err)
}

func (s *settlingSubscriber) OnComplete() {
	defer s.guard("onComplete")
	s.target.OnComplete()
	s.promise.Resolve(nil)
}

// guard fails the run when the target panics, then re-panics so the
// subscription cancels itself.
func (s *settlingSubscriber) guard(signal string) {
	if r := recover(); r != nil {
		s.promise.Reject(errors.Panicked("subscriber "+signal, r))
		panic(r)
	}
}

type settlingSubscription struct {
	flow.Subscription
	promise *future.Promise[any]
	once    sync.Once
}

func (s *settlingSubscription) Cancel() {
	s.once.Do(func() {
		s.Subscription.Cancel()
		s.promise.Reject(errors.Cancelled("subscriber cancelled"))
	})
}

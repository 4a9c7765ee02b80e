package inproc

import (
	"context"
	"sync"

	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/graph"
	"github.com/kbukum/reactive/pipeline"
)

// processor joins a subscriber bridge (upstream side) and a single-use
// publisher (downstream side) around a compiled chain.
type processor struct {
	in  *subscriberBridge
	out *iterPublisher
}

func (p *processor) OnSubscribe(s flow.Subscription)  { p.in.OnSubscribe(s) }
func (p *processor) OnNext(v any)                     { p.in.OnNext(v) }
func (p *processor) OnError(err error)                { p.in.OnError(err) }
func (p *processor) OnComplete()                      { p.in.OnComplete() }
func (p *processor) Subscribe(s flow.Subscriber[any]) { p.out.Subscribe(s) }

// feed subscribes s to the values of chain, driven by its own subscription.
func (e *Engine) feed(ctx context.Context, chain *pipeline.Pipeline[any], s flow.Subscriber[any]) *subscription {
	return e.newPublisher(chain, true, "").subscribe(ctx, s)
}

// viaProcessor routes the values of src through proc.
func (e *Engine) viaProcessor(src *pipeline.Pipeline[any], proc flow.Processor[any, any]) *pipeline.Pipeline[any] {
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[any] {
		out := newSubscriberBridge(e.prefetch())
		proc.Subscribe(out)
		up := e.feed(ctx, src, proc)
		return &linkedIter{Iterator: out, upstream: up}
	})
}

// linkedIter reads from a bridge and cancels a second subscription feeding
// the same processor when closed.
type linkedIter struct {
	pipeline.Iterator[any]
	upstream *subscription
}

func (it *linkedIter) Close() error {
	err := it.Iterator.Close()
	if it.upstream != nil {
		it.upstream.Cancel()
	}
	return err
}

// coupled compiles a Coupled stage: upstream values feed the subscriber
// graph while downstream receives the publisher graph's values.
func (e *Engine) coupled(src *pipeline.Pipeline[any], p graph.Coupled) (*pipeline.Pipeline[any], error) {
	subStages := p.Subscriber.Stages()
	sink := subStages[len(subStages)-1]
	transforms := subStages[:len(subStages)-1]
	if _, err := e.compileChain(pipeline.Empty[any](), transforms); err != nil {
		return nil, err
	}
	if err := e.checkSink(sink); err != nil {
		return nil, err
	}
	out, err := e.compilePublisher(p.Publisher.Stages())
	if err != nil {
		return nil, err
	}

	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[any] {
		cctx, cancel := context.WithCancel(ctx)
		in := newSubscriberBridge(e.prefetch())
		chain, err := e.compileChain(inlet(in), transforms)
		if err != nil {
			cancel()
			return pipeline.Fail[any](err).Iter(ctx)
		}
		promise := future.NewPromise[any]()
		in.onSubscribe = func() {
			go e.runSink(cctx, chain, sink, promise, "")
		}
		up := e.feed(cctx, src, in)
		return &coupledIter{
			out:      out.Iter(cctx),
			inbound:  promise.Future(),
			upstream: up,
			cancel:   cancel,
		}
	}), nil
}

// coupledIter ends as soon as either side terminates and then tears the
// other side down.
type coupledIter struct {
	out      pipeline.Iterator[any]
	inbound  *future.Future[any]
	upstream *subscription
	cancel   context.CancelFunc

	once     sync.Once
	closeErr error
	done     bool
}

func (it *coupledIter) Next(ctx context.Context) (any, bool, error) {
	if it.done {
		return nil, false, nil
	}
	if _, err, settled := it.inbound.Result(); settled {
		return it.finish(err)
	}

	nctx, stop := context.WithCancel(ctx)
	go func() {
		select {
		case <-it.inbound.Done():
			stop()
		case <-nctx.Done():
		}
	}()
	v, ok, err := it.out.Next(nctx)
	stop()

	if err != nil && ctx.Err() == nil {
		if _, ierr, settled := it.inbound.Result(); settled {
			return it.finish(ierr)
		}
	}
	if err != nil || !ok {
		it.done = true
		_ = it.teardown()
		return nil, false, err
	}
	return v, true, nil
}

// finish ends the stream because the inbound side terminated. An inbound
// subscriber that cancelled ends the stream normally.
func (it *coupledIter) finish(inboundErr error) (any, bool, error) {
	it.done = true
	_ = it.teardown()
	if errors.CodeOf(inboundErr) == errors.ErrCodeCancelled {
		return nil, false, nil
	}
	return nil, false, inboundErr
}

func (it *coupledIter) teardown() error {
	it.once.Do(func() {
		it.closeErr = it.out.Close()
		if it.upstream != nil {
			it.upstream.Cancel()
		}
		it.cancel()
	})
	return it.closeErr
}

func (it *coupledIter) Close() error {
	it.done = true
	return it.teardown()
}

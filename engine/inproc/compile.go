package inproc

import (
	"context"

	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/graph"
	"github.com/kbukum/reactive/pipeline"
)

// compilePublisher compiles a source stage followed by transforms.
func (e *Engine) compilePublisher(stages []graph.Stage) (*pipeline.Pipeline[any], error) {
	if len(stages) == 0 {
		return nil, errors.IllegalShape("", graph.ShapePublisher.String(), "missing source stage")
	}
	src, err := e.compileSource(stages[0])
	if err != nil {
		return nil, err
	}
	return e.compileChain(src, stages[1:])
}

// compileChain applies transform stages to p in order.
func (e *Engine) compileChain(p *pipeline.Pipeline[any], stages []graph.Stage) (*pipeline.Pipeline[any], error) {
	for _, st := range stages {
		var err error
		if p, err = e.compileTransform(p, st); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// compileGraph compiles a nested publisher graph produced at runtime.
func (e *Engine) compileGraph(where string, g *graph.Graph) (*pipeline.Pipeline[any], error) {
	if g == nil {
		return nil, errors.NullValue(where + " returned no graph")
	}
	if err := g.Validate(graph.ShapePublisher); err != nil {
		return nil, err
	}
	return e.compilePublisher(g.Stages())
}

func (e *Engine) compileSource(st graph.Stage) (*pipeline.Pipeline[any], error) {
	switch p := st.Payload().(type) {
	case graph.Of:
		return pipeline.FromSlice(p.Values), nil
	case graph.Empty:
		return pipeline.Empty[any](), nil
	case graph.Failed:
		if p.Err == nil {
			return pipeline.Fail[any](errors.NullValue("failed source error")), nil
		}
		return pipeline.Fail[any](p.Err), nil
	case graph.FromPublisher:
		pub := p.Publisher
		return pipeline.FromFunc(func(_ context.Context) pipeline.Iterator[any] {
			b := newSubscriberBridge(e.prefetch())
			pub.Subscribe(b)
			return b
		}), nil
	case graph.FromIterator:
		open := p.Open
		return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[any] {
			it, err := open(ctx)
			if err != nil {
				return pipeline.Fail[any](err).Iter(ctx)
			}
			return it
		}), nil
	case graph.FromCompletion:
		f, nullable := p.Future, p.Nullable
		return pipeline.FromFunc(func(_ context.Context) pipeline.Iterator[any] {
			return &completionIter{future: f, nullable: nullable}
		}), nil
	case graph.Iterate:
		return pipeline.Iterate(p.Seed, p.Next), nil
	case graph.Generate:
		return pipeline.Generate(p.Supply), nil
	case graph.Concat:
		first, err := e.compilePublisher(p.First.Stages())
		if err != nil {
			return nil, err
		}
		second, err := e.compilePublisher(p.Second.Stages())
		if err != nil {
			return nil, err
		}
		return pipeline.Concat(first, second), nil
	default:
		return nil, errors.UnsupportedStage(Name, st.Kind().String())
	}
}

func (e *Engine) compileTransform(src *pipeline.Pipeline[any], st graph.Stage) (*pipeline.Pipeline[any], error) {
	switch p := st.Payload().(type) {
	case graph.Map:
		return pipeline.Map(src, p.Fn), nil
	case graph.Peek:
		return pipeline.Tap(src, p.Fn), nil
	case graph.Filter:
		return pipeline.FilterErr(src, p.Pred), nil
	case graph.FlatMap:
		fn := p.Fn
		return pipeline.FlatMap(src, func(ctx context.Context, v any) (pipeline.Iterator[any], error) {
			g, err := fn(v)
			if err != nil {
				return nil, err
			}
			inner, err := e.compileGraph("flatMap function", g)
			if err != nil {
				return nil, err
			}
			return inner.Iter(ctx), nil
		}), nil
	case graph.FlatMapCompletion:
		fn := p.Fn
		return pipeline.Map(src, func(ctx context.Context, v any) (any, error) {
			f, err := fn(v)
			if err != nil {
				return nil, err
			}
			if f == nil {
				return nil, errors.NullValue("flatMapCompletion function returned no future")
			}
			out, err := f.Await(ctx)
			if err != nil {
				return nil, err
			}
			if flow.IsNil(out) {
				return nil, errors.NullValue("flatMapCompletion future")
			}
			return out, nil
		}), nil
	case graph.FlatMapIterable:
		fn := p.Fn
		return pipeline.FlatMap(src, func(ctx context.Context, v any) (pipeline.Iterator[any], error) {
			items, err := fn(v)
			if err != nil {
				return nil, err
			}
			return pipeline.FromSlice(items).Iter(ctx), nil
		}), nil
	case graph.Limit:
		return pipeline.Limit(src, p.N), nil
	case graph.Skip:
		return pipeline.Skip(src, p.N), nil
	case graph.TakeWhile:
		return pipeline.TakeWhileErr(src, p.Pred), nil
	case graph.DropWhile:
		return pipeline.DropWhileErr(src, p.Pred), nil
	case graph.Distinct:
		return pipeline.Distinct(src), nil
	case graph.OnError:
		return pipeline.OnError(src, p.Fn), nil
	case graph.OnErrorResume:
		return pipeline.Recover(src, p.Fn), nil
	case graph.OnErrorResumeWith:
		fn := p.Fn
		return pipeline.RecoverWith(src, func(cause error) (*pipeline.Pipeline[any], error) {
			g, err := fn(cause)
			if err != nil {
				return nil, err
			}
			return e.compileGraph("onErrorResumeWith function", g)
		}), nil
	case graph.OnTerminate:
		return pipeline.OnTerminate(src, p.Fn), nil
	case graph.OnComplete:
		return pipeline.OnComplete(src, p.Fn), nil
	case graph.Processor:
		return e.viaProcessor(src, p.Processor), nil
	case graph.Coupled:
		return e.coupled(src, p)
	default:
		return nil, errors.UnsupportedStage(Name, st.Kind().String())
	}
}

// checkSink rejects sink payloads runSink cannot handle.
func (e *Engine) checkSink(st graph.Stage) error {
	switch st.Payload().(type) {
	case graph.Collect, graph.FindFirst, graph.ForEach, graph.Cancel, graph.ToSubscriber:
		return nil
	default:
		return errors.UnsupportedStage(Name, st.Kind().String())
	}
}

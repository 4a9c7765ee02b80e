package pipeline

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// OnError calls fn with any error the pipeline fails with, then lets the
// error through.
func OnError[T any](p *Pipeline[T], fn func(error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &onErrorIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

// Recover replaces a failure with a single value produced by fn, after which
// the pipeline ends. The failed source is closed before fn runs. If fn
// returns an error, that error is the new failure.
func Recover[T any](p *Pipeline[T], fn func(error) (T, error)) *Pipeline[T] {
	return RecoverWith(p, func(err error) (*Pipeline[T], error) {
		v, err := fn(err)
		if err != nil {
			return nil, err
		}
		return FromSlice([]T{v}), nil
	})
}

// RecoverWith switches to the pipeline returned by fn when the source fails.
// Failures of the fallback are not recovered.
func RecoverWith[T any](p *Pipeline[T], fn func(error) (*Pipeline[T], error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &recoverIter[T]{ctx: ctx, source: p.create(ctx), fn: fn}
		},
	}
}

// OnTerminate calls fn exactly once when the iterator ends, fails or is
// closed, whichever comes first.
func OnTerminate[T any](p *Pipeline[T], fn func()) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &terminateIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

// OnComplete calls fn once when the source is exhausted without error.
func OnComplete[T any](p *Pipeline[T], fn func()) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &completeIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

type onErrorIter[T any] struct {
	source Iterator[T]
	fn     func(error)
}

func (it *onErrorIter[T]) Next(ctx context.Context) (T, bool, error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil {
		it.fn(err)
	}
	return val, ok, err
}

func (it *onErrorIter[T]) Finished() bool { return Finished(it.source) }

func (it *onErrorIter[T]) Close() error { return it.source.Close() }

type recoverIter[T any] struct {
	ctx      context.Context
	source   Iterator[T]
	fn       func(error) (*Pipeline[T], error)
	fallback Iterator[T]
	closeErr error
}

func (it *recoverIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.fallback != nil {
		return it.fallback.Next(ctx)
	}
	val, ok, err := it.source.Next(ctx)
	if err == nil {
		return val, ok, nil
	}
	var zero T
	if ctx.Err() != nil {
		// cancellation is not a failure to recover from
		return zero, false, err
	}
	it.closeErr = it.source.Close()
	fb, ferr := it.fn(err)
	if ferr != nil {
		return zero, false, ferr
	}
	if fb == nil {
		fb = Empty[T]()
	}
	it.fallback = fb.create(it.ctx)
	return it.fallback.Next(ctx)
}

func (it *recoverIter[T]) Close() error {
	if it.fallback != nil {
		return multierr.Append(it.closeErr, it.fallback.Close())
	}
	return it.source.Close()
}

type terminateIter[T any] struct {
	source Iterator[T]
	fn     func()
	once   sync.Once
}

func (it *terminateIter[T]) Next(ctx context.Context) (T, bool, error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		it.once.Do(it.fn)
	}
	return val, ok, err
}

func (it *terminateIter[T]) Finished() bool { return Finished(it.source) }

func (it *terminateIter[T]) Close() error {
	err := it.source.Close()
	it.once.Do(it.fn)
	return err
}

type completeIter[T any] struct {
	source Iterator[T]
	fn     func()
	once   sync.Once
}

func (it *completeIter[T]) Next(ctx context.Context) (T, bool, error) {
	val, ok, err := it.source.Next(ctx)
	if err == nil && !ok {
		it.once.Do(it.fn)
	}
	return val, ok, err
}

func (it *completeIter[T]) Finished() bool { return Finished(it.source) }

func (it *completeIter[T]) Close() error { return it.source.Close() }

func (it *recoverIter[T]) Finished() bool {
	return it.fallback != nil && Finished(it.fallback)
}

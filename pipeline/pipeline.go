package pipeline

import (
	"context"
	"iter"
	"sync"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator and cancels
	// whatever upstream feeds it. Close is idempotent.
	Close() error
}

// Finisher is implemented by iterators that can report, without computing
// anything, that their next Next call yields a terminal result.
type Finisher interface {
	Finished() bool
}

// Finished reports whether it is known to be at its end. A true result means
// a Next call returns (zero, false, nil) or an error without pulling a new
// element, so it is safe to call even when nobody asked for more values.
func Finished[T any](it Iterator[T]) bool {
	if f, ok := it.(Finisher); ok {
		return f.Finished()
	}
	return false
}

// Pipeline represents a lazy, pull-based data pipeline.
// Each call to Iter creates an independent iterator chain; no work happens
// until values are pulled from it.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// Iter returns a fresh Iterator for this pipeline. The caller must Close() it.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.create(ctx)
}

// --- Constructors ---

// From creates a pipeline from an existing Iterator. Every Iter call
// returns the same iterator, so the pipeline can be consumed only once.
func From[T any](it Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return it
		},
	}
}

// FromSlice creates a pipeline from a slice of values.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &sliceIter[T]{items: items}
		},
	}
}

// FromFunc creates a pipeline from a factory that produces an Iterator.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: fn}
}

// FromSeq creates a pipeline from a range-over-func sequence. Each Iter call
// starts the sequence from the beginning; Close stops it.
func FromSeq[T any](seq iter.Seq[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			next, stop := iter.Pull(seq)
			return &seqIter[T]{next: next, stop: stop}
		},
	}
}

// Empty creates a pipeline that yields nothing.
func Empty[T any]() *Pipeline[T] {
	return FromSlice[T](nil)
}

// Fail creates a pipeline whose first pull returns err.
func Fail[T any](err error) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &failIter[T]{err: err}
		},
	}
}

// Iterate creates an infinite pipeline of seed, next(seed), next(next(seed)), ...
// next is only invoked when a value is pulled.
func Iterate[T any](seed T, next func(T) (T, error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &iterateIter[T]{cur: seed, next: next}
		},
	}
}

// Generate creates an infinite pipeline whose values come from supply,
// called once per pulled value.
func Generate[T any](supply func() (T, error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &generateIter[T]{supply: supply}
		},
	}
}

// Erase converts p into a pipeline of untyped values.
func Erase[T any](p *Pipeline[T]) *Pipeline[any] {
	return Map(p, func(_ context.Context, v T) (any, error) { return v, nil })
}

// --- Terminals ---

// Collect runs the pipeline and returns all values as a slice.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	it := p.create(ctx)
	defer it.Close()
	var result []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// ForEach pulls all values and calls fn for each.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	it := p.create(ctx)
	defer it.Close()
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(ctx, val); err != nil {
			return err
		}
	}
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Finished() bool { return it.index >= len(it.items) }

func (it *sliceIter[T]) Close() error { return nil }

type seqIter[T any] struct {
	next func() (T, bool)
	stop func()
	once sync.Once
}

func (it *seqIter[T]) Next(_ context.Context) (T, bool, error) {
	v, ok := it.next()
	return v, ok, nil
}

func (it *seqIter[T]) Close() error {
	it.once.Do(it.stop)
	return nil
}

type failIter[T any] struct {
	err  error
	done bool
}

func (it *failIter[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	it.done = true
	return zero, false, it.err
}

func (it *failIter[T]) Finished() bool { return true }

func (it *failIter[T]) Close() error { return nil }

type iterateIter[T any] struct {
	cur     T
	next    func(T) (T, error)
	started bool
	closed  bool
}

func (it *iterateIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.closed {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if !it.started {
		it.started = true
		return it.cur, true, nil
	}
	v, err := it.next(it.cur)
	if err != nil {
		return zero, false, err
	}
	it.cur = v
	return v, true, nil
}

func (it *iterateIter[T]) Close() error {
	it.closed = true
	return nil
}

type generateIter[T any] struct {
	supply func() (T, error)
	closed bool
}

func (it *generateIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.closed {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	v, err := it.supply()
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (it *generateIter[T]) Close() error {
	it.closed = true
	return nil
}

package pipeline

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Map transforms each value using fn.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &mapIter[I, O]{source: p.create(ctx), fn: fn}
		},
	}
}

// FlatMap transforms each value into an iterator and flattens the results.
// Inner iterators are drained one at a time, in order; the next input value
// is not pulled until the current inner iterator is exhausted.
func FlatMap[I, O any](p *Pipeline[I], fn func(context.Context, I) (Iterator[O], error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &flatMapIter[I, O]{source: p.create(ctx), fn: fn}
		},
	}
}

// Filter keeps only values that satisfy the predicate.
func Filter[T any](p *Pipeline[T], fn func(T) bool) *Pipeline[T] {
	return FilterErr(p, infallible(fn))
}

// FilterErr is Filter with a predicate that can fail. A predicate error
// ends the pipeline with that error.
func FilterErr[T any](p *Pipeline[T], fn func(T) (bool, error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &filterIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

func infallible[T any](fn func(T) bool) func(T) (bool, error) {
	return func(v T) (bool, error) { return fn(v), nil }
}

// Tap calls fn as a side-effect for each value, then passes the value through unchanged.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &tapIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

// Concat joins multiple pipelines sequentially.
// A pipeline's iterator is only created once the previous one is exhausted.
// Pipelines that were never started are created and closed immediately when
// the concatenation is closed, so they get a chance to release resources.
func Concat[T any](pipelines ...*Pipeline[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &concatIter[T]{ctx: ctx, pipelines: pipelines}
		},
	}
}

// Limit yields at most n values. The source is closed as soon as the n-th
// value has been pulled.
func Limit[T any](p *Pipeline[T], n int64) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &limitIter[T]{source: p.create(ctx), n: n}
		},
	}
}

// Skip discards the first n values.
func Skip[T any](p *Pipeline[T], n int64) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &skipIter[T]{source: p.create(ctx), n: n}
		},
	}
}

// TakeWhile yields values while fn holds. The first value failing fn is
// dropped, the source is closed and the pipeline ends.
func TakeWhile[T any](p *Pipeline[T], fn func(T) bool) *Pipeline[T] {
	return TakeWhileErr(p, infallible(fn))
}

// TakeWhileErr is TakeWhile with a predicate that can fail.
func TakeWhileErr[T any](p *Pipeline[T], fn func(T) (bool, error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &takeWhileIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

// DropWhile discards values while fn holds, then yields everything after,
// including the first value failing fn.
func DropWhile[T any](p *Pipeline[T], fn func(T) bool) *Pipeline[T] {
	return DropWhileErr(p, infallible(fn))
}

// DropWhileErr is DropWhile with a predicate that can fail.
func DropWhileErr[T any](p *Pipeline[T], fn func(T) (bool, error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &dropWhileIter[T]{source: p.create(ctx), fn: fn, dropping: true}
		},
	}
}

// Distinct drops values equal to one already yielded. Seen values are kept
// for the lifetime of the iterator. With T = any, a dynamic value that is not
// comparable makes Next panic.
func Distinct[T comparable](p *Pipeline[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &distinctIter[T]{source: p.create(ctx), seen: make(map[T]struct{})}
		},
	}
}

// --- Iterator implementations ---

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		var zero O
		return zero, false, err
	}
	out, err := it.fn(ctx, val)
	if err != nil {
		var zero O
		return zero, false, err
	}
	return out, true, nil
}

func (it *mapIter[I, O]) Finished() bool { return Finished(it.source) }

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type flatMapIter[I, O any] struct {
	source  Iterator[I]
	fn      func(context.Context, I) (Iterator[O], error)
	current Iterator[O]
}

func (it *flatMapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	for {
		if it.current != nil {
			val, ok, err := it.current.Next(ctx)
			if err != nil {
				var zero O
				return zero, false, err
			}
			if ok {
				return val, true, nil
			}
			_ = it.current.Close()
			it.current = nil
		}
		in, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var zero O
			return zero, false, err
		}
		inner, err := it.fn(ctx, in)
		if err != nil {
			var zero O
			return zero, false, err
		}
		it.current = inner
	}
}

func (it *flatMapIter[I, O]) Close() error {
	var err error
	if it.current != nil {
		err = it.current.Close()
		it.current = nil
	}
	return multierr.Append(err, it.source.Close())
}

type filterIter[T any] struct {
	source Iterator[T]
	fn     func(T) (bool, error)
}

func (it *filterIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	var zero T
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		keep, err := it.fn(val)
		if err != nil {
			return zero, false, err
		}
		if keep {
			return val, true, nil
		}
	}
}

func (it *filterIter[T]) Finished() bool { return Finished(it.source) }

func (it *filterIter[T]) Close() error { return it.source.Close() }

type tapIter[T any] struct {
	source Iterator[T]
	fn     func(context.Context, T) error
}

func (it *tapIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, ok, err
	}
	if err := it.fn(ctx, val); err != nil {
		var zero T
		return zero, false, err
	}
	return val, true, nil
}

func (it *tapIter[T]) Finished() bool { return Finished(it.source) }

func (it *tapIter[T]) Close() error { return it.source.Close() }

type concatIter[T any] struct {
	ctx       context.Context
	pipelines []*Pipeline[T]
	current   Iterator[T]
	index     int
	closed    bool
}

func (it *concatIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for !it.closed && it.index < len(it.pipelines) {
		if it.current == nil {
			it.current = it.pipelines[it.index].create(it.ctx)
		}
		val, ok, err := it.current.Next(ctx)
		if err != nil {
			return val, false, err
		}
		if ok {
			return val, true, nil
		}
		_ = it.current.Close()
		it.current = nil
		it.index++
	}
	var zero T
	return zero, false, nil
}

func (it *concatIter[T]) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	var err error
	next := it.index
	if it.current != nil {
		err = it.current.Close()
		it.current = nil
		next++
	}
	for _, p := range it.pipelines[min(next, len(it.pipelines)):] {
		err = multierr.Append(err, p.create(it.ctx).Close())
	}
	return err
}

type limitIter[T any] struct {
	source Iterator[T]
	n      int64
	count  int64
	once   sync.Once
	err    error
}

func (it *limitIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	var zero T
	if it.count >= it.n {
		it.release()
		return zero, false, nil
	}
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	it.count++
	if it.count >= it.n {
		// nothing more will be pulled, let the source go now
		it.release()
	}
	return val, true, nil
}

// release closes the source once. A close error is kept for Close and
// does not fail Next: the values yielded so far are complete.
func (it *limitIter[T]) release() {
	it.once.Do(func() { it.err = it.source.Close() })
}

func (it *limitIter[T]) Finished() bool {
	return it.count >= it.n || Finished(it.source)
}

func (it *limitIter[T]) Close() error {
	it.release()
	return it.err
}

type skipIter[T any] struct {
	source  Iterator[T]
	n       int64
	skipped int64
}

func (it *skipIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		if it.skipped < it.n {
			it.skipped++
			continue
		}
		return val, true, nil
	}
}

func (it *skipIter[T]) Finished() bool { return Finished(it.source) }

func (it *skipIter[T]) Close() error { return it.source.Close() }

type takeWhileIter[T any] struct {
	source Iterator[T]
	fn     func(T) (bool, error)
	done   bool
	once   sync.Once
	err    error
}

func (it *takeWhileIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	keep, err := it.fn(val)
	if err != nil {
		return zero, false, err
	}
	if !keep {
		it.done = true
		it.release()
		return zero, false, nil
	}
	return val, true, nil
}

// release closes the source once, keeping a close error for Close.
func (it *takeWhileIter[T]) release() {
	it.once.Do(func() { it.err = it.source.Close() })
}

func (it *takeWhileIter[T]) Finished() bool { return it.done || Finished(it.source) }

func (it *takeWhileIter[T]) Close() error {
	it.release()
	return it.err
}

type dropWhileIter[T any] struct {
	source   Iterator[T]
	fn       func(T) (bool, error)
	dropping bool
}

func (it *dropWhileIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	var zero T
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		if it.dropping {
			drop, err := it.fn(val)
			if err != nil {
				return zero, false, err
			}
			if drop {
				continue
			}
		}
		it.dropping = false
		return val, true, nil
	}
}

func (it *dropWhileIter[T]) Finished() bool { return Finished(it.source) }

func (it *dropWhileIter[T]) Close() error { return it.source.Close() }

type distinctIter[T comparable] struct {
	source Iterator[T]
	seen   map[T]struct{}
}

func (it *distinctIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		if _, dup := it.seen[val]; dup {
			continue
		}
		it.seen[val] = struct{}{}
		return val, true, nil
	}
}

func (it *distinctIter[T]) Finished() bool { return Finished(it.source) }

func (it *distinctIter[T]) Close() error { return it.source.Close() }

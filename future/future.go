// Package future provides an eventual result that settles exactly once,
// either with a value or with an error.
//
// A Promise is the write side and a Future the read side:
//
//	p := future.NewPromise[int]()
//	go func() { p.Resolve(42) }()
//	v, err := p.Future().Await(ctx)
//
// The first Resolve or Reject wins; later calls report false and change
// nothing.
package future

import (
	"context"
	"sync"

	rserrors "github.com/kbukum/reactive/errors"
)

// Future is the read side of an eventual result.
type Future[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	settled bool
	val     T
	err     error
}

// Promise is the write side of a Future.
type Promise[T any] struct {
	f *Future[T]
}

// NewPromise creates an unsettled promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{f: &Future[T]{done: make(chan struct{})}}
}

// Future returns the read side of the promise.
func (p *Promise[T]) Future() *Future[T] { return p.f }

// Resolve settles the future with v. It returns false if already settled.
func (p *Promise[T]) Resolve(v T) bool {
	return p.f.settle(v, nil)
}

// Reject settles the future with err. A nil err is replaced by a null-value
// error so a rejected future never reports success.
func (p *Promise[T]) Reject(err error) bool {
	if err == nil {
		err = rserrors.NullValue("promise rejection")
	}
	var zero T
	return p.f.settle(zero, err)
}

// Settle resolves or rejects depending on err.
func (p *Promise[T]) Settle(v T, err error) bool {
	if err != nil {
		return p.Reject(err)
	}
	return p.Resolve(v)
}

func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settled {
		return false
	}
	f.settled = true
	f.val = v
	f.err = err
	close(f.done)
	return true
}

// Done is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Result returns the settled value and error. ok is false while unsettled.
func (f *Future[T]) Result() (v T, err error, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settled {
		return v, nil, false
	}
	return f.val, f.err, true
}

// Await blocks until the future settles or ctx is done. A done ctx does not
// settle the future.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		v, err, _ := f.Result()
		return v, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Resolved returns a future already settled with v.
func Resolved[T any](v T) *Future[T] {
	p := NewPromise[T]()
	p.Resolve(v)
	return p.Future()
}

// Rejected returns a future already settled with err.
func Rejected[T any](err error) *Future[T] {
	p := NewPromise[T]()
	p.Reject(err)
	return p.Future()
}

// Go runs fn in a new goroutine and settles the returned future with its
// result. A panic in fn rejects the future.
func Go[T any](fn func() (T, error)) *Future[T] {
	p := NewPromise[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.Reject(rserrors.Panicked("future", r))
			}
		}()
		p.Settle(fn())
	}()
	return p.Future()
}

// Map derives a future whose value is fn applied to f's value. Errors from
// f pass through without calling fn.
func Map[T, R any](f *Future[T], fn func(T) (R, error)) *Future[R] {
	if v, err, ok := f.Result(); ok {
		return mapSettled(v, err, fn)
	}
	p := NewPromise[R]()
	go func() {
		<-f.done
		v, err, _ := f.Result()
		rv, rerr, _ := mapSettled(v, err, fn).Result()
		p.Settle(rv, rerr)
	}()
	return p.Future()
}

func mapSettled[T, R any](v T, err error, fn func(T) (R, error)) *Future[R] {
	if err != nil {
		return Rejected[R](err)
	}
	var (
		r    R
		ferr error
	)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				ferr = rserrors.Panicked("future.map", rec)
			}
		}()
		r, ferr = fn(v)
	}()
	if ferr != nil {
		return Rejected[R](ferr)
	}
	return Resolved(r)
}

// Erase converts a typed future to an untyped one.
func Erase[T any](f *Future[T]) *Future[any] {
	return Map(f, func(v T) (any, error) { return v, nil })
}

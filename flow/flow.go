package flow

import "reflect"

// Subscription links one Subscriber to one Publisher.
type Subscription interface {
	// Request adds n to the outstanding demand. n must be positive.
	Request(n int64)
	// Cancel asks the Publisher to stop signalling and release resources.
	Cancel()
}

// Subscriber consumes signals from a Publisher.
type Subscriber[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Publisher produces a potentially unbounded sequence of elements for each
// Subscriber, honoring the demand that Subscriber signals.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// Processor is a Subscriber upstream and a Publisher downstream.
type Processor[T, R any] interface {
	Subscriber[T]
	Publisher[R]
}

// Unbounded is the demand that effectively disables back-pressure.
const Unbounded int64 = 1<<63 - 1

// AddDemand adds n to current and caps the result at Unbounded.
func AddDemand(current, n int64) int64 {
	if n <= 0 {
		return current
	}
	if current > Unbounded-n {
		return Unbounded
	}
	return current + n
}

// IsNil reports whether v counts as a missing element: a nil interface,
// pointer, func or channel. Nil slices and maps are empty values and pass.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

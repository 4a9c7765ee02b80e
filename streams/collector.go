package streams

// Collector folds the elements of a stream into a result. Supplier creates
// the container for one run, Accumulator adds an element to it and Finisher
// converts it into the result. A nil Finisher returns the container itself,
// which then must be an R.
type Collector[T, A, R any] struct {
	Supplier    func() A
	Accumulator func(acc A, v T) A
	Finisher    func(acc A) R
}

func (c Collector[T, A, R]) validate(op string) error {
	if c.Supplier == nil || c.Accumulator == nil {
		return nilArg(op, "collector supplier and accumulator")
	}
	return nil
}

// ToSlice collects elements in arrival order. An empty stream yields an
// empty, non-nil slice.
func ToSlice[T any]() Collector[T, []T, []T] {
	return Collector[T, []T, []T]{
		Supplier:    func() []T { return []T{} },
		Accumulator: func(acc []T, v T) []T { return append(acc, v) },
	}
}

// Reducing folds elements into identity with fn.
func Reducing[T, R any](identity R, fn func(R, T) R) Collector[T, R, R] {
	return Collector[T, R, R]{
		Supplier:    func() R { return identity },
		Accumulator: fn,
	}
}

// Counting counts elements.
func Counting[T any]() Collector[T, int64, int64] {
	return Collector[T, int64, int64]{
		Supplier:    func() int64 { return 0 },
		Accumulator: func(n int64, _ T) int64 { return n + 1 },
	}
}

// GroupingBy collects elements into slices keyed by key.
func GroupingBy[T any, K comparable](key func(T) K) Collector[T, map[K][]T, map[K][]T] {
	return Collector[T, map[K][]T, map[K][]T]{
		Supplier: func() map[K][]T { return make(map[K][]T) },
		Accumulator: func(m map[K][]T, v T) map[K][]T {
			k := key(v)
			m[k] = append(m[k], v)
			return m
		},
	}
}

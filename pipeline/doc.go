// Package pipeline provides composable, pull-based iterator pipelines.
//
// Pipelines are lazy: no work happens until values are pulled from an
// iterator returned by Iter. Each stage pulls from the previous stage on
// demand, so a stage never computes a value nobody asked for. The reactive
// engines compile stream graphs into pipelines and drive them from
// subscription demand.
//
// # Operators
//
//   - Map, Tap, Filter, FlatMap: per-value transforms
//   - Limit, Skip, TakeWhile, DropWhile, Distinct: selection
//   - Concat: sequential, lazily started pipelines
//   - OnError, Recover, RecoverWith: failure observation and recovery
//   - OnTerminate, OnComplete: end-of-stream hooks
//
// Close on any iterator releases the whole upstream chain. Iterators that
// know they are at their end without pulling implement Finisher.
//
// # Usage
//
//	src := pipeline.FromSlice([]int{1, 2, 3, 4, 5})
//	doubled := pipeline.Map(src, func(_ context.Context, n int) (int, error) {
//	    return n * 2, nil
//	})
//	firstTwo := pipeline.Limit(doubled, 2)
//	results, _ := pipeline.Collect(ctx, firstTwo)
package pipeline

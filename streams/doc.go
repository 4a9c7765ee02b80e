// Package streams builds asynchronous, back-pressured streams out of
// sources, operators and sinks.
//
// Builders only describe a stream. Nothing runs until a terminal call such
// as Build or Run hands the description to an engine:
//
//	import _ "github.com/kbukum/reactive/engine/inproc"
//
//	f, err := streams.Reduce(
//	    streams.Of(1, 2, 3, 4).Filter(func(n int) bool { return n%2 == 0 }),
//	    0, func(acc, n int) int { return acc + n },
//	).Run(ctx)
//	if err != nil {
//	    return err // construction or engine resolution error
//	}
//	sum, err := f.Await(ctx)
//
// Every builder is immutable. Each call returns a new builder and leaves the
// receiver untouched, so a prefix can be shared by several streams and a
// finished builder can be run any number of times; each run is independent.
//
// # Builders
//
// The builder type follows the shape of the stream it describes:
//
//   - PublisherBuilder[T] has a source and produces T.
//   - ProcessorBuilder[T, R] has neither source nor sink; it consumes T and
//     produces R.
//   - SubscriberBuilder[T, R] consumes T and ends in a sink with result R.
//   - CompletionRunner[R] is complete and yields R when run.
//
// Operators that keep the element type are methods. Operators that change
// it are functions, because Go methods cannot declare type parameters.
// The processor variants carry a Then prefix (Map and ThenMap, Into and
// ThenInto).
//
// # Errors
//
// Misusing a builder never panics. The error is recorded in the returned
// builder, carried through every later call and reported by Err and by
// every terminal before an engine is touched. Failures while a stream runs
// are delivered through OnError or the result future.
package streams

package graph

import (
	"context"

	rserrors "github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/pipeline"
)

// Payload is the operator-specific part of a stage. The set of payloads is
// closed: only the types in this file implement it.
type Payload interface {
	kind() Kind
}

// Stage is an immutable description of one pipeline operation.
type Stage struct {
	kind    Kind
	payload Payload
}

// NewStage wraps a payload. The kind follows from the payload type.
func NewStage(p Payload) Stage {
	return Stage{kind: p.kind(), payload: p}
}

// Kind returns the stage kind.
func (s Stage) Kind() Kind { return s.kind }

// Payload returns the captured operator data. Engines type-switch on it.
func (s Stage) Payload() Payload { return s.payload }

func (s Stage) String() string { return s.kind.String() }

// checker is implemented by payloads with arguments or embedded graphs
// that can be checked while the graph is described.
type checker interface {
	check() error
}

// --- Sources ---

// Of emits Values in order and completes.
type Of struct{ Values []any }

// Empty completes immediately.
type Empty struct{}

// Failed fails immediately with Err.
type Failed struct{ Err error }

// FromPublisher forwards an existing publisher.
type FromPublisher struct{ Publisher flow.Publisher[any] }

// FromIterator pulls from the iterator returned by Open. Open is called once
// per subscription; one-shot sources fail on the second call.
type FromIterator struct {
	Open func(ctx context.Context) (pipeline.Iterator[any], error)
}

// FromCompletion emits the value of Future then completes. Without Nullable
// a nil value fails the stream; with Nullable it yields an empty stream.
type FromCompletion struct {
	Future   *future.Future[any]
	Nullable bool
}

// Iterate emits Seed, Next(Seed), Next(Next(Seed)), ... on demand.
type Iterate struct {
	Seed any
	Next func(any) (any, error)
}

// Generate emits Supply() on demand.
type Generate struct {
	Supply func() (any, error)
}

// Concat emits all of First, then all of Second. Both are publisher graphs.
type Concat struct{ First, Second *Graph }

// --- Transforms ---

// Map emits Fn(x) for every x.
type Map struct {
	Fn func(context.Context, any) (any, error)
}

// Peek calls Fn for every x and forwards x unchanged.
type Peek struct {
	Fn func(context.Context, any) error
}

// Filter forwards x when Pred(x) holds. A Pred error fails the stream.
type Filter struct{ Pred func(any) (bool, error) }

// FlatMap concatenates the publisher graphs returned by Fn.
type FlatMap struct {
	Fn func(any) (*Graph, error)
}

// FlatMapCompletion emits the value of each future returned by Fn, one at a time.
type FlatMapCompletion struct {
	Fn func(any) (*future.Future[any], error)
}

// FlatMapIterable emits every element of the slices returned by Fn.
type FlatMapIterable struct {
	Fn func(any) ([]any, error)
}

// Limit forwards at most N elements.
type Limit struct{ N int64 }

// Skip drops the first N elements.
type Skip struct{ N int64 }

// TakeWhile forwards elements until Pred fails, then completes.
type TakeWhile struct{ Pred func(any) (bool, error) }

// DropWhile drops elements until Pred fails, then forwards everything.
type DropWhile struct{ Pred func(any) (bool, error) }

// Distinct drops elements equal to an earlier one. Elements must be comparable.
type Distinct struct{}

// OnError observes a failure before it propagates.
type OnError struct{ Fn func(error) }

// OnErrorResume replaces a failure with a final element.
type OnErrorResume struct {
	Fn func(error) (any, error)
}

// OnErrorResumeWith replaces a failure with the publisher graph returned by Fn.
type OnErrorResumeWith struct {
	Fn func(error) (*Graph, error)
}

// OnTerminate runs Fn on completion, failure or cancellation.
type OnTerminate struct{ Fn func() }

// OnComplete runs Fn on normal completion.
type OnComplete struct{ Fn func() }

// Processor routes elements through an existing processor.
type Processor struct {
	Processor flow.Processor[any, any]
}

// Coupled feeds inbound elements into the Subscriber graph and emits the
// elements of the Publisher graph. Termination of either side cancels the other.
type Coupled struct {
	Subscriber *Graph
	Publisher  *Graph
}

// --- Sinks ---

// Collector folds a stream into one result.
type Collector struct {
	Supplier    func() any
	Accumulator func(acc, v any) (any, error)
	Finisher    func(acc any) (any, error)
}

// Collect folds every element with Collector.
type Collect struct{ Collector Collector }

// FindFirst yields the first element, or nothing for an empty stream.
// Engines report its result as a FirstResult.
type FindFirst struct{}

// FirstResult is the value a FindFirst sink completes with.
type FirstResult struct {
	Value any
	Found bool
}

// ForEach calls Fn for every element.
type ForEach struct {
	Fn func(context.Context, any) error
}

// Cancel cancels upstream immediately.
type Cancel struct{}

// ToSubscriber hands the stream to an existing subscriber.
type ToSubscriber struct {
	Subscriber flow.Subscriber[any]
}

func (Of) kind() Kind            { return KindOf }
func (Empty) kind() Kind         { return KindEmpty }
func (Failed) kind() Kind        { return KindFailed }
func (FromPublisher) kind() Kind { return KindFromPublisher }
func (FromIterator) kind() Kind  { return KindFromIterator }
func (p FromCompletion) kind() Kind {
	if p.Nullable {
		return KindFromCompletionNullable
	}
	return KindFromCompletion
}
func (Iterate) kind() Kind           { return KindIterate }
func (Generate) kind() Kind          { return KindGenerate }
func (Concat) kind() Kind            { return KindConcat }
func (Map) kind() Kind               { return KindMap }
func (Peek) kind() Kind              { return KindPeek }
func (Filter) kind() Kind            { return KindFilter }
func (FlatMap) kind() Kind           { return KindFlatMap }
func (FlatMapCompletion) kind() Kind { return KindFlatMapCompletion }
func (FlatMapIterable) kind() Kind   { return KindFlatMapIterable }
func (Limit) kind() Kind             { return KindLimit }
func (Skip) kind() Kind              { return KindSkip }
func (TakeWhile) kind() Kind         { return KindTakeWhile }
func (DropWhile) kind() Kind         { return KindDropWhile }
func (Distinct) kind() Kind          { return KindDistinct }
func (OnError) kind() Kind           { return KindOnError }
func (OnErrorResume) kind() Kind     { return KindOnErrorResume }
func (OnErrorResumeWith) kind() Kind { return KindOnErrorResumeWith }
func (OnTerminate) kind() Kind       { return KindOnTerminate }
func (OnComplete) kind() Kind        { return KindOnComplete }
func (Processor) kind() Kind         { return KindProcessor }
func (Coupled) kind() Kind           { return KindCoupled }
func (Collect) kind() Kind           { return KindCollect }
func (FindFirst) kind() Kind         { return KindFindFirst }
func (ForEach) kind() Kind           { return KindForEach }
func (Cancel) kind() Kind            { return KindCancel }
func (ToSubscriber) kind() Kind      { return KindToSubscriber }

func (p Limit) check() error {
	if p.N < 0 {
		return rserrors.InvalidArgument("limit", "n must not be negative")
	}
	return nil
}

func (p Skip) check() error {
	if p.N < 0 {
		return rserrors.InvalidArgument("skip", "n must not be negative")
	}
	return nil
}

func (p Concat) check() error {
	if p.First == nil || p.Second == nil {
		return rserrors.InvalidArgument("concat", "both graphs are required")
	}
	if err := p.First.Validate(ShapePublisher); err != nil {
		return err
	}
	return p.Second.Validate(ShapePublisher)
}

func (p Coupled) check() error {
	if p.Subscriber == nil || p.Publisher == nil {
		return rserrors.InvalidArgument("coupled", "both graphs are required")
	}
	if err := p.Subscriber.Validate(ShapeSubscriber); err != nil {
		return err
	}
	return p.Publisher.Validate(ShapePublisher)
}

package graph

import "fmt"

// Kind is the closed enumeration of stage kinds.
type Kind int

const (
	KindOf Kind = iota
	KindEmpty
	KindFailed
	KindFromPublisher
	KindFromIterator
	KindFromCompletion
	KindFromCompletionNullable
	KindIterate
	KindGenerate
	KindConcat
	KindMap
	KindPeek
	KindFilter
	KindFlatMap
	KindFlatMapCompletion
	KindFlatMapIterable
	KindLimit
	KindSkip
	KindTakeWhile
	KindDropWhile
	KindDistinct
	KindOnError
	KindOnErrorResume
	KindOnErrorResumeWith
	KindOnTerminate
	KindOnComplete
	KindProcessor
	KindCoupled
	KindCollect
	KindFindFirst
	KindForEach
	KindCancel
	KindToSubscriber

	kindCount
)

var kindNames = [kindCount]string{
	KindOf:                     "of",
	KindEmpty:                  "empty",
	KindFailed:                 "failed",
	KindFromPublisher:          "fromPublisher",
	KindFromIterator:           "fromIterator",
	KindFromCompletion:         "fromCompletion",
	KindFromCompletionNullable: "fromCompletionNullable",
	KindIterate:                "iterate",
	KindGenerate:               "generate",
	KindConcat:                 "concat",
	KindMap:                    "map",
	KindPeek:                   "peek",
	KindFilter:                 "filter",
	KindFlatMap:                "flatMap",
	KindFlatMapCompletion:      "flatMapCompletion",
	KindFlatMapIterable:        "flatMapIterable",
	KindLimit:                  "limit",
	KindSkip:                   "skip",
	KindTakeWhile:              "takeWhile",
	KindDropWhile:              "dropWhile",
	KindDistinct:               "distinct",
	KindOnError:                "onError",
	KindOnErrorResume:          "onErrorResume",
	KindOnErrorResumeWith:      "onErrorResumeWith",
	KindOnTerminate:            "onTerminate",
	KindOnComplete:             "onComplete",
	KindProcessor:              "processor",
	KindCoupled:                "coupled",
	KindCollect:                "collect",
	KindFindFirst:              "findFirst",
	KindForEach:                "forEach",
	KindCancel:                 "cancel",
	KindToSubscriber:           "toSubscriber",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Role is the position a kind may take in a graph.
type Role int

const (
	// RoleSource stages start a graph and have no input.
	RoleSource Role = iota
	// RoleTransform stages have one input and one output.
	RoleTransform
	// RoleSink stages end a graph and have no output.
	RoleSink
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleTransform:
		return "transform"
	case RoleSink:
		return "sink"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Role classifies the kind. Coupled counts as a transform: it is the sink of
// its inbound segment and the source of its outbound one.
func (k Kind) Role() Role {
	switch k {
	case KindOf, KindEmpty, KindFailed, KindFromPublisher, KindFromIterator,
		KindFromCompletion, KindFromCompletionNullable, KindIterate, KindGenerate, KindConcat:
		return RoleSource
	case KindCollect, KindFindFirst, KindForEach, KindCancel, KindToSubscriber:
		return RoleSink
	default:
		return RoleTransform
	}
}

package graph

import (
	"fmt"

	rserrors "github.com/kbukum/reactive/errors"
)

// Shape constrains which stage kinds may appear at the ends of a graph.
type Shape int

const (
	// ShapePublisher graphs start with a source and have no sink.
	ShapePublisher Shape = iota
	// ShapeProcessor graphs hold transforms only.
	ShapeProcessor
	// ShapeSubscriber graphs end with a sink and have no source.
	ShapeSubscriber
	// ShapeClosed graphs have a source and a sink and cannot be extended.
	ShapeClosed
)

func (s Shape) String() string {
	switch s {
	case ShapePublisher:
		return "publisher"
	case ShapeProcessor:
		return "processor"
	case ShapeSubscriber:
		return "subscriber"
	case ShapeClosed:
		return "closed"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

func (s Shape) hasSource() bool { return s == ShapePublisher || s == ShapeClosed }
func (s Shape) hasSink() bool   { return s == ShapeSubscriber || s == ShapeClosed }

// node is one cell of the persistent stage list, linked from tail to head.
// Cells are never modified after creation, so graphs share prefixes freely.
type node struct {
	stage Stage
	prev  *node
}

// Graph is an ordered, shape-tagged sequence of stages. A Graph is immutable:
// every extension returns a new Graph that shares the receiver's stages.
type Graph struct {
	shape Shape
	tail  *node
	size  int
}

// NewPublisher starts a publisher graph with a source stage.
func NewPublisher(source Stage) (*Graph, error) {
	if source.Kind().Role() != RoleSource {
		return nil, newIllegalShape(source.Kind(), ShapePublisher, "a publisher graph must start with a source stage")
	}
	if err := checkPayload(source); err != nil {
		return nil, err
	}
	return &Graph{shape: ShapePublisher, tail: &node{stage: source}, size: 1}, nil
}

// NewProcessor returns the identity processor graph.
func NewProcessor() *Graph {
	return &Graph{shape: ShapeProcessor}
}

// Shape returns the graph shape.
func (g *Graph) Shape() Shape { return g.shape }

// Len returns the number of stages.
func (g *Graph) Len() int { return g.size }

// Stages returns the stages head first, in execution order.
func (g *Graph) Stages() []Stage {
	stages := make([]Stage, g.size)
	i := g.size - 1
	for n := g.tail; n != nil; n = n.prev {
		stages[i] = n.stage
		i--
	}
	return stages
}

// Append returns a new graph with stage added at the tail. Transforms keep
// the shape; a sink turns a publisher graph into a closed graph and a
// processor graph into a subscriber graph.
func (g *Graph) Append(stage Stage) (*Graph, error) {
	kind := stage.Kind()
	switch kind.Role() {
	case RoleSource:
		if g.shape.hasSource() {
			return nil, newIllegalShape(kind, g.shape, "graph already has a source")
		}
		return nil, newIllegalShape(kind, g.shape, "a source can only start a publisher graph")
	case RoleSink:
		if g.shape.hasSink() {
			return nil, newIllegalShape(kind, g.shape, "graph already has a sink")
		}
	default:
		if g.shape.hasSink() {
			return nil, newIllegalShape(kind, g.shape, "graph is terminated by a sink")
		}
	}
	if err := checkPayload(stage); err != nil {
		return nil, err
	}
	return &Graph{
		shape: g.shape.after(kind.Role()),
		tail:  &node{stage: stage, prev: g.tail},
		size:  g.size + 1,
	}, nil
}

// Then returns a new graph with the stages of next appended. next must be a
// processor or subscriber graph: a processor adds only its transforms, a
// subscriber also adds its sink.
func (g *Graph) Then(next *Graph) (*Graph, error) {
	if next.shape.hasSource() {
		return nil, &IllegalShapeError{Shape: g.shape, Stage: next.headKind(), Reason: fmt.Sprintf("cannot compose a %s graph downstream", next.shape)}
	}
	out := g
	for _, st := range next.Stages() {
		var err error
		if out, err = out.Append(st); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s Shape) after(r Role) Shape {
	if r != RoleSink {
		return s
	}
	if s == ShapePublisher {
		return ShapeClosed
	}
	return ShapeSubscriber
}

func (g *Graph) headKind() Kind {
	n := g.tail
	for n != nil && n.prev != nil {
		n = n.prev
	}
	if n == nil {
		return KindMap
	}
	return n.stage.Kind()
}

// Validate checks every structural invariant against the expected shape.
// Graphs built through NewPublisher, NewProcessor, Append and Then always
// pass; engines call it to reject graphs of the wrong shape.
func (g *Graph) Validate(expected Shape) error {
	if g == nil {
		return rserrors.InvalidArgument("graph", "graph is nil")
	}
	if g.shape != expected {
		return &IllegalShapeError{Shape: g.shape, Stage: g.headKind(), Reason: fmt.Sprintf("expected a %s graph", expected)}
	}
	stages := g.Stages()
	for i, st := range stages {
		role := st.Kind().Role()
		first, last := i == 0, i == len(stages)-1
		switch {
		case role == RoleSource && !(first && expected.hasSource()):
			return newIllegalShape(st.Kind(), expected, "source stage out of place")
		case role == RoleSink && !(last && expected.hasSink()):
			return newIllegalShape(st.Kind(), expected, "sink stage out of place")
		}
	}
	if expected.hasSource() && (len(stages) == 0 || stages[0].Kind().Role() != RoleSource) {
		return &IllegalShapeError{Shape: expected, Stage: g.headKind(), Reason: "missing source stage"}
	}
	if expected.hasSink() && (len(stages) == 0 || stages[len(stages)-1].Kind().Role() != RoleSink) {
		return &IllegalShapeError{Shape: expected, Stage: g.headKind(), Reason: "missing sink stage"}
	}
	return nil
}

func (g *Graph) String() string {
	return fmt.Sprintf("%s%v", g.shape, g.Stages())
}

func checkPayload(st Stage) error {
	if st.payload == nil {
		return rserrors.InvalidArgument(st.Kind().String(), "stage has no payload")
	}
	if c, ok := st.payload.(checker); ok {
		return c.check()
	}
	return nil
}

// IllegalShapeError reports a stage that cannot be placed in a graph of
// the given shape. It matches errors.ErrIllegalShape with errors.Is.
type IllegalShapeError struct {
	Stage  Kind
	Shape  Shape
	Reason string
}

func newIllegalShape(stage Kind, shape Shape, reason string) *IllegalShapeError {
	return &IllegalShapeError{Stage: stage, Shape: shape, Reason: reason}
}

func (e *IllegalShapeError) Error() string {
	return fmt.Sprintf("illegal shape: cannot add %s stage to %s graph: %s", e.Stage, e.Shape, e.Reason)
}

// Unwrap exposes the equivalent coded error.
func (e *IllegalShapeError) Unwrap() error {
	return rserrors.IllegalShape(e.Stage.String(), e.Shape.String(), e.Reason)
}

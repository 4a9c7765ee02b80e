package streams

import (
	"github.com/kbukum/reactive/engine"
	rserrors "github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/graph"
)

// chain is the state shared by every builder: the graph described so far
// and the first construction error, if any.
type chain struct {
	graph *graph.Graph
	err   error
}

func failed(err error) chain { return chain{err: err} }

func newSource(p graph.Payload) chain {
	g, err := graph.NewPublisher(graph.NewStage(p))
	return chain{graph: g, err: err}
}

func newProcessor(p graph.Payload) chain {
	return chain{graph: graph.NewProcessor()}.append(p)
}

// append adds a stage. Once the chain holds an error it stays unchanged.
func (c chain) append(p graph.Payload) chain {
	if c.err != nil {
		return c
	}
	g, err := c.graph.Append(graph.NewStage(p))
	if err != nil {
		return failed(err)
	}
	return chain{graph: g}
}

// then composes a processor or subscriber chain after c.
func (c chain) then(next chain) chain {
	if c.err != nil {
		return c
	}
	if next.err != nil {
		return next
	}
	g, err := c.graph.Then(next.graph)
	if err != nil {
		return failed(err)
	}
	return chain{graph: g}
}

// check records err unless the chain already failed.
func (c chain) check(err error) chain {
	if c.err != nil || err == nil {
		return c
	}
	return failed(err)
}

func (c chain) result() (*graph.Graph, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.graph, nil
}

// resolve returns e, or the process-wide default engine when e is nil.
func resolve(e engine.Engine) (engine.Engine, error) {
	if e != nil {
		return e, nil
	}
	return engine.Default()
}

func nilFunc(op string) error {
	return rserrors.InvalidArgument(op, "function must not be nil")
}

func nilArg(op, what string) error {
	return rserrors.InvalidArgument(op, what+" must not be nil")
}

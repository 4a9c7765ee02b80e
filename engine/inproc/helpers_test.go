package inproc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/graph"
	"github.com/kbukum/reactive/testutil"
)

func newTestEngine(t *testing.T, prefetch int) *Engine {
	t.Helper()
	e, err := New(Config{Prefetch: prefetch})
	require.NoError(t, err)
	return e
}

func publisherGraph(t *testing.T, source graph.Payload, transforms ...graph.Payload) *graph.Graph {
	t.Helper()
	g, err := graph.NewPublisher(graph.NewStage(source))
	require.NoError(t, err)
	for _, p := range transforms {
		g, err = g.Append(graph.NewStage(p))
		require.NoError(t, err)
	}
	return g
}

func processorGraph(t *testing.T, stages ...graph.Payload) *graph.Graph {
	t.Helper()
	g := graph.NewProcessor()
	for _, p := range stages {
		var err error
		g, err = g.Append(graph.NewStage(p))
		require.NoError(t, err)
	}
	return g
}

func closedGraph(t *testing.T, g *graph.Graph, sink graph.Payload) *graph.Graph {
	t.Helper()
	closed, err := g.Append(graph.NewStage(sink))
	require.NoError(t, err)
	return closed
}

func toList() graph.Payload {
	return graph.Collect{Collector: graph.Collector{
		Supplier: func() any { return []any{} },
		Accumulator: func(acc, v any) (any, error) {
			return append(acc.([]any), v), nil
		},
	}}
}

func of(values ...any) graph.Payload { return graph.Of{Values: values} }

func fromPublisher[T any](p flow.Publisher[T]) graph.Payload {
	return graph.FromPublisher{Publisher: flow.Erase(p)}
}

func double() graph.Payload {
	return graph.Map{Fn: func(_ context.Context, v any) (any, error) { return v.(int) * 2, nil }}
}

func run(t *testing.T, e *Engine, g *graph.Graph) (any, error) {
	t.Helper()
	f, err := e.Run(context.Background(), g)
	require.NoError(t, err)
	return testutil.Await(t, f)
}

// runList runs source plus transforms into a list sink.
func runList(t *testing.T, e *Engine, source graph.Payload, transforms ...graph.Payload) ([]any, error) {
	t.Helper()
	v, err := run(t, e, closedGraph(t, publisherGraph(t, source, transforms...), toList()))
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

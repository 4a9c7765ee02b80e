package streams_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/reactive/engine/inproc"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/streams"
	"github.com/kbukum/reactive/testutil"
)

type flowPublisher = flow.Publisher[int]

func newEngine(t *testing.T) *inproc.Engine {
	t.Helper()
	e, err := inproc.New(inproc.Config{Prefetch: 2})
	require.NoError(t, err)
	return e
}

// run runs r on a fresh engine and waits for its result.
func run[R any](t *testing.T, r *streams.CompletionRunner[R]) (R, error) {
	t.Helper()
	f, err := r.RunWith(context.Background(), newEngine(t))
	require.NoError(t, err)
	return testutil.Await(t, f)
}

func list[T any](t *testing.T, b *streams.PublisherBuilder[T]) []T {
	t.Helper()
	v, err := run(t, b.ToList())
	require.NoError(t, err)
	return v
}

func double(_ context.Context, v int) (int, error) { return v * 2, nil }

func odd(v int) bool { return v%2 == 1 }

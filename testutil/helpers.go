package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
)

// DefaultTimeout bounds every wait performed by this package.
const DefaultTimeout = 5 * time.Second

// Unbounded requests effectively infinite demand.
const Unbounded = flow.Unbounded

// Await waits for f to settle and returns its outcome. The test fails if f
// does not settle within DefaultTimeout.
func Await[T any](tb testing.TB, f *future.Future[T]) (T, error) {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	select {
	case <-f.Done():
	case <-ctx.Done():
		tb.Fatalf("future did not settle within %s", DefaultTimeout)
	}
	v, err, _ := f.Result()
	return v, err
}

// Context returns a context cancelled when the test ends.
func Context(tb testing.TB) context.Context {
	tb.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)
	return ctx
}

func wait(tb testing.TB, ch <-chan struct{}, what string) {
	tb.Helper()
	select {
	case <-ch:
	case <-time.After(DefaultTimeout):
		tb.Fatalf("timed out after %s waiting for %s", DefaultTimeout, what)
	}
}

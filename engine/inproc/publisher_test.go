package inproc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rserrors "github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/graph"
	"github.com/kbukum/reactive/pipeline"
	"github.com/kbukum/reactive/testutil"
)

func TestPublisher_EmitsOnlyOnDemand(t *testing.T) {
	e := newTestEngine(t, 0)
	var calls atomic.Int64
	pub, err := e.BuildPublisher(publisherGraph(t, graph.Generate{Supply: func() (any, error) {
		return calls.Add(1), nil
	}}))
	require.NoError(t, err)

	sub := testutil.NewSubscriber[any](0)
	pub.Subscribe(sub)
	sub.AwaitSubscribed(t)
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, calls.Load())

	sub.Request(2)
	require.Eventually(t, func() bool { return len(sub.Values()) == 2 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, []any{int64(1), int64(2)}, sub.Values())
	assert.Equal(t, int64(2), calls.Load())

	sub.Cancel()
	assert.Empty(t, sub.Violations())
}

func TestPublisher_TerminalWithoutDemand(t *testing.T) {
	e := newTestEngine(t, 0)
	for _, g := range []*graph.Graph{
		publisherGraph(t, graph.Empty{}),
		publisherGraph(t, graph.Failed{Err: errors.New("boom")}),
		publisherGraph(t, of(1, 2), graph.Limit{N: 0}),
	} {
		pub, err := e.BuildPublisher(g)
		require.NoError(t, err)
		sub := testutil.NewSubscriber[any](0)
		pub.Subscribe(sub)
		sub.Await(t)
		assert.Empty(t, sub.Values())
		assert.Empty(t, sub.Violations())
	}
}

func TestPublisher_SignalsAreSerial(t *testing.T) {
	e := newTestEngine(t, 4)
	src := testutil.NewPublisher[any](1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	pub, err := e.BuildPublisher(publisherGraph(t, fromPublisher(src), double()))
	require.NoError(t, err)

	sub := testutil.NewSubscriber[any](1)
	pub.Subscribe(sub)
	for i := 1; i < 10; i++ {
		go sub.Request(1)
	}
	sub.Request(1)
	sub.Await(t)
	assert.Equal(t, []any{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}, sub.Values())
	assert.True(t, sub.Completed())
	assert.Empty(t, sub.Violations())
}

func TestPublisher_NonPositiveRequest(t *testing.T) {
	e := newTestEngine(t, 0)
	pub, err := e.BuildPublisher(publisherGraph(t, of(1, 2, 3)))
	require.NoError(t, err)

	for _, n := range []int64{0, -1} {
		sub := testutil.NewSubscriber[any](0)
		pub.Subscribe(sub)
		sub.Request(n)
		sub.Await(t)
		assert.ErrorIs(t, sub.Err(), rserrors.ErrContractViolation)
		assert.Empty(t, sub.Values())
	}
}

func TestPublisher_CancelReleasesUpstream(t *testing.T) {
	e := newTestEngine(t, 0)
	released := make(chan struct{})
	pub, err := e.BuildPublisher(publisherGraph(t,
		graph.Generate{Supply: func() (any, error) { return 1, nil }},
		graph.OnTerminate{Fn: func() { close(released) }},
	))
	require.NoError(t, err)

	sub := testutil.NewSubscriber[any](3)
	pub.Subscribe(sub)
	require.Eventually(t, func() bool { return len(sub.Values()) == 3 }, time.Second, time.Millisecond)
	sub.Cancel()

	select {
	case <-released:
	case <-time.After(testutil.DefaultTimeout):
		t.Fatal("upstream was not released")
	}
	sub.Request(10)
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, sub.Values(), 3)
	assert.NotContains(t, sub.Signals(), "complete")
	assert.Empty(t, sub.Violations())
}

func TestPublisher_Resubscribable(t *testing.T) {
	e := newTestEngine(t, 0)
	pub, err := e.BuildPublisher(publisherGraph(t, of(1, 2, 3), double()))
	require.NoError(t, err)

	first := testutil.NewSubscriber[any](testutil.Unbounded)
	second := testutil.NewSubscriber[any](testutil.Unbounded)
	pub.Subscribe(first)
	pub.Subscribe(second)
	first.Await(t)
	second.Await(t)
	assert.Equal(t, []any{2, 4, 6}, first.Values())
	assert.Equal(t, []any{2, 4, 6}, second.Values())
}

func TestPublisher_OneShotSource(t *testing.T) {
	e := newTestEngine(t, 0)
	var opened atomic.Bool
	pub, err := e.BuildPublisher(publisherGraph(t, graph.FromIterator{Open: func(ctx context.Context) (pipeline.Iterator[any], error) {
		if opened.Swap(true) {
			return nil, rserrors.ContractViolation("iterator already consumed")
		}
		return pipeline.FromSlice([]any{1}).Iter(ctx), nil
	}}))
	require.NoError(t, err)

	first := testutil.NewSubscriber[any](testutil.Unbounded)
	pub.Subscribe(first)
	first.Await(t)
	assert.Equal(t, []any{1}, first.Values())

	second := testutil.NewSubscriber[any](testutil.Unbounded)
	pub.Subscribe(second)
	second.Await(t)
	assert.ErrorIs(t, second.Err(), rserrors.ErrContractViolation)
}

func TestPublisher_PanickingSubscriberCancels(t *testing.T) {
	e := newTestEngine(t, 2)
	src := testutil.NewPublisher[any](1, 2, 3, 4, 5)
	pub, err := e.BuildPublisher(publisherGraph(t, fromPublisher(src)))
	require.NoError(t, err)

	var sub flow.Subscription
	pub.Subscribe(&flow.SubscriberFuncs[any]{
		Subscribe: func(s flow.Subscription) {
			sub = s
			s.Request(5)
		},
		Next: func(any) { panic("subscriber bug") },
	})
	require.NotNil(t, sub)
	require.Eventually(t, src.Cancelled, time.Second, time.Millisecond)
}

func TestPublisher_PanickingOnSubscribeCancels(t *testing.T) {
	e := newTestEngine(t, 2)
	src := testutil.NewPublisher[any](1, 2, 3)
	pub, err := e.BuildPublisher(publisherGraph(t, fromPublisher(src)))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		pub.Subscribe(&flow.SubscriberFuncs[any]{
			Subscribe: func(flow.Subscription) { panic("subscriber bug") },
		})
	})
	assert.Zero(t, src.Subscribed())

	sub := testutil.NewSubscriber[any](testutil.Unbounded)
	pub.Subscribe(sub)
	sub.Await(t)
	assert.Equal(t, []any{1, 2, 3}, sub.Values())
}

package streams_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/reactive/engine"
	rserrors "github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
	"github.com/kbukum/reactive/pipeline"
	"github.com/kbukum/reactive/streams"
	"github.com/kbukum/reactive/testutil"
)

func TestOf_RoundTrip(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, list(t, streams.Of(1, 2, 3)))
}

func TestToList_EmptyIsNotNil(t *testing.T) {
	got := list(t, streams.Empty[string]())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestOperators(t *testing.T) {
	src := func() *streams.PublisherBuilder[int] { return streams.Of(1, 2, 3, 4, 5, 2, 1) }
	tests := []struct {
		name string
		b    *streams.PublisherBuilder[int]
		want []int
	}{
		{name: "map", b: streams.Map(streams.Of(1, 2, 3), double), want: []int{2, 4, 6}},
		{name: "filter", b: src().Filter(odd), want: []int{1, 3, 5, 1}},
		{name: "limit", b: src().Limit(3), want: []int{1, 2, 3}},
		{name: "limit zero", b: src().Limit(0), want: []int{}},
		{name: "skip", b: src().Skip(4), want: []int{5, 2, 1}},
		{name: "skip past end", b: src().Skip(10), want: []int{}},
		{name: "takeWhile", b: src().TakeWhile(func(v int) bool { return v < 3 }), want: []int{1, 2}},
		{name: "dropWhile", b: src().DropWhile(func(v int) bool { return v < 3 }), want: []int{3, 4, 5, 2, 1}},
		{name: "distinct", b: src().Distinct(), want: []int{1, 2, 3, 4, 5}},
		{
			name: "flatMap",
			b:    streams.FlatMap(streams.Of(1, 2), func(v int) *streams.PublisherBuilder[int] { return streams.Of(v, v*10) }),
			want: []int{1, 10, 2, 20},
		},
		{
			name: "flatMapIterable",
			b:    streams.FlatMapIterable(streams.Of(1, 2, 3), func(v int) []int { return slices.Repeat([]int{v}, v) }),
			want: []int{1, 2, 2, 3, 3, 3},
		},
		{
			name: "flatMapCompletion",
			b:    streams.FlatMapCompletion(streams.Of(1, 2), func(v int) *future.Future[int] { return future.Resolved(v + 100) }),
			want: []int{101, 102},
		},
		{
			name: "flatMapPublisher",
			b: streams.FlatMapPublisher(streams.Of(3), func(v int) flowPublisher {
				return testutil.NewPublisher(v, v)
			}),
			want: []int{3, 3},
		},
		{name: "concat", b: streams.Concat(streams.Of(1, 2), streams.Of(3)), want: []int{1, 2, 3}},
		{name: "iterate", b: streams.Iterate(1, func(v int) int { return v * 2 }).Limit(5), want: []int{1, 2, 4, 8, 16}},
		{name: "fromSlice", b: streams.FromSlice([]int{7, 8}), want: []int{7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.b.Err())
			assert.Equal(t, tt.want, list(t, tt.b))
		})
	}
}

func TestGenerate(t *testing.T) {
	var n atomic.Int64
	got := list(t, streams.Generate(func() int64 { return n.Add(1) }).Limit(3))
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestMap_ChangesType(t *testing.T) {
	b := streams.Map(streams.Of(1, 2), func(_ context.Context, v int) (string, error) {
		return strconv.Itoa(v), nil
	})
	assert.Equal(t, []string{"1", "2"}, list(t, b))
}

func TestLimit_CancelsUpstream(t *testing.T) {
	pub := testutil.NewPublisher(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	assert.Equal(t, []int{1, 2}, list(t, streams.FromPublisher(pub).Limit(2)))
	assert.True(t, pub.Cancelled())
}

func TestFindFirst(t *testing.T) {
	got, err := run(t, streams.Of(4, 5).FindFirst())
	require.NoError(t, err)
	v, ok := got.Get()
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	got, err = run(t, streams.Empty[int]().FindFirst())
	require.NoError(t, err)
	assert.False(t, got.IsPresent())
}

func TestFindFirst_CancelsUpstream(t *testing.T) {
	pub := testutil.NewPublisher("a", "b", "c", "d", "e", "f")
	got, err := run(t, streams.FromPublisher(pub).FindFirst())
	require.NoError(t, err)
	assert.Equal(t, "a", got.OrElse(""))
	assert.True(t, pub.Cancelled())
}

func TestCollect(t *testing.T) {
	sum, err := run(t, streams.Reduce(streams.Of(1, 2, 3), 10, func(acc, v int) int { return acc + v }))
	require.NoError(t, err)
	assert.Equal(t, 16, sum)

	n, err := run(t, streams.Collect(streams.Of("a", "b"), streams.Counting[string]()))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	groups, err := run(t, streams.Collect(streams.Of(1, 2, 3, 4), streams.GroupingBy(odd)))
	require.NoError(t, err)
	assert.Equal(t, map[bool][]int{true: {1, 3}, false: {2, 4}}, groups)

	joined, err := run(t, streams.Collect(streams.Of("x", "y"), streams.Collector[string, []string, string]{
		Supplier:    func() []string { return nil },
		Accumulator: func(acc []string, v string) []string { return append(acc, v) },
		Finisher:    func(acc []string) string { return fmt.Sprint(acc) },
	}))
	require.NoError(t, err)
	assert.Equal(t, "[x y]", joined)
}

func TestForEach(t *testing.T) {
	var seen []int
	_, err := run(t, streams.Of(1, 2, 3).ForEach(func(_ context.Context, v int) error {
		seen = append(seen, v)
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestCancelSink(t *testing.T) {
	pub := testutil.NewPublisher(1, 2, 3)
	_, err := run(t, streams.FromPublisher(pub).Cancel())
	require.NoError(t, err)
	assert.True(t, pub.Cancelled())
	assert.Zero(t, pub.Emitted())
}

func TestIgnore_ReportsFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := run(t, streams.Failed[int](boom).Ignore())
	assert.ErrorIs(t, err, boom)
}

func TestFailures(t *testing.T) {
	boom := errors.New("boom")
	failing := func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	}

	t.Run("map error fails the stream", func(t *testing.T) {
		_, err := run(t, streams.Map(streams.Of(1, 2, 3), failing).ToList())
		assert.ErrorIs(t, err, boom)
	})
	t.Run("peek error fails the stream", func(t *testing.T) {
		_, err := run(t, streams.Of(1, 2).Peek(func(context.Context, int) error { return boom }).ToList())
		assert.ErrorIs(t, err, boom)
	})
	t.Run("null element", func(t *testing.T) {
		_, err := run(t, streams.Of[*int](nil).ToList())
		assert.ErrorIs(t, err, rserrors.ErrNullValue)
	})
	t.Run("onErrorResume", func(t *testing.T) {
		got := list(t, streams.Map(streams.Of(1, 2, 3), failing).OnErrorResume(func(error) int { return -1 }))
		assert.Equal(t, []int{1, -1}, got)
	})
	t.Run("onErrorResumeWith", func(t *testing.T) {
		got := list(t, streams.Map(streams.Of(1, 2, 3), failing).OnErrorResumeWith(func(error) *streams.PublisherBuilder[int] {
			return streams.Of(8, 9)
		}))
		assert.Equal(t, []int{1, 8, 9}, got)
	})
	t.Run("onErrorResumeWithPublisher", func(t *testing.T) {
		got := list(t, streams.Failed[int](boom).OnErrorResumeWithPublisher(func(error) flowPublisher {
			return testutil.NewPublisher(5)
		}))
		assert.Equal(t, []int{5}, got)
	})
	t.Run("onError observes", func(t *testing.T) {
		var seen error
		_, err := run(t, streams.Failed[int](boom).OnError(func(err error) { seen = err }).ToList())
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, seen, boom)
	})
	t.Run("flatMap returning nil", func(t *testing.T) {
		_, err := run(t, streams.FlatMap(streams.Of(1), func(int) *streams.PublisherBuilder[int] { return nil }).ToList())
		assert.ErrorIs(t, err, rserrors.ErrNullValue)
	})
}

func TestHooks(t *testing.T) {
	var terminated, completed atomic.Int32
	got := list(t, streams.Of(1, 2).
		OnTerminate(func() { terminated.Add(1) }).
		OnComplete(func() { completed.Add(1) }))
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, int32(1), terminated.Load())
	assert.Equal(t, int32(1), completed.Load())

	_, err := run(t, streams.Failed[int](errors.New("x")).
		OnTerminate(func() { terminated.Add(1) }).
		OnComplete(func() { completed.Add(1) }).
		ToList())
	require.Error(t, err)
	assert.Equal(t, int32(2), terminated.Load())
	assert.Equal(t, int32(1), completed.Load())
}

func TestNullable(t *testing.T) {
	assert.Empty(t, list(t, streams.OfNullable[*int](nil)))
	v := 3
	assert.Equal(t, []*int{&v}, list(t, streams.OfNullable(&v)))

	_, err := run(t, streams.FromCompletion(future.Resolved[*int](nil)).ToList())
	assert.ErrorIs(t, err, rserrors.ErrNullValue)
	assert.Empty(t, list(t, streams.FromCompletionNullable(future.Resolved[*int](nil))))
	assert.Equal(t, []int{4}, list(t, streams.FromCompletion(future.Resolved(4))))
}

func TestFromSeq_Resubscribable(t *testing.T) {
	b := streams.FromSeq(slices.Values([]int{1, 2}))
	assert.Equal(t, []int{1, 2}, list(t, b))
	assert.Equal(t, []int{1, 2}, list(t, b))
}

func TestFromIterator_OneShot(t *testing.T) {
	ctx := testutil.Context(t)
	b := streams.FromIterator(pipeline.FromSlice([]int{1, 2}).Iter(ctx))
	assert.Equal(t, []int{1, 2}, list(t, b))

	_, err := run(t, b.ToList())
	assert.ErrorIs(t, err, rserrors.ErrContractViolation)
}

func TestStickyErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "nil map", err: streams.Map[int, int](streams.Of(1), nil).Filter(odd).Err()},
		{name: "nil filter", err: streams.Of(1).Filter(nil).Limit(1).Err()},
		{name: "negative limit", err: streams.Of(1).Limit(-1).Err()},
		{name: "negative skip", err: streams.Of(1).Skip(-1).Err()},
		{name: "failed nil", err: streams.Failed[int](nil).Err()},
		{name: "nil publisher", err: streams.FromPublisher[int](nil).Err()},
		{name: "nil iterator", err: streams.FromIterator[int](nil).Err()},
		{name: "nil seq", err: streams.FromSeq[int](nil).Err()},
		{name: "nil future", err: streams.FromCompletion[int](nil).Err()},
		{name: "nil concat side", err: streams.Concat(streams.Of(1), nil).Err()},
		{name: "nil forEach", err: streams.Of(1).ForEach(nil).Err()},
		{name: "nil subscriber", err: streams.Of(1).To(nil).Err()},
		{name: "nil collector", err: streams.Collect(streams.Of(1), streams.Collector[int, int, int]{}).Err()},
		{name: "nil via", err: streams.Via[int, int](streams.Of(1), nil).Err()},
		{name: "processor nil map", err: streams.ThenMap[int, int, int](streams.Builder[int](), nil).Err()},
		{name: "processor nil forEach", err: streams.Builder[int]().ForEach(nil).Err()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.True(t, rserrors.IsProgrammerCode(rserrors.CodeOf(tt.err)), "code %s", rserrors.CodeOf(tt.err))
		})
	}
}

func TestStickyErrors_FirstWins(t *testing.T) {
	b := streams.Of(1).Filter(nil).Peek(nil).Limit(-1)
	assert.ErrorIs(t, b.Err(), rserrors.ErrInvalidArgument)
	assert.Contains(t, b.Err().Error(), "filter")

	_, err := b.ToList().RunWith(context.Background(), newEngine(t))
	assert.ErrorIs(t, err, rserrors.ErrInvalidArgument)

	_, err = b.BuildWith(newEngine(t))
	assert.ErrorIs(t, err, rserrors.ErrInvalidArgument)

	_, err = b.Graph()
	assert.ErrorIs(t, err, rserrors.ErrInvalidArgument)
}

func TestBuild_PublisherIsReusable(t *testing.T) {
	pub, err := streams.Map(streams.Of(1, 2), double).BuildWith(newEngine(t))
	require.NoError(t, err)
	for range 2 {
		sub := testutil.NewSubscriber[int](testutil.Unbounded)
		pub.Subscribe(sub)
		sub.Await(t)
		assert.Equal(t, []int{2, 4}, sub.Values())
		assert.True(t, sub.Completed())
		assert.Empty(t, sub.Violations())
	}
}

func TestRun_Concurrent(t *testing.T) {
	e := newEngine(t)
	r := streams.Map(streams.Of(1, 2, 3), double).Filter(func(v int) bool { return v > 2 }).ToList()
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			f, err := r.RunWith(context.Background(), e)
			if err != nil {
				return err
			}
			v, err := f.Await(context.Background())
			if err != nil {
				return err
			}
			if !slices.Equal(v, []int{4, 6}) {
				return fmt.Errorf("unexpected result %v", v)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f, err := streams.Generate(func() int { return 1 }).ForEach(func(context.Context, int) error {
		cancel()
		return nil
	}).RunWith(ctx, newEngine(t))
	require.NoError(t, err)
	_, err = testutil.Await(t, f)
	assert.ErrorIs(t, err, rserrors.ErrCancelled)
}

func TestRun_DefaultEngine(t *testing.T) {
	engine.SetDefault(newEngine(t))
	t.Cleanup(engine.Reset)

	f, err := streams.Of(1, 2).ToList().Run(context.Background())
	require.NoError(t, err)
	got, err := testutil.Await(t, f)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestTo(t *testing.T) {
	sub := testutil.NewSubscriber[int](testutil.Unbounded)
	_, err := run(t, streams.Of(1, 2).To(sub))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.True(t, sub.Completed())
}

func TestTo_SubscriberCancels(t *testing.T) {
	sub := testutil.NewSubscriber[int](0)
	f, err := streams.Iterate(0, func(v int) int { return v + 1 }).To(sub).RunWith(context.Background(), newEngine(t))
	require.NoError(t, err)
	sub.AwaitSubscribed(t)
	sub.Cancel()
	_, err = testutil.Await(t, f)
	assert.ErrorIs(t, err, rserrors.ErrCancelled)
}

func TestTo_SubscriberPanics(t *testing.T) {
	_, err := run(t, streams.Of(1, 2, 3).To(&flow.SubscriberFuncs[int]{
		Subscribe: func(s flow.Subscription) { s.Request(3) },
		Next:      func(int) { panic("bad subscriber") },
	}))
	assert.ErrorIs(t, err, rserrors.ErrStreamFailure)

	_, err = run(t, streams.Of(1).To(&flow.SubscriberFuncs[int]{
		Subscribe: func(flow.Subscription) { panic("bad subscriber") },
	}))
	assert.ErrorIs(t, err, rserrors.ErrStreamFailure)
}

func TestTo_RunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := testutil.NewSubscriber[int](0)
	f, err := streams.Of(1, 2, 3).To(sub).RunWith(ctx, newEngine(t))
	require.NoError(t, err)
	sub.AwaitSubscribed(t)
	cancel()

	_, err = testutil.Await(t, f)
	assert.ErrorIs(t, err, rserrors.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	sub.Await(t)
	assert.ErrorIs(t, sub.Err(), rserrors.ErrCancelled)
	assert.Empty(t, sub.Values())
}

package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_EmitsOnDemand(t *testing.T) {
	pub := NewPublisher(1, 2, 3)
	sub := NewSubscriber[int](0)
	pub.Subscribe(sub)
	sub.AwaitSubscribed(t)

	assert.Empty(t, sub.Values())
	sub.Request(2)
	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.False(t, sub.Completed())

	sub.Request(1)
	sub.Await(t)
	assert.Equal(t, []int{1, 2, 3}, sub.Values())
	assert.True(t, sub.Completed())
	assert.Equal(t, []string{"next(1)", "next(2)", "next(3)", "complete"}, sub.Signals())
	assert.Empty(t, sub.Violations())
	assert.Equal(t, int64(3), pub.Probes()[0].Requested())
}

func TestPublisher_EmptyCompletesWithoutDemand(t *testing.T) {
	pub := NewPublisher[int]()
	sub := NewSubscriber[int](0)
	pub.Subscribe(sub)
	sub.Await(t)
	assert.True(t, sub.Completed())
}

func TestPublisher_FailWith(t *testing.T) {
	boom := errors.New("boom")
	pub := NewPublisher(1).FailWith(boom)
	sub := NewSubscriber[int](Unbounded)
	pub.Subscribe(sub)
	sub.Await(t)
	assert.Equal(t, []int{1}, sub.Values())
	assert.ErrorIs(t, sub.Err(), boom)
}

func TestPublisher_CancelStopsEmission(t *testing.T) {
	pub := NewPublisher(1, 2, 3)
	sub := NewSubscriber[int](1)
	pub.Subscribe(sub)
	sub.Cancel()
	sub.Request(5)

	assert.Equal(t, []int{1}, sub.Values())
	assert.True(t, pub.Cancelled())
	assert.Equal(t, 1, pub.Emitted())
}

func TestPublisher_NonPositiveRequestFails(t *testing.T) {
	pub := NewPublisher(1)
	sub := NewSubscriber[int](0)
	pub.Subscribe(sub)
	sub.Request(0)
	sub.Await(t)
	require.Error(t, sub.Err())
	assert.Empty(t, sub.Values())
}

func TestSubscriber_RecordsViolations(t *testing.T) {
	pub := NewManualPublisher[string]()
	sub := NewSubscriber[string](0)
	pub.Subscribe(sub)
	pub.AwaitSubscribed(t)

	pub.Emit("early")
	pub.Complete()
	pub.Complete()
	pub.Emit("late")

	assert.Equal(t, []string{
		"onNext(early) without demand",
		"complete after terminal signal",
		"onNext(late) after terminal signal",
	}, sub.Violations())
}

func TestManualPublisher_TracksDemandAndCancel(t *testing.T) {
	pub := NewManualPublisher[int]()
	sub := NewSubscriber[int](3)
	pub.Subscribe(sub)
	sub.Request(2)
	assert.Equal(t, int64(5), pub.Requested())

	assert.False(t, pub.IsCancelled())
	sub.Cancel()
	pub.AwaitCancelled(t)

	second := NewSubscriber[int](1)
	pub.Subscribe(second)
	second.Await(t)
	assert.Error(t, second.Err())
}

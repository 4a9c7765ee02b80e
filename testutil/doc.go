// Package testutil provides protocol probes for testing publishers,
// subscribers and engines.
//
// # Quick Start
//
// Record what a publisher signals:
//
//	sub := testutil.NewSubscriber[int](testutil.Unbounded)
//	pub.Subscribe(sub)
//	sub.Await(t)
//	assert.Equal(t, []int{1, 2, 3}, sub.Values())
//	assert.Empty(t, sub.Violations())
//
// Record what a subscriber does to its source:
//
//	src := testutil.NewPublisher(1, 2, 3, 4)
//	// ... run a pipeline reading from src ...
//	assert.True(t, src.Cancelled())
//
// Drive signals by hand, e.g. to break the protocol on purpose:
//
//	src := testutil.NewManualPublisher[int]()
//	// ... subscribe ...
//	src.Emit(1) // without demand
//
// # Thread Safety
//
// All probes are safe for concurrent use. Accessors return copies.
package testutil

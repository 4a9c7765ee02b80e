package inproc

import (
	"context"

	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/future"
)

// completionIter emits the value of a future, waiting for it on first pull.
type completionIter struct {
	future   *future.Future[any]
	nullable bool
	done     bool
}

func (it *completionIter) Next(ctx context.Context) (any, bool, error) {
	if it.done {
		return nil, false, nil
	}
	it.done = true
	if it.future == nil {
		return nil, false, errors.NullValue("fromCompletion future")
	}
	v, err := it.future.Await(ctx)
	if err != nil {
		return nil, false, err
	}
	if flow.IsNil(v) {
		if it.nullable {
			return nil, false, nil
		}
		return nil, false, errors.NullValue("fromCompletion value")
	}
	return v, true, nil
}

func (it *completionIter) Finished() bool { return it.done }

func (it *completionIter) Close() error {
	it.done = true
	return nil
}

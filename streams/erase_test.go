package streams

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/reactive/flow"
	"github.com/kbukum/reactive/graph"
)

func TestPredicate_WrongTypeFailsLikeMap(t *testing.T) {
	positive := predicate(func(v int) bool { return v > 0 })

	ok, err := positive(3)
	require.NoError(t, err)
	assert.True(t, ok)

	var typeErr *flow.TypeError
	_, err = positive("3")
	assert.ErrorAs(t, err, &typeErr)

	m := mapPayload(func(_ context.Context, v int) (int, error) { return v, nil }).(graph.Map)
	_, mapErr := m.Fn(context.Background(), "3")
	assert.ErrorAs(t, mapErr, &typeErr)
	assert.Equal(t, mapErr.Error(), err.Error())
}

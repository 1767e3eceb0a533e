package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pullID(t *testing.T, q Queue) string {
	t.Helper()
	j, jctx, cancel, err := q.Pull(context.Background())
	require.NoError(t, err)
	require.NotNil(t, j)
	require.NotNil(t, jctx)
	cancel()
	return j.ID
}

func TestMemQueueOrder(t *testing.T) {
	q := New()
	ctx := context.Background()
	var ids []string
	for i := 0; i < 5; i++ {
		j := NewJob("data.csv", "out.csv", 1)
		ids = append(ids, j.ID)
		require.NoError(t, q.Push(ctx, j))
	}
	assert.Equal(t, ids[0], pullID(t, q))
	assert.Equal(t, ids[1], pullID(t, q))

	// wrap around the ring buffer and then grow it
	for i := 0; i < 4; i++ {
		j := NewJob("more.csv", "out.csv", 1)
		ids = append(ids, j.ID)
		require.NoError(t, q.Push(ctx, j))
	}
	for _, id := range ids[2:] {
		assert.Equal(t, id, pullID(t, q))
	}
	j, _, _, err := q.Pull(ctx)
	require.NoError(t, err)
	assert.Nil(t, j)
}

func TestMemQueueStates(t *testing.T) {
	q := New()
	ctx := context.Background()
	a, b := NewJob("a.csv", "", 1), NewJob("b.csv", "", 1)
	require.NoError(t, q.Push(ctx, a))
	require.NoError(t, q.Push(ctx, b))

	pending, running, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
	assert.Equal(t, 0, running)

	id := pullID(t, q)
	assert.Equal(t, a.ID, id)
	pending, running, _ = q.Count(ctx)
	assert.Equal(t, 1, pending)
	assert.Equal(t, 1, running)
	assert.Error(t, q.Push(ctx, a))

	require.NoError(t, q.Drop(ctx, id))
	pending, running, _ = q.Count(ctx)
	assert.Equal(t, 2, pending)
	assert.Equal(t, 0, running)

	assert.Equal(t, b.ID, pullID(t, q))
	assert.Equal(t, a.ID, pullID(t, q))
	require.NoError(t, q.Complete(ctx, a.ID))
	require.NoError(t, q.Complete(ctx, b.ID))
	// dropping a completed job does not bring it back
	require.NoError(t, q.Drop(ctx, a.ID))
	pending, running, _ = q.Count(ctx)
	assert.Equal(t, 0, pending)
	assert.Equal(t, 0, running)

	wctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, WaitFor(wctx, q, 10*time.Millisecond))
}

func TestMemQueueStopCancelsPulledJobs(t *testing.T) {
	q := New()
	ctx := context.Background()
	require.NoError(t, q.Push(ctx, NewJob("a.csv", "", 1)))
	_, jctx, cancel, err := q.Pull(ctx)
	require.NoError(t, err)
	defer cancel()
	require.NoError(t, q.Stop(ctx))
	select {
	case <-jctx.Done():
	case <-time.After(time.Second):
		t.Fatal("job context not cancelled on Stop")
	}
}

func TestWaitForTimesOut(t *testing.T) {
	q := New()
	require.NoError(t, q.Push(context.Background(), NewJob("a.csv", "", 1)))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.Equal(t, context.DeadlineExceeded, WaitFor(ctx, q, 5*time.Millisecond))
}

package redisq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	rq := &redisQ{id: "batch-1"}
	assert.Equal(t, "batch-1:pending", rq.pendingSetKey())
	assert.Equal(t, "batch-1:running", rq.runningSetKey())
	prefix := rq.jobKeyPrefix("3f1c")
	assert.Equal(t, "batch-1:job:3f1c", prefix)
	assert.Equal(t, "3f1c", jobID(prefix))
}

func TestParseCounts(t *testing.T) {
	p, r, err := parseCounts([]interface{}{int64(3), int64(1)})
	require.NoError(t, err)
	assert.Equal(t, 3, p)
	assert.Equal(t, 1, r)

	_, _, err = parseCounts([]interface{}{int64(3)})
	assert.Error(t, err)
	_, _, err = parseCounts([]interface{}{"3", int64(1)})
	assert.Error(t, err)
}

func TestRandString(t *testing.T) {
	s := randString(20)
	assert.Len(t, s, 20)
	assert.NotEqual(t, s, randString(20))
}

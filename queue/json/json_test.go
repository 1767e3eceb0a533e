package json

import (
	"context"
	"testing"

	"github.com/hafniz/mlcore/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	data, err := New().Encode(context.Background(), &queue.Job{ID: "j1", Path: "data/1.csv", Output: "out/1_results.csv", Seed: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"j1","path":"data/1.csv","output":"out/1_results.csv","seed":7}`, string(data))
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name     string
		data     string
		expected *queue.Job
		fails    bool
	}{
		{"complete", `{"id":"j1","path":"1.csv","output":"1_results.csv","seed":3}`, &queue.Job{ID: "j1", Path: "1.csv", Output: "1_results.csv", Seed: 3}, false},
		{"no output", `{"id":"j2","path":"2.csv"}`, &queue.Job{ID: "j2", Path: "2.csv"}, false},
		{"no path", `{"id":"j3"}`, nil, true},
		{"not json", `j4`, nil, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			j, err := New().Decode(context.Background(), []byte(tc.data))
			if tc.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, j)
		})
	}
}

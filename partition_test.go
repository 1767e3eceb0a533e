package mlcore

import (
	"errors"
	"testing"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionDiscrete(t *testing.T) {
	outlook := feature.NewDiscreteFeature("outlook", nil)
	ds := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]interface{}{"outlook": "rain"}),
		dataset.NewSample(map[string]interface{}{"outlook": "sunny"}),
		dataset.NewSample(map[string]interface{}{"outlook": "rain"}),
		dataset.NewSample(map[string]interface{}{"outlook": "overcast"}),
	})
	parts, err := Partition(ds, &tree.Split{Feature: outlook})
	require.NoError(t, err)
	require.Len(t, parts, 3)

	keys := make([]string, len(parts))
	counts := make([]int, len(parts))
	for i, p := range parts {
		keys[i] = p.Key
		counts[i] = p.Dataset.Count()
		dc, ok := p.Criterion.(feature.DiscreteCriterion)
		require.True(t, ok)
		assert.Equal(t, p.Key, dc.Value())
	}
	assert.Equal(t, []string{"rain", "sunny", "overcast"}, keys)
	assert.Equal(t, []int{2, 1, 1}, counts)
}

func TestPartitionContinuousBoundaryGoesLow(t *testing.T) {
	humidity := feature.NewContinuousFeature("humidity")
	ds := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]interface{}{"humidity": 70.0}),
		dataset.NewSample(map[string]interface{}{"humidity": 80.0}),
		dataset.NewSample(map[string]interface{}{"humidity": 90.0}),
		dataset.NewSample(map[string]interface{}{"humidity": 80.0}),
	})
	parts, err := Partition(ds, &tree.Split{Feature: humidity, Threshold: 80})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, tree.LowBranch, parts[0].Key)
	assert.Equal(t, 3, parts[0].Dataset.Count())
	assert.Equal(t, tree.HighBranch, parts[1].Key)
	assert.Equal(t, 1, parts[1].Dataset.Count())

	for _, s := range parts[0].Dataset.Samples() {
		v, err := s.ValueFor(humidity)
		require.NoError(t, err)
		assert.LessOrEqual(t, v.(float64), 80.0)
	}
	high, err := parts[1].Dataset.Samples()[0].ValueFor(humidity)
	require.NoError(t, err)
	assert.Equal(t, 90.0, high)
}

func TestPartitionReportsUnroutedSamples(t *testing.T) {
	outlook := feature.NewDiscreteFeature("outlook", nil)
	ds := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]interface{}{"outlook": "rain"}),
		dataset.NewSample(map[string]interface{}{}),
		dataset.NewSample(map[string]interface{}{"outlook": "sunny"}),
	})
	_, err := Partition(ds, &tree.Split{Feature: outlook})
	require.Error(t, err)
	assert.EqualError(t, err, "partitioning on outlook: 2 of 3 samples routed")
	var ke *feature.KindError
	assert.False(t, errors.As(err, &ke))
}

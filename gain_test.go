package mlcore

import (
	"errors"
	"testing"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	color = feature.NewDiscreteFeature("color", nil)
	shape = feature.NewDiscreteFeature("shape", nil)
	x     = feature.NewContinuousFeature("x")
	label = feature.NewDiscreteFeature("label", nil)
)

func newDataset(rows ...map[string]interface{}) dataset.Dataset {
	samples := make([]dataset.Sample, len(rows))
	for i, r := range rows {
		samples[i] = dataset.NewSample(r)
	}
	return dataset.New(samples)
}

func row(kv ...interface{}) map[string]interface{} {
	r := make(map[string]interface{})
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = kv[i+1]
	}
	return r
}

func TestSelectSplitDiscrete(t *testing.T) {
	ds := newDataset(
		row("color", "red", "label", "0"),
		row("color", "red", "label", "0"),
		row("color", "blue", "label", "1"),
		row("color", "blue", "label", "1"),
	)
	split, err := SelectSplit(ds, []feature.Feature{color}, label)
	require.NoError(t, err)
	require.NotNil(t, split)
	assert.Equal(t, color, split.Feature)
	assert.False(t, split.Continuous())
	assert.InDelta(t, 1.0, split.GainRatio, 1e-12)
}

func TestSelectSplitContinuous(t *testing.T) {
	ds := newDataset(
		row("x", 3.0, "label", "1"),
		row("x", 1.0, "label", "0"),
		row("x", 4.0, "label", "1"),
		row("x", 2.0, "label", "0"),
	)
	split, err := SelectSplit(ds, []feature.Feature{x}, label)
	require.NoError(t, err)
	require.NotNil(t, split)
	assert.True(t, split.Continuous())
	assert.Equal(t, 2.0, split.Threshold)
	assert.InDelta(t, 1.0, split.GainRatio, 1e-12)
}

func TestSelectSplitThresholdTieGoesToFirstObserved(t *testing.T) {
	ds := newDataset(
		row("x", 3.0, "label", "b"),
		row("x", 1.0, "label", "a"),
		row("x", 2.0, "label", "b"),
		row("x", 4.0, "label", "a"),
	)
	split, err := SelectSplit(ds, []feature.Feature{x}, label)
	require.NoError(t, err)
	require.NotNil(t, split)
	assert.Equal(t, 3.0, split.Threshold)
}

func TestSelectSplitFeatureTieGoesToFirst(t *testing.T) {
	ds := newDataset(
		row("color", "red", "shape", "round", "label", "0"),
		row("color", "blue", "shape", "square", "label", "1"),
	)
	split, err := SelectSplit(ds, []feature.Feature{shape, color}, label)
	require.NoError(t, err)
	require.NotNil(t, split)
	assert.Equal(t, shape, split.Feature)

	split, err = SelectSplit(ds, []feature.Feature{color, shape}, label)
	require.NoError(t, err)
	assert.Equal(t, color, split.Feature)
}

func TestSelectSplitZeroSplitInformation(t *testing.T) {
	ds := newDataset(
		row("shape", "round", "color", "red", "x", 1.0, "label", "0"),
		row("shape", "round", "color", "blue", "x", 1.0, "label", "1"),
		row("shape", "round", "color", "blue", "x", 1.0, "label", "1"),
	)
	assert.Equal(t, 0.0, gainRatio(1, 3, []*group{{size: 3, counts: map[string]int{"0": 1, "1": 2}}}))

	split, err := SelectSplit(ds, []feature.Feature{shape, x}, label)
	require.NoError(t, err)
	assert.Nil(t, split)

	split, err = SelectSplit(ds, []feature.Feature{shape, x, color}, label)
	require.NoError(t, err)
	require.NotNil(t, split)
	assert.Equal(t, color, split.Feature)
}

func TestSelectSplitNoUsefulSplit(t *testing.T) {
	ds := newDataset(
		row("color", "red", "label", "0"),
		row("color", "red", "label", "1"),
		row("color", "blue", "label", "0"),
		row("color", "blue", "label", "1"),
	)
	split, err := SelectSplit(ds, []feature.Feature{color}, label)
	require.NoError(t, err)
	assert.Nil(t, split)
}

func TestSelectSplitKindMismatch(t *testing.T) {
	ds := newDataset(
		row("x", "low", "color", 1.0, "label", "0"),
		row("x", "high", "color", 2.0, "label", "1"),
	)
	var ke *feature.KindError
	_, err := SelectSplit(ds, []feature.Feature{x}, label)
	require.True(t, errors.As(err, &ke))
	assert.Equal(t, "x", ke.Feature)
	assert.Equal(t, feature.Continuous, ke.Expected)

	_, err = SelectSplit(ds, []feature.Feature{color}, label)
	require.True(t, errors.As(err, &ke))
	assert.Equal(t, feature.Discrete, ke.Expected)
}

func TestSelectSplitUndefinedValue(t *testing.T) {
	ds := newDataset(
		row("color", "red", "label", "0"),
		row("label", "1"),
	)
	_, err := SelectSplit(ds, []feature.Feature{color}, label)
	var ke *feature.KindError
	assert.True(t, errors.As(err, &ke))
}

func TestSelectSplitUnlabeled(t *testing.T) {
	ds := newDataset(
		row("color", "red", "label", "0"),
		row("color", "blue"),
	)
	_, err := SelectSplit(ds, []feature.Feature{color}, label)
	assert.True(t, errors.Is(err, dataset.ErrUnlabeledSample))
}

package sqldataset_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/dataset/sqldataset"
	"github.com/hafniz/mlcore/dataset/sqldataset/sqlite3adapter"
	"github.com/hafniz/mlcore/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	color = feature.NewDiscreteFeature("color", []string{"red", "blue"})
	x     = feature.NewContinuousFeature("x")
	label = feature.NewDiscreteFeature("label", nil)
)

func TestStoreAndLoad(t *testing.T) {
	ctx := context.Background()
	a, err := sqlite3adapter.New(filepath.Join(t.TempDir(), "samples.db"))
	require.NoError(t, err)
	defer a.DB().Close()

	features := []feature.Feature{color, x, label}
	var samples []dataset.Sample
	for i := 0; i < 23; i++ {
		values := map[string]interface{}{"x": float64(i) / 2, "label": "0"}
		if i%2 == 1 {
			values["color"] = "red"
			values["label"] = "1"
		}
		if i == 7 {
			delete(values, "x")
		}
		samples = append(samples, dataset.NewSample(values))
	}

	n, err := sqldataset.Store(ctx, a, "samples", features, dataset.New(samples))
	require.NoError(t, err)
	assert.Equal(t, 23, n)

	ds, err := sqldataset.Load(ctx, a, "samples", features)
	require.NoError(t, err)
	require.Equal(t, 23, ds.Count())
	for i, s := range ds.Samples() {
		for _, f := range features {
			expected, err := samples[i].ValueFor(f)
			require.NoError(t, err)
			got, err := s.ValueFor(f)
			require.NoError(t, err)
			assert.Equal(t, expected, got, "sample %d feature %s", i, f.Name())
		}
	}

	n, err = sqldataset.Store(ctx, a, "samples", features, dataset.New(samples[:2]))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	ds, err = sqldataset.Load(ctx, a, "samples", features)
	require.NoError(t, err)
	assert.Equal(t, 25, ds.Count())
}

func TestStoreRejectsInvalidValues(t *testing.T) {
	a, err := sqlite3adapter.New(filepath.Join(t.TempDir(), "samples.db"))
	require.NoError(t, err)
	defer a.DB().Close()

	ds := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]interface{}{"color": "green"}),
	})
	n, err := sqldataset.Store(context.Background(), a, "samples", []feature.Feature{color}, ds)
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestLoadMissingTable(t *testing.T) {
	a, err := sqlite3adapter.New(filepath.Join(t.TempDir(), "samples.db"))
	require.NoError(t, err)
	defer a.DB().Close()

	_, err = sqldataset.Load(context.Background(), a, "samples", []feature.Feature{color})
	assert.Error(t, err)
}

func TestIdentifier(t *testing.T) {
	id, err := sqldataset.Identifier("feature0")
	require.NoError(t, err)
	assert.Equal(t, `"feature0"`, id)

	for _, name := range []string{"", "id", `a"b`} {
		_, err = sqldataset.Identifier(name)
		assert.Error(t, err, name)
	}
}

package yaml

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/hafniz/mlcore/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadata = `
features:
  outlook: [sunny, overcast, rain]
  temperature: continuous
  humidity: continuous
  windy: [true, false]
  play: ["yes", "no"]
`

func TestReadFeaturesKeepsOrder(t *testing.T) {
	features, err := ReadFeatures([]byte(metadata))
	require.NoError(t, err)
	require.Len(t, features, 5)

	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name()
	}
	assert.Equal(t, []string{"outlook", "temperature", "humidity", "windy", "play"}, names)

	assert.Equal(t, feature.Discrete, feature.KindOf(features[0]))
	assert.Equal(t, feature.Continuous, feature.KindOf(features[1]))
	windy := features[3].(*feature.DiscreteFeature)
	assert.Equal(t, []string{"true", "false"}, windy.AvailableValues())
}

func TestReadFeaturesErrors(t *testing.T) {
	_, err := ReadFeatures([]byte("foo: bar\n"))
	assert.Error(t, err)

	_, err = ReadFeatures([]byte("features:\n  x: categorical\n"))
	assert.Error(t, err)

	_, err = ReadFeatures([]byte("features:\n  x: 3\n"))
	assert.Error(t, err)
}

func TestReadFeaturesFromFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "mlcore-yaml")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "metadata.yml")
	require.NoError(t, ioutil.WriteFile(path, []byte(metadata), 0644))

	features, err := ReadFeaturesFromFile(path)
	require.NoError(t, err)
	assert.Len(t, features, 5)

	_, err = ReadFeaturesFromFile(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	features, err := ReadFeatures([]byte(metadata))
	require.NoError(t, err)

	rest, label, err := Split(features, "play")
	require.NoError(t, err)
	assert.Equal(t, "play", label.Name())
	assert.Len(t, rest, 4)

	_, _, err = Split(features, "temperature")
	var ke *feature.KindError
	assert.True(t, errors.As(err, &ke))

	_, _, err = Split(features, "nope")
	assert.Error(t, err)
}

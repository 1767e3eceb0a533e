package crossval

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/hafniz/mlcore"
	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	color = feature.NewDiscreteFeature("color", nil)
	label = feature.NewDiscreteFeature("label", nil)
)

// recorder remembers the samples it was trained with
type recorder struct {
	trained    []dataset.Sample
	fail       bool
	predictErr error
}

func (r *recorder) Train(_ context.Context, ds dataset.Dataset) error {
	if r.fail {
		return errors.New("boom")
	}
	r.trained = ds.Samples()
	return nil
}

func (r *recorder) ProbDist(s feature.Sample) (map[string]float64, error) {
	if r.predictErr != nil {
		return nil, r.predictErr
	}
	for _, ts := range r.trained {
		if ts == s {
			return nil, errors.New("predicting a training sample")
		}
	}
	return map[string]float64{"n": float64(len(r.trained))}, nil
}

func samples(n int) dataset.Dataset {
	ss := make([]dataset.Sample, n)
	for i := range ss {
		l := "a"
		if i%2 == 1 {
			l = "b"
		}
		ss[i] = dataset.NewSample(map[string]interface{}{"color": "red", "label": l})
	}
	return dataset.New(ss)
}

func TestProbDistFoldCoverage(t *testing.T) {
	ds := samples(23)
	var classifiers []*recorder
	results, err := ProbDist(context.Background(), rand.New(rand.NewSource(1)), ds, 5, func() Classifier {
		r := &recorder{}
		classifiers = append(classifiers, r)
		return r
	})
	require.NoError(t, err)
	require.Len(t, results, 23)
	assert.Len(t, classifiers, 5)

	sizes := make(map[int]int)
	for i, r := range results {
		assert.Same(t, ds.Samples()[i], r.Sample)
		require.Contains(t, r.Dist, "n")
		assert.Equal(t, float64(23-countFold(results, r.Fold)), r.Dist["n"])
		sizes[r.Fold]++
	}
	assert.Len(t, sizes, 5)
	for fold, size := range sizes {
		assert.True(t, size == 4 || size == 5, "fold %d has %d samples", fold, size)
	}
}

func countFold(results []Result, fold int) int {
	c := 0
	for _, r := range results {
		if r.Fold == fold {
			c++
		}
	}
	return c
}

func TestProbDistIsReproducible(t *testing.T) {
	ds := samples(10)
	newRecorder := func() Classifier { return &recorder{} }
	a, err := ProbDist(context.Background(), rand.New(rand.NewSource(9)), ds, 3, newRecorder)
	require.NoError(t, err)
	b, err := ProbDist(context.Background(), rand.New(rand.NewSource(9)), ds, 3, newRecorder)
	require.NoError(t, err)
	for i := range a {
		assert.Equal(t, a[i].Fold, b[i].Fold)
	}
}

func TestProbDistInvalidFolds(t *testing.T) {
	newRecorder := func() Classifier { return &recorder{} }
	_, err := ProbDist(context.Background(), rand.New(rand.NewSource(1)), samples(3), 1, newRecorder)
	assert.Error(t, err)
	_, err = ProbDist(context.Background(), rand.New(rand.NewSource(1)), samples(3), 4, newRecorder)
	assert.Error(t, err)
}

func TestProbDistTrainingFailure(t *testing.T) {
	_, err := ProbDist(context.Background(), rand.New(rand.NewSource(1)), samples(4), 2, func() Classifier {
		return &recorder{fail: true}
	})
	assert.EqualError(t, err, "fold 0: boom")
}

func TestProbDistPredictionErrors(t *testing.T) {
	unroutable := fmt.Errorf("%w: feature color value green at node 0", tree.ErrNoBranch)
	results, err := ProbDist(context.Background(), rand.New(rand.NewSource(1)), samples(4), 2, func() Classifier {
		return &recorder{predictErr: unroutable}
	})
	require.NoError(t, err)
	for _, r := range results {
		assert.Empty(t, r.Dist)
	}

	wrongKind := &feature.KindError{Feature: "color", Expected: feature.Discrete, Got: feature.Continuous}
	_, err = ProbDist(context.Background(), rand.New(rand.NewSource(1)), samples(4), 2, func() Classifier {
		return &recorder{predictErr: wrongKind}
	})
	require.Error(t, err)
	var ke *feature.KindError
	assert.True(t, errors.As(err, &ke))
}

func TestProbDistCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ProbDist(ctx, rand.New(rand.NewSource(1)), samples(4), 2, func() Classifier { return &recorder{} })
	assert.Equal(t, context.Canceled, err)
}

func TestProbDistWithTrees(t *testing.T) {
	var ss []dataset.Sample
	for i := 0; i < 10; i++ {
		ss = append(ss,
			dataset.NewSample(map[string]interface{}{"color": "red", "label": "0"}),
			dataset.NewSample(map[string]interface{}{"color": "blue", "label": "1"}),
		)
	}
	ss = append(ss, dataset.NewSample(map[string]interface{}{"color": "green", "label": "1"}))
	ds := dataset.New(ss)

	results, err := ProbDist(context.Background(), rand.New(rand.NewSource(4)), ds, 10, func() Classifier {
		return mlcore.New([]feature.Feature{color}, label)
	})
	require.NoError(t, err)
	for _, r := range results {
		c, _ := r.Sample.ValueFor(color)
		switch c {
		case "red":
			assert.Equal(t, map[string]float64{"0": 1}, r.Dist)
		case "blue":
			assert.Equal(t, map[string]float64{"1": 1}, r.Dist)
		default:
			assert.Empty(t, r.Dist)
		}
	}
}

/*
Package crossval estimates the label distributions a classifier predicts
for samples it was not trained on, by k-fold cross-validation.
*/
package crossval

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/tree"
)

// Classifier is a model that can be trained on a dataset and then asked
// for the label distribution of samples. *mlcore.Classifier implements it.
type Classifier interface {
	Train(context.Context, dataset.Dataset) error
	ProbDist(feature.Sample) (map[string]float64, error)
}

// Result holds the distribution predicted for a sample while it was held
// out in the given fold. Dist is empty if the prediction failed.
type Result struct {
	Sample dataset.Sample
	Fold   int
	Dist   map[string]float64
}

/*
ProbDist takes a context, a random source, a dataset, a number of folds and
a function returning untrained classifiers and cross-validates them over the
dataset.

The samples are shuffled with rng and the i-th shuffled sample is assigned
to fold i mod k. For every fold a new classifier is trained on the samples
of the other folds and asked for the distribution of every sample in the
fold. A sample the classifier cannot route because it has a discrete value
never seen in training (tree.ErrNoBranch) gets an empty distribution.

It returns one Result per sample in the order of the dataset, or an error if
k is lower than 2 or greater than the number of samples, if the context is
done, if training fails or if a prediction fails for any other reason.
*/
func ProbDist(ctx context.Context, rng *rand.Rand, ds dataset.Dataset, k int, newClassifier func() Classifier) ([]Result, error) {
	samples := ds.Samples()
	n := len(samples)
	if k < 2 || k > n {
		return nil, fmt.Errorf("cross-validating %d samples in %d folds: invalid number of folds", n, k)
	}
	folds := make([]int, n)
	for i, p := range rng.Perm(n) {
		folds[p] = i % k
	}

	results := make([]Result, n)
	for fold := 0; fold < k; fold++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var training []dataset.Sample
		for i, s := range samples {
			if folds[i] != fold {
				training = append(training, s)
			}
		}
		c := newClassifier()
		if err := c.Train(ctx, dataset.New(training)); err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold, err)
		}
		for i, s := range samples {
			if folds[i] != fold {
				continue
			}
			dist, err := c.ProbDist(s)
			if err != nil {
				if !errors.Is(err, tree.ErrNoBranch) {
					return nil, fmt.Errorf("fold %d: predicting sample %d: %w", fold, i, err)
				}
				dist = map[string]float64{}
			}
			results[i] = Result{Sample: s, Fold: fold, Dist: dist}
		}
	}
	return results, nil
}

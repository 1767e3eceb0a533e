/*
Package mlcore grows classification trees from labeled samples choosing
every split by information gain ratio, over discrete and continuous
features, and uses them to estimate the probability of every label for new
samples.
*/
package mlcore

import (
	"context"
	"fmt"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/tree"
)

// ErrNotTrained is returned when using a Classifier that has no tree
const ErrNotTrained = tree.ErrNoRoot

/*
Classifier trains a tree on a dataset and predicts the label distribution
of samples with it. A Classifier is not safe for concurrent use while
training.
*/
type Classifier struct {
	features []feature.Feature
	label    feature.Feature
	opts     []tree.Option
	tree     *tree.Tree
}

/*
New takes the candidate features, the label feature and options for the
trees to grow and returns an untrained Classifier.
*/
func New(features []feature.Feature, label feature.Feature, opts ...tree.Option) *Classifier {
	return &Classifier{features: features, label: label, opts: opts}
}

/*
Train grows a tree from the given dataset replacing any previous one. If
growing fails, the classifier is left untrained.
*/
func (c *Classifier) Train(ctx context.Context, ds dataset.Dataset) error {
	c.tree = nil
	if ds.Count() == 0 {
		return fmt.Errorf("training: %w", tree.ErrCannotPredictFromEmptySet)
	}
	t, err := Grow(ctx, ds, c.features, c.label, c.opts...)
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}
	c.tree = t
	return nil
}

// Predict returns the prediction of the trained tree for the sample
func (c *Classifier) Predict(s feature.Sample) (*tree.Prediction, error) {
	if c.tree == nil {
		return nil, ErrNotTrained
	}
	return c.tree.Predict(s)
}

/*
ProbDist returns the probability of every label for the sample according to
the trained tree. Use Predict to get them in label order.
*/
func (c *Classifier) ProbDist(s feature.Sample) (map[string]float64, error) {
	p, err := c.Predict(s)
	if err != nil {
		return nil, err
	}
	return p.Probabilities(), nil
}

// Tree returns the trained tree, nil before training
func (c *Classifier) Tree() *tree.Tree {
	return c.tree
}

func (c *Classifier) String() string {
	if c.tree == nil {
		return ErrNotTrained.Error()
	}
	return c.tree.String()
}

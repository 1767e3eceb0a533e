/*
Package synth generates random binary classification trees over two
continuous features, and the datasets they classify, to experiment with the
tree growing algorithm on data whose true decision boundaries are known.

All randomness comes from the *rand.Rand passed by the caller, so the same
seed always generates the same tree.
*/
package synth

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/dataset/csv"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/tree"
)

// Labels of generated leaves
const (
	Positive = "1"
	Negative = "0"
)

// ErrInvalidDepth is returned when asking for a tree with less than one level
var ErrInvalidDepth = errors.New("synthetic tree depth must be at least 1")

var (
	features = []*feature.ContinuousFeature{
		feature.NewContinuousFeature("feature0"),
		feature.NewContinuousFeature("feature1"),
	}
	// LabelFeature is the feature generated trees predict
	LabelFeature = feature.NewDiscreteFeature("label", []string{Negative, Positive})
)

// Features returns the two continuous features generated trees split on
func Features() []feature.Feature {
	return []feature.Feature{features[0], features[1]}
}

// Metadata returns the features of a labeled synthetic dataset: Features()
// followed by LabelFeature
func Metadata() []feature.Feature {
	return append(Features(), LabelFeature)
}

// bounds holds the range of values of each feature that reach a node
type bounds [2]struct{ lo, hi float64 }

/*
Generate takes a random source and a depth and returns a complete binary
tree whose leaves are all at the given depth. Every internal node splits one
of the two features, alternating between them from one level to the next,
at a threshold drawn uniformly from the range of values of the feature that
reach the node. Sibling leaves always predict opposite labels with
probability 1, a coin flip deciding which one gets Positive.

Generate returns ErrInvalidDepth if maxDepth is less than 1.
*/
func Generate(rng *rand.Rand, maxDepth int) (*tree.Tree, error) {
	if maxDepth < 1 {
		return nil, fmt.Errorf("generating tree of depth %d: %w", maxDepth, ErrInvalidDepth)
	}
	t := tree.New(LabelFeature)
	var b bounds
	b[0].hi, b[1].hi = 1, 1
	root := &tree.Node{}
	t.Add(root)
	grow(rng, t, root, b, rng.Intn(2), 0, maxDepth)
	return t, nil
}

func grow(rng *rand.Rand, t *tree.Tree, n *tree.Node, b bounds, fi, depth, maxDepth int) {
	f := features[fi]
	lo, hi := b[fi].lo, b[fi].hi
	threshold := lo + rng.Float64()*(hi-lo)
	n.Split = &tree.Split{Feature: f, Threshold: threshold}

	low := &tree.Node{ParentID: n.ID}
	high := &tree.Node{ParentID: n.ID}
	t.Add(low)
	t.Add(high)
	n.Branches = []tree.Branch{
		{Key: tree.LowBranch, Criterion: feature.NewContinuousCriterion(f, threshold, false), Child: low.ID},
		{Key: tree.HighBranch, Criterion: feature.NewContinuousCriterion(f, threshold, true), Child: high.ID},
	}

	if depth+1 >= maxDepth {
		lowLabel, highLabel := Negative, Positive
		if rng.Intn(2) == 1 {
			lowLabel, highLabel = Positive, Negative
		}
		low.Prediction = certain(lowLabel)
		high.Prediction = certain(highLabel)
		return
	}

	lowBounds, highBounds := b, b
	lowBounds[fi].hi = threshold
	highBounds[fi].lo = threshold
	next := 1 - fi
	grow(rng, t, low, lowBounds, next, depth+1, maxDepth)
	grow(rng, t, high, highBounds, next, depth+1, maxDepth)
}

func certain(label string) *tree.Prediction {
	other := Negative
	if label == Negative {
		other = Positive
	}
	return tree.NewPrediction(map[string]float64{label: 1, other: 0}, 0)
}

/*
Label takes a generated tree and a dataset with values for Features() and
returns its samples with the label the tree predicts for them with
probability 1 set for LabelFeature.
*/
func Label(t *tree.Tree, ds dataset.Dataset) ([]dataset.Sample, error) {
	fs := Features()
	samples := make([]dataset.Sample, 0, ds.Count())
	for i, s := range ds.Samples() {
		p, err := t.Predict(s)
		if err != nil {
			return nil, fmt.Errorf("labeling sample %d: %w", i, err)
		}
		l, prob := p.PredictedValue()
		if prob != 1 {
			return nil, fmt.Errorf("labeling sample %d: no certain label in %v", i, p)
		}
		ls, err := dataset.WithValue(s, fs, LabelFeature, l)
		if err != nil {
			return nil, err
		}
		samples = append(samples, ls)
	}
	return samples, nil
}

/*
Dataset takes a random source, a generated tree and a number of samples and
returns a dataset of n points drawn uniformly from [0,1]x[0,1] labeled by the
tree.
*/
func Dataset(rng *rand.Rand, t *tree.Tree, n int) (dataset.Dataset, error) {
	points := make([]dataset.Sample, n)
	for i := range points {
		points[i] = dataset.NewSample(map[string]interface{}{
			features[0].Name(): rng.Float64(),
			features[1].Name(): rng.Float64(),
		})
	}
	samples, err := Label(t, dataset.New(points))
	if err != nil {
		return nil, err
	}
	return dataset.New(samples), nil
}

/*
LabelFile reads CSV samples with values for Features() from inPath (standard
input if empty), labels them with the given tree and writes them with
their label as CSV to outPath (standard output if empty).
*/
func LabelFile(t *tree.Tree, inPath, outPath string) (err error) {
	ds, err := csv.ReadDatasetFromFilePath(inPath, Features())
	if err != nil {
		return err
	}
	samples, err := Label(t, ds)
	if err != nil {
		return err
	}
	out := os.Stdout
	if outPath != "" {
		out, err = os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer func() {
			if cerr := out.Close(); err == nil {
				err = cerr
			}
		}()
	}
	w, err := csv.NewWriter(out, Metadata())
	if err != nil {
		return err
	}
	if _, err = w.Write(samples); err != nil {
		return err
	}
	return w.Flush()
}

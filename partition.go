package mlcore

import (
	"fmt"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/tree"
)

/*
Part is one of the subsets a split divides a dataset into, with the key and
the criterion of the branch leading to it.
*/
type Part struct {
	Key       string
	Criterion feature.Criterion
	Dataset   dataset.Dataset
}

/*
Partition takes a dataset and a split and returns the parts the split
divides the dataset into. The parts are disjoint and their union is the
dataset.

For a discrete split there is a part per distinct value of the feature, keyed
by the value and in the order values are first observed. For a continuous
split there are two parts keyed by tree.LowBranch, with the samples whose
value is less than or equal to the threshold, and tree.HighBranch with the
rest.
*/
func Partition(ds dataset.Dataset, split *tree.Split) ([]Part, error) {
	var parts []Part
	var err error
	switch f := split.Feature.(type) {
	case *feature.DiscreteFeature:
		parts, err = discretePartition(ds, f)
	case *feature.ContinuousFeature:
		parts, err = continuousPartition(ds, f, split.Threshold)
	default:
		return nil, fmt.Errorf("unknown feature type %T for feature %v", f, split.Feature)
	}
	if err != nil {
		return nil, err
	}
	total := 0
	for _, p := range parts {
		total += p.Dataset.Count()
	}
	if total != ds.Count() {
		return nil, fmt.Errorf("partitioning on %s: %d of %d samples routed", split.Feature.Name(), total, ds.Count())
	}
	return parts, nil
}

func discretePartition(ds dataset.Dataset, f *feature.DiscreteFeature) ([]Part, error) {
	values, err := ds.FeatureValues(f)
	if err != nil {
		return nil, err
	}
	parts := make([]Part, 0, len(values))
	for _, v := range values {
		sv, err := feature.StringValue(f, v)
		if err != nil {
			return nil, err
		}
		c := feature.NewDiscreteCriterion(f, sv)
		sub, err := ds.SubsetWith(c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{sv, c, sub})
	}
	return parts, nil
}

func continuousPartition(ds dataset.Dataset, f *feature.ContinuousFeature, threshold float64) ([]Part, error) {
	parts := make([]Part, 0, 2)
	for _, b := range []struct {
		key   string
		above bool
	}{{tree.LowBranch, false}, {tree.HighBranch, true}} {
		c := feature.NewContinuousCriterion(f, threshold, b.above)
		sub, err := ds.SubsetWith(c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{b.key, c, sub})
	}
	return parts, nil
}

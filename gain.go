package mlcore

import (
	"fmt"
	"math"
	"sort"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/tree"
)

// minGainRatio is the smallest gain ratio considered an improvement.
// Smaller values are rounding noise of splits that carry no information.
const minGainRatio = 1e-12

// group holds the label counts of one branch of a candidate split
type group struct {
	size   int
	counts map[string]int
}

func (g *group) add(label string) {
	if g.counts == nil {
		g.counts = make(map[string]int)
	}
	g.size++
	g.counts[label]++
}

/*
SelectSplit takes a dataset, the candidate features and the label feature
and returns the split with the strictly greatest positive gain ratio, or nil
when no feature improves on the dataset. Features are evaluated in the given
order and the first one reaching the running maximum wins ties.

Discrete features are scored splitting the dataset by every distinct value.
Continuous features are scored with every distinct observed value as a
candidate threshold, the first one (in order of observation) reaching the
maximum gain ratio being retained.

A candidate whose split information is 0, because all samples fall in a
single branch, has a gain ratio of 0 and never gets selected.

It returns a *feature.KindError if a sample's value does not match the kind
of its feature or is undefined, and dataset.ErrUnlabeledSample if a sample
has no label.
*/
func SelectSplit(ds dataset.Dataset, features []feature.Feature, label feature.Feature) (*tree.Split, error) {
	labels, err := labelsOf(ds, label)
	if err != nil {
		return nil, err
	}
	h, err := ds.Entropy(label)
	if err != nil {
		return nil, err
	}
	if h == 0 {
		return nil, nil
	}
	var best *tree.Split
	maxRatio := 0.0
	for _, f := range features {
		var ratio, threshold float64
		switch f := f.(type) {
		case *feature.DiscreteFeature:
			ratio, err = discreteGainRatio(ds, f, labels, h)
		case *feature.ContinuousFeature:
			ratio, threshold, err = continuousGainRatio(ds, f, labels, h)
		default:
			name := "<nil>"
			if f != nil {
				name = f.Name()
			}
			err = &feature.KindError{Feature: name, Expected: feature.Discrete, Got: feature.Unknown}
		}
		if err != nil {
			return nil, fmt.Errorf("scoring feature: %w", err)
		}
		if ratio > maxRatio {
			maxRatio = ratio
			best = &tree.Split{Feature: f, Threshold: threshold, GainRatio: ratio}
		}
	}
	return best, nil
}

/*
gainRatio takes the entropy of a dataset with total samples and the groups a
candidate split divides it into and returns the gain ratio of the split:
its information gain over its split information.
*/
func gainRatio(h float64, total int, groups []*group) float64 {
	infoGain := h
	var splitInfo float64
	for _, g := range groups {
		if g.size == 0 {
			continue
		}
		w := float64(g.size) / float64(total)
		infoGain -= w * dataset.Entropy(g.counts)
		splitInfo -= w * math.Log2(w)
	}
	if splitInfo <= 0 {
		return 0
	}
	ratio := infoGain / splitInfo
	if ratio < minGainRatio {
		return 0
	}
	return ratio
}

func discreteGainRatio(ds dataset.Dataset, f *feature.DiscreteFeature, labels []string, h float64) (float64, error) {
	var groups []*group
	index := make(map[string]int)
	for i, s := range ds.Samples() {
		v, err := s.ValueFor(f)
		if err != nil {
			return 0, err
		}
		sv, err := feature.StringValue(f, v)
		if err != nil {
			return 0, err
		}
		gi, ok := index[sv]
		if !ok {
			gi = len(groups)
			index[sv] = gi
			groups = append(groups, &group{})
		}
		groups[gi].add(labels[i])
	}
	return gainRatio(h, len(labels), groups), nil
}

/*
continuousGainRatio sweeps the samples sorted by their value for f,
scoring every distinct value as a threshold, and then picks the best
threshold in the order values were first observed.
*/
func continuousGainRatio(ds dataset.Dataset, f *feature.ContinuousFeature, labels []string, h float64) (float64, float64, error) {
	samples := ds.Samples()
	values := make([]float64, len(samples))
	var observed []float64
	seen := make(map[float64]bool)
	all := &group{}
	for i, s := range samples {
		v, err := s.ValueFor(f)
		if err != nil {
			return 0, 0, err
		}
		fv, err := feature.FloatValue(f, v)
		if err != nil {
			return 0, 0, err
		}
		if math.IsNaN(fv) {
			return 0, 0, fmt.Errorf("continuous feature %s has a NaN value", f.Name())
		}
		values[i] = fv
		if !seen[fv] {
			seen[fv] = true
			observed = append(observed, fv)
		}
		all.add(labels[i])
	}
	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ratios := make(map[float64]float64, len(observed))
	low := &group{}
	for i := 0; i < len(order); {
		t := values[order[i]]
		for ; i < len(order) && values[order[i]] == t; i++ {
			low.add(labels[order[i]])
		}
		high := &group{size: all.size - low.size, counts: make(map[string]int, len(all.counts))}
		for l, c := range all.counts {
			high.counts[l] = c - low.counts[l]
		}
		ratios[t] = gainRatio(h, len(samples), []*group{low, high})
	}

	var best, threshold float64
	for _, t := range observed {
		if ratios[t] > best {
			best = ratios[t]
			threshold = t
		}
	}
	return best, threshold, nil
}

func labelsOf(ds dataset.Dataset, label feature.Feature) ([]string, error) {
	samples := ds.Samples()
	labels := make([]string, len(samples))
	for i, s := range samples {
		l, err := dataset.Label(s, label)
		if err != nil {
			return nil, err
		}
		labels[i] = l
	}
	return labels, nil
}

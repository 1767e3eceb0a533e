package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/shopspring/decimal"
)

/*
Prediction represents a prediction made by a decision Tree: the probability
of every label.
*/
type Prediction struct {
	probabilities map[string]float64
	weight        int
}

// Outcome is a label with its probability
type Outcome struct {
	Label       string
	Probability float64
}

// PredictionError represents an error on the integrity of a tree found
// when predicting with it
type PredictionError string

const (
	// ErrNoRoot is returned when predicting with a tree that has no root
	// node, for instance because it has not been grown yet
	ErrNoRoot = PredictionError("tree has no root node")
	// ErrNoBranch is returned (wrapped) when the value of a sample does
	// not match any branch of a node, for instance because a discrete
	// value was never observed at that node during training
	ErrNoBranch = PredictionError("no branch matches the sample")
	// ErrMissingNode is returned (wrapped) when a node references a node
	// the tree does not have
	ErrMissingNode = PredictionError("node not found in tree")
	// ErrCannotPredictFromEmptySet is the error returned when trying to build
	// a prediction based on an empty dataset.
	ErrCannotPredictFromEmptySet = PredictionError("cannot make prediction for empty dataset")
)

func (pe PredictionError) Error() string {
	return string(pe)
}

/*
NewPrediction takes a map[string]float64 with the probabilities
of each label in the prediction and an integer with the number
of samples from which those probabilities were computed
and returns a prediction representing those values.
*/
func NewPrediction(probs map[string]float64, weight int) *Prediction {
	ps := make(map[string]float64, len(probs))
	for k, v := range probs {
		ps[k] = v
	}
	return &Prediction{probabilities: ps, weight: weight}
}

// NewPredictionFromSet takes a dataset and a label feature and returns
// a prediction for the label with the relative frequency of every label
// in the dataset. It fails with ErrCannotPredictFromEmptySet if there are
// no samples in the dataset, and with dataset.ErrUnlabeledSample if one of
// them has no label.
func NewPredictionFromSet(s dataset.Dataset, label feature.Feature) (*Prediction, error) {
	weight := s.Count()
	if weight == 0 {
		return nil, ErrCannotPredictFromEmptySet
	}
	counts, err := s.LabelCounts(label)
	if err != nil {
		return nil, err
	}
	probs := make(map[string]float64, len(counts))
	for v, c := range counts {
		probs[v] = float64(c) / float64(weight)
	}
	return &Prediction{probs, weight}, nil
}

/*
ProbabilityOf takes a string label and returns the float64 probability of
that label according to the prediction.
*/
func (p *Prediction) ProbabilityOf(label string) float64 {
	return p.probabilities[label]
}

/*
Probabilities returns a copy of the map of labels to their probabilities
*/
func (p *Prediction) Probabilities() map[string]float64 {
	ps := make(map[string]float64, len(p.probabilities))
	for k, v := range p.probabilities {
		ps[k] = v
	}
	return ps
}

/*
Weight returns the weight of the prediction: an
int equal to the number of samples in the dataset from which
the prediction was made
*/
func (p *Prediction) Weight() int {
	return p.weight
}

// Labels returns the labels of the prediction sorted
func (p *Prediction) Labels() []string {
	labels := make([]string, 0, len(p.probabilities))
	for l := range p.probabilities {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Ordered returns the outcomes of the prediction sorted by label
func (p *Prediction) Ordered() []Outcome {
	labels := p.Labels()
	result := make([]Outcome, len(labels))
	for i, l := range labels {
		result[i] = Outcome{l, p.probabilities[l]}
	}
	return result
}

/*
Normalized returns a prediction with the same labels whose probabilities
are scaled to add up to 1. A prediction whose probabilities add up to 0 is
returned as is.
*/
func (p *Prediction) Normalized() *Prediction {
	var sum float64
	for _, v := range p.probabilities {
		sum += v
	}
	if sum == 0 {
		return p
	}
	ps := make(map[string]float64, len(p.probabilities))
	for k, v := range p.probabilities {
		ps[k] = v / sum
	}
	return &Prediction{ps, p.weight}
}

/*
PredictedValue returns a string with the most probable label and a float64 with
its probability. Ties are resolved in favour of the first label in sorted order.
*/
func (p *Prediction) PredictedValue() (value string, prob float64) {
	for _, o := range p.Ordered() {
		if value == "" || o.Probability > prob {
			value = o.Label
			prob = o.Probability
		}
	}
	return
}

func (p *Prediction) String() string {
	parts := make([]string, 0, len(p.probabilities))
	for _, o := range p.Ordered() {
		parts = append(parts, fmt.Sprintf("%s: %s", o.Label, formatNumber(o.Probability)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatNumber(f float64) string {
	return decimal.NewFromFloat(f).String()
}

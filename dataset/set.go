package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/hafniz/mlcore/feature"
)

/*
Dataset represents an ordered collection of samples.

Its Entropy method returns the entropy (in bits) of the dataset for a given
label Feature: a measure of the disinformation we have on the classes of
samples that belong to it.

Its SubsetWith method takes a feature.Criterion and returns a subset that only
contains samples that satisfy it, keeping their order.

Its FeatureValues method returns the distinct defined values samples take for
a feature, in the order they are first observed.

Its LabelCounts method returns the number of samples for every label, failing
with ErrUnlabeledSample if any sample has no label.
*/
type Dataset interface {
	Entropy(label feature.Feature) (float64, error)
	SubsetWith(feature.Criterion) (Dataset, error)
	FeatureValues(feature.Feature) ([]interface{}, error)
	LabelCounts(label feature.Feature) (map[string]int, error)
	LabelOrder(label feature.Feature) ([]string, error)
	Samples() []Sample
	Count() int
	Criteria() []feature.Criterion
}

// IntegrityError represents an error on the consistency of the data
// a dataset holds
type IntegrityError string

// ErrUnlabeledSample is returned when a sample in a dataset has no label
const ErrUnlabeledSample = IntegrityError("sample has no label")

func (ie IntegrityError) Error() string {
	return string(ie)
}

type memoryDataset struct {
	samples  []Sample
	criteria []feature.Criterion
}

/*
New takes a slice of samples and returns a dataset built with them.
Subsets replicate the slice of samples they keep.
*/
func New(samples []Sample) Dataset {
	return &memoryDataset{samples: samples}
}

func (s *memoryDataset) Count() int {
	return len(s.samples)
}

// Entropy computes the entropy of the label counts on every call, so a
// dataset is never written after New and can be shared between goroutines.
func (s *memoryDataset) Entropy(label feature.Feature) (float64, error) {
	counts, err := s.LabelCounts(label)
	if err != nil {
		return 0.0, err
	}
	return Entropy(counts), nil
}

/*
Entropy takes a map of counts and returns the Shannon entropy in bits of the
distribution they describe. Zero counts do not contribute.
*/
func Entropy(counts map[string]int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0.0
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	// sum in a fixed order so equal inputs give bit-identical results
	sort.Strings(keys)
	var result float64
	for _, k := range keys {
		c := counts[k]
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		result -= p * math.Log2(p)
	}
	return result
}

func (s *memoryDataset) FeatureValues(f feature.Feature) ([]interface{}, error) {
	result := []interface{}{}
	encountered := make(map[interface{}]bool)
	for _, sample := range s.samples {
		v, err := sample.ValueFor(f)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		if !encountered[v] {
			encountered[v] = true
			result = append(result, v)
		}
	}
	return result, nil
}

func (s *memoryDataset) SubsetWith(fc feature.Criterion) (Dataset, error) {
	var samples []Sample
	for _, sample := range s.samples {
		ok, err := fc.SatisfiedBy(sample)
		if err != nil {
			return nil, err
		}
		if ok {
			samples = append(samples, sample)
		}
	}
	criteria := make([]feature.Criterion, 0, len(s.criteria)+1)
	criteria = append(criteria, s.criteria...)
	return &memoryDataset{samples: samples, criteria: append(criteria, fc)}, nil
}

func (s *memoryDataset) Samples() []Sample {
	return s.samples
}

func (s *memoryDataset) LabelCounts(label feature.Feature) (map[string]int, error) {
	result := make(map[string]int)
	for _, sample := range s.samples {
		l, err := Label(sample, label)
		if err != nil {
			return nil, err
		}
		result[l]++
	}
	return result, nil
}

// LabelOrder returns the distinct labels of the dataset sorted
func (s *memoryDataset) LabelOrder(label feature.Feature) ([]string, error) {
	counts, err := s.LabelCounts(label)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels, nil
}

func (s *memoryDataset) Criteria() []feature.Criterion {
	return s.criteria
}

func (s *memoryDataset) String() string {
	return fmt.Sprintf("{Dataset %d samples, criteria %v}", len(s.samples), s.criteria)
}

/*
Label takes a sample and a label feature and returns the sample's label
as a string. It returns ErrUnlabeledSample if the sample does not define it.
*/
func Label(s Sample, label feature.Feature) (string, error) {
	v, err := s.ValueFor(label)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", ErrUnlabeledSample
	}
	if l, ok := v.(string); ok {
		if l == "" {
			return "", ErrUnlabeledSample
		}
		return l, nil
	}
	return fmt.Sprintf("%v", v), nil
}

package dataset

import (
	"fmt"

	"github.com/hafniz/mlcore/feature"
)

/*
Sample represents an instance to classify or from which to learn how to
classify them. It is immutable once built.

Its ValueFor method returns the value of the sample corresponding to the feature
passed as parameter, nil when undefined. The label of a sample is its value
for the label feature.
*/
type Sample interface {
	ValueFor(feature.Feature) (interface{}, error)
}

type sample struct {
	featureValues map[string]interface{}
}

/*
NewSample takes a map of feature string names to values and returns
a sample. The map is copied.
*/
func NewSample(featureValues map[string]interface{}) Sample {
	fvs := make(map[string]interface{}, len(featureValues))
	for k, v := range featureValues {
		fvs[k] = v
	}
	return &sample{fvs}
}

/*
WithValue takes a sample, a feature and a value and returns a new sample
with the values of the given one for the given features plus the given
value for the given feature.
*/
func WithValue(s Sample, features []feature.Feature, f feature.Feature, value interface{}) (Sample, error) {
	fvs := make(map[string]interface{}, len(features)+1)
	for _, ef := range features {
		v, err := s.ValueFor(ef)
		if err != nil {
			return nil, err
		}
		fvs[ef.Name()] = v
	}
	fvs[f.Name()] = value
	return &sample{fvs}, nil
}

func (s *sample) ValueFor(f feature.Feature) (interface{}, error) {
	return s.featureValues[f.Name()], nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.featureValues)
}

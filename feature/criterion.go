package feature

import (
	"fmt"
	"strconv"
)

/*
Criterion represents a constraint on a feature

Its SatisfiedBy method takes a sample and returns a boolean indicating if
the sample's value for the feature satisfies the criterion.

Its Feature method returns the feature on which the criterion is applied.
*/
type Criterion interface {
	Feature() Feature
	SatisfiedBy(sample Sample) (bool, error)
}

/*
Sample is an interface for something that can satisfy a Criterion.

Its ValueFor method returns the value corresponding to the feature
passed as parameter, nil if undefined.
*/
type Sample interface {
	ValueFor(Feature) (interface{}, error)
}

/*
ContinuousCriterion represents a constraint on a continuous feature with
respect to a threshold: either the value is less than or equal to it, or
it is above it.
*/
type ContinuousCriterion interface {
	Criterion
	Threshold() float64
	Above() bool
}

/*
DiscreteCriterion represents a constraint on a discrete feature, a
value it must take.
*/
type DiscreteCriterion interface {
	Criterion
	Value() string
}

type continuousCriterion struct {
	feature   *ContinuousFeature
	threshold float64
	above     bool
}

type discreteCriterion struct {
	feature *DiscreteFeature
	value   string
}

/*
NewContinuousCriterion takes a ContinuousFeature, a threshold and an above
flag. The returned criterion is satisfied by values greater than the
threshold when above is true, and by values less than or equal to it
otherwise.
*/
func NewContinuousCriterion(feature *ContinuousFeature, threshold float64, above bool) ContinuousCriterion {
	return &continuousCriterion{feature, threshold, above}
}

/*
NewDiscreteCriterion takes a DiscreteFeature and a value and returns a
DiscreteCriterion satisfied by samples taking exactly that value.
*/
func NewDiscreteCriterion(feature *DiscreteFeature, value string) DiscreteCriterion {
	return &discreteCriterion{feature, value}
}

func (cc *continuousCriterion) Feature() Feature {
	return cc.feature
}

/*
SatisfiedBy receives a sample and returns false if the sample does not
define a value for the feature, a *KindError if the value is not a float64,
and otherwise whether the value falls on the criterion's side of the
threshold.
*/
func (cc *continuousCriterion) SatisfiedBy(sample Sample) (bool, error) {
	val, err := sample.ValueFor(cc.feature)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	fv, err := FloatValue(cc.feature, val)
	if err != nil {
		return false, err
	}
	if cc.above {
		return fv > cc.threshold, nil
	}
	return fv <= cc.threshold, nil
}

func (cc *continuousCriterion) Threshold() float64 {
	return cc.threshold
}

func (cc *continuousCriterion) Above() bool {
	return cc.above
}

func (cc *continuousCriterion) String() string {
	op := "<="
	if cc.above {
		op = ">"
	}
	return fmt.Sprintf("%s %s %s", cc.feature.Name(), op, strconv.FormatFloat(cc.threshold, 'g', -1, 64))
}

func (dc *discreteCriterion) Feature() Feature {
	return dc.feature
}

/*
SatisfiedBy receives a sample and returns false if the sample does not
define a value for the feature, a *KindError if the value is not a string,
and otherwise whether the value equals the criterion's.
*/
func (dc *discreteCriterion) SatisfiedBy(sample Sample) (bool, error) {
	val, err := sample.ValueFor(dc.feature)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	sv, err := StringValue(dc.feature, val)
	if err != nil {
		return false, err
	}
	return dc.value == sv, nil
}

func (dc *discreteCriterion) Value() string {
	return dc.value
}

func (dc *discreteCriterion) String() string {
	return fmt.Sprintf("%s = %s", dc.feature.Name(), dc.value)
}

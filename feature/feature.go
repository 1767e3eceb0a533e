package feature

import "fmt"

/*
Feature represents a property that can be observed on an instance.
*/
type Feature interface {
	Name() string
	Valid(interface{}) (bool, error)
}

/*
Kind tells apart discrete features (string values taken from a finite set)
from continuous ones (float64 values).
*/
type Kind int

const (
	// Unknown is the kind of features this package does not define
	Unknown Kind = iota
	// Discrete is the kind of *DiscreteFeature
	Discrete
	// Continuous is the kind of *ContinuousFeature
	Continuous
)

func (k Kind) String() string {
	switch k {
	case Discrete:
		return "discrete"
	case Continuous:
		return "continuous"
	}
	return "unknown"
}

/*
DiscreteFeature represents a property that can be observed and that can only
take a value among a finite set.
*/
type DiscreteFeature struct {
	name            string
	availableValues []string
}

/*
ContinuousFeature represents a property that can be observed and that can take
a numeric value
*/
type ContinuousFeature struct {
	name string
}

/*
NewDiscreteFeature takes a name string and a slice of available value strings
and returns a discrete feature with them. A nil or empty slice of available
values means any string is accepted.
*/
func NewDiscreteFeature(name string, availableValues []string) *DiscreteFeature {
	return &DiscreteFeature{name, availableValues}
}

/*
NewContinuousFeature takes a name string and returns a continuous feature with
the given name.
*/
func NewContinuousFeature(name string) *ContinuousFeature {
	return &ContinuousFeature{name}
}

// KindOf returns the Kind of the given feature
func KindOf(f Feature) Kind {
	switch f.(type) {
	case *DiscreteFeature:
		return Discrete
	case *ContinuousFeature:
		return Continuous
	}
	return Unknown
}

// Name returns a string with the name of the feature
func (df *DiscreteFeature) Name() string {
	return df.name
}

/*
Valid receives an interface value and returns a boolean and an error. When the
value is a string included in the available values of the feature (or the
feature does not restrict them), the method returns true and nil. Otherwise it
returns false and an error describing the reason. Nil values are valid, they
stand for undefined.
*/
func (df *DiscreteFeature) Valid(value interface{}) (bool, error) {
	if value == nil {
		return true, nil
	}
	vs, ok := value.(string)
	if !ok {
		return false, &KindError{Feature: df.name, Expected: Discrete, Got: Discrete, Value: value}
	}
	if len(df.availableValues) == 0 {
		return true, nil
	}
	for _, av := range df.availableValues {
		if av == vs {
			return true, nil
		}
	}
	return false, fmt.Errorf("discrete feature %s got unknown value %s", df.name, vs)
}

/*
AvailableValues returns a string slice with the values available for the feature
*/
func (df *DiscreteFeature) AvailableValues() []string {
	return df.availableValues
}

func (df *DiscreteFeature) String() string {
	return df.name
}

// Name returns a string with the name of the feature
func (cf *ContinuousFeature) Name() string {
	return cf.name
}

/*
Valid receives an interface value and returns a boolean and an error. When the
value parameter is a float64 or nil it returns true and nil, otherwise it
returns false and a *KindError.
*/
func (cf *ContinuousFeature) Valid(value interface{}) (bool, error) {
	if value == nil {
		return true, nil
	}
	if _, ok := value.(float64); !ok {
		return false, &KindError{Feature: cf.name, Expected: Continuous, Got: Continuous, Value: value}
	}
	return true, nil
}

func (cf *ContinuousFeature) String() string {
	return cf.name
}

package feature

import "fmt"

/*
KindError is returned when a value or a feature does not match the kind
of computation requested on it: a discrete formula applied to a continuous
feature, a float64 where a string was expected, or a feature of a kind
unknown to this package.
*/
type KindError struct {
	Feature  string
	Expected Kind
	// Got is the kind of the feature. It differs from Expected
	// only when the feature itself is of the wrong kind.
	Got Kind
	// Value is the offending value, nil for undefined values
	Value interface{}
}

func (ke *KindError) Error() string {
	if ke.Got != ke.Expected {
		return fmt.Sprintf("feature %s is %s, expected %s", ke.Feature, ke.Got, ke.Expected)
	}
	if ke.Value == nil {
		return fmt.Sprintf("%s feature %s has an undefined value", ke.Expected, ke.Feature)
	}
	return fmt.Sprintf("%s feature %s got %T value %v", ke.Expected, ke.Feature, ke.Value, ke.Value)
}

/*
StringValue takes a discrete feature and a value for it and returns the
value as a string, or a *KindError if the value is undefined or not a string.
*/
func StringValue(f Feature, v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &KindError{Feature: f.Name(), Expected: Discrete, Got: Discrete, Value: v}
	}
	return s, nil
}

/*
FloatValue takes a continuous feature and a value for it and returns the
value as a float64, or a *KindError if the value is undefined or not a
float64.
*/
func FloatValue(f Feature, v interface{}) (float64, error) {
	fv, ok := v.(float64)
	if !ok {
		return 0, &KindError{Feature: f.Name(), Expected: Continuous, Got: Continuous, Value: v}
	}
	return fv, nil
}

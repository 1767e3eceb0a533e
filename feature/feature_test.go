package feature

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSample map[string]interface{}

func (ms mapSample) ValueFor(f Feature) (interface{}, error) {
	return ms[f.Name()], nil
}

func TestDiscreteFeatureValid(t *testing.T) {
	color := NewDiscreteFeature("color", []string{"red", "blue"})
	tests := []struct {
		value interface{}
		ok    bool
		kind  bool
	}{
		{nil, true, false},
		{"red", true, false},
		{"green", false, false},
		{1.0, false, true},
	}
	for _, tt := range tests {
		ok, err := color.Valid(tt.value)
		assert.Equal(t, tt.ok, ok, "value %v", tt.value)
		var ke *KindError
		assert.Equal(t, tt.kind, errors.As(err, &ke), "value %v", tt.value)
	}

	anything := NewDiscreteFeature("label", nil)
	ok, err := anything.Valid("whatever")
	assert.True(t, ok)
	assert.NoError(t, err)
}

func TestContinuousFeatureValid(t *testing.T) {
	x := NewContinuousFeature("x")
	ok, err := x.Valid(2.5)
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = x.Valid("2.5")
	assert.False(t, ok)
	var ke *KindError
	require.True(t, errors.As(err, &ke))
	assert.Equal(t, "x", ke.Feature)
	assert.Equal(t, Continuous, ke.Expected)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Discrete, KindOf(NewDiscreteFeature("a", nil)))
	assert.Equal(t, Continuous, KindOf(NewContinuousFeature("b")))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestContinuousCriterionBoundary(t *testing.T) {
	x := NewContinuousFeature("x")
	low := NewContinuousCriterion(x, 2, false)
	high := NewContinuousCriterion(x, 2, true)

	for _, tt := range []struct {
		value     float64
		low, high bool
	}{
		{1, true, false},
		{2, true, false},
		{2.0000001, false, true},
	} {
		ok, err := low.SatisfiedBy(mapSample{"x": tt.value})
		require.NoError(t, err)
		assert.Equal(t, tt.low, ok, "low for %v", tt.value)
		ok, err = high.SatisfiedBy(mapSample{"x": tt.value})
		require.NoError(t, err)
		assert.Equal(t, tt.high, ok, "high for %v", tt.value)
	}

	ok, err := low.SatisfiedBy(mapSample{})
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = low.SatisfiedBy(mapSample{"x": "two"})
	var ke *KindError
	assert.True(t, errors.As(err, &ke))

	assert.Equal(t, "x <= 2", low.(interface{ String() string }).String())
	assert.Equal(t, "x > 2", high.(interface{ String() string }).String())
}

func TestDiscreteCriterion(t *testing.T) {
	color := NewDiscreteFeature("color", nil)
	c := NewDiscreteCriterion(color, "red")
	ok, err := c.SatisfiedBy(mapSample{"color": "red"})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.SatisfiedBy(mapSample{"color": "blue"})
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = c.SatisfiedBy(mapSample{"color": 3.0})
	assert.Error(t, err)
}

func TestKindErrorMessages(t *testing.T) {
	assert.Equal(t, "feature f is unknown, expected discrete",
		(&KindError{Feature: "f", Expected: Discrete, Got: Unknown}).Error())
	assert.Equal(t, "continuous feature f has an undefined value",
		(&KindError{Feature: "f", Expected: Continuous, Got: Continuous}).Error())
	assert.Equal(t, "discrete feature f got float64 value 1.5",
		(&KindError{Feature: "f", Expected: Discrete, Got: Discrete, Value: 1.5}).Error())
}

/*
Package yaml provides methods to parse feature.Feature specifications
also known as metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"io/ioutil"

	"github.com/hafniz/mlcore/feature"
	yaml "gopkg.in/yaml.v2"
)

/*
ReadFeatures takes a slice of bytes with a feature specification in YML and
returns a slice of features parsed from it or an error.
The YML is expected to be an object containing a features property. The value for this
should be an object with a property for each feature with its name and either a
string value of 'continuous' for continuous features or a list of valid values
for discrete features. An empty list declares a discrete feature that accepts
any value. Features are returned in the order they are declared.
*/
func ReadFeatures(md []byte) ([]feature.Feature, error) {
	metadata := struct {
		Features yaml.MapSlice
	}{}
	err := yaml.Unmarshal(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml features: %w", err)
	}
	if metadata.Features == nil {
		return nil, fmt.Errorf("metadata file has no feature information")
	}
	features := make([]feature.Feature, 0, len(metadata.Features))
	for _, item := range metadata.Features {
		fn := fmt.Sprintf("%v", item.Key)
		switch values := item.Value.(type) {
		case string:
			if values != "continuous" {
				return nil, fmt.Errorf("feature %s: invalid declaration %q", fn, values)
			}
			features = append(features, feature.NewContinuousFeature(fn))
		case []interface{}:
			stringVs := make([]string, 0, len(values))
			for _, v := range values {
				stringVs = append(stringVs, fmt.Sprintf("%v", v))
			}
			features = append(features, feature.NewDiscreteFeature(fn, stringVs))
		case nil:
			features = append(features, feature.NewDiscreteFeature(fn, nil))
		default:
			return nil, fmt.Errorf("feature %s: invalid declaration of type %T", fn, item.Value)
		}
	}
	return features, nil
}

/*
ReadFeaturesFromFile takes a filepath string, reads its contents and uses
ReadFeatures to parse it and return a slice of parsed features or an error.
If the file indicated by the filepath cannot be opened for reading an error
will be returned.
*/
func ReadFeaturesFromFile(filepath string) ([]feature.Feature, error) {
	md, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading features yml file %s: %w", filepath, err)
	}
	features, err := ReadFeatures(md)
	if err != nil {
		err = fmt.Errorf("parsing features yml file %s: %w", filepath, err)
	}
	return features, err
}

// Split takes a slice of features and the name of the label feature and
// returns the features other than the label and the label itself, which
// must be discrete.
func Split(features []feature.Feature, label string) ([]feature.Feature, *feature.DiscreteFeature, error) {
	var rest []feature.Feature
	var lf *feature.DiscreteFeature
	for _, f := range features {
		if f.Name() != label {
			rest = append(rest, f)
			continue
		}
		df, ok := f.(*feature.DiscreteFeature)
		if !ok {
			return nil, nil, &feature.KindError{Feature: label, Expected: feature.Discrete, Got: feature.KindOf(f)}
		}
		lf = df
	}
	if lf == nil {
		return nil, nil, fmt.Errorf("label feature '%s' is not defined", label)
	}
	return rest, lf, nil
}

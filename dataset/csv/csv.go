/*
Package csv reads datasets from and writes them to CSV streams.

The header or first row of the CSV content holds the names of the features.
The rest of the rows hold their values, with the '?' string for undefined ones.
*/
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
)

// UndefinedValue is the string that stands for an undefined value
const UndefinedValue = "?"

/*
Writer is an interface for a dataset to which samples
can be written to.
*/
type Writer interface {
	// Write will attempt to write the given
	// samples and will return the actually written
	// number of samples and an error (if not all samples
	// could be written)
	Write([]dataset.Sample) (int, error)
	// WriteSample writes a single sample
	WriteSample(dataset.Sample) error
	// Count returns the total number of samples written
	// to the writer
	Count() int
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

type csvWriter struct {
	count    int
	features []feature.Feature
	w        *csv.Writer
}

/*
ReadDataset takes an io.Reader for a CSV stream and a slice of features and
returns a dataset.Dataset with the samples parsed from the reader or an error.

Header columns must name features in the given slice, except for the last one
which is ignored when unknown.
*/
func ReadDataset(reader io.Reader, features []feature.Feature) (dataset.Dataset, error) {
	samples := []dataset.Sample{}
	err := ReadBySample(reader, features, func(_ int, s dataset.Sample) (bool, error) {
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dataset.New(samples), nil
}

/*
ReadBySample takes an io.Reader for a CSV stream, a slice of features and a
lambda function on an integer and a dataset.Sample that returns a boolean value.
It parses the samples from the reader and for each it calls the lambda function
with the sample and its index as parameters. If the lambda function returns true,
it will continue processing the next sample, otherwise it will stop. An error is
returned if something goes wrong when reading the stream or parsing a sample.
*/
func ReadBySample(reader io.Reader, features []feature.Feature, lambda func(int, dataset.Sample) (bool, error)) error {
	featuresByName := featureSliceToMap(features)
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	columns, err := parseFeaturesFromCSVHeader(header, featuresByName)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		sample, err := parseSampleFromCSVRow(row, columns)
		if err != nil {
			return fmt.Errorf("parsing line %d: %w", l, err)
		}
		ok, err := lambda(l-2, sample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadDatasetFromFilePath takes a filepath string and a slice of features,
opens the file to which the filepath points to and uses ReadDataset to return a
dataset.Dataset or an error read from it. If the filepath is "" os.Stdin is
read instead.
*/
func ReadDatasetFromFilePath(filepath string, features []feature.Feature) (dataset.Dataset, error) {
	f, err := open(filepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := ReadDataset(f, features)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %w", filepath, err)
	}
	return ds, err
}

/*
ReadBySampleFromFilePath takes a filepath string for a CSV stream, a
slice of features and a lambda function and uses ReadBySample with them
on the opened file (or os.Stdin when the filepath is "").
*/
func ReadBySampleFromFilePath(filepath string, features []feature.Feature, lambda func(int, dataset.Sample) (bool, error)) error {
	f, err := open(filepath)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReadBySample(f, features, lambda)
}

/*
NewWriter takes an io.Writer and a slice of feature.Features and
returns a Writer that will write samples on the io.Writer with a column
for every given feature. The header is written right away.
*/
func NewWriter(writer io.Writer, features []feature.Feature) (Writer, error) {
	w := csv.NewWriter(writer)
	record := make([]string, len(features))
	for i, f := range features {
		record[i] = f.Name()
	}
	err := w.Write(record)
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	return &csvWriter{features: features, w: w}, nil
}

/*
WriteDataset takes a writer, a dataset.Dataset and a slice of features and
dumps to the writer the dataset in CSV format, specifying only the features
in the given slice for the samples.
*/
func WriteDataset(writer io.Writer, ds dataset.Dataset, features []feature.Feature) error {
	cw, err := NewWriter(writer, features)
	if err != nil {
		return err
	}
	_, err = cw.Write(ds.Samples())
	if err != nil {
		return err
	}
	return cw.Flush()
}

/*
FormatValue returns the CSV representation of a feature value: '?' for
undefined values and the shortest representation that parses back to the
same float64 for continuous values.
*/
func FormatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return UndefinedValue
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	}
	return fmt.Sprintf("%v", v)
}

func open(filepath string) (*os.File, error) {
	if filepath == "" {
		return os.Stdin, nil
	}
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	return f, nil
}

func parseFeaturesFromCSVHeader(header []string, features map[string]feature.Feature) ([]feature.Feature, error) {
	columns := make([]feature.Feature, len(header))
	for i, name := range header {
		f, ok := features[name]
		if !ok && i != len(header)-1 {
			return nil, fmt.Errorf("parsing header: reference to unknown feature %s", name)
		}
		columns[i] = f
	}
	return columns, nil
}

func parseSampleFromCSVRow(row []string, columns []feature.Feature) (dataset.Sample, error) {
	featureValues := make(map[string]interface{})
	for i, f := range columns {
		if f == nil {
			continue
		}
		v := row[i]
		var value interface{}
		var err error
		if v != UndefinedValue {
			if _, ok := f.(*feature.ContinuousFeature); ok {
				value, err = strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("converting %s to float64: %w", v, err)
				}
			} else {
				value = v
			}
		}
		if ok, err := f.Valid(value); !ok {
			return nil, fmt.Errorf("invalid value %v for feature %s: %w", value, f.Name(), err)
		}
		featureValues[f.Name()] = value
	}
	return dataset.NewSample(featureValues), nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Write(samples []dataset.Sample) (int, error) {
	for n, s := range samples {
		if err := cw.WriteSample(s); err != nil {
			return n, err
		}
	}
	return len(samples), nil
}

func (cw *csvWriter) WriteSample(sample dataset.Sample) error {
	record := make([]string, len(cw.features))
	for j, f := range cw.features {
		v, err := sample.ValueFor(f)
		if err != nil {
			return err
		}
		record[j] = FormatValue(v)
	}
	err := cw.w.Write(record)
	if err != nil {
		return fmt.Errorf("writing CSV row for sample %d: %w", cw.count+1, err)
	}
	cw.count++
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

func featureSliceToMap(features []feature.Feature) map[string]feature.Feature {
	result := make(map[string]feature.Feature)
	for _, f := range features {
		result[f.Name()] = f
	}
	return result
}

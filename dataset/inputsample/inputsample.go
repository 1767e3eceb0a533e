/*
Package inputsample provides a dataset.Sample whose values are asked for
interactively while a tree routes it.

Tree traversal only evaluates the split features of the nodes a sample goes
through, so predicting with a Sample asks just for the features on the path
the answers lead to, each one at most once.
*/
package inputsample

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hafniz/mlcore/feature"
)

// ErrNoMoreInput is returned when the input ends before a value is accepted
var ErrNoMoreInput = errors.New("no more input")

/*
Prompter asks for the value of a feature before its line is read, and is
told with the reason when a line is not accepted as a value for it. An error
returned by either method aborts the read.
*/
type Prompter interface {
	Ask(f feature.Feature) error
	Reject(f feature.Feature, line string, reason error) error
}

// Sample is a sample whose values are read from lines of an input the first
// time they are needed
type Sample struct {
	lines     *bufio.Scanner
	prompter  Prompter
	undefined string
	values    map[string]interface{}
	asked     []feature.Feature
}

/*
New takes a reader, a Prompter and the line that stands for an undefined
value and returns a Sample reading its values from r, one per line.

A line for a continuous feature must be a real number. A line for a discrete
feature must be one of its available values, any line if it declares none.
Lines that are not accepted are passed to the prompter's Reject and the next
one is read.
*/
func New(r io.Reader, p Prompter, undefinedValue string) *Sample {
	return &Sample{
		lines:     bufio.NewScanner(r),
		prompter:  p,
		undefined: undefinedValue,
		values:    make(map[string]interface{}),
	}
}

// ValueFor returns the value of the sample for f, asking for it and reading
// it if it was never asked for
func (s *Sample) ValueFor(f feature.Feature) (interface{}, error) {
	if v, ok := s.values[f.Name()]; ok {
		return v, nil
	}
	if feature.KindOf(f) == feature.Unknown {
		return nil, &feature.KindError{Feature: f.Name(), Expected: feature.Discrete, Got: feature.Unknown}
	}
	if err := s.prompter.Ask(f); err != nil {
		return nil, err
	}
	s.asked = append(s.asked, f)
	for s.lines.Scan() {
		line := strings.TrimSpace(s.lines.Text())
		v, err := s.parse(f, line)
		if err == nil {
			s.values[f.Name()] = v
			return v, nil
		}
		if err = s.prompter.Reject(f, line, err); err != nil {
			return nil, err
		}
	}
	if err := s.lines.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("reading %s: %w", f.Name(), ErrNoMoreInput)
}

func (s *Sample) parse(f feature.Feature, line string) (interface{}, error) {
	if line == s.undefined {
		return nil, nil
	}
	if feature.KindOf(f) == feature.Continuous {
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a real number", line)
		}
		return v, nil
	}
	if ok, err := f.Valid(line); !ok {
		return nil, err
	}
	return line, nil
}

// Asked returns the features the sample asked for, in order
func (s *Sample) Asked() []feature.Feature {
	return append([]feature.Feature(nil), s.asked...)
}

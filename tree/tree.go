package tree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
)

// Tree represents a classification tree. It is composed of
// an arena where all its nodes are stored, indexed by their ID,
// the id for the root node of the tree and the label it is able to
// predict.
type Tree struct {
	nodes  []*Node
	RootID NodeID
	Label  feature.Feature

	unseenValueFallback bool
}

// Option configures a Tree
type Option func(*Tree)

/*
WithUnseenValueFallback makes the tree predict the label distribution of a
node's own training samples when a sample matches none of its branches,
instead of failing with ErrNoBranch. Nodes without training samples still
fail.
*/
func WithUnseenValueFallback() Option {
	return func(t *Tree) {
		t.unseenValueFallback = true
	}
}

// New takes a label feature and options and returns an empty tree
// to predict the label.
func New(label feature.Feature, opts ...Option) *Tree {
	t := &Tree{RootID: NoNode, Label: label}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Predict takes a sample and returns the normalized prediction of the leaf
// the sample is routed to, or an error if the prediction could not be made.
func (t *Tree) Predict(s feature.Sample) (*Prediction, error) {
	n, err := t.route(s)
	if err != nil {
		return nil, err
	}
	return n.Prediction.Normalized(), nil
}

// Leaf takes a sample and returns the leaf node the sample is routed to.
func (t *Tree) Leaf(s feature.Sample) (*Node, error) {
	n, err := t.route(s)
	if err != nil {
		return nil, err
	}
	if !n.IsLeaf() {
		return nil, fmt.Errorf("routing sample: node %d is not a leaf", n.ID)
	}
	return n, nil
}

func (t *Tree) route(s feature.Sample) (*Node, error) {
	n, err := t.Root()
	if err != nil {
		return nil, err
	}
	for !n.IsLeaf() {
		var next *Node
		for _, b := range n.Branches {
			ok, err := b.Criterion.SatisfiedBy(s)
			if err != nil {
				return nil, fmt.Errorf("predicting sample at node %d: %w", n.ID, err)
			}
			if ok {
				next, err = t.Get(b.Child)
				if err != nil {
					return nil, fmt.Errorf("predicting sample: %w", err)
				}
				break
			}
		}
		if next == nil {
			return t.unmatched(n, s)
		}
		n = next
	}
	if n.Prediction == nil {
		return nil, fmt.Errorf("predicting sample: leaf %d has no prediction: %w", n.ID, ErrCannotPredictFromEmptySet)
	}
	return n, nil
}

// unmatched handles a sample that satisfies none of the branches of n
func (t *Tree) unmatched(n *Node, s feature.Sample) (*Node, error) {
	var name string
	var value interface{}
	if n.Split != nil {
		name = n.Split.Feature.Name()
		value, _ = s.ValueFor(n.Split.Feature)
	}
	if t.unseenValueFallback && n.Dataset != nil {
		p, err := NewPredictionFromSet(n.Dataset, t.Label)
		if err != nil {
			return nil, fmt.Errorf("falling back at node %d: %w", n.ID, err)
		}
		return &Node{ID: n.ID, ParentID: n.ParentID, Dataset: n.Dataset, Prediction: p}, nil
	}
	return nil, fmt.Errorf("%w: feature %s value %v at node %d", ErrNoBranch, name, value, n.ID)
}

/*
Test takes a dataset and returns three values:
  - the prediction success rate of the tree over the given dataset
  - the number of samples the tree could not route because of ErrNoBranch
  - an error if a prediction could not be made for reasons other than
    the tree not having a branch for it. If this is not nil, the other
    values will be 0.0 and 0 respectively
*/
func (t *Tree) Test(s dataset.Dataset) (float64, int, error) {
	count := s.Count()
	if count == 0 {
		return 0.0, 0, nil
	}
	var result float64
	var errCount int
	for _, sample := range s.Samples() {
		p, err := t.Predict(sample)
		if err != nil {
			if !errors.Is(err, ErrNoBranch) {
				return 0.0, 0, err
			}
			errCount++
			continue
		}
		pV, _ := p.PredictedValue()
		v, err := dataset.Label(sample, t.Label)
		if err != nil {
			return 0.0, 0, err
		}
		if pV == v {
			result += 1.0
		}
	}
	return result / float64(count), errCount, nil
}

// Traverse takes a context, bottomup boolean and an
// error-returning function that takes a context and a node
// as parameters, and goes through the tree running the
// function with the context and every traversed node.
// Traverse will call the function with a parent node before
// calling it for its children if bottomup is false, and
// call it after its children if bottomup is true.
// If the given context times out or is cancelled, the context
// error is returned. If the call to the function returns an
// error, the traversing is aborted and the error is returned.
func (t *Tree) Traverse(ctx context.Context, bottomup bool, f func(context.Context, *Node) error) error {
	n, err := t.Root()
	if err != nil {
		return err
	}
	return t.traverse(ctx, n, bottomup, f)
}

func (t *Tree) traverse(ctx context.Context, n *Node, bottomup bool, f func(context.Context, *Node) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !bottomup {
		if err := f(ctx, n); err != nil {
			return err
		}
	}
	for _, b := range n.Branches {
		sn, err := t.Get(b.Child)
		if err != nil {
			return err
		}
		if err = t.traverse(ctx, sn, bottomup, f); err != nil {
			return err
		}
	}
	if bottomup {
		return f(ctx, n)
	}
	return nil
}

// String returns the text rendering of the tree, see WriteTo
func (t *Tree) String() string {
	var sb strings.Builder
	if _, err := t.WriteTo(&sb); err != nil {
		return fmt.Sprintf("ERROR: %v\n", err)
	}
	return sb.String()
}

/*
WriteTo writes the tree as indented text, 4 spaces per depth level.
A node with a continuous split is written as a "{feature} <= {threshold}: "
line followed by its low subtree and a "{feature} > {threshold}: " line
followed by its high subtree. A node with a discrete split is written as a
"{feature} = {value}: " line per branch followed by its subtree. A leaf is
written as a "{label}: {probability}" line per label, sorted by label.
*/
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	root, err := t.Root()
	if err != nil {
		return 0, err
	}
	var sb strings.Builder
	if err = t.render(&sb, root, 0); err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func (t *Tree) render(sb *strings.Builder, n *Node, depth int) error {
	indent := strings.Repeat(" ", depth*4)
	if n.IsLeaf() {
		if n.Prediction == nil {
			return fmt.Errorf("rendering leaf %d: %w", n.ID, ErrCannotPredictFromEmptySet)
		}
		for _, o := range n.Prediction.Ordered() {
			fmt.Fprintf(sb, "%s%s: %s\n", indent, o.Label, formatNumber(o.Probability))
		}
		return nil
	}
	if n.Split == nil {
		return fmt.Errorf("rendering node %d: branches without a split", n.ID)
	}
	name := n.Split.Feature.Name()
	for _, b := range n.Branches {
		switch {
		case !n.Split.Continuous():
			fmt.Fprintf(sb, "%s%s = %s: \n", indent, name, b.Key)
		case b.Key == LowBranch:
			fmt.Fprintf(sb, "%s%s <= %s: \n", indent, name, formatNumber(n.Split.Threshold))
		default:
			fmt.Fprintf(sb, "%s%s > %s: \n", indent, name, formatNumber(n.Split.Threshold))
		}
		child, err := t.Get(b.Child)
		if err != nil {
			return err
		}
		if err = t.render(sb, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

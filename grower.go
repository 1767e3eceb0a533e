package mlcore

import (
	"context"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/tree"
)

// Seed takes a dataset, the candidate features and a tree with no nodes
// and adds to the tree its root node, holding the whole dataset and the
// split selected for it. It returns the root node.
func Seed(t *tree.Tree, features []feature.Feature, ds dataset.Dataset) (*tree.Node, error) {
	split, err := SelectSplit(ds, features, t.Label)
	if err != nil {
		return nil, err
	}
	n := &tree.Node{Dataset: ds, Split: split}
	t.Add(n)
	return n, nil
}

// BranchOut takes a tree, a node of the tree and the candidate features and
// develops the node. If the node meets a stopping condition it becomes a
// leaf and no nodes are returned. Otherwise the node's dataset is partitioned
// by its split, a child is added to the tree for every part with its own
// split already selected, and the children are returned in branch order.
//
// A node stops being developed when it has at most one sample, when all its
// samples share a label or when it has no split, checked in that order.
func BranchOut(t *tree.Tree, n *tree.Node, features []feature.Feature) ([]*tree.Node, error) {
	stop, err := isLeaf(n, t.Label)
	if err != nil {
		return nil, err
	}
	if stop {
		p, err := tree.NewPredictionFromSet(n.Dataset, t.Label)
		if err != nil {
			return nil, err
		}
		n.Prediction = p
		return nil, nil
	}
	parts, err := Partition(n.Dataset, n.Split)
	if err != nil {
		return nil, err
	}
	children := make([]*tree.Node, 0, len(parts))
	branches := make([]tree.Branch, 0, len(parts))
	for _, part := range parts {
		split, err := SelectSplit(part.Dataset, features, t.Label)
		if err != nil {
			return nil, err
		}
		child := &tree.Node{ParentID: n.ID, Dataset: part.Dataset, Split: split}
		t.Add(child)
		branches = append(branches, tree.Branch{Key: part.Key, Criterion: part.Criterion, Child: child.ID})
		children = append(children, child)
	}
	n.Branches = branches
	return children, nil
}

func isLeaf(n *tree.Node, label feature.Feature) (bool, error) {
	if n.Dataset.Count() <= 1 {
		return true, nil
	}
	counts, err := n.Dataset.LabelCounts(label)
	if err != nil {
		return false, err
	}
	if len(counts) <= 1 {
		return true, nil
	}
	return n.Split == nil, nil
}

/*
Grow takes a context, a dataset, the candidate features, the label feature
and tree options and grows a tree depth-first from the dataset, selecting
splits by gain ratio. Features may be used again at any depth.

Grow returns an error if the given context is cancelled between the
development of two nodes, or if a node cannot be developed: a
*feature.KindError if a value does not match its feature's kind,
dataset.ErrUnlabeledSample if a sample has no label and
tree.ErrCannotPredictFromEmptySet if the dataset is empty.
*/
func Grow(ctx context.Context, ds dataset.Dataset, features []feature.Feature, label feature.Feature, opts ...tree.Option) (*tree.Tree, error) {
	t := tree.New(label, opts...)
	root, err := Seed(t, features, ds)
	if err != nil {
		return nil, err
	}
	pending := []*tree.Node{root}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		children, err := BranchOut(t, n, features)
		if err != nil {
			return nil, err
		}
		for i := len(children) - 1; i >= 0; i-- {
			pending = append(pending, children[i])
		}
	}
	return t, nil
}

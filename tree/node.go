package tree

import (
	"fmt"
	"strconv"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
)

// NodeID identifies a node inside the arena of its Tree
type NodeID int

// NoNode is the NodeID of the parent of a root node and the RootID of
// an empty tree
const NoNode NodeID = -1

const (
	// LowBranch is the key of the branch of a continuous split that
	// takes values less than or equal to the threshold
	LowBranch = "less than or equal to threshold"
	// HighBranch is the key of the branch of a continuous split that
	// takes values greater than the threshold
	HighBranch = "greater than threshold"
)

/*
Node is a node of the tree
*/
type Node struct {
	// An ID to identify the node in its tree
	ID NodeID
	// The ID for the parent of the node in the tree, NoNode for the root
	ParentID NodeID
	// The training samples routed to this node. It is kept after
	// growing the tree.
	Dataset dataset.Dataset
	// The split chosen for the node when it was created, nil if no
	// split improves the node's dataset
	Split *Split
	// The label distribution of the node's dataset. Only leaves have one.
	Prediction *Prediction
	// The branches to the nodes directly under this one, empty for leaves.
	Branches []Branch
}

/*
Branch links a node to one of its children. Samples satisfying
the Criterion are routed to the Child.
*/
type Branch struct {
	Key       string
	Criterion feature.Criterion
	Child     NodeID
}

/*
Split is a feature chosen to split a node's dataset, with the threshold
that dichotomizes it when the feature is continuous and the gain ratio it
attains.
*/
type Split struct {
	Feature   feature.Feature
	Threshold float64
	GainRatio float64
}

// Continuous returns whether the split is on a continuous feature
func (s *Split) Continuous() bool {
	return feature.KindOf(s.Feature) == feature.Continuous
}

func (s *Split) String() string {
	if s.Continuous() {
		return fmt.Sprintf("%s <= %s (gain ratio %v)", s.Feature.Name(), strconv.FormatFloat(s.Threshold, 'g', -1, 64), s.GainRatio)
	}
	return fmt.Sprintf("%s (gain ratio %v)", s.Feature.Name(), s.GainRatio)
}

// IsLeaf returns whether the node has no branches
func (n *Node) IsLeaf() bool {
	return len(n.Branches) == 0
}

// Branch returns the branch of the node with the given key
func (n *Node) Branch(key string) (Branch, bool) {
	for _, b := range n.Branches {
		if b.Key == key {
			return b, true
		}
	}
	return Branch{}, false
}

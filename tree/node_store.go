package tree

import "fmt"

/*
Add takes a node, assigns it the next sequential ID of the tree and stores it.
The first node added to an empty tree becomes its root. It returns the
assigned ID.
*/
func (t *Tree) Add(n *Node) NodeID {
	n.ID = NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	if t.RootID == NoNode {
		t.RootID = n.ID
		n.ParentID = NoNode
	}
	return n.ID
}

// Get takes an id and returns the node in the tree with that id or
// an error wrapping ErrMissingNode if there is none
func (t *Tree) Get(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("getting node %d: %w", id, ErrMissingNode)
	}
	return t.nodes[id], nil
}

// Root returns the root node of the tree or ErrNoRoot if
// the tree has none
func (t *Tree) Root() (*Node, error) {
	if t == nil || t.RootID == NoNode {
		return nil, ErrNoRoot
	}
	return t.Get(t.RootID)
}

// Len returns the number of nodes in the tree
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Nodes returns the nodes of the tree indexed by their ID
func (t *Tree) Nodes() []*Node {
	return t.nodes
}

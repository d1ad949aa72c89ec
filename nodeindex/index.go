// Package nodeindex maps opaque node identifiers to dense positions 0..n-1
// and back.
//
// An Index is built once from a topologically sorted enumeration of the
// graph's nodes and never changes afterwards, so it is safe for concurrent
// readers without locking.
package nodeindex

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/pathrec/core"
	"github.com/katalvlaran/pathrec/dfs"
)

// Sentinel errors for index construction and lookups.
var (
	// ErrEmptyOrder is returned when New receives no nodes.
	ErrEmptyOrder = errors.New("nodeindex: empty node order")

	// ErrEmptyNodeID is returned when the order contains an empty identifier.
	ErrEmptyNodeID = errors.New("nodeindex: node ID is empty")

	// ErrDuplicateNode is returned when the order names a node twice.
	ErrDuplicateNode = errors.New("nodeindex: duplicate node")

	// ErrNotFound is returned by Index for an identifier the index does not know.
	ErrNotFound = errors.New("nodeindex: node not found")

	// ErrOutOfRange is returned by NodeAt for a position outside [0,n).
	ErrOutOfRange = errors.New("nodeindex: position out of range")
)

// Index is an immutable bijection between node IDs and positions.
type Index struct {
	pos   map[string]int // node ID → position
	nodes []string       // position → node ID
}

// New builds an Index from order, assigning position i to order[i].
// The caller guarantees order is topological; New only checks that it is a
// valid enumeration (non-empty, no empty IDs, no duplicates).
//
// Complexity: O(n) time and space.
func New(order []string) (*Index, error) {
	if len(order) == 0 {
		return nil, ErrEmptyOrder
	}
	idx := &Index{
		pos:   make(map[string]int, len(order)),
		nodes: make([]string, len(order)),
	}
	for i, id := range order {
		if id == "" {
			return nil, fmt.Errorf("%w: at position %d", ErrEmptyNodeID, i)
		}
		if prev, dup := idx.pos[id]; dup {
			return nil, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateNode, id, prev, i)
		}
		idx.pos[id] = i
		idx.nodes[i] = id
	}

	return idx, nil
}

// FromGraph topologically sorts g and builds an Index from the result.
// Errors from dfs.TopologicalSort (ErrGraphNil, ErrCycleDetected, ...) are
// returned wrapped; an empty graph yields ErrEmptyOrder.
func FromGraph(g *core.Graph, opts ...dfs.TopoOption) (*Index, error) {
	order, err := dfs.TopologicalSort(g, opts...)
	if err != nil {
		return nil, fmt.Errorf("nodeindex: topological order: %w", err)
	}

	return New(order)
}

// Index returns the position of node.
func (x *Index) Index(node string) (int, error) {
	i, ok := x.pos[node]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, node)
	}

	return i, nil
}

// NodeAt returns the identifier stored at position i.
func (x *Index) NodeAt(i int) (string, error) {
	if i < 0 || i >= len(x.nodes) {
		return "", fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, i, len(x.nodes))
	}

	return x.nodes[i], nil
}

// Len returns the number of indexed nodes.
func (x *Index) Len() int { return len(x.nodes) }

// Nodes returns a copy of the position → ID table.
func (x *Index) Nodes() []string {
	out := make([]string, len(x.nodes))
	copy(out, x.nodes)

	return out
}

// Positions returns a copy of the ID → position table.
func (x *Index) Positions() map[string]int {
	out := make(map[string]int, len(x.pos))
	for k, v := range x.pos {
		out[k] = v
	}

	return out
}

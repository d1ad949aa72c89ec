// File: types.go
// Role: Vertex, Edge and Graph declarations, sentinel errors and the
// NewGraph constructor.
//
// Errors:
//
//	ErrEmptyVertexID       - vertex ID is the empty string.
//	ErrVertexNotFound      - requested vertex does not exist.
//	ErrLoopNotAllowed      - self-loop on a computation node.
//	ErrMultiEdgeNotAllowed - parallel edge between the same pair of nodes.
package core

import (
	"errors"
	"sync"
)

// Sentinel errors for core graph operations.
var (
	// ErrEmptyVertexID indicates that the provided Vertex has an empty ID.
	ErrEmptyVertexID = errors.New("core: vertex ID is empty")

	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("core: vertex not found")

	// ErrLoopNotAllowed indicates a self-loop was attempted. A computation
	// node cannot consume its own output.
	ErrLoopNotAllowed = errors.New("core: self-loop not allowed")

	// ErrMultiEdgeNotAllowed indicates a parallel edge was attempted.
	ErrMultiEdgeNotAllowed = errors.New("core: multi-edges not allowed")
)

// Vertex represents a computation node in the graph.
//
// ID uniquely identifies this Vertex within its Graph.
// Metadata stores arbitrary key-value data (layer kind, channel count, ...).
type Vertex struct {
	// ID is the unique identifier for this Vertex.
	ID string

	// Metadata stores arbitrary user data. It is never read by the recorder.
	Metadata map[string]interface{}
}

// Edge represents a directed data dependency From→To.
type Edge struct {
	// ID uniquely identifies this edge in the Graph ("e1", "e2", ...).
	ID string

	// From is the producing vertex ID.
	From string

	// To is the consuming vertex ID.
	To string
}

// Graph is the in-memory directed computation graph.
//
// muVert protects the vertices map; muEdgeAdj protects edges, succ and pred.
// Lock order is always muVert -> muEdgeAdj.
type Graph struct {
	muVert    sync.RWMutex // guards vertices
	muEdgeAdj sync.RWMutex // guards edges and adjacency

	// Storage
	nextEdgeID uint64             // atomic edge ID generator
	vertices   map[string]*Vertex // vertex ID → Vertex
	edges      map[string]*Edge   // edge ID → Edge

	// succ[from][to] = edgeID ; pred[to][from] = edgeID
	succ map[string]map[string]string
	pred map[string]map[string]string
}

// NewGraph creates an empty directed computation graph.
// Complexity: O(1)
func NewGraph() *Graph {
	return &Graph{
		vertices: make(map[string]*Vertex),
		edges:    make(map[string]*Edge),
		succ:     make(map[string]map[string]string),
		pred:     make(map[string]map[string]string),
	}
}

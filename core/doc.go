// Package core provides the thread-safe, in-memory computation graph that
// the path recorder samples sub-architectures from.
//
// The Graph G = (V,E) is a directed graph of computation nodes:
//
//   - Vertices are identified by non-empty string IDs (opaque to the recorder).
//   - Edges are directed From→To; an edge means "To consumes the output of From".
//   - Self-loops are rejected (ErrLoopNotAllowed).
//   - Parallel edges are rejected (ErrMultiEdgeNotAllowed); a node either
//     feeds another node or it does not.
//   - Both directions of the adjacency are indexed, so Predecessors and
//     Successors are O(d log d) lookups.
//   - Separate sync.RWMutex for vertices (muVert) and edges+adjacency
//     (muEdgeAdj), acquired in that order.
//
// Core Methods:
//
//	// Vertex lifecycle
//	AddVertex(id string) error         // O(1), idempotent
//	HasVertex(id string) bool          // O(1)
//
//	// Edge lifecycle
//	AddEdge(from, to string) (edgeID string, err error) // O(1)†
//	HasEdge(from, to string) bool      // O(1)
//
//	// Query
//	Successors(id string) ([]string, error)   // O(d·log d), sorted
//	Predecessors(id string) ([]string, error) // O(d·log d), sorted
//	Sources() []string, Sinks() []string      // O(V·log V)
//	Vertices() []string                       // O(V·log V)
//	Edges() []*Edge                           // O(E·log E)
//	Degree(id string) (in, out int, err error)
//	VertexCount() int, EdgeCount() int        // O(1)
//
// Errors:
//
//	ErrEmptyVertexID       – zero-length vertex ID
//	ErrVertexNotFound      – missing vertex
//	ErrLoopNotAllowed      – self-loop
//	ErrMultiEdgeNotAllowed – parallel edge
//
// † amortized constant time: atomic ID generation + nested-map insertion.
//
// The graph is never mutated by the tracker; build it completely, then hand
// it to nodeindex.FromGraph / recorder.FromGraph.
package core

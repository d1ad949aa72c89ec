// File: methods_adjacent.go
// Role: Neighborhood APIs (Successors, Predecessors) and adjacency helpers.
// Determinism:
//   - Successors() and Predecessors() return unique IDs sorted lex asc.
// Concurrency:
//   - Read operations hold muVert then muEdgeAdj read locks.
//   - ensureAdjacency is called only under the muEdgeAdj write lock.

package core

import "sort"

// Successors returns the IDs of the vertices that consume id's output.
//
// Implementation:
//   - Stage 1: Validate id is non-empty (ErrEmptyVertexID).
//   - Stage 2: Acquire muVert then muEdgeAdj read locks for a consistent snapshot.
//   - Stage 3: Validate vertex existence (ErrVertexNotFound).
//   - Stage 4: Copy the succ bucket keys and sort them.
//
// Complexity:
//   - Time O(d log d), Space O(d).
func (g *Graph) Successors(id string) ([]string, error) {
	return g.adjacent(id, func() map[string]map[string]string { return g.succ })
}

// Predecessors returns the IDs of the vertices that id consumes, i.e. the
// sources u of every edge u→id. This is the query the tracker relies on
// to propagate activation.
//
// Errors:
//   - ErrEmptyVertexID: if id == "".
//   - ErrVertexNotFound: if the vertex does not exist.
//
// Complexity:
//   - Time O(d log d), Space O(d).
func (g *Graph) Predecessors(id string) ([]string, error) {
	return g.adjacent(id, func() map[string]map[string]string { return g.pred })
}

// adjacent snapshots one adjacency direction for id.
func (g *Graph) adjacent(id string, dir func() map[string]map[string]string) ([]string, error) {
	if id == "" {
		return nil, ErrEmptyVertexID
	}

	g.muVert.RLock()
	defer g.muVert.RUnlock()
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	if _, ok := g.vertices[id]; !ok {
		return nil, ErrVertexNotFound
	}

	bucket := dir()[id]
	ids := make([]string, 0, len(bucket))
	for other := range bucket {
		ids = append(ids, other)
	}
	sort.Strings(ids)

	return ids, nil
}

// ensureAdjacency makes sure both adjacency buckets for id exist.
// Caller must hold muEdgeAdj write lock.
func ensureAdjacency(g *Graph, id string) {
	if _, ok := g.succ[id]; !ok {
		g.succ[id] = make(map[string]string)
	}
	if _, ok := g.pred[id]; !ok {
		g.pred[id] = make(map[string]string)
	}
}

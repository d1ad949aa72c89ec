// Package bfs provides breadth-first search over a core.Graph, returning
// hop distances, parent links and visit order.
//
// What
//
//   - Explore vertices in non-decreasing hop distance from a start vertex.
//   - Walk Downstream (successors, the default) or Upstream (predecessors).
//     An upstream walk from an output node yields every node that can feed
//     it; nodes outside that set can never appear on the output's paths.
//   - Returns a BFSResult: Order, Depth and Parent.
//   - OnVisit hook (may abort with an error), neighbor filtering via
//     WithFilterNeighbor, and a MaxDepth limit (d>0) or explicit "no limit" (d==0).
//
// Determinism
//
//	core.Successors and core.Predecessors return sorted IDs and BFS enqueues
//	them in that order, so the visit sequence is reproducible.
//
// Complexity (V = |Vertices|, E = |Edges|)
//
//   - Time:   O(V + E)
//   - Memory: O(V)
//
// Errors
//
//   - ErrGraphNil, ErrStartVertexNotFound, ErrOptionViolation, ErrNeighbors.
//   - Context cancellation errors from WithContext.
//   - Any error returned by OnVisit, wrapped with the vertex ID.
package bfs

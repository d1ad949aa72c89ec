// Package builder provides deterministic computation-graph fixtures in the
// "functional options" style: a Constructor mutates a core.Graph using a
// resolved builderConfig, and BuildGraph composes constructors in order.
//
// The package offers:
//
//   - Topologies (all acyclic, edges point from producer to consumer):
//     – Chain(n):               0 → 1 → … → n-1.
//     – Diamond():              0 → {1,2} → 3.
//     – Layered(depth,width,p): depth layers of width nodes, every edge
//     between consecutive layers kept with probability p, and every
//     non-input node guaranteed at least one producer.
//   - Vertex-ID schemes (IDFn implementations): DefaultIDFn, SymbolIDFn,
//     SymbolNumberIDFn(prefix) and LayerIDFn(width), which names Layered
//     nodes "l<layer>p<pos>".
//   - Options: WithIDScheme, WithSeed, WithRand and the ID-scheme shortcuts.
//
// Guarantees:
//
//   - Same options, seed and constructor order ⇒ identical graphs.
//   - Fast-fail on invalid option parameters via panics in option constructors;
//     constructors themselves return sentinel errors and never panic.
package builder

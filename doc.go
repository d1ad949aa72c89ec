// Package pathrec records which nodes of sampled sub-architectures lie on
// a live path to a network's output.
//
// A one-shot architecture search samples, for every batch element, which
// nodes of a fixed computation graph are switched on. pathrec follows those
// decisions node by node and keeps, per node and batch element, the set of
// nodes that feed it through an all-on path. Partial paths that never
// reach the output are pruned; the surviving masks are averaged over
// iterations into posterior usage weights.
//
// Packages, leaves first:
//
//	matrix/    - dense row-major buffers and the element-wise kernels
//	core/      - thread-safe directed computation graph
//	dfs/       - deterministic topological order
//	bfs/       - reachability; nodes that can never feed an output
//	nodeindex/ - node ID ⇄ position mapping in topological order
//	stats/     - running mean of per-iteration usage, mergeable
//	tracker/   - the per-iteration active-set propagation
//	recorder/  - query surface: paths, posterior weights, consistency, snapshots
//	builder/   - deterministic DAG fixtures (chain, diamond, layered)
//	config/    - YAML graph files and run parameters
//	simulate/  - Bernoulli decision producer and a parallel runner
//	store/     - snapshot persistence (badger, YAML files)
//	telemetry/ - Prometheus collector over posterior weights
//
// Quick ASCII example:
//
//	in ──▶ conv ──▶ out
//	 └──────────────▲
//
// With conv sampled off, the support of out is {in, out}; with it on,
// {in, conv, out}.
//
// The pathrec command (cmd/pathrec) wraps these for graph files.
package pathrec

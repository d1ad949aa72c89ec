// Package tracker implements the active-set propagation over a batch of
// sampled sub-architectures.
//
// For every node i and batch element k the tracker keeps a 0/1 support row
// active[i][·][k]: the set of nodes that feed i through a path on which every
// node was sampled "on" in sample k. A node with no live input support, or
// one that was itself sampled off, has its whole support row collapsed to
// zero, which prunes dangling partial paths.
//
// Lifecycle per iteration:
//
//	StartIteration → RecordDecision × n (predecessors first) → queries
//
// The next StartIteration folds the finished iteration's pruned row of the
// default output node into the running mean, then resets the tensors.
// The last iteration of a run is therefore only counted once another
// StartIteration follows it.
//
// A Tracker is not safe for concurrent use; give every goroutine its own.
package tracker

import (
	"fmt"
	"log/slog"

	"github.com/katalvlaran/pathrec/matrix"
	"github.com/katalvlaran/pathrec/nodeindex"
	"github.com/katalvlaran/pathrec/stats"
)

// Graph is the read-only view of the computation graph the tracker needs.
// *core.Graph satisfies it.
type Graph interface {
	Predecessors(id string) ([]string, error)
}

// Tracker holds the per-iteration active and sampling tensors for one graph.
type Tracker struct {
	idx    *nodeindex.Index
	preds  [][]int // predecessor positions, resolved once
	outIdx int     // default output position, -1 when unset
	logger *slog.Logger
	strict bool
	mean   *stats.RunningMean

	started   bool
	width     int             // batch width b, 0 while unsized
	active    []*matrix.Dense // n rows of n×b, nil while unsized
	sampling  *matrix.Dense   // n×b, nil while unsized
	recorded  []bool
	decisions int
}

// New builds a Tracker over the nodes of idx, resolving every node's
// predecessors through g once.
//
// Errors:
//   - ErrNilGraph, ErrNilIndex.
//   - nodeindex.ErrNotFound when g names a predecessor outside idx, or the
//     default output is not indexed.
//   - stats.ErrDimensionMismatch when a supplied RunningMean has the wrong length.
//   - any error g.Predecessors returns, wrapped.
func New(g Graph, idx *nodeindex.Index, opts ...Option) (*Tracker, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if idx == nil {
		return nil, ErrNilIndex
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	n := idx.Len()
	t := &Tracker{
		idx:      idx,
		preds:    make([][]int, n),
		outIdx:   -1,
		logger:   o.logger,
		strict:   o.strict,
		recorded: make([]bool, n),
	}

	// Stage 1: resolve predecessor lists to positions.
	for i, id := range idx.Nodes() {
		ps, err := g.Predecessors(id)
		if err != nil {
			return nil, fmt.Errorf("tracker: predecessors of %q: %w", id, err)
		}
		t.preds[i] = make([]int, len(ps))
		for k, p := range ps {
			pi, err := idx.Index(p)
			if err != nil {
				return nil, fmt.Errorf("tracker: predecessor of %q: %w", id, err)
			}
			t.preds[i][k] = pi
		}
	}

	// Stage 2: default output.
	if o.defaultOut != "" {
		oi, err := idx.Index(o.defaultOut)
		if err != nil {
			return nil, fmt.Errorf("tracker: default output: %w", err)
		}
		t.outIdx = oi
	}

	// Stage 3: estimator.
	if o.mean != nil {
		if o.mean.Len() != n {
			return nil, fmt.Errorf("tracker: running mean over %d nodes for %d-node graph: %w",
				o.mean.Len(), n, stats.ErrDimensionMismatch)
		}
		t.mean = o.mean
	} else {
		rm, err := stats.NewRunningMean(n)
		if err != nil {
			return nil, fmt.Errorf("tracker: %w", err)
		}
		t.mean = rm
	}

	return t, nil
}

// StartIteration ends the current iteration and opens the next one.
//
// If the ending iteration recorded at least one decision and a default
// output is configured, that output's pruned row is folded into the running
// mean first. The tensors are then reset to unsized; the next
// RecordDecision fixes the new batch width.
func (t *Tracker) StartIteration() error {
	var err error
	if t.decisions > 0 && t.outIdx >= 0 {
		if err = t.mean.Update(t.active[t.outIdx]); err != nil {
			err = fmt.Errorf("tracker: flush iteration: %w", err)
		} else {
			t.logger.Debug("iteration flushed",
				slog.String("output", t.DefaultOutput()),
				slog.Int("batch", t.width),
				slog.Int("iterations", t.mean.Count()))
		}
	}
	t.reset()

	return err
}

// reset drops the tensors and the per-iteration bookkeeping.
func (t *Tracker) reset() {
	t.started = true
	t.width = 0
	t.active = nil
	t.sampling = nil
	clear(t.recorded)
	t.decisions = 0
}

// allocate sizes the tensors for batch width b, zero-filled.
func (t *Tracker) allocate(b int) error {
	n := t.idx.Len()
	sampling, err := matrix.NewDense(n, b)
	if err != nil {
		return err
	}
	active := make([]*matrix.Dense, n)
	for i := range active {
		if active[i], err = matrix.NewDense(n, b); err != nil {
			return err
		}
	}
	t.width, t.active, t.sampling = b, active, sampling

	return nil
}

// RecordDecision stores node's decision and computes node's support row.
//
// Implementation:
//   - Stage 1: validate (iteration started, shape, node known, width, order).
//   - Stage 2: sampling[i] = d.
//   - Stage 3: a source seeds its own row: incoming[i] += d.
//   - Stage 4: incoming += active[p] for every predecessor p.
//   - Stage 5: hasInputs[k] = max_j incoming[j][k].
//   - Stage 6: hasOutputs[k] = 1 iff hasInputs[k]*d[k] != 0.
//   - Stage 7: incoming[i] += d.
//   - Stage 8: incoming[·][k] *= hasOutputs[k].
//   - Stage 9: active[i] = (incoming != 0).
//
// Errors:
//   - ErrNotInitialized, ErrInvalidShape, matrix.ErrNaNInf,
//     nodeindex.ErrNotFound, ErrBatchWidthMismatch.
//   - strict mode only: ErrDuplicateDecision, ErrPredecessorPending.
//
// Complexity: O((1+P)·n·b) for P predecessors.
func (t *Tracker) RecordDecision(node string, d Decision) error {
	// Stage 1: validation; nothing is mutated until it passes.
	if !t.started {
		return fmt.Errorf("tracker: record %q: %w", node, ErrNotInitialized)
	}
	vec, err := d.Squeeze()
	if err != nil {
		return fmt.Errorf("tracker: record %q: %w", node, err)
	}
	i, err := t.idx.Index(node)
	if err != nil {
		return fmt.Errorf("tracker: record: %w", err)
	}
	if t.width != 0 && len(vec) != t.width {
		return fmt.Errorf("%w: %q has %d values, iteration width is %d",
			ErrBatchWidthMismatch, node, len(vec), t.width)
	}
	if t.strict {
		if err = t.checkOrder(i); err != nil {
			return err
		}
	}
	if t.width == 0 {
		if err = t.allocate(len(vec)); err != nil {
			return fmt.Errorf("tracker: record %q: %w", node, err)
		}
	}

	// Stage 2.
	if err = t.sampling.SetRow(i, vec); err != nil {
		return fmt.Errorf("tracker: record %q: %w", node, err)
	}
	incoming := t.active[i]

	// Stage 3 + 4.
	if len(t.preds[i]) == 0 {
		if err = incoming.AddToRow(i, vec); err != nil {
			return fmt.Errorf("tracker: record %q: %w", node, err)
		}
	}
	for _, p := range t.preds[i] {
		if err = matrix.AddInPlace(incoming, t.active[p]); err != nil {
			return fmt.Errorf("tracker: record %q: %w", node, err)
		}
	}

	// Stage 5 + 6.
	hasOutputs, err := matrix.ColMax(incoming)
	if err != nil {
		return fmt.Errorf("tracker: record %q: %w", node, err)
	}
	for k, in := range hasOutputs {
		if in*vec[k] != 0 {
			hasOutputs[k] = 1
		} else {
			hasOutputs[k] = 0
		}
	}

	// Stage 7 - 9.
	if err = incoming.AddToRow(i, vec); err != nil {
		return fmt.Errorf("tracker: record %q: %w", node, err)
	}
	if err = matrix.ScaleColsInPlace(incoming, hasOutputs); err != nil {
		return fmt.Errorf("tracker: record %q: %w", node, err)
	}
	if err = matrix.BinarizeInPlace(incoming); err != nil {
		return fmt.Errorf("tracker: record %q: %w", node, err)
	}

	t.recorded[i] = true
	t.decisions++

	return nil
}

// checkOrder enforces "predecessors first, once per iteration" for node i.
func (t *Tracker) checkOrder(i int) error {
	id := t.nodeAt(i)
	if t.recorded[i] {
		return fmt.Errorf("%w: %q", ErrDuplicateDecision, id)
	}
	for _, p := range t.preds[i] {
		if !t.recorded[p] {
			return fmt.Errorf("%w: %q needs %q", ErrPredecessorPending, id, t.nodeAt(p))
		}
	}

	return nil
}

// nodeAt returns the ID at a position known to be valid.
func (t *Tracker) nodeAt(i int) string {
	id, _ := t.idx.NodeAt(i)
	return id
}

// PrunedArchitecture returns out's live n×b support row: per batch element,
// the 0/1 mask of nodes consistently contributing to out. The matrix is
// owned by the tracker and is only valid until the next StartIteration;
// callers must not modify it.
func (t *Tracker) PrunedArchitecture(out string) (*matrix.Dense, error) {
	i, err := t.idx.Index(out)
	if err != nil {
		return nil, fmt.Errorf("tracker: pruned architecture: %w", err)
	}
	if t.active == nil {
		return nil, ErrNoDecisions
	}

	return t.active[i], nil
}

// SampledArchitectures returns the live n×b sampling tensor of the current
// iteration. Nodes not recorded yet hold zeros. Read-only by convention.
func (t *Tracker) SampledArchitectures() (*matrix.Dense, error) {
	if t.sampling == nil {
		return nil, ErrNoDecisions
	}

	return t.sampling, nil
}

// Consistency reports, per batch element, whether node's support row is
// non-zero: the sample has at least one live path reaching node.
func (t *Tracker) Consistency(node string) ([]bool, error) {
	row, err := t.PrunedArchitecture(node)
	if err != nil {
		return nil, err
	}
	sums, err := matrix.ColSums(row)
	if err != nil {
		return nil, fmt.Errorf("tracker: consistency of %q: %w", node, err)
	}
	out := make([]bool, len(sums))
	for k, s := range sums {
		out[k] = s != 0
	}

	return out, nil
}

// BatchWidth returns the current iteration's batch width, 0 while unsized.
func (t *Tracker) BatchWidth() int { return t.width }

// Index returns the node index the tracker was built over.
func (t *Tracker) Index() *nodeindex.Index { return t.idx }

// Stats returns the running-mean estimator the tracker folds iterations into.
func (t *Tracker) Stats() *stats.RunningMean { return t.mean }

// DefaultOutput returns the configured default output, or "" when unset.
func (t *Tracker) DefaultOutput() string {
	if t.outIdx < 0 {
		return ""
	}

	return t.nodeAt(t.outIdx)
}

// Recorded reports whether node has a decision in the current iteration.
// Unknown nodes report false.
func (t *Tracker) Recorded(node string) bool {
	i, err := t.idx.Index(node)
	if err != nil {
		return false
	}

	return t.recorded[i]
}

// Decisions returns how many decisions the current iteration holds.
func (t *Tracker) Decisions() int { return t.decisions }

// Started reports whether StartIteration has run at least once.
func (t *Tracker) Started() bool { return t.started }

// Package recorder is the query surface over a tracker: per-output pruned
// and sampled architectures, per-sample paths, posterior usage weights, a
// consistency probe for a freshly built model, and snapshot/restore of the
// long-running statistics.
package recorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/pathrec/core"
	"github.com/katalvlaran/pathrec/matrix"
	"github.com/katalvlaran/pathrec/nodeindex"
	"github.com/katalvlaran/pathrec/stats"
	"github.com/katalvlaran/pathrec/tracker"
)

var (
	// ErrNilModel is returned by IsConsistent for a nil Model.
	ErrNilModel = errors.New("recorder: model is nil")

	// ErrInvalidInputSize is returned by IsConsistent when the model reports
	// a non-positive input size.
	ErrInvalidInputSize = errors.New("recorder: model input size must be > 0")
)

// Sink receives the events a model emits while running a forward pass.
// *Recorder and *tracker.Tracker both satisfy it.
type Sink interface {
	Handle(e tracker.Event) error
}

// Model is the decision producer the recorder observes. Forward runs one
// pass over input (batch × InputSize) and reports its decisions to sink:
// a tracker.NewIterationEvent first, then one tracker.SamplingEvent per
// node in predecessor-first order.
type Model interface {
	InputSize() int
	OutputNode() string
	Forward(ctx context.Context, input *matrix.Dense, sink Sink) error
}

// Recorder wraps a tracker. Like the tracker it is single-owner.
type Recorder struct {
	t *tracker.Tracker
}

// New indexes order (a topological order of g's nodes) and builds the
// underlying tracker with opts.
func New(g tracker.Graph, order []string, opts ...tracker.Option) (*Recorder, error) {
	idx, err := nodeindex.New(order)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	t, err := tracker.New(g, idx, opts...)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}

	return &Recorder{t: t}, nil
}

// FromGraph derives the topological order of g and builds a Recorder over it.
func FromGraph(g *core.Graph, opts ...tracker.Option) (*Recorder, error) {
	if g == nil {
		return nil, fmt.Errorf("recorder: %w", tracker.ErrNilGraph)
	}
	idx, err := nodeindex.FromGraph(g)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	t, err := tracker.New(g, idx, opts...)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}

	return &Recorder{t: t}, nil
}

// Tracker exposes the wrapped tracker.
func (r *Recorder) Tracker() *tracker.Tracker { return r.t }

// StartIteration forwards to the tracker.
func (r *Recorder) StartIteration() error { return r.t.StartIteration() }

// RecordDecision forwards to the tracker.
func (r *Recorder) RecordDecision(node string, d tracker.Decision) error {
	return r.t.RecordDecision(node, d)
}

// Handle forwards an event to the tracker.
func (r *Recorder) Handle(e tracker.Event) error { return r.t.Handle(e) }

// Stats returns the running-mean estimator behind PosteriorWeights.
func (r *Recorder) Stats() *stats.RunningMean { return r.t.Stats() }

// Iterations returns how many iterations have been folded into the
// posterior estimate.
func (r *Recorder) Iterations() int { return r.t.Stats().Count() }

// Nodes returns the indexed nodes in position order.
func (r *Recorder) Nodes() []string { return r.t.Index().Nodes() }

// Architectures returns the live sampling tensor and out's pruned row.
func (r *Recorder) Architectures(out string) (sampled, pruned *matrix.Dense, err error) {
	if sampled, err = r.t.SampledArchitectures(); err != nil {
		return nil, nil, err
	}
	if pruned, err = r.t.PrunedArchitecture(out); err != nil {
		return nil, nil, err
	}

	return sampled, pruned, nil
}

// GraphPaths returns, per batch element, the nodes whose pruned mask for
// out is 1 (in index order) and the raw sampling value of every node.
//
// GraphPaths is not a pure read: it also folds out's current pruned row
// into the running mean, whether or not out is the default output.
func (r *Recorder) GraphPaths(out string) ([][]string, []map[string]float64, error) {
	sampled, pruned, err := r.Architectures(out)
	if err != nil {
		return nil, nil, err
	}
	byBatch, err := matrix.Transpose(pruned)
	if err != nil {
		return nil, nil, fmt.Errorf("recorder: graph paths: %w", err)
	}
	paths, err := r.UsedNodes(byBatch)
	if err != nil {
		return nil, nil, err
	}

	nodes := r.t.Index().Nodes()
	values := make([]map[string]float64, sampled.Cols())
	for k := range values {
		values[k] = make(map[string]float64, len(nodes))
		for j, id := range nodes {
			v, err := sampled.At(j, k)
			if err != nil {
				return nil, nil, fmt.Errorf("recorder: graph paths: %w", err)
			}
			values[k][id] = v
		}
	}

	if err = r.t.Stats().Update(pruned); err != nil {
		return nil, nil, fmt.Errorf("recorder: graph paths: %w", err)
	}

	return paths, values, nil
}

// UsedNodes translates a batch × n matrix of 0/1 architectures into one
// node list per row; a node is listed when its cell equals exactly 1.
func (r *Recorder) UsedNodes(archs *matrix.Dense) ([][]string, error) {
	if archs == nil {
		return nil, fmt.Errorf("recorder: used nodes: %w", matrix.ErrNilMatrix)
	}
	nodes := r.t.Index().Nodes()
	if archs.Cols() != len(nodes) {
		return nil, fmt.Errorf("recorder: used nodes: %d columns for %d nodes: %w",
			archs.Cols(), len(nodes), matrix.ErrDimensionMismatch)
	}
	out := make([][]string, archs.Rows())
	for k := range out {
		row, err := archs.Row(k)
		if err != nil {
			return nil, fmt.Errorf("recorder: used nodes: %w", err)
		}
		used := make([]string, 0, len(row))
		for j, v := range row {
			if v == 1 {
				used = append(used, nodes[j])
			}
		}
		out[k] = used
	}

	return out, nil
}

// PosteriorWeights returns the running mean usage of every node.
// Fails with stats.ErrNotAvailable before the first folded iteration.
func (r *Recorder) PosteriorWeights() (map[string]float64, error) {
	est, err := r.t.Stats().Estimate()
	if err != nil {
		return nil, err
	}
	nodes := r.t.Index().Nodes()
	out := make(map[string]float64, len(nodes))
	for i, id := range nodes {
		out[id] = est[i]
	}

	return out, nil
}

// IsConsistent runs m once on an all-ones 1 × InputSize probe and reports
// whether at least one batch element has a live path to m's output node.
// The probe's decisions replace the current iteration (the model starts a
// new one), so the previous iteration may be folded into the statistics.
func (r *Recorder) IsConsistent(ctx context.Context, m Model) (bool, error) {
	if m == nil {
		return false, ErrNilModel
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	size := m.InputSize()
	if size <= 0 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidInputSize, size)
	}
	probe, err := matrix.NewDense(1, size)
	if err != nil {
		return false, fmt.Errorf("recorder: probe: %w", err)
	}
	if err = probe.Fill(1); err != nil {
		return false, fmt.Errorf("recorder: probe: %w", err)
	}
	if err = m.Forward(ctx, probe, r); err != nil {
		return false, fmt.Errorf("recorder: forward: %w", err)
	}

	ok, err := r.t.Consistency(m.OutputNode())
	if err != nil {
		return false, err
	}
	for _, v := range ok {
		if v {
			return true, nil
		}
	}

	return false, nil
}

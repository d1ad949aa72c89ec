package recorder_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/pathrec/core"
	"github.com/katalvlaran/pathrec/matrix"
	"github.com/katalvlaran/pathrec/nodeindex"
	"github.com/katalvlaran/pathrec/recorder"
	"github.com/katalvlaran/pathrec/stats"
	"github.com/katalvlaran/pathrec/tracker"
)

// chainGraph returns A→B→C.
func chainGraph(t *testing.T) *core.Graph {
	t.Helper()
	g := core.NewGraph()
	for _, e := range [][2]string{{"A", "B"}, {"B", "C"}} {
		_, err := g.AddEdge(e[0], e[1])
		require.NoError(t, err)
	}

	return g
}

func newChain(t *testing.T, opts ...tracker.Option) *recorder.Recorder {
	t.Helper()
	r, err := recorder.FromGraph(chainGraph(t), opts...)
	require.NoError(t, err)

	return r
}

// scriptedModel replays fixed decisions in a fixed order, ignoring input.
type scriptedModel struct {
	size  int
	out   string
	order []string
	dec   map[string][]float64
	err   error
	seen  *matrix.Dense
}

func (m *scriptedModel) InputSize() int     { return m.size }
func (m *scriptedModel) OutputNode() string { return m.out }

func (m *scriptedModel) Forward(_ context.Context, input *matrix.Dense, sink recorder.Sink) error {
	m.seen = input.Clone()
	if m.err != nil {
		return m.err
	}
	if err := sink.Handle(tracker.NewIterationEvent{}); err != nil {
		return err
	}
	for _, id := range m.order {
		if err := sink.Handle(tracker.SamplingEvent{Node: id, Value: tracker.Vector(m.dec[id]...)}); err != nil {
			return err
		}
	}

	return nil
}

func runIteration(t *testing.T, r *recorder.Recorder, dec map[string][]float64) {
	t.Helper()
	require.NoError(t, r.StartIteration())
	for _, id := range r.Nodes() {
		require.NoError(t, r.RecordDecision(id, tracker.Vector(dec[id]...)))
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := recorder.New(chainGraph(t), nil)
	assert.ErrorIs(t, err, nodeindex.ErrEmptyOrder)

	_, err = recorder.FromGraph(nil)
	assert.ErrorIs(t, err, tracker.ErrNilGraph)

	r, err := recorder.New(chainGraph(t), []string{"A", "B", "C"}, tracker.WithDefaultOutput("C"))
	require.NoError(t, err)
	assert.Equal(t, "C", r.Tracker().DefaultOutput())
}

// TestGraphPaths_AllOn is the A→B→C scenario with every node on.
func TestGraphPaths_AllOn(t *testing.T) {
	r := newChain(t)
	runIteration(t, r, map[string][]float64{"A": {1}, "B": {1}, "C": {1}})

	paths, values, err := r.GraphPaths("C")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B", "C"}}, paths)
	assert.Equal(t, []map[string]float64{{"A": 1, "B": 1, "C": 1}}, values)

	// side effect: the pruned row was folded in
	w, err := r.PosteriorWeights()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 1, "B": 1, "C": 1}, w)
}

func TestGraphPaths_Pruned(t *testing.T) {
	r := newChain(t)
	runIteration(t, r, map[string][]float64{"A": {0, 1}, "B": {1, 1}, "C": {1, 0}})

	paths, values, err := r.GraphPaths("C")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{}, {}}, paths)
	assert.Equal(t, 0.0, values[0]["A"])
	assert.Equal(t, 1.0, values[0]["C"])
	assert.Equal(t, 0.0, values[1]["C"])

	paths, _, err = r.GraphPaths("B")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{}, {"A", "B"}}, paths)
	assert.Equal(t, 2, r.Stats().Count())
}

func TestGraphPaths_Errors(t *testing.T) {
	r := newChain(t)
	_, _, err := r.GraphPaths("C")
	assert.ErrorIs(t, err, tracker.ErrNoDecisions)

	runIteration(t, r, map[string][]float64{"A": {1}, "B": {1}, "C": {1}})
	_, _, err = r.GraphPaths("Z")
	assert.ErrorIs(t, err, nodeindex.ErrNotFound)
}

func TestArchitectures(t *testing.T) {
	r := newChain(t)
	runIteration(t, r, map[string][]float64{"A": {1, 1}, "B": {0.5, 0}, "C": {1, 1}})

	sampled, pruned, err := r.Architectures("C")
	require.NoError(t, err)
	assert.Equal(t, "[1, 1]\n[0.5, 0]\n[1, 1]\n", sampled.String())
	assert.Equal(t, "[1, 0]\n[1, 0]\n[1, 0]\n", pruned.String())
}

func TestUsedNodes(t *testing.T) {
	r := newChain(t)
	archs, err := matrix.NewDenseFrom(3, 3, []float64{
		1, 0, 1,
		0, 0, 0,
		1, 1, 0.5,
	})
	require.NoError(t, err)

	used, err := r.UsedNodes(archs)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "C"}, {}, {"A", "B"}}, used)

	wide, err := matrix.NewDense(1, 4)
	require.NoError(t, err)
	_, err = r.UsedNodes(wide)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = r.UsedNodes(nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestPosteriorWeights_NotAvailable(t *testing.T) {
	r := newChain(t)
	_, err := r.PosteriorWeights()
	assert.ErrorIs(t, err, stats.ErrNotAvailable)
}

// TestPosteriorWeights_LazyFlush: the default output is folded only when the
// next iteration starts.
func TestPosteriorWeights_LazyFlush(t *testing.T) {
	r := newChain(t, tracker.WithDefaultOutput("C"))
	runIteration(t, r, map[string][]float64{"A": {1, 1}, "B": {1, 0}, "C": {1, 1}})
	runIteration(t, r, map[string][]float64{"A": {1, 1}, "B": {1, 1}, "C": {1, 1}})

	w, err := r.PosteriorWeights()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 0.5, "B": 0.5, "C": 0.5}, w)
	assert.Equal(t, 1, r.Iterations())

	require.NoError(t, r.StartIteration())
	w, err = r.PosteriorWeights()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 0.75, "B": 0.75, "C": 0.75}, w)
	assert.Equal(t, 2, r.Iterations())
}

func TestIsConsistent(t *testing.T) {
	r := newChain(t)
	m := &scriptedModel{
		size:  4,
		out:   "C",
		order: []string{"A", "B", "C"},
		dec:   map[string][]float64{"A": {1}, "B": {1}, "C": {1}},
	}

	ok, err := r.IsConsistent(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1, 1, 1, 1]\n", m.seen.String(), "probe is all ones")

	m.dec["B"] = []float64{0}
	ok, err = r.IsConsistent(context.Background(), m)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsConsistent_Errors(t *testing.T) {
	r := newChain(t)

	_, err := r.IsConsistent(context.Background(), nil)
	assert.ErrorIs(t, err, recorder.ErrNilModel)

	_, err = r.IsConsistent(context.Background(), &scriptedModel{size: 0, out: "C"})
	assert.ErrorIs(t, err, recorder.ErrInvalidInputSize)

	boom := errors.New("boom")
	_, err = r.IsConsistent(context.Background(), &scriptedModel{size: 1, out: "C", err: boom})
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.IsConsistent(ctx, &scriptedModel{size: 1, out: "C"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotRestore(t *testing.T) {
	r := newChain(t, tracker.WithDefaultOutput("C"))

	empty := r.Snapshot()
	assert.Nil(t, empty.GlobalEstimate)
	assert.Equal(t, 0, empty.IterationCount)

	runIteration(t, r, map[string][]float64{"A": {1, 1}, "B": {1, 0}, "C": {1, 1}})
	require.NoError(t, r.StartIteration())
	snap := r.Snapshot()
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2}, snap.NodeIndex)
	assert.Equal(t, []string{"A", "B", "C"}, snap.RevNodeIndex)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, snap.GlobalEstimate)
	assert.Equal(t, 1, snap.IterationCount)

	fresh := newChain(t, tracker.WithDefaultOutput("C"))
	require.NoError(t, fresh.Restore(snap))
	w, err := fresh.PosteriorWeights()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 0.5, "B": 0.5, "C": 0.5}, w)
	assert.Equal(t, 1, fresh.Stats().Count())

	// the snapshot does not alias the recorder
	snap.GlobalEstimate[0] = 9
	w, err = fresh.PosteriorWeights()
	require.NoError(t, err)
	assert.Equal(t, 0.5, w["A"])
}

func TestRestore_Mismatch(t *testing.T) {
	r := newChain(t)
	good := r.Snapshot()

	other := good
	other.RevNodeIndex = []string{"A", "C", "B"}
	assert.ErrorIs(t, r.Restore(other), recorder.ErrSnapshotMismatch)

	other = good
	other.NodeIndex = map[string]int{"X": 0, "B": 1, "C": 2}
	assert.ErrorIs(t, r.Restore(other), recorder.ErrSnapshotMismatch)

	other = good
	other.NodeIndex = map[string]int{"A": 0}
	assert.ErrorIs(t, r.Restore(other), recorder.ErrSnapshotMismatch)

	other = good
	other.GlobalEstimate = []float64{1}
	other.IterationCount = 1
	assert.ErrorIs(t, r.Restore(other), stats.ErrDimensionMismatch)
}

// TestSnapshot_FieldNames pins the persisted key names.
func TestSnapshot_FieldNames(t *testing.T) {
	s := recorder.Snapshot{
		NodeIndex:      map[string]int{"A": 0},
		RevNodeIndex:   []string{"A"},
		GlobalEstimate: []float64{0.25},
		IterationCount: 3,
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"node_index":{"A":0},"rev_node_index":["A"],"global_sampling":[0.25],"n_samplings":3}`, string(raw))

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.ElementsMatch(t, []string{"node_index", "rev_node_index", "global_sampling", "n_samplings"}, keys(back))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}

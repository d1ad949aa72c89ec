package recorder

import (
	"errors"
	"fmt"
	"slices"
)

// ErrSnapshotMismatch is returned by Restore when the snapshot was taken
// over a different node set or order.
var ErrSnapshotMismatch = errors.New("recorder: snapshot does not match graph")

// Snapshot is the persisted state of a recorder: the node mapping and the
// running-mean statistics. GlobalEstimate is nil while no iteration has
// been folded in.
type Snapshot struct {
	NodeIndex      map[string]int `json:"node_index" yaml:"node_index"`
	RevNodeIndex   []string       `json:"rev_node_index" yaml:"rev_node_index"`
	GlobalEstimate []float64      `json:"global_sampling" yaml:"global_sampling"`
	IterationCount int            `json:"n_samplings" yaml:"n_samplings"`
}

// Snapshot exports the node mapping and statistics. The result shares no
// memory with the recorder.
func (r *Recorder) Snapshot() Snapshot {
	idx := r.t.Index()
	s := Snapshot{
		NodeIndex:      idx.Positions(),
		RevNodeIndex:   idx.Nodes(),
		IterationCount: r.t.Stats().Count(),
	}
	if est, err := r.t.Stats().Estimate(); err == nil {
		s.GlobalEstimate = est
	}

	return s
}

// Restore imports the statistics of s. The snapshot's node mapping must be
// identical to the recorder's, else ErrSnapshotMismatch is returned and the
// recorder is left unchanged.
func (r *Recorder) Restore(s Snapshot) error {
	idx := r.t.Index()
	if !slices.Equal(s.RevNodeIndex, idx.Nodes()) {
		return fmt.Errorf("%w: rev_node_index %v, graph order %v", ErrSnapshotMismatch, s.RevNodeIndex, idx.Nodes())
	}
	if len(s.NodeIndex) != idx.Len() {
		return fmt.Errorf("%w: node_index has %d entries for %d nodes", ErrSnapshotMismatch, len(s.NodeIndex), idx.Len())
	}
	for i, id := range s.RevNodeIndex {
		if pos, ok := s.NodeIndex[id]; !ok || pos != i {
			return fmt.Errorf("%w: node_index[%q] does not map to %d", ErrSnapshotMismatch, id, i)
		}
	}
	if err := r.t.Stats().Restore(s.GlobalEstimate, s.IterationCount); err != nil {
		return fmt.Errorf("recorder: restore: %w", err)
	}

	return nil
}

// Package simulate drives recorders with synthetic sampling decisions.
//
// Sampler is a recorder.Model that switches every node on independently
// with a fixed probability, batch element by batch element. Runner fans a
// run out over worker goroutines, one recorder each, and merges their
// posterior estimates into a single result.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/pathrec/config"
	"github.com/katalvlaran/pathrec/matrix"
	"github.com/katalvlaran/pathrec/recorder"
	"github.com/katalvlaran/pathrec/tracker"
)

var (
	// ErrEmptyOrder is returned when the sampler has no nodes to sample.
	ErrEmptyOrder = errors.New("simulate: empty node order")

	// ErrInvalidProbability is returned for a probability outside [0,1].
	ErrInvalidProbability = errors.New("simulate: probability must be in [0,1]")

	// ErrUnknownOutput is returned when the output node is not in the order.
	ErrUnknownOutput = errors.New("simulate: output node not in order")
)

// probeThreshold is the probability at or above which a probing sampler
// switches a node on.
const probeThreshold = 0.5

// Sampler emits Bernoulli decisions for a fixed node order.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	order     []string
	probs     []float64 // aligned with order
	output    string
	inputSize int
	rng       *rand.Rand
	probe     bool
}

var _ recorder.Model = (*Sampler)(nil)

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithSeed seeds the sampler's private random source.
func WithSeed(seed int64) SamplerOption {
	return func(s *Sampler) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithProbe makes the sampler deterministic: a node is on exactly when its
// probability is at least 0.5.
func WithProbe() SamplerOption {
	return func(s *Sampler) { s.probe = true }
}

// WithInputSize sets the value reported by InputSize (default 1).
// Panics on n < 1.
func WithInputSize(n int) SamplerOption {
	if n < 1 {
		panic(fmt.Sprintf("simulate: WithInputSize(%d)", n))
	}

	return func(s *Sampler) { s.inputSize = n }
}

// NewSampler samples the nodes of order (which must list predecessors
// first) with probs; nodes missing from probs use
// config.DefaultProbability. output is reported by OutputNode.
func NewSampler(order []string, probs map[string]float64, output string, opts ...SamplerOption) (*Sampler, error) {
	if len(order) == 0 {
		return nil, ErrEmptyOrder
	}
	s := &Sampler{
		order:     append([]string(nil), order...),
		probs:     make([]float64, len(order)),
		output:    output,
		inputSize: 1,
	}
	found := false
	for i, id := range order {
		p, ok := probs[id]
		if !ok {
			p = config.DefaultProbability
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("%w: %q has %v", ErrInvalidProbability, id, p)
		}
		s.probs[i] = p
		found = found || id == output
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(1))
	}

	return s, nil
}

// InputSize implements recorder.Model.
func (s *Sampler) InputSize() int { return s.inputSize }

// OutputNode implements recorder.Model.
func (s *Sampler) OutputNode() string { return s.output }

// Forward implements recorder.Model: it opens a new iteration on sink and
// then records one decision per node, one value per input row.
func (s *Sampler) Forward(ctx context.Context, input *matrix.Dense, sink recorder.Sink) error {
	if input == nil {
		return fmt.Errorf("simulate: forward: %w", matrix.ErrNilMatrix)
	}
	batch := input.Rows()
	if err := sink.Handle(tracker.NewIterationEvent{}); err != nil {
		return fmt.Errorf("simulate: new iteration: %w", err)
	}
	vals := make([]float64, batch)
	for i, id := range s.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		for k := range vals {
			vals[k] = s.draw(s.probs[i])
		}
		ev := tracker.SamplingEvent{Node: id, Value: tracker.Vector(vals...)}
		if err := sink.Handle(ev); err != nil {
			return fmt.Errorf("simulate: sample %q: %w", id, err)
		}
	}

	return nil
}

func (s *Sampler) draw(p float64) float64 {
	on := p >= probeThreshold
	if !s.probe {
		on = s.rng.Float64() < p
	}
	if on {
		return 1
	}

	return 0
}

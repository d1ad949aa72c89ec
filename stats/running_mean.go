// Package stats holds the online mean estimator behind posterior usage weights.
package stats

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/pathrec/matrix"
)

var (
	// ErrNotAvailable is returned by Estimate before any update was folded in.
	ErrNotAvailable = errors.New("stats: estimate not available")

	// ErrDimensionMismatch is returned when an input does not cover exactly n nodes.
	ErrDimensionMismatch = errors.New("stats: dimension mismatch")

	// ErrInvalidLength is returned by NewRunningMean for n <= 0.
	ErrInvalidLength = errors.New("stats: length must be > 0")

	// ErrInvalidCount is returned by Restore for a count inconsistent with the estimate.
	ErrInvalidCount = errors.New("stats: invalid iteration count")
)

// RunningMean is the streaming first-moment estimator over per-iteration
// usage vectors of fixed length n.
//
// The estimate is unset until the first update; after t updates with mean
// vectors m_1..m_t it equals their arithmetic mean, computed as
// est += (m_t - est) / t without ever holding a raw sum.
//
// A RunningMean is owned by one goroutine; it is not synchronised.
type RunningMean struct {
	n     int
	est   []float64 // nil until the first update
	count int
}

// NewRunningMean returns an empty estimator over n nodes.
func NewRunningMean(n int) (*RunningMean, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, n)
	}

	return &RunningMean{n: n}, nil
}

// Update folds one iteration's n×b usage matrix into the estimate: the
// per-node mean over the batch dimension becomes the iteration's sample.
func (r *RunningMean) Update(usage *matrix.Dense) error {
	if usage == nil {
		return fmt.Errorf("stats: update: %w", matrix.ErrNilMatrix)
	}
	if usage.Rows() != r.n {
		return fmt.Errorf("%w: usage has %d rows, want %d", ErrDimensionMismatch, usage.Rows(), r.n)
	}
	mean, err := matrix.RowMeans(usage)
	if err != nil {
		return fmt.Errorf("stats: update: %w", err)
	}

	return r.UpdateMean(mean)
}

// UpdateMean folds a precomputed per-node mean into the estimate.
// The first call initialises the estimate to a copy of mean.
func (r *RunningMean) UpdateMean(mean []float64) error {
	if len(mean) != r.n {
		return fmt.Errorf("%w: mean has %d values, want %d", ErrDimensionMismatch, len(mean), r.n)
	}
	r.count++
	if r.est == nil {
		r.est = make([]float64, r.n)
		copy(r.est, mean)
		return nil
	}
	inv := 1.0 / float64(r.count)
	for i, m := range mean {
		r.est[i] += (m - r.est[i]) * inv
	}

	return nil
}

// Estimate returns a copy of the current estimate.
func (r *RunningMean) Estimate() ([]float64, error) {
	if r.est == nil {
		return nil, ErrNotAvailable
	}
	out := make([]float64, r.n)
	copy(out, r.est)

	return out, nil
}

// Count returns the number of updates folded into the estimate.
func (r *RunningMean) Count() int { return r.count }

// Len returns the node count n.
func (r *RunningMean) Len() int { return r.n }

// Restore replaces the estimator state. A nil estimate requires count 0 and
// resets the estimator; a non-nil estimate must have length n and count >= 1.
func (r *RunningMean) Restore(estimate []float64, count int) error {
	if estimate == nil {
		if count != 0 {
			return fmt.Errorf("%w: %d with no estimate", ErrInvalidCount, count)
		}
		r.est, r.count = nil, 0
		return nil
	}
	if len(estimate) != r.n {
		return fmt.Errorf("%w: estimate has %d values, want %d", ErrDimensionMismatch, len(estimate), r.n)
	}
	if count < 1 {
		return fmt.Errorf("%w: %d with an estimate", ErrInvalidCount, count)
	}
	r.est = make([]float64, r.n)
	copy(r.est, estimate)
	r.count = count

	return nil
}

// Merge folds other into r, weighting both estimates by their counts.
// The result equals the estimate a single RunningMean would hold after
// seeing both iteration streams. other is not modified.
func (r *RunningMean) Merge(other *RunningMean) error {
	if other == nil || other.count == 0 {
		return nil
	}
	if other.n != r.n {
		return fmt.Errorf("%w: merging %d nodes into %d", ErrDimensionMismatch, other.n, r.n)
	}
	if r.count == 0 {
		return r.Restore(other.est, other.count)
	}
	total := r.count + other.count
	w := float64(other.count) / float64(total)
	for i := range r.est {
		r.est[i] += (other.est[i] - r.est[i]) * w
	}
	r.count = total

	return nil
}

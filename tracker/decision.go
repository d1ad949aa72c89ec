package tracker

import (
	"fmt"
	"math"

	"github.com/katalvlaran/pathrec/matrix"
)

// Decision is one node's sampling decision for the whole batch: a dense
// payload plus the shape it was produced with. Producers often emit
// shapes such as [b,1] or [1,b]; Squeeze flattens those to length b.
type Decision struct {
	Shape []int     // nil or empty means a scalar
	Data  []float64 // row-major payload; len must equal the shape's product
}

// Vector returns a one-dimensional decision holding a copy of vals.
func Vector(vals ...float64) Decision {
	data := make([]float64, len(vals))
	copy(data, vals)

	return Decision{Shape: []int{len(vals)}, Data: data}
}

// Scalar returns a zero-dimensional decision; it is promoted to a batch of one.
func Scalar(v float64) Decision {
	return Decision{Data: []float64{v}}
}

// Shaped returns a decision with an explicit shape (data is copied).
func Shaped(data []float64, shape ...int) Decision {
	cp := make([]float64, len(data))
	copy(cp, data)
	sh := make([]int, len(shape))
	copy(sh, shape)

	return Decision{Shape: sh, Data: cp}
}

// Squeeze drops every size-1 dimension and returns the flat batch vector.
//
// Errors:
//   - ErrInvalidShape when a dimension is negative, the shape's product does
//     not match len(Data), the payload is empty, or more than one dimension
//     has size > 1.
//   - matrix.ErrNaNInf when the payload holds NaN or ±Inf.
func (d Decision) Squeeze() ([]float64, error) {
	size, wide := 1, 0
	for _, s := range d.Shape {
		if s < 0 {
			return nil, fmt.Errorf("%w: negative dimension in %v", ErrInvalidShape, d.Shape)
		}
		if s > 1 {
			wide++
		}
		size *= s
	}
	if size != len(d.Data) {
		return nil, fmt.Errorf("%w: shape %v holds %d values, got %d", ErrInvalidShape, d.Shape, size, len(d.Data))
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: empty decision", ErrInvalidShape)
	}
	if wide > 1 {
		return nil, fmt.Errorf("%w: shape %v", ErrInvalidShape, d.Shape)
	}
	out := make([]float64, size)
	for k, v := range d.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("decision[%d]: %w", k, matrix.ErrNaNInf)
		}
		out[k] = v
	}

	return out, nil
}

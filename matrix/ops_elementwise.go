// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide the small in-place and broadcast kernels the propagation step
//     is built from, plus the column/row reductions its queries need.
//
// Determinism & Performance:
//   - Fixed loop orders (i→j or flat 0..n-1) over the flat row-major buffer.
//   - In-place kernels allocate nothing; reductions allocate only their result.

package matrix

import "fmt"

// matrixErrorf wraps err with the kernel name that detected it.
func matrixErrorf(op string, err error) error {
	return fmt.Errorf("matrix.%s: %w", op, err)
}

// AddInPlace computes dst[i,j] += src[i,j].
//
// Errors:
//   - ErrNilMatrix when either operand is nil.
//   - ErrDimensionMismatch when shapes differ (dst is left untouched).
//
// Complexity: O(r*c) time, O(1) extra space.
func AddInPlace(dst, src *Dense) error {
	if dst == nil || src == nil {
		return matrixErrorf("AddInPlace", ErrNilMatrix)
	}
	if dst.r != src.r || dst.c != src.c {
		return matrixErrorf("AddInPlace", ErrDimensionMismatch)
	}
	for k := range dst.data {
		dst.data[k] += src.data[k]
	}

	return nil
}

// ScaleColsInPlace computes m[i,j] *= scale[j], broadcasting scale down every row.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (len(scale) != Cols()).
//
// Complexity: O(r*c) time, O(1) extra space.
func ScaleColsInPlace(m *Dense, scale []float64) error {
	if m == nil {
		return matrixErrorf("ScaleColsInPlace", ErrNilMatrix)
	}
	if len(scale) != m.c {
		return matrixErrorf("ScaleColsInPlace", ErrDimensionMismatch)
	}
	for i := 0; i < m.r; i++ {
		base := i * m.c // cache the base offset for row i
		for j := 0; j < m.c; j++ {
			m.data[base+j] *= scale[j]
		}
	}

	return nil
}

// BinarizeInPlace maps every non-zero cell to 1 and every zero cell to 0.
// Complexity: O(r*c).
func BinarizeInPlace(m *Dense) error {
	if m == nil {
		return matrixErrorf("BinarizeInPlace", ErrNilMatrix)
	}
	for k, v := range m.data {
		if v != 0 {
			m.data[k] = 1
		} else {
			m.data[k] = 0
		}
	}

	return nil
}

// ColMax returns, for every column j, max_i m[i,j].
// Complexity: O(r*c) time, O(c) space.
func ColMax(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, matrixErrorf("ColMax", ErrNilMatrix)
	}
	out := make([]float64, m.c)
	copy(out, m.data[:m.c]) // seed with row 0 so negative cells are honoured
	for i := 1; i < m.r; i++ {
		base := i * m.c
		for j := 0; j < m.c; j++ {
			if v := m.data[base+j]; v > out[j] {
				out[j] = v
			}
		}
	}

	return out, nil
}

// ColSums returns, for every column j, sum_i m[i,j].
// Complexity: O(r*c) time, O(c) space.
func ColSums(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, matrixErrorf("ColSums", ErrNilMatrix)
	}
	out := make([]float64, m.c)
	for i := 0; i < m.r; i++ {
		base := i * m.c
		for j := 0; j < m.c; j++ {
			out[j] += m.data[base+j]
		}
	}

	return out, nil
}

// RowMeans returns, for every row i, the arithmetic mean of row i.
// Complexity: O(r*c) time, O(r) space.
func RowMeans(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, matrixErrorf("RowMeans", ErrNilMatrix)
	}
	out := make([]float64, m.r)
	inv := 1.0 / float64(m.c)
	for i := 0; i < m.r; i++ {
		base := i * m.c
		var s float64
		for j := 0; j < m.c; j++ {
			s += m.data[base+j]
		}
		out[i] = s * inv
	}

	return out, nil
}

// Transpose returns a new c×r matrix with out[j,i] = m[i,j].
// Complexity: O(r*c) time and space.
func Transpose(m *Dense) (*Dense, error) {
	if m == nil {
		return nil, matrixErrorf("Transpose", ErrNilMatrix)
	}
	out, err := NewDense(m.c, m.r)
	if err != nil {
		return nil, matrixErrorf("Transpose", err)
	}
	for i := 0; i < m.r; i++ {
		base := i * m.c
		for j := 0; j < m.c; j++ {
			out.data[j*m.r+i] = m.data[base+j]
		}
	}

	return out, nil
}

// SPDX-License-Identifier: MIT

package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pathrec/matrix"
)

// mustDense builds an r×c matrix from row-major data or fails the test.
func mustDense(t *testing.T, r, c int, data ...float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(r, c, data)
	require.NoError(t, err)

	return m
}

func TestAddInPlace(t *testing.T) {
	t.Parallel()
	dst := mustDense(t, 2, 2, 1, 2, 3, 4)
	src := mustDense(t, 2, 2, 10, 20, 30, 40)

	require.NoError(t, matrix.AddInPlace(dst, src))
	assert.True(t, dst.Equal(mustDense(t, 2, 2, 11, 22, 33, 44)))
	// src is never mutated
	assert.True(t, src.Equal(mustDense(t, 2, 2, 10, 20, 30, 40)))
}

func TestAddInPlace_Errors(t *testing.T) {
	t.Parallel()
	dst := mustDense(t, 2, 2, 1, 2, 3, 4)

	assert.ErrorIs(t, matrix.AddInPlace(dst, mustDense(t, 1, 4, 0, 0, 0, 0)), matrix.ErrDimensionMismatch)
	assert.ErrorIs(t, matrix.AddInPlace(nil, dst), matrix.ErrNilMatrix)
	assert.ErrorIs(t, matrix.AddInPlace(dst, nil), matrix.ErrNilMatrix)
	assert.True(t, dst.Equal(mustDense(t, 2, 2, 1, 2, 3, 4)), "dst untouched on error")
}

func TestScaleColsInPlace(t *testing.T) {
	t.Parallel()
	m := mustDense(t, 2, 3, 1, 2, 3, 4, 5, 6)

	require.NoError(t, matrix.ScaleColsInPlace(m, []float64{1, 0, 2}))
	assert.True(t, m.Equal(mustDense(t, 2, 3, 1, 0, 6, 4, 0, 12)))
	assert.ErrorIs(t, matrix.ScaleColsInPlace(m, []float64{1}), matrix.ErrDimensionMismatch)
}

func TestBinarizeInPlace(t *testing.T) {
	t.Parallel()
	m := mustDense(t, 1, 5, 0, 0.3, -2, 7, 0)

	require.NoError(t, matrix.BinarizeInPlace(m))
	assert.True(t, m.Equal(mustDense(t, 1, 5, 0, 1, 1, 1, 0)))
	assert.ErrorIs(t, matrix.BinarizeInPlace(nil), matrix.ErrNilMatrix)
}

func TestColMax(t *testing.T) {
	t.Parallel()
	m := mustDense(t, 3, 2,
		-1, 0,
		-5, 2,
		-3, 1,
	)

	got, err := matrix.ColMax(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 2}, got)
}

func TestColSumsRowMeans(t *testing.T) {
	t.Parallel()
	m := mustDense(t, 2, 4,
		1, 0, 1, 0,
		1, 1, 1, 1,
	)

	sums, err := matrix.ColSums(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 2, 1}, sums)

	means, err := matrix.RowMeans(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1}, means)
}

func TestTranspose(t *testing.T) {
	t.Parallel()
	m := mustDense(t, 2, 3, 1, 2, 3, 4, 5, 6)

	tr, err := matrix.Transpose(m)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Rows())
	assert.Equal(t, 2, tr.Cols())
	assert.True(t, tr.Equal(mustDense(t, 3, 2, 1, 4, 2, 5, 3, 6)))

	_, err = matrix.Transpose(nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)
}

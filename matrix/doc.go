// Package matrix offers the dense float64 buffers the path recorder stores
// decisions and activation masks in.
//
// The package is deliberately small:
//
//   - Dense: a row-major r×c buffer with bounds-checked accessors (At, Set,
//     Row, SetRow, AddToRow) that return sentinel errors instead of panicking.
//   - In-place kernels used by the propagation step: AddInPlace,
//     ScaleColsInPlace and BinarizeInPlace.
//   - Reductions: ColMax, ColSums, RowMeans, plus Transpose.
//
// All loops run in a fixed i→j order, so results are bit-for-bit
// reproducible for equal inputs.
package matrix

// SPDX-License-Identifier: MIT

// Package matrix provides the explicit dense view used around the Gram
// accumulator and its Cholesky factor.
//
// The gram package stores its statistic in a packed block-ragged layout; this
// package is what that layout is unpacked into whenever a caller (or a test)
// needs an ordinary rectangular matrix:
//
//   - Dense: row-major float64 storage in one flat slice (offset = i*cols + j).
//   - Bounds-checked At/Set returning sentinel errors instead of panicking.
//   - A small kernel set (Add, Scale, Mul, Transpose, MatVec, AllClose)
//     with a fast path on *Dense and a generic At fallback.
//   - ColumnStats: two-pass per-column mean and sample standard deviation.
//   - Validators shared by every kernel (nil, shape, symmetry, vector length).
//
// All loops run in a fixed order, so results are bit-for-bit reproducible for
// identical inputs.
package matrix

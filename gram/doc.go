// SPDX-License-Identifier: MIT

// Package gram accumulates the normalized Gram statistic X'X of a design
// matrix with numeric and one-hot categorical columns, merges partial
// statistics computed on disjoint row partitions, and factorizes the result
// with a block-aware Cholesky decomposition to solve the normal equations.
//
// # Layout
//
// The statistic is a symmetric FullN×FullN matrix split into
//
//	┌──────────┬─────────────────────┐
//	│ diagonal │                     │   diagonal block: DiagN mutually
//	│ (vector) │      (mirrored)     │   exclusive indicator columns,
//	├──────────┼─────────────────────┤   off-diagonal entries are zero
//	│ diag ×   │  dense lower        │
//	│ dense    │  triangle           │   dense block: ragged lower rows,
//	│          │  cats | nums | icpt │   row i holds DiagN+i+1 entries
//	└──────────┴─────────────────────┘
//
// Numeric columns sit at the bottom-right of the dense block and the
// intercept, when modeled, is the last row/column. The dense block lives in
// a single flat buffer addressed through a triangular offset function.
//
// # Pipeline
//
//	rows ─▶ Partial (one per chunk) ─▶ Normalize ─▶ Merge ... ─▶ Gram
//	                                                           │
//	                                    Factorize ◀────────────┘
//	                                        │
//	                                    Cholesky.Solve (repeatable)
//
// A Gram or Partial is owned by one goroutine at a time. Factorize runs the
// outer-product correction in parallel with a join barrier before the dense
// factorization. A finished Cholesky is read-only and safe for concurrent
// Solve calls.
package gram

// SPDX-License-Identifier: MIT

// Package regress fits weighted least-squares and ridge linear models by
// accumulating the normal equations with the gram pipeline and solving them
// with the block Cholesky factor.
//
// The statistics are normalized per observation: Fit solves
//
//	(XᵀWX/n + λ·P)·β = XᵀWy/n
//
// where P is the identity without the intercept entry. When the factor is
// not positive definite Fit raises λ and refactors, up to a retry budget.
package regress

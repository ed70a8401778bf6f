// Package gramian builds the Gram statistic X'X of large tabular data in
// parallel, factorizes it with a block-aware Cholesky decomposition and
// solves the normal equations of least-squares and ridge models.
//
// What is inside:
//
//	matrix/      dense row-major matrix, validators and small kernels
//	gram/        packed Gram accumulator, partial merges, block Cholesky, solver
//	frame/       row sources: schema, one-hot expansion, in-memory and CSV frames
//	pipeline/    chunked map/reduce driver (tree or sequential reduction)
//	regress/     weighted least squares with ridge escalation, prediction
//	config/      YAML configuration with validation
//	logging/     slog logger construction
//	cmd/gramfit  command line front end
//
// Block layout:
//
//	One-hot columns of a single factor never co-occur, so their block of
//	X'X is diagonal and is stored as a vector. The remaining columns form
//	a ragged lower triangle in one flat buffer.
//
// Quick ASCII picture of the statistic (factor A with 3 levels, 2 numerics,
// intercept):
//
//	     A0  A1  A2  x1  x2   1
//	A0 [  d                     ]
//	A1 [  0   d                 ]
//	A2 [  0   0   d             ]
//	x1 [  *   *   *   *         ]
//	x2 [  *   *   *   *   *     ]
//	 1 [  *   *   *   *   *   * ]
//
//	go get github.com/katalvlaran/gramian
package gramian

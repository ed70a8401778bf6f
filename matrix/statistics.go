// SPDX-License-Identifier: MIT

package matrix

import "math"

const opColumnStats = "ColumnStats"

// ColumnStats returns the per-column mean and sample standard deviation of X.
//
// Implementation:
//   - Stage 1: column sums in i→j order, divided by r.
//   - Stage 2: centered sums of squares Σ(x-mean)², divided by r-1.
//
// The second pass works on centered values, so a column with a large mean
// and a small spread keeps its precision. With r < 2 every deviation is 0.
//
// Errors:
//   - ErrNilMatrix from validation.
//   - Wrapped At errors from the generic path.
//
// Complexity:
//   - Time O(r*c), Space O(c).
func ColumnStats(X Matrix) (means, stds []float64, err error) {
	if err = ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opColumnStats, err)
	}
	r, c := X.Rows(), X.Cols()
	means = make([]float64, c)
	stds = make([]float64, c)

	at := func(i, j int) (float64, error) { return X.At(i, j) }
	if d, ok := X.(*Dense); ok {
		at = func(i, j int) (float64, error) { return d.data[i*c+j], nil }
	}

	var i, j int
	var v float64
	// Stage 1: means
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			if v, err = at(i, j); err != nil {
				return nil, nil, matrixErrorf(opColumnStats, err)
			}
			means[j] += v
		}
	}
	for j = 0; j < c; j++ {
		means[j] /= float64(r)
	}
	if r < 2 {
		return means, stds, nil
	}

	// Stage 2: centered second moments
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			if v, err = at(i, j); err != nil {
				return nil, nil, matrixErrorf(opColumnStats, err)
			}
			v -= means[j]
			stds[j] += v * v
		}
	}
	for j = 0; j < c; j++ {
		stds[j] = math.Sqrt(stds[j] / float64(r-1))
	}

	return means, stds, nil
}

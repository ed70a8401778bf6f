// SPDX-License-Identifier: MIT

package gram

import "fmt"

// Layout fixes the partition of the statistic into its diagonal and dense
// blocks. It is the only configuration an accumulator has.
//
//   - N: number of expanded columns excluding the intercept
//     (one-hot categorical levels plus numeric features).
//   - DiagN: leading categorical columns whose mutual interactions are known
//     to be purely diagonal (the levels of a single factor).
//   - DenseN: numeric columns, placed last before the intercept.
//   - HasIntercept: appends a constant column as the very last one.
type Layout struct {
	N            int
	DiagN        int
	DenseN       int
	HasIntercept bool
}

// Validate checks N, DiagN, DenseN >= 0 and DiagN+DenseN <= N.
func (l Layout) Validate() error {
	if l.N < 0 || l.DiagN < 0 || l.DenseN < 0 {
		return fmt.Errorf("negative dimension in %+v: %w", l, ErrBadLayout)
	}
	if l.DiagN+l.DenseN > l.N {
		return fmt.Errorf("DiagN+DenseN=%d exceeds N=%d: %w", l.DiagN+l.DenseN, l.N, ErrBadLayout)
	}

	return nil
}

// intercept returns 1 when an intercept column is modeled, 0 otherwise.
func (l Layout) intercept() int {
	if l.HasIntercept {
		return 1
	}

	return 0
}

// FullN is the dimension of the statistic: N plus the intercept column.
func (l Layout) FullN() int { return l.N + l.intercept() }

// DenseRows is the number of rows in the ragged dense block.
func (l Layout) DenseRows() int { return l.FullN() - l.DiagN }

// NumericStart is the global column of the first numeric feature. The
// expanded categorical columns occupy [0, NumericStart()).
func (l Layout) NumericStart() int { return l.N - l.DenseN }

// InterceptIndex is the global column of the intercept, or -1 without one.
func (l Layout) InterceptIndex() int {
	if !l.HasIntercept {
		return -1
	}

	return l.FullN() - 1
}

// rowOffset is the start of dense row i in the flat ragged buffer.
// Row r holds diagN+r+1 entries, so the prefix sum over r < i is
// i*(diagN+1) + i*(i-1)/2.
func rowOffset(diagN, i int) int {
	return i*(diagN+1) + i*(i-1)/2
}

// packedLen is the total length of the ragged buffer for the layout.
func (l Layout) packedLen() int {
	return rowOffset(l.DiagN, l.DenseRows())
}

// packedRow returns dense row i of buf as a capacity-limited subslice.
func packedRow(buf []float64, diagN, i int) []float64 {
	off := rowOffset(diagN, i)
	end := off + diagN + i + 1

	return buf[off:end:end]
}

// SPDX-License-Identifier: MIT

// Package gram - the Matrix Accumulator.
//
// Purpose:
//   - Own the packed storage of the symmetric statistic (diagonal vector +
//     ragged lower-triangular dense block in one flat buffer).
//   - Add one weighted row at a time without allocating.
//   - Provide the elementwise algebra (Mul, Add, AddDiag) needed to
//     normalize, merge and regularize partial statistics.
//
// Complexity quicksheet:
//   - New: O(DiagN + D*(DiagN+D)) zero-init where D = DenseRows.
//   - AddRow: O(DenseN² + DenseN*|cats| + |cats|²).
//   - Mul/Add/AddDiag/HasNaNsOrInfs/Clone: O(packed size).
//   - XX: O(FullN²).

package gram

import (
	"fmt"
	"math"

	"github.com/katalvlaran/gramian/matrix"
)

// Gram is the packed accumulator of the weighted statistic X'X.
//
// A Gram is not safe for concurrent mutation: each data partition owns its
// own instance and hands it over to a merge only once it is finished.
type Gram struct {
	layout Layout
	diag   []float64 // diagonal block, len == DiagN
	xx     []float64 // ragged dense rows, row i at rowOffset(DiagN, i), len DiagN+i+1
}

// New allocates an all-zero accumulator for the layout.
//
// Errors:
//   - ErrBadLayout when the layout dimensions are inconsistent.
func New(l Layout) (*Gram, error) {
	if err := l.Validate(); err != nil {
		return nil, gramErrorf(opNew, err)
	}

	return &Gram{
		layout: l,
		diag:   make([]float64, l.DiagN),
		xx:     make([]float64, l.packedLen()),
	}, nil
}

// Layout returns the accumulator layout.
func (g *Gram) Layout() Layout { return g.layout }

func (g *Gram) row(i int) []float64 { return packedRow(g.xx, g.layout.DiagN, i) }

// AddRow adds the weighted outer product of one row to the statistic.
//
// Inputs:
//   - nums: numeric feature values; the first DenseN entries are used.
//   - cats: global column indices of the active one-hot categorical levels,
//     ascending, at most the first one inside the diagonal region.
//     len(cats) is the active categorical count.
//   - w: observation weight.
//
// Implementation:
//   - Stage 1: numeric×numeric (lower triangle, zero values skipped),
//     numeric×intercept and numeric×categorical into each numeric row.
//   - Stage 2: intercept×intercept and intercept×categorical.
//   - Stage 3: categorical×categorical for every active index except a first
//     index that falls inside the diagonal region.
//   - Stage 4: the diagonal self term of that first index.
//
// Indices are not checked here; use AddRowChecked on untrusted input.
// No allocation.
func (g *Gram) AddRow(nums []float64, cats []int, w float64) {
	var (
		diagN  = g.layout.DiagN
		denseN = g.layout.DenseN
		icpt   = g.layout.intercept()
		// numeric rows sit at the bottom of the dense block, right above the intercept
		denseRowStart = g.layout.FullN() - denseN - diagN - icpt
		denseColStart = g.layout.FullN() - denseN - icpt
		interceptRow  []float64
		mrow          []float64
		i, j, c       int
		d             float64
	)
	if icpt == 1 {
		interceptRow = g.row(denseN + denseRowStart)
	}

	// Stage 1: nums
	for i = 0; i < denseN; i++ {
		if nums[i] == 0 {
			continue
		}
		mrow = g.row(i + denseRowStart)
		d = w * nums[i]
		for j = 0; j <= i; j++ {
			if nums[j] != 0 {
				mrow[j+denseColStart] += d * nums[j]
			}
		}
		if icpt == 1 {
			interceptRow[i+denseColStart] += d // intercept × x[i]
		}
		for _, c = range cats { // nums × cats
			mrow[c] += d
		}
	}

	// Stage 2: intercept
	if icpt == 1 {
		interceptRow[denseN+denseColStart] += w
		for _, c = range cats {
			interceptRow[c] += w
		}
	}

	// Stage 3: cat × cat
	hasDiag := diagN > 0 && len(cats) > 0 && cats[0] < diagN
	i = 0
	if hasDiag {
		i = 1
	}
	for ; i < len(cats); i++ {
		mrow = g.row(cats[i] - diagN)
		for j = 0; j <= i; j++ {
			mrow[cats[j]] += w
		}
	}

	// Stage 4: diag
	if hasDiag {
		g.diag[cats[0]] += w
	}
}

// ValidateRow checks one row against the categorical index contract of the
// layout: len(nums) >= DenseN, cats strictly ascending, every index inside
// the categorical columns [0, NumericStart()), and only cats[0] inside the
// diagonal region [0, DiagN).
//
// Errors:
//   - ErrMalformedRow describing the first violation.
func (g *Gram) ValidateRow(nums []float64, cats []int) error {
	if len(nums) < g.layout.DenseN {
		return gramErrorf(opValidate, fmt.Errorf("%d numeric values, want %d: %w", len(nums), g.layout.DenseN, ErrMalformedRow))
	}
	catEnd := g.layout.NumericStart()
	for k, c := range cats {
		if c < 0 || c >= catEnd {
			return gramErrorf(opValidate, fmt.Errorf("categorical index %d outside [0,%d): %w", c, catEnd, ErrMalformedRow))
		}
		if k > 0 && c <= cats[k-1] {
			return gramErrorf(opValidate, fmt.Errorf("categorical indices not strictly ascending at position %d: %w", k, ErrMalformedRow))
		}
		if k > 0 && c < g.layout.DiagN {
			return gramErrorf(opValidate, fmt.Errorf("second index %d inside diagonal region [0,%d): %w", c, g.layout.DiagN, ErrMalformedRow))
		}
	}

	return nil
}

// AddRowChecked validates the row with ValidateRow and then adds it.
// The accumulator is left untouched when validation fails.
func (g *Gram) AddRowChecked(nums []float64, cats []int, w float64) error {
	if err := g.ValidateRow(nums, cats); err != nil {
		return err
	}
	g.AddRow(nums, cats, w)

	return nil
}

// Mul scales every stored entry (diagonal and dense) by x.
func (g *Gram) Mul(x float64) {
	for i := range g.diag {
		g.diag[i] *= x
	}
	for i := range g.xx {
		g.xx[i] *= x
	}
}

// Add adds other into g elementwise.
//
// Errors:
//   - ErrNilGram if other is nil.
//   - ErrShapeMismatch if the layouts differ.
func (g *Gram) Add(other *Gram) error {
	if other == nil {
		return gramErrorf(opAdd, ErrNilGram)
	}
	if g.layout != other.layout {
		return gramErrorf(opAdd, fmt.Errorf("%+v vs %+v: %w", g.layout, other.layout, ErrShapeMismatch))
	}
	for i, v := range other.diag {
		g.diag[i] += v
	}
	for i, v := range other.xx {
		g.xx[i] += v
	}

	return nil
}

// AddDiag adds d to every diagonal entry of the statistic except the
// intercept's, which is how a ridge penalty is applied.
func (g *Gram) AddDiag(d float64) {
	for i := range g.diag {
		g.diag[i] += d
	}
	rows := g.layout.DenseRows()
	if g.layout.HasIntercept {
		rows-- // the intercept is never penalized
	}
	var r []float64
	for i := 0; i < rows; i++ {
		r = g.row(i)
		r[len(r)-1] += d
	}
}

// HasNaNsOrInfs reports whether any stored entry is NaN or ±Inf.
func (g *Gram) HasNaNsOrInfs() bool {
	for _, v := range g.diag {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	for _, v := range g.xx {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}

	return false
}

// Clone returns an independent deep copy.
func (g *Gram) Clone() *Gram {
	c := &Gram{
		layout: g.layout,
		diag:   make([]float64, len(g.diag)),
		xx:     make([]float64, len(g.xx)),
	}
	copy(c.diag, g.diag)
	copy(c.xx, g.xx)

	return c
}

// Reset zeroes the accumulator, keeping its storage.
func (g *Gram) Reset() {
	clear(g.diag)
	clear(g.xx)
}

// At returns entry (i, j) of the full symmetric statistic.
//
// Errors:
//   - matrix.ErrOutOfRange for indices outside [0, FullN).
func (g *Gram) At(i, j int) (float64, error) {
	n := g.layout.FullN()
	if i < 0 || j < 0 || i >= n || j >= n {
		return 0, fmt.Errorf("Gram.At(%d,%d): %w", i, j, matrix.ErrOutOfRange)
	}
	if i < j {
		i, j = j, i // lower triangle
	}
	diagN := g.layout.DiagN
	if i < diagN {
		if i == j {
			return g.diag[i], nil
		}
		return 0, nil // off-diagonal inside the diagonal block
	}

	return g.row(i - diagN)[j], nil
}

// XX unpacks the statistic into an explicit symmetric FullN×FullN matrix,
// mirroring the dense block across the diagonal.
//
// Errors:
//   - matrix.ErrInvalidDimensions when FullN is zero.
//
// Complexity:
//   - Time O(FullN²), Space O(FullN²).
func (g *Gram) XX() (*matrix.Dense, error) {
	n := g.layout.FullN()
	if n == 0 {
		return nil, gramErrorf(opUnpack, matrix.ErrInvalidDimensions)
	}
	buf := make([]float64, n*n)
	diagN := g.layout.DiagN
	var i, j int
	for i = 0; i < diagN; i++ {
		buf[i*n+i] = g.diag[i]
	}
	var r []float64
	for i = 0; i < g.layout.DenseRows(); i++ {
		r = g.row(i)
		for j = range r {
			buf[(i+diagN)*n+j] = r[j]
			buf[j*n+i+diagN] = r[j]
		}
	}

	return matrix.NewDenseFrom(n, n, buf)
}

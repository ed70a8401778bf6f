// SPDX-License-Identifier: MIT

package gram_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gramian/gram"
	"github.com/katalvlaran/gramian/matrix"
)

// testLayout: factor A (3 levels, diagonal region), factor B (2 levels),
// two numerics and an intercept.
//
//	cols: 0 1 2 | 3 4 | 5 6 | 7
//	       A     B    nums  icpt
var testLayout = gram.Layout{N: 7, DiagN: 3, DenseN: 2, HasIntercept: true}

type testRow struct {
	nums []float64
	cats []int
	w    float64
}

// randomRows draws rows honouring the categorical contract of testLayout.
// Roughly one numeric in five is exactly zero to exercise the skip path.
func randomRows(rng *rand.Rand, n int) []testRow {
	rows := make([]testRow, n)
	for i := range rows {
		nums := make([]float64, 2)
		for j := range nums {
			if rng.Intn(5) != 0 {
				nums[j] = 2*rng.Float64() - 1
			}
		}
		cats := []int{rng.Intn(3)}
		if rng.Intn(3) != 0 {
			cats = append(cats, 3+rng.Intn(2))
		}
		rows[i] = testRow{nums: nums, cats: cats, w: 0.5 + rng.Float64()}
	}

	return rows
}

// expand is the explicit design row: one-hot levels, numerics, intercept.
func expand(l gram.Layout, r testRow) []float64 {
	x := make([]float64, l.FullN())
	for _, c := range r.cats {
		x[c] = 1
	}
	copy(x[l.NumericStart():], r.nums[:l.DenseN])
	if l.HasIntercept {
		x[l.InterceptIndex()] = 1
	}

	return x
}

// naiveGram is Σ w·x·xᵀ over explicit design rows.
func naiveGram(t testing.TB, l gram.Layout, rows []testRow) *matrix.Dense {
	t.Helper()
	n := l.FullN()
	buf := make([]float64, n*n)
	var i, j int
	for _, r := range rows {
		x := expand(l, r)
		for i = 0; i < n; i++ {
			for j = 0; j < n; j++ {
				buf[i*n+j] += r.w * x[i] * x[j]
			}
		}
	}
	m, err := matrix.NewDenseFrom(n, n, buf)
	require.NoError(t, err)

	return m
}

// mustGram accumulates rows into a fresh Gram.
func mustGram(t testing.TB, l gram.Layout, rows []testRow) *gram.Gram {
	t.Helper()
	g, err := gram.New(l)
	require.NoError(t, err)
	for _, r := range rows {
		g.AddRow(r.nums, r.cats, r.w)
	}

	return g
}

// mustXX unpacks g or fails the test.
func mustXX(t testing.TB, g *gram.Gram) *matrix.Dense {
	t.Helper()
	m, err := g.XX()
	require.NoError(t, err)

	return m
}

// requireClose asserts elementwise closeness of two matrices.
func requireClose(t testing.TB, want, got matrix.Matrix, tol float64) {
	t.Helper()
	ok, err := matrix.AllClose(want, got, tol, tol)
	require.NoError(t, err)
	require.Truef(t, ok, "want\n%v\ngot\n%v", want, got)
}

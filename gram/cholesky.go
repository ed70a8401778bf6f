// SPDX-License-Identifier: MIT

package gram

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"

	"github.com/katalvlaran/gramian/matrix"
)

// Cholesky is the lower factor L of a Gram statistic (G = L·Lᵀ), stored in
// the same packed shape as the Gram it was computed from.
//
// A Cholesky is read-only once Factorize returns and may be shared by
// concurrent Solve calls.
type Cholesky struct {
	layout Layout
	diag   []float64
	xx     []float64
	spd    bool
}

func (c *Cholesky) row(i int) []float64 { return packedRow(c.xx, c.layout.DiagN, i) }

// Factorize computes the block-aware Cholesky factor of g. g is not modified.
//
// Implementation:
//   - Stage 1: L_ii = sqrt(G_ii) on the diagonal block, then every dense row
//     divides its diagonal-region entries by the matching L_ii.
//   - Stage 2: outer-product correction of the dense×dense block,
//     C_ij = G_ij − Σ_k L_ik·L_jk over the diagonal region, one task per
//     dense row on a bounded errgroup, joined before Stage 3.
//   - Stage 3: the corrected m×m block (m = DenseRows) is symmetrized into a
//     row-major buffer and factored by LAPACK potrf (lower).
//   - Stage 4: the lower triangle is copied back into the packed rows.
//
// Positive definiteness is reported by IsSPD, never as an error. It is
// cleared when potrf fails or when a pivot falls to rounding level, with
// tol = rel·FullN (rel from WithPivotTolerance):
//   - diagonal block: G_ii <= tol·max_k G_kk over the diagonal block;
//   - dense block: L_jj² <= tol·G_jj, G_jj taken before any correction.
//
// The partial factor is kept as produced.
//
// Errors:
//   - ErrNilGram if g is nil.
//
// Complexity:
//   - Time O(DiagN·m + DiagN·m² + m³), Space O(m²) scratch.
func Factorize(g *Gram, opts ...Option) (*Cholesky, error) {
	if g == nil {
		return nil, gramErrorf(opFactorize, ErrNilGram)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var (
		l   = g.layout
		d   = l.DiagN
		m   = l.DenseRows()
		spd = true
		tol = o.pivotTol * float64(l.FullN())
		i   int
		j   int
	)
	c := &Cholesky{
		layout: l,
		diag:   make([]float64, d),
		xx:     make([]float64, len(g.xx)),
	}

	// Stage 1: diagonal block
	var maxDiag float64
	for _, v := range g.diag {
		maxDiag = math.Max(maxDiag, v)
	}
	for i = 0; i < d; i++ {
		v := g.diag[i]
		if !(v > 0) || v <= tol*maxDiag {
			spd = false // also catches NaN
		}
		s := math.Sqrt(v)
		c.diag[i] = s
		for j = 0; j < m; j++ {
			c.row(j)[i] = g.row(j)[i] / s
		}
	}

	// Stage 2: outer-product correction, row i writes only its own dense part
	eg := new(errgroup.Group)
	eg.SetLimit(o.workers)
	for i := 0; i < m; i++ {
		eg.Go(func() error {
			ci, gi := c.row(i), g.row(i)
			for j := 0; j <= i; j++ {
				cj := c.row(j)
				var s float64
				for k := 0; k < d; k++ {
					s += ci[k] * cj[k]
				}
				ci[j+d] = gi[j+d] - s
			}
			return nil
		})
	}
	_ = eg.Wait() // tasks never fail; Wait is the barrier

	// Stage 3: dense factorization
	if m > 0 {
		buf := make([]float64, m*m)
		for i = 0; i < m; i++ {
			r := c.row(i)
			for j = 0; j <= i; j++ {
				buf[i*m+j] = r[j+d]
				buf[j*m+i] = r[j+d]
			}
		}
		_, ok := lapack64.Potrf(blas64.Symmetric{
			Uplo:   blas.Lower,
			N:      m,
			Stride: m,
			Data:   buf,
		})
		if !ok {
			spd = false
		}
		for j = 0; spd && j < m; j++ {
			ref := g.row(j)[j+d]
			piv := buf[j*m+j]
			if !(ref > 0) || !(piv*piv > tol*ref) {
				spd = false
			}
		}

		// Stage 4: copy back
		for i = 0; i < m; i++ {
			r := c.row(i)
			for j = 0; j <= i; j++ {
				r[j+d] = buf[i*m+j]
			}
		}
	}
	c.spd = spd

	return c, nil
}

// IsSPD reports whether the factored statistic was found positive definite.
func (c *Cholesky) IsSPD() bool { return c.spd }

// Layout returns the layout of the factored statistic.
func (c *Cholesky) Layout() Layout { return c.layout }

// Solve overwrites y with the solution x of G·x = y.
//
// Implementation (n = FullN, d = DiagN):
//   - Pass 1: forward on the diagonal block, y_k /= L_kk for k < d.
//   - Pass 2: forward on the dense block for k = d..n-1.
//   - Pass 3: backward with Lᵀ on the dense block for k = n-1..d.
//   - Pass 4: backward on the diagonal block for k = d-1..0, using the
//     diagonal-region columns of the dense rows.
//
// Errors (y is left untouched):
//   - ErrNonPositiveDefinite if the factor is not SPD.
//   - ErrShapeMismatch if len(y) != FullN.
//
// Complexity:
//   - Time O(n·m), Space O(1).
func (c *Cholesky) Solve(y []float64) error {
	if !c.spd {
		return gramErrorf(opSolve, ErrNonPositiveDefinite)
	}
	d := c.layout.DiagN
	n := d + c.layout.DenseRows()
	if len(y) != n {
		return gramErrorf(opSolve, fmt.Errorf("len(y)=%d, want %d: %w", len(y), n, ErrShapeMismatch))
	}

	var i, k int // loop iterators
	var r []float64

	// Pass 1
	for k = 0; k < d; k++ {
		y[k] /= c.diag[k]
	}
	// Pass 2
	for k = d; k < n; k++ {
		r = c.row(k - d)
		for i = 0; i < k; i++ {
			y[k] -= y[i] * r[i]
		}
		y[k] /= r[k]
	}
	// Pass 3
	for k = n - 1; k >= d; k-- {
		for i = k + 1; i < n; i++ {
			y[k] -= y[i] * c.row(i - d)[k]
		}
		y[k] /= c.row(k - d)[k]
	}
	// Pass 4
	for k = d - 1; k >= 0; k-- {
		for i = d; i < n; i++ {
			y[k] -= y[i] * c.row(i - d)[k]
		}
		y[k] /= c.diag[k]
	}

	return nil
}

// SolveVec solves G·x = b into a fresh slice, leaving b untouched.
func (c *Cholesky) SolveVec(b []float64) ([]float64, error) {
	x := make([]float64, len(b))
	copy(x, b)
	if err := c.Solve(x); err != nil {
		return nil, err
	}

	return x, nil
}

// L unpacks the lower factor into an explicit FullN×FullN matrix with zeros
// above the diagonal.
func (c *Cholesky) L() (*matrix.Dense, error) {
	d := c.layout.DiagN
	n := d + c.layout.DenseRows()
	if n == 0 {
		return nil, gramErrorf(opUnpack, matrix.ErrInvalidDimensions)
	}
	buf := make([]float64, n*n)
	var i int
	for i = 0; i < d; i++ {
		buf[i*n+i] = c.diag[i]
	}
	for i = 0; i < c.layout.DenseRows(); i++ {
		copy(buf[(i+d)*n:], c.row(i))
	}

	return matrix.NewDenseFrom(n, n, buf)
}

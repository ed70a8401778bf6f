// Package matrix_test contains unit tests for the dense kernels.
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gramian/matrix"
)

func TestAdd_FastPathMatchesFallback(t *testing.T) {
	t.Parallel()

	A := MustDense(t, 4, 5)
	B := MustDense(t, 4, 5)
	RandomFill(t, A, 1)
	RandomFill(t, B, 2)

	fast, err := matrix.Add(A, B)
	require.NoError(t, err)
	slow, err := matrix.Add(hide{A}, B)
	require.NoError(t, err)
	ok, err := matrix.AllClose(fast, slow, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	neg, err := matrix.Scale(B, -1)
	require.NoError(t, err)
	diff, err := matrix.Add(fast, neg)
	require.NoError(t, err)
	ok, err = matrix.AllClose(diff, A, 1e-12, 1e-12)
	require.NoError(t, err)
	require.True(t, ok, "(A+B)-B must equal A")
}

func TestAdd_ShapeMismatch(t *testing.T) {
	_, err := matrix.Add(MustDense(t, 2, 2), MustDense(t, 2, 3))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Add(nil, MustDense(t, 2, 2))
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestMul_Known(t *testing.T) {
	A := FromRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	B := FromRows(t, [][]float64{{7, 8}, {9, 10}, {11, 12}})
	want := FromRows(t, [][]float64{{58, 64}, {139, 154}})

	for name, a := range map[string]matrix.Matrix{"fast": A, "fallback": hide{A}} {
		t.Run(name, func(t *testing.T) {
			got, err := matrix.Mul(a, B)
			require.NoError(t, err)
			ok, err := matrix.AllClose(got, want, 0, 0)
			require.NoError(t, err)
			require.True(t, ok, "got:\n%v", got)
		})
	}

	_, err := matrix.Mul(A, A)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestTransposeAndScale(t *testing.T) {
	A := FromRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	T, err := matrix.Transpose(A)
	require.NoError(t, err)
	require.Equal(t, 3, T.Rows())
	require.Equal(t, 2, T.Cols())
	require.Equal(t, 6.0, MustAt(t, T, 2, 1))

	S, err := matrix.Scale(hide{A}, -2)
	require.NoError(t, err)
	require.Equal(t, -8.0, MustAt(t, S, 1, 0))
}

func TestMatVec(t *testing.T) {
	A := FromRows(t, [][]float64{{2, 0}, {1, 3}})
	y, err := matrix.MatVec(A, []float64{1, 2})
	require.NoError(t, err)
	require.Equal(t, []float64{2, 7}, y)

	y, err = matrix.MatVec(hide{A}, []float64{1, 2})
	require.NoError(t, err)
	require.Equal(t, []float64{2, 7}, y)

	_, err = matrix.MatVec(A, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.MatVec(A, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestValidateSymmetric(t *testing.T) {
	S := FromRows(t, [][]float64{{1, 2}, {2, 1}})
	require.NoError(t, matrix.ValidateSymmetric(S, 0))

	N := FromRows(t, [][]float64{{1, 2}, {2.1, 1}})
	require.ErrorIs(t, matrix.ValidateSymmetric(N, 1e-3), matrix.ErrAsymmetry)
	require.NoError(t, matrix.ValidateSymmetric(N, 0.2))

	require.ErrorIs(t, matrix.ValidateSymmetric(MustDense(t, 2, 3), 0), matrix.ErrDimensionMismatch)
}

func TestAllClose_Tolerances(t *testing.T) {
	A := FromRows(t, [][]float64{{1, 100}})
	B := FromRows(t, [][]float64{{1.0001, 100.01}})
	ok, err := matrix.AllClose(A, B, 1e-3, 0)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = matrix.AllClose(A, B, 1e-6, 1e-6)
	require.NoError(t, err)
	require.False(t, ok)
}

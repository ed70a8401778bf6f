package matrix_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gramian/matrix"
)

func TestNewDenseDefaultZero(t *testing.T) {
	for _, tc := range []struct{ rows, cols int }{
		{1, 1},
		{3, 3},
		{4, 6},
	} {
		t.Run(fmt.Sprintf("%dx%d", tc.rows, tc.cols), func(t *testing.T) {
			m := MustDense(t, tc.rows, tc.cols)
			var i, j int
			for i = 0; i < tc.rows; i++ {
				for j = 0; j < tc.cols; j++ {
					require.Zero(t, MustAt(t, m, i, j), "element [%d,%d] of a new Dense must be 0", i, j)
				}
			}
		})
	}
}

func TestNewDense_InvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewDense(3, -1)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestNewDenseFrom_AdoptsSlice(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	m, err := matrix.NewDenseFrom(2, 3, data)
	require.NoError(t, err)
	require.Equal(t, 6.0, MustAt(t, m, 1, 2))

	// Writes through the slice are visible in the matrix.
	data[0] = 42
	require.Equal(t, 42.0, MustAt(t, m, 0, 0))

	_, err = matrix.NewDenseFrom(2, 2, data)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestDense_OutOfRange(t *testing.T) {
	m := MustDense(t, 2, 2)
	_, err := m.At(2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
	_, err = m.Row(5)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestDense_SetRejectsNaNInf(t *testing.T) {
	m := MustDense(t, 2, 2)
	require.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaNInf)
	require.ErrorIs(t, m.Set(1, 1, math.Inf(-1)), matrix.ErrNaNInf)
}

func TestDense_RowAliasesAndCloneIsDeep(t *testing.T) {
	m := FromRows(t, [][]float64{{1, 2}, {3, 4}})
	row, err := m.Row(1)
	require.NoError(t, err)
	row[0] = 30
	require.Equal(t, 30.0, MustAt(t, m, 1, 0))

	c := m.Clone()
	MustSet(t, c, 0, 0, -1)
	require.Equal(t, 1.0, MustAt(t, m, 0, 0), "clone must not share storage")
}

func TestDense_String(t *testing.T) {
	m := FromRows(t, [][]float64{{1, 2.5}, {0, -3}})
	require.Equal(t, "[1, 2.5]\n[0, -3]\n", m.String())
}

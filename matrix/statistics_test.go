// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gramian/matrix"
)

func TestColumnStats_Known(t *testing.T) {
	X := FromRows(t, [][]float64{
		{1, 10},
		{2, 10},
		{3, 10},
		{6, 10},
	})
	for name, m := range map[string]matrix.Matrix{"dense": X, "generic": hide{X}} {
		t.Run(name, func(t *testing.T) {
			means, stds, err := matrix.ColumnStats(m)
			require.NoError(t, err)
			require.InDeltaSlice(t, []float64{3, 10}, means, 1e-15)
			require.InDelta(t, math.Sqrt(14.0/3), stds[0], 1e-15)
			require.Zero(t, stds[1])
		})
	}
}

func TestColumnStats_LargeMean(t *testing.T) {
	const n = 1000
	X := MustDense(t, n, 1)
	for i := 0; i < n; i++ {
		MustSet(t, X, i, 0, 1e9+float64(i%10))
	}
	means, stds, err := matrix.ColumnStats(X)
	require.NoError(t, err)
	require.InDelta(t, 1e9+4.5, means[0], 1e-6)
	// var of 0..9 repeated 100 times is 8.25·n/(n-1)
	require.InDelta(t, math.Sqrt(8.25*n/(n-1)), stds[0], 1e-9)
}

func TestColumnStats_SingleRowAndNil(t *testing.T) {
	means, stds, err := matrix.ColumnStats(FromRows(t, [][]float64{{4, -2}}))
	require.NoError(t, err)
	require.Equal(t, []float64{4, -2}, means)
	require.Equal(t, []float64{0, 0}, stds)

	_, _, err = matrix.ColumnStats(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

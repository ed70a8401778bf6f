// SPDX-License-Identifier: MIT

package frame_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gramian/frame"
	"github.com/katalvlaran/gramian/matrix"
)

func numericSchema() *frame.Schema {
	return frame.NewSchema([]string{"x"}, nil, "y", false)
}

func records(xs ...float64) []frame.Record {
	out := make([]frame.Record, len(xs))
	for i, x := range xs {
		out[i] = frame.Record{Nums: []float64{x}, Levels: []int{}, Response: 2 * x, Weight: 1}
	}

	return out
}

// drain collects the x values of every chunk in order.
func drain(t *testing.T, src frame.Source) [][]float64 {
	t.Helper()
	var out [][]float64
	for i := 0; i < src.NumChunks(); i++ {
		ch, err := src.Chunk(i)
		require.NoError(t, err)
		var row frame.Row
		var xs []float64
		for ch.Next(&row) {
			xs = append(xs, row.Nums[0])
		}
		require.NoError(t, ch.Err())
		out = append(out, xs)
	}

	return out
}

func TestMemory_Chunking(t *testing.T) {
	m, err := frame.NewMemory(numericSchema(), records(1, 2, 3, 4, 5), 2)
	require.NoError(t, err)
	require.Equal(t, 3, m.NumChunks())
	require.Equal(t, 5, m.Len())
	require.Equal(t, [][]float64{{1, 2}, {3, 4}, {5}}, drain(t, m))

	_, err = m.Chunk(3)
	require.ErrorIs(t, err, frame.ErrChunkRange)
	_, err = m.Chunk(-1)
	require.ErrorIs(t, err, frame.ErrChunkRange)
}

func TestMemory_Empty(t *testing.T) {
	m, err := frame.NewMemory(numericSchema(), nil, 10)
	require.NoError(t, err)
	require.Zero(t, m.NumChunks())
}

func TestMemory_SkipsIncompleteRows(t *testing.T) {
	m, err := frame.NewMemory(numericSchema(), records(1, math.NaN(), 3), 10)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 3}}, drain(t, m))
}

func TestNewMemory_Errors(t *testing.T) {
	_, err := frame.NewMemory(numericSchema(), records(1), 0)
	require.ErrorIs(t, err, frame.ErrBadChunkSize)

	bad := []frame.Record{{Nums: []float64{1, 2}, Levels: []int{}}}
	_, err = frame.NewMemory(numericSchema(), bad, 1)
	require.ErrorIs(t, err, frame.ErrSchemaMismatch)
}

func TestMemory_Standardize(t *testing.T) {
	m, err := frame.NewMemory(numericSchema(), records(1, 2, 3, math.NaN(), 4, 5), 4)
	require.NoError(t, err)
	require.NoError(t, m.Standardize())

	s := m.Schema()
	require.InDeltaSlice(t, []float64{3}, s.Means, 1e-12)
	require.InDeltaSlice(t, []float64{math.Sqrt(2.5)}, s.Sigmas, 1e-12)

	var got []float64
	for _, xs := range drain(t, m) {
		got = append(got, xs...)
	}
	sd := math.Sqrt(2.5)
	require.InDeltaSlice(t, []float64{-2 / sd, -1 / sd, 0, 1 / sd, 2 / sd}, got, 1e-12)
}

func TestMemory_StandardizeConstantColumn(t *testing.T) {
	m, err := frame.NewMemory(numericSchema(), records(7, 7, 7), 4)
	require.NoError(t, err)
	require.NoError(t, m.Standardize())
	require.Equal(t, []float64{1}, m.Schema().Sigmas)
	require.Equal(t, [][]float64{{0, 0, 0}}, drain(t, m))
}

func TestMemory_StandardizeLargeMean(t *testing.T) {
	const n = 1000
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = 1e9 + float64(i%10)
	}
	m, err := frame.NewMemory(numericSchema(), records(vals...), 128)
	require.NoError(t, err)
	require.NoError(t, m.Standardize())

	s := m.Schema()
	require.InDelta(t, 1e9+4.5, s.Means[0], 1e-6)
	require.InDelta(t, math.Sqrt(8.25*n/(n-1)), s.Sigmas[0], 1e-9)
}

func TestMemory_StandardizeRejectsInf(t *testing.T) {
	m, err := frame.NewMemory(numericSchema(), records(1, math.Inf(1), 3), 4)
	require.NoError(t, err)
	err = m.Standardize()
	require.ErrorIs(t, err, frame.ErrNonFinite)
	require.ErrorIs(t, err, matrix.ErrNaNInf)
	require.Nil(t, m.Schema().Means, "schema untouched on error")
}

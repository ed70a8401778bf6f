// SPDX-License-Identifier: MIT

package regress_test

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gramian/frame"
	"github.com/katalvlaran/gramian/gram"
	"github.com/katalvlaran/gramian/pipeline"
	"github.com/katalvlaran/gramian/regress"
)

// truth in column order g.b, g.c, h.v, x1, x2, Intercept.
var truth = []float64{1, -2, 0.7, 2, -0.5, 1.5}

func testSchema() *frame.Schema {
	return frame.NewSchema(
		[]string{"x1", "x2"},
		[]frame.Factor{
			{Name: "h", Levels: []string{"u", "v"}},
			{Name: "g", Levels: []string{"a", "b", "c"}},
		},
		"y", false,
	)
}

// linear evaluates truth on raw values.
func linear(x1, x2 float64, h, g int) float64 {
	y := truth[5] + truth[3]*x1 + truth[4]*x2
	if g > 0 {
		y += truth[g-1]
	}
	if h == 1 {
		y += truth[2]
	}

	return y
}

func genRecords(seed int64, n int, noise float64) []frame.Record {
	rng := rand.New(rand.NewSource(seed))
	recs := make([]frame.Record, n)
	for i := range recs {
		x1, x2 := 3*rng.NormFloat64()+1, rng.Float64()*10
		h, g := rng.Intn(2), rng.Intn(3)
		recs[i] = frame.Record{
			Nums:     []float64{x1, x2},
			Levels:   []int{h, g},
			Response: linear(x1, x2, h, g) + noise*rng.NormFloat64(),
			Weight:   0.5 + rng.Float64(),
		}
	}

	return recs
}

func memory(t *testing.T, recs []frame.Record, chunk int) *frame.Memory {
	t.Helper()
	m, err := frame.NewMemory(testSchema(), recs, chunk)
	require.NoError(t, err)

	return m
}

func TestFit_RecoversCoefficients(t *testing.T) {
	recs := genRecords(1, 1000, 0)
	for _, topo := range []pipeline.Topology{pipeline.TopologyTree, pipeline.TopologySequential} {
		for _, chunk := range []int{1000, 97, 7} {
			t.Run(fmt.Sprintf("%s/chunk=%d", topo, chunk), func(t *testing.T) {
				p := regress.DefaultParams()
				p.Topology = topo
				p.Workers = 4
				p.FactorWorkers = 2
				m, err := regress.Fit(context.Background(), memory(t, recs, chunk), p)
				require.NoError(t, err)
				require.Equal(t, int64(1000), m.Nobs)
				require.Zero(t, m.Lambda)
				require.Equal(t, []string{"g.b", "g.c", "h.v", "x1", "x2", "Intercept"}, m.Columns)
				require.InDeltaSlice(t, truth, m.Beta, 1e-8)
				require.InDelta(t, 0, m.MSE, 1e-8)
				require.InDelta(t, 2.0, m.Coefficients()["x1"], 1e-8)
			})
		}
	}
}

func TestFit_WeightsMatchDuplication(t *testing.T) {
	base := genRecords(2, 300, 0.3)
	weighted := make([]frame.Record, len(base))
	var dup []frame.Record
	for i, r := range base {
		r.Weight = 2
		weighted[i] = r
		r.Weight = 1
		dup = append(dup, r, r)
	}

	a, err := regress.Fit(context.Background(), memory(t, weighted, 50), regress.DefaultParams())
	require.NoError(t, err)
	b, err := regress.Fit(context.Background(), memory(t, dup, 50), regress.DefaultParams())
	require.NoError(t, err)
	require.InDeltaSlice(t, a.Beta, b.Beta, 1e-9)
}

func TestFit_MSEMatchesResiduals(t *testing.T) {
	recs := genRecords(3, 400, 0.5)
	m, err := regress.Fit(context.Background(), memory(t, recs, 64), regress.DefaultParams())
	require.NoError(t, err)

	var sum float64
	for _, r := range recs {
		yhat, err := m.Predict(r)
		require.NoError(t, err)
		sum += r.Weight * (r.Response - yhat) * (r.Response - yhat)
	}
	require.InDelta(t, sum/float64(len(recs)), m.MSE, 1e-8)
	require.Greater(t, m.MSE, 0.1)
}

func TestFit_RidgeShrinks(t *testing.T) {
	recs := genRecords(4, 500, 0.5)
	ols, err := regress.Fit(context.Background(), memory(t, recs, 100), regress.DefaultParams())
	require.NoError(t, err)

	p := regress.DefaultParams()
	p.Lambda = 5
	ridge, err := regress.Fit(context.Background(), memory(t, recs, 100), p)
	require.NoError(t, err)
	require.Equal(t, 5.0, ridge.Lambda)

	norm := func(b []float64) float64 {
		var s float64
		for _, v := range b[:len(b)-1] { // intercept is not penalized
			s += v * v
		}
		return s
	}
	require.Less(t, norm(ridge.Beta), norm(ols.Beta))
}

// A declared but unobserved level leaves a zero diagonal entry.
func unobservedLevel(t *testing.T) *frame.Memory {
	t.Helper()
	schema := frame.NewSchema([]string{"x"},
		[]frame.Factor{{Name: "g", Levels: []string{"a", "b", "c", "d"}}}, "y", false)
	rng := rand.New(rand.NewSource(5))
	recs := make([]frame.Record, 200)
	for i := range recs {
		x := rng.NormFloat64()
		recs[i] = frame.Record{Nums: []float64{x}, Levels: []int{rng.Intn(3)}, Response: 2 * x, Weight: 1}
	}
	m, err := frame.NewMemory(schema, recs, 40)
	require.NoError(t, err)

	return m
}

func TestFit_RidgeEscalation(t *testing.T) {
	m, err := regress.Fit(context.Background(), unobservedLevel(t), regress.DefaultParams())
	require.NoError(t, err)
	require.Equal(t, regress.MinRidge, m.Lambda)
	require.InDelta(t, 0, m.Coefficients()["g.d"], 1e-12)
	require.InDelta(t, 2, m.Coefficients()["x"], 1e-6)

	p := regress.DefaultParams()
	p.MaxRidgeRetries = 0
	_, err = regress.Fit(context.Background(), unobservedLevel(t), p)
	require.ErrorIs(t, err, gram.ErrNonPositiveDefinite)
}

// allLevels keeps every level of g next to the intercept, so the level
// columns sum to the intercept column.
func allLevels(t *testing.T, seed int64) *frame.Memory {
	t.Helper()
	schema := frame.NewSchema([]string{"x"},
		[]frame.Factor{{Name: "g", Levels: []string{"a", "b", "c"}}}, "y", true)
	rng := rand.New(rand.NewSource(seed))
	recs := make([]frame.Record, 300)
	for i := range recs {
		x, g := rng.NormFloat64(), rng.Intn(3)
		recs[i] = frame.Record{Nums: []float64{x}, Levels: []int{g}, Response: 1 + 2*x + float64(g), Weight: 1}
	}
	m, err := frame.NewMemory(schema, recs, 64)
	require.NoError(t, err)

	return m
}

func TestFit_EscalatesOnAllLevelsWithIntercept(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		m, err := regress.Fit(context.Background(), allLevels(t, seed), regress.DefaultParams())
		require.NoError(t, err, "seed %d", seed)
		require.GreaterOrEqual(t, m.Lambda, regress.MinRidge, "seed %d", seed)
		require.InDelta(t, 2, m.Coefficients()["x"], 1e-4, "seed %d", seed)
		require.InDelta(t, 0, m.MSE, 1e-6, "seed %d", seed)
	}

	p := regress.DefaultParams()
	p.MaxRidgeRetries = 0
	_, err := regress.Fit(context.Background(), allLevels(t, 1), p)
	require.ErrorIs(t, err, gram.ErrNonPositiveDefinite)
}

func TestFit_Errors(t *testing.T) {
	allNA := []frame.Record{
		{Nums: []float64{math.NaN(), 1}, Levels: []int{0, 0}, Response: 1, Weight: 1},
		{Nums: []float64{1, 1}, Levels: []int{frame.NA, 0}, Response: 1, Weight: 1},
	}
	_, err := regress.Fit(context.Background(), memory(t, allNA, 1), regress.DefaultParams())
	require.ErrorIs(t, err, regress.ErrNoObservations)

	for name, mutate := range map[string]func(*regress.Params){
		"negative-lambda": func(p *regress.Params) { p.Lambda = -1 },
		"negative-retry":  func(p *regress.Params) { p.MaxRidgeRetries = -1 },
		"flat-growth":     func(p *regress.Params) { p.RidgeGrowth = 1 },
		"workers":         func(p *regress.Params) { p.Workers = -2 },
	} {
		p := regress.DefaultParams()
		mutate(&p)
		_, err = regress.Fit(context.Background(), memory(t, genRecords(1, 10, 0), 5), p)
		require.ErrorIs(t, err, regress.ErrBadParams, name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = regress.Fit(ctx, memory(t, genRecords(1, 10, 0), 5), regress.DefaultParams())
	require.ErrorIs(t, err, context.Canceled)

	inf := genRecords(1, 10, 0)
	inf[3].Nums[0] = math.Inf(1)
	_, err = regress.Fit(context.Background(), memory(t, inf, 5), regress.DefaultParams())
	require.ErrorIs(t, err, regress.ErrNonFinite)
}

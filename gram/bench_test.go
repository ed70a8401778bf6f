// SPDX-License-Identifier: MIT

package gram_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/katalvlaran/gramian/gram"
)

var (
	sinkGram *gram.Gram
	sinkChol *gram.Cholesky
	sinkErr  error
)

// benchLayout: a 200-level factor, a 50-level factor and 30 numerics.
var benchLayout = gram.Layout{N: 280, DiagN: 200, DenseN: 30, HasIntercept: true}

func benchRows(n int) []testRow {
	rng := rand.New(rand.NewSource(99))
	rows := make([]testRow, n)
	for i := range rows {
		nums := make([]float64, benchLayout.DenseN)
		for j := range nums {
			nums[j] = rng.NormFloat64()
		}
		rows[i] = testRow{
			nums: nums,
			cats: []int{rng.Intn(200), 200 + rng.Intn(50)},
			w:    1,
		}
	}

	return rows
}

func BenchmarkAddRow(b *testing.B) {
	rows := benchRows(1024)
	g, err := gram.New(benchLayout)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := rows[i%len(rows)]
		g.AddRow(r.nums, r.cats, r.w)
	}
	sinkGram = g
}

func BenchmarkFactorize(b *testing.B) {
	g, err := gram.New(benchLayout)
	if err != nil {
		b.Fatal(err)
	}
	for _, r := range benchRows(5000) {
		g.AddRow(r.nums, r.cats, r.w)
	}
	g.AddDiag(1e-3)

	for _, w := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", w), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				sinkChol, sinkErr = gram.Factorize(g, gram.WithWorkers(w))
			}
		})
	}
}

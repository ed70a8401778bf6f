// SPDX-License-Identifier: MIT

package gram

import (
	"fmt"
	"math"
	"runtime"
)

// DefaultPivotTolerance is the default relative pivot tolerance of
// Factorize, per column of the statistic.
const DefaultPivotTolerance = 64 * 0x1p-52

// Option configures Factorize.
type Option func(*options)

type options struct {
	workers  int
	pivotTol float64
}

func defaultOptions() options {
	return options{workers: runtime.GOMAXPROCS(0), pivotTol: DefaultPivotTolerance}
}

// WithWorkers bounds the number of goroutines used by the parallel
// correction step of Factorize. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("gram: WithWorkers(%d): need at least one worker", n))
	}

	return func(o *options) { o.workers = n }
}

// WithPivotTolerance sets the relative tolerance rel of the pivot test: a
// pivot is rejected when L_jj² <= rel·FullN·G_jj. Zero keeps only the exact
// positivity test. Panics if rel is negative or NaN.
func WithPivotTolerance(rel float64) Option {
	if !(rel >= 0) || math.IsInf(rel, 0) {
		panic(fmt.Sprintf("gram: WithPivotTolerance(%g): need a finite value >= 0", rel))
	}

	return func(o *options) { o.pivotTol = rel }
}

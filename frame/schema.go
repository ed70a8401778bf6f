// SPDX-License-Identifier: MIT

package frame

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/gramian/gram"
)

// NA is the factor level of a missing categorical value.
const NA = -1

// InterceptName is the column name reported for the intercept.
const InterceptName = "Intercept"

// Factor is a categorical column and its level domain.
type Factor struct {
	Name   string
	Levels []string
}

// Cardinality is the number of levels of the factor.
func (f Factor) Cardinality() int { return len(f.Levels) }

// Schema describes the columns a Source yields.
//
// Factors keep the order in which Record.Levels lists them. The expansion
// order used by the statistic is by decreasing cardinality (ties keep the
// declared order) and is fixed when the schema is built by NewSchema.
type Schema struct {
	Numeric      []string
	Factors      []Factor
	Response     string
	UseAllLevels bool

	// Means and Sigmas are set by standardization; nil means raw values.
	Means  []float64
	Sigmas []float64

	order   []int // expansion order, indices into Factors
	offsets []int // first expanded column of Factors[order[k]]
}

// NewSchema builds a schema and fixes its factor expansion order.
func NewSchema(numeric []string, factors []Factor, response string, useAllLevels bool) *Schema {
	s := &Schema{
		Numeric:      numeric,
		Factors:      factors,
		Response:     response,
		UseAllLevels: useAllLevels,
	}
	s.order = make([]int, len(factors))
	for i := range s.order {
		s.order[i] = i
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		return factors[s.order[a]].Cardinality() > factors[s.order[b]].Cardinality()
	})
	s.offsets = make([]int, len(factors))
	off := 0
	for k, fi := range s.order {
		s.offsets[k] = off
		off += s.levelsUsed(fi)
	}

	return s
}

// levelsUsed is the number of expanded columns of factor fi; without
// UseAllLevels level 0 is the dropped reference level.
func (s *Schema) levelsUsed(fi int) int {
	n := s.Factors[fi].Cardinality()
	if !s.UseAllLevels && n > 0 {
		n--
	}

	return n
}

// Expanded is the number of one-hot categorical columns.
func (s *Schema) Expanded() int {
	n := 0
	for fi := range s.Factors {
		n += s.levelsUsed(fi)
	}

	return n
}

// DiagN is the width of the diagonal region: the expanded columns of the
// largest factor.
func (s *Schema) DiagN() int {
	if len(s.order) == 0 {
		return 0
	}

	return s.levelsUsed(s.order[0])
}

// Offsets returns the first expanded column of each factor in expansion order.
func (s *Schema) Offsets() []int {
	out := make([]int, len(s.offsets))
	copy(out, s.offsets)

	return out
}

// Order returns the factor expansion order as indices into Factors.
func (s *Schema) Order() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)

	return out
}

// Layout is the gram layout of the schema's expanded design.
func (s *Schema) Layout(intercept bool) gram.Layout {
	return gram.Layout{
		N:            s.Expanded() + len(s.Numeric),
		DiagN:        s.DiagN(),
		DenseN:       len(s.Numeric),
		HasIntercept: intercept,
	}
}

// ColumnNames names every column of the statistic in global order:
// "factor.level" for expanded levels, numerics, then the intercept.
func (s *Schema) ColumnNames(intercept bool) []string {
	names := make([]string, 0, s.Expanded()+len(s.Numeric)+1)
	for _, fi := range s.order {
		f := s.Factors[fi]
		first := 1
		if s.UseAllLevels {
			first = 0
		}
		for l := first; l < len(f.Levels); l++ {
			names = append(names, f.Name+"."+f.Levels[l])
		}
	}
	names = append(names, s.Numeric...)
	if intercept {
		names = append(names, InterceptName)
	}

	return names
}

// Encode fills row from rec, applying the one-hot rule and standardization.
// It reports false when rec has a missing value and must be skipped.
//
// Errors:
//   - ErrSchemaMismatch when rec has the wrong width.
//   - ErrLevelRange when a level is outside its factor domain.
func (s *Schema) Encode(rec *Record, row *Row) (bool, error) {
	if len(rec.Nums) != len(s.Numeric) || len(rec.Levels) != len(s.Factors) {
		return false, frameErrorf("Encode", fmt.Errorf("%d nums, %d levels: %w", len(rec.Nums), len(rec.Levels), ErrSchemaMismatch))
	}
	if math.IsNaN(rec.Response) || math.IsNaN(rec.Weight) {
		return false, nil
	}

	row.Nums = row.Nums[:0]
	for i, v := range rec.Nums {
		if math.IsNaN(v) {
			return false, nil
		}
		if s.Means != nil {
			v = (v - s.Means[i]) / s.Sigmas[i]
		}
		row.Nums = append(row.Nums, v)
	}

	row.Cats = row.Cats[:0]
	for k, fi := range s.order {
		l := rec.Levels[fi]
		if l == NA {
			return false, nil
		}
		if l < 0 || l >= s.Factors[fi].Cardinality() {
			return false, frameErrorf("Encode", fmt.Errorf("factor %q level %d: %w", s.Factors[fi].Name, l, ErrLevelRange))
		}
		switch {
		case s.UseAllLevels:
			row.Cats = append(row.Cats, s.offsets[k]+l)
		case l > 0:
			row.Cats = append(row.Cats, s.offsets[k]+l-1)
		}
	}
	row.Response = rec.Response
	row.Weight = rec.Weight

	return true, nil
}

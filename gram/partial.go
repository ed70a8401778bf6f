// SPDX-License-Identifier: MIT

package gram

import "fmt"

// Partial is the statistic of one data partition together with the number
// of observations it was computed from.
//
// Lifecycle: NewPartial → AddRow... → Normalize → Merge (any topology).
// After Normalize the Gram holds a per-observation mean, which is the form
// Merge expects.
type Partial struct {
	Gram *Gram
	Nobs int64
}

// NewPartial allocates an empty partial statistic.
func NewPartial(l Layout) (*Partial, error) {
	g, err := New(l)
	if err != nil {
		return nil, err
	}

	return &Partial{Gram: g}, nil
}

// AddRow accumulates one observation and counts it.
func (p *Partial) AddRow(nums []float64, cats []int, w float64) {
	p.Gram.AddRow(nums, cats, w)
	p.Nobs++
}

// Normalize divides the statistic by the observation count.
// No-op for an empty partial.
func (p *Partial) Normalize() {
	if p.Nobs == 0 {
		return
	}
	p.Gram.Mul(1 / float64(p.Nobs))
}

// Merge folds a normalized partial into p as an observation-weighted mean:
//
//	p = p·nA/(nA+nB) + other·nB/(nA+nB),  Nobs = nA+nB
//
// other is scaled in place and must not be used afterwards.
//
// Errors:
//   - ErrNilGram if other (or its Gram) is nil.
//   - ErrShapeMismatch if the layouts differ.
func (p *Partial) Merge(other *Partial) error {
	if other == nil || other.Gram == nil {
		return gramErrorf(opMerge, ErrNilGram)
	}
	if p.Gram.layout != other.Gram.layout {
		return gramErrorf(opMerge, fmt.Errorf("%+v vs %+v: %w", p.Gram.layout, other.Gram.layout, ErrShapeMismatch))
	}
	total := p.Nobs + other.Nobs
	if total == 0 {
		return nil
	}
	r := float64(p.Nobs) / float64(total)
	r2 := float64(other.Nobs) / float64(total)
	p.Gram.Mul(r)
	other.Gram.Mul(r2)
	if err := p.Gram.Add(other.Gram); err != nil {
		return gramErrorf(opMerge, err)
	}
	p.Nobs = total

	return nil
}

// SPDX-License-Identifier: MIT

package regress

import (
	"github.com/katalvlaran/gramian/frame"
	"github.com/katalvlaran/gramian/gram"
)

// Task accumulates XᵀWX, XᵀWy and yᵀWy for one chunk. It satisfies
// pipeline.Task[*Task].
type Task struct {
	part *gram.Partial
	xy   []float64
	yy   float64
}

// NewTask allocates an empty task for the layout.
func NewTask(l gram.Layout) (*Task, error) {
	p, err := gram.NewPartial(l)
	if err != nil {
		return nil, err
	}

	return &Task{part: p, xy: make([]float64, l.FullN())}, nil
}

// ProcessRow adds one observation.
func (t *Task) ProcessRow(r *frame.Row) {
	l := t.part.Gram.Layout()
	t.part.AddRow(r.Nums, r.Cats, r.Weight)

	wy := r.Weight * r.Response
	for _, c := range r.Cats {
		t.xy[c] += wy
	}
	ns := l.NumericStart()
	for i := 0; i < l.DenseN; i++ {
		t.xy[ns+i] += wy * r.Nums[i]
	}
	if l.HasIntercept {
		t.xy[l.InterceptIndex()] += wy
	}
	t.yy += wy * r.Response
}

// ChunkDone normalizes every statistic by the chunk's observation count.
func (t *Task) ChunkDone() {
	n := t.part.Nobs
	t.part.Normalize()
	if n == 0 {
		return
	}
	s := 1 / float64(n)
	for i := range t.xy {
		t.xy[i] *= s
	}
	t.yy *= s
}

// Reduce merges other into t with observation-count weights.
func (t *Task) Reduce(other *Task) error {
	nA, nB := t.part.Nobs, other.part.Nobs
	if err := t.part.Merge(other.part); err != nil {
		return err
	}
	total := nA + nB
	if total == 0 {
		return nil
	}
	r := float64(nA) / float64(total)
	r2 := float64(nB) / float64(total)
	for i := range t.xy {
		t.xy[i] = t.xy[i]*r + other.xy[i]*r2
	}
	t.yy = t.yy*r + other.yy*r2

	return nil
}

// Gram is the normalized XᵀWX statistic.
func (t *Task) Gram() *gram.Gram { return t.part.Gram }

// Xy is the normalized XᵀWy vector in global column order.
func (t *Task) Xy() []float64 { return t.xy }

// Yy is the normalized yᵀWy scalar.
func (t *Task) Yy() float64 { return t.yy }

// Nobs is the number of observations accumulated.
func (t *Task) Nobs() int64 { return t.part.Nobs }

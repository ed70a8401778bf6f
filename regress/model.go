// SPDX-License-Identifier: MIT

package regress

import (
	"fmt"
	"math"

	"github.com/katalvlaran/gramian/frame"
	"github.com/katalvlaran/gramian/gram"
)

// Model is a fitted linear model. Beta is aligned with Columns: expanded
// factor levels first, then numerics, then the intercept.
type Model struct {
	Beta    []float64 `json:"beta"`
	Lambda  float64   `json:"lambda"`
	Nobs    int64     `json:"nobs"`
	Columns []string  `json:"columns"`
	MSE     float64   `json:"mse"`

	layout gram.Layout
	schema *frame.Schema
}

// Coefficients maps column names to coefficients.
func (m *Model) Coefficients() map[string]float64 {
	out := make(map[string]float64, len(m.Beta))
	for i, name := range m.Columns {
		out[name] = m.Beta[i]
	}

	return out
}

// Predict evaluates the model on a raw record, applying the training
// schema's one-hot rule and standardization. A record with a missing value
// predicts NaN.
//
// Errors:
//   - ErrNotFitted for a nil or empty model.
//   - frame.ErrSchemaMismatch, frame.ErrLevelRange from encoding.
func (m *Model) Predict(rec frame.Record) (float64, error) {
	if m == nil || m.Beta == nil || m.schema == nil {
		return 0, ErrNotFitted
	}
	// response and weight do not take part in a prediction
	rec.Response, rec.Weight = 0, 1

	var row frame.Row
	ok, err := m.schema.Encode(&rec, &row)
	if err != nil {
		return 0, fmt.Errorf("Predict: %w", err)
	}
	if !ok {
		return math.NaN(), nil
	}

	var yhat float64
	for _, c := range row.Cats {
		yhat += m.Beta[c]
	}
	ns := m.layout.NumericStart()
	for i, v := range row.Nums {
		yhat += m.Beta[ns+i] * v
	}
	if m.layout.HasIntercept {
		yhat += m.Beta[m.layout.InterceptIndex()]
	}

	return yhat, nil
}

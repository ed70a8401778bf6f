// SPDX-License-Identifier: MIT

package frame

import (
	"fmt"
	"math"

	"github.com/katalvlaran/gramian/matrix"
)

// Record is one raw observation.
//
//   - Nums: numeric values in Schema.Numeric order, NaN when missing.
//   - Levels: level index per factor in Schema.Factors order, NA when missing.
//   - Response: NaN when missing.
//   - Weight: observation weight; NaN drops the row.
type Record struct {
	Nums     []float64
	Levels   []int
	Response float64
	Weight   float64
}

// Memory is an in-memory Source split into fixed-size chunks.
type Memory struct {
	schema    *Schema
	records   []Record
	chunkRows int
}

// NewMemory validates records against schema and wraps them as a Source.
//
// Errors:
//   - ErrBadChunkSize if chunkRows < 1.
//   - ErrSchemaMismatch if any record has the wrong width.
func NewMemory(schema *Schema, records []Record, chunkRows int) (*Memory, error) {
	if chunkRows < 1 {
		return nil, frameErrorf("NewMemory", fmt.Errorf("chunkRows=%d: %w", chunkRows, ErrBadChunkSize))
	}
	for i := range records {
		if len(records[i].Nums) != len(schema.Numeric) || len(records[i].Levels) != len(schema.Factors) {
			return nil, frameErrorf("NewMemory", fmt.Errorf("record %d: %w", i, ErrSchemaMismatch))
		}
	}

	return &Memory{schema: schema, records: records, chunkRows: chunkRows}, nil
}

// Schema implements Source.
func (m *Memory) Schema() *Schema { return m.schema }

// Len is the number of records, including incomplete ones.
func (m *Memory) Len() int { return len(m.records) }

// Records exposes the stored records.
func (m *Memory) Records() []Record { return m.records }

// NumChunks implements Source.
func (m *Memory) NumChunks() int {
	return (len(m.records) + m.chunkRows - 1) / m.chunkRows
}

// Chunk implements Source.
func (m *Memory) Chunk(i int) (Chunk, error) {
	if i < 0 || i >= m.NumChunks() {
		return nil, frameErrorf("Chunk", fmt.Errorf("%d of %d: %w", i, m.NumChunks(), ErrChunkRange))
	}
	end := min((i+1)*m.chunkRows, len(m.records))

	return &memChunk{schema: m.schema, records: m.records[i*m.chunkRows : end]}, nil
}

// Standardize sets the schema's per-numeric mean and sample standard
// deviation over complete records, so chunks yield (x-mean)/sigma.
// Columns with zero variance, or fewer than two complete records, keep
// sigma 1.
//
// Errors:
//   - ErrNonFinite when a complete record holds ±Inf.
func (m *Memory) Standardize() error {
	p := len(m.schema.Numeric)
	var rows []int
	for i := range m.records {
		if complete(m.schema, &m.records[i]) {
			rows = append(rows, i)
		}
	}

	means := make([]float64, p)
	sigmas := make([]float64, p)
	for j := range sigmas {
		sigmas[j] = 1
	}
	if p > 0 && len(rows) > 0 {
		X, err := matrix.NewDense(len(rows), p)
		if err != nil {
			return frameErrorf("Standardize", err)
		}
		for i, ri := range rows {
			for j, v := range m.records[ri].Nums {
				if err = X.Set(i, j, v); err != nil {
					return frameErrorf("Standardize", fmt.Errorf("record %d column %q: %w: %w", ri, m.schema.Numeric[j], ErrNonFinite, err))
				}
			}
		}
		mu, sd, err := matrix.ColumnStats(X)
		if err != nil {
			return frameErrorf("Standardize", err)
		}
		copy(means, mu)
		for j, v := range sd {
			if v > 0 {
				sigmas[j] = v
			}
		}
	}
	m.schema.Means = means
	m.schema.Sigmas = sigmas

	return nil
}

// complete reports whether rec has no missing value.
func complete(s *Schema, rec *Record) bool {
	if math.IsNaN(rec.Response) || math.IsNaN(rec.Weight) {
		return false
	}
	for _, v := range rec.Nums {
		if math.IsNaN(v) {
			return false
		}
	}
	for _, l := range rec.Levels {
		if l == NA {
			return false
		}
	}

	return true
}

type memChunk struct {
	schema  *Schema
	records []Record
	pos     int
	err     error
}

func (c *memChunk) Next(row *Row) bool {
	for c.err == nil && c.pos < len(c.records) {
		rec := &c.records[c.pos]
		c.pos++
		ok, err := c.schema.Encode(rec, row)
		if err != nil {
			c.err = err
			return false
		}
		if ok {
			return true
		}
	}

	return false
}

func (c *memChunk) Err() error { return c.err }

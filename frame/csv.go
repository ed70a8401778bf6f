// SPDX-License-Identifier: MIT

package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultChunkRows is the chunk size used when CSVOptions.ChunkRows is zero.
const DefaultChunkRows = 4096

// CSVOptions names the columns ReadCSV extracts from a headered CSV stream.
// Weight is optional; without it every row weighs 1.
type CSVOptions struct {
	Numeric      []string
	Categorical  []string
	Response     string
	Weight       string
	UseAllLevels bool
	ChunkRows    int
}

// isNA reports a missing cell: empty or "NA" (case-insensitive).
func isNA(cell string) bool {
	cell = strings.TrimSpace(cell)
	return cell == "" || strings.EqualFold(cell, "NA")
}

func parseCell(cell string, line int, col string) (float64, error) {
	if isNA(cell) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, frameErrorf("ReadCSV", fmt.Errorf("line %d column %q: %v: %w", line, col, err, ErrParse))
	}

	return v, nil
}

// ReadCSV reads a headered CSV stream into a Memory source.
//
// Implementation:
//   - Stage 1: resolve every named column against the header.
//   - Stage 2: read all records, keeping raw factor labels.
//   - Stage 3: build each factor domain from its distinct labels, sorted
//     lexicographically, and map labels to level indices.
//
// Errors:
//   - ErrUnknownColumn for a named column missing from the header.
//   - ErrParse for a numeric, response or weight cell that is not a number.
//   - csv reader errors, wrapped.
func ReadCSV(r io.Reader, cs CSVOptions) (*Memory, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, frameErrorf("ReadCSV", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, frameErrorf("ReadCSV", fmt.Errorf("%q: %w", name, ErrUnknownColumn))
		}
		return i, nil
	}

	// Stage 1: columns
	numIdx := make([]int, len(cs.Numeric))
	for k, name := range cs.Numeric {
		if numIdx[k], err = lookup(name); err != nil {
			return nil, err
		}
	}
	catIdx := make([]int, len(cs.Categorical))
	for k, name := range cs.Categorical {
		if catIdx[k], err = lookup(name); err != nil {
			return nil, err
		}
	}
	respIdx, err := lookup(cs.Response)
	if err != nil {
		return nil, err
	}
	weightIdx := -1
	if cs.Weight != "" {
		if weightIdx, err = lookup(cs.Weight); err != nil {
			return nil, err
		}
	}

	// Stage 2: records
	var (
		records []Record
		labels  [][]string // raw labels per record, "" for NA
		line    = 1
	)
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, frameErrorf("ReadCSV", err)
		}
		line++

		rec := Record{Nums: make([]float64, len(numIdx)), Levels: make([]int, len(catIdx)), Weight: 1}
		for k, ci := range numIdx {
			if rec.Nums[k], err = parseCell(cells[ci], line, cs.Numeric[k]); err != nil {
				return nil, err
			}
		}
		if rec.Response, err = parseCell(cells[respIdx], line, cs.Response); err != nil {
			return nil, err
		}
		if weightIdx >= 0 {
			if rec.Weight, err = parseCell(cells[weightIdx], line, cs.Weight); err != nil {
				return nil, err
			}
		}
		lab := make([]string, len(catIdx))
		for k, ci := range catIdx {
			if !isNA(cells[ci]) {
				lab[k] = strings.TrimSpace(cells[ci])
			}
		}
		records = append(records, rec)
		labels = append(labels, lab)
	}

	// Stage 3: factor domains
	factors := make([]Factor, len(catIdx))
	for k := range catIdx {
		seen := make(map[string]struct{})
		for _, lab := range labels {
			if lab[k] != "" {
				seen[lab[k]] = struct{}{}
			}
		}
		levels := make([]string, 0, len(seen))
		for l := range seen {
			levels = append(levels, l)
		}
		sort.Strings(levels)
		pos := make(map[string]int, len(levels))
		for i, l := range levels {
			pos[l] = i
		}
		for i, lab := range labels {
			if lab[k] == "" {
				records[i].Levels[k] = NA
				continue
			}
			records[i].Levels[k] = pos[lab[k]]
		}
		factors[k] = Factor{Name: cs.Categorical[k], Levels: levels}
	}

	chunkRows := cs.ChunkRows
	if chunkRows == 0 {
		chunkRows = DefaultChunkRows
	}

	return NewMemory(NewSchema(cs.Numeric, factors, cs.Response, cs.UseAllLevels), records, chunkRows)
}

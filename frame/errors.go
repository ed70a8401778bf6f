// SPDX-License-Identifier: MIT

package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn indicates a named column absent from the CSV header.
	ErrUnknownColumn = errors.New("frame: unknown column")

	// ErrSchemaMismatch indicates a record whose width disagrees with the schema.
	ErrSchemaMismatch = errors.New("frame: record does not match schema")

	// ErrBadChunkSize indicates a non-positive chunk size.
	ErrBadChunkSize = errors.New("frame: chunk size must be positive")

	// ErrChunkRange indicates a chunk index outside [0, NumChunks()).
	ErrChunkRange = errors.New("frame: chunk index out of range")

	// ErrParse indicates a cell that could not be parsed as a number.
	ErrParse = errors.New("frame: parse error")

	// ErrLevelRange indicates a factor level outside the factor domain.
	ErrLevelRange = errors.New("frame: factor level out of range")

	// ErrNonFinite indicates a ±Inf numeric value where a finite one is needed.
	ErrNonFinite = errors.New("frame: non-finite value")
)

func frameErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// SPDX-License-Identifier: MIT

package gram

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPositiveDefinite is returned by Solve when the factor was not
	// marked positive definite. Factorize never returns it.
	ErrNonPositiveDefinite = errors.New("gram: matrix is not positive definite")

	// ErrShapeMismatch indicates a right-hand side of the wrong length, or
	// two accumulators with different layouts.
	ErrShapeMismatch = errors.New("gram: shape mismatch")

	// ErrBadLayout indicates inconsistent layout dimensions.
	ErrBadLayout = errors.New("gram: invalid layout")

	// ErrMalformedRow indicates a row violating the categorical index contract.
	ErrMalformedRow = errors.New("gram: malformed row")

	// ErrNilGram indicates a nil accumulator argument.
	ErrNilGram = errors.New("gram: nil gram")
)

// Operation tags for error wrapping.
const (
	opNew       = "New"
	opAdd       = "Add"
	opMerge     = "Merge"
	opFactorize = "Factorize"
	opSolve     = "Solve"
	opValidate  = "ValidateRow"
	opUnpack    = "XX"
)

// gramErrorf wraps err with an operation tag, preserving it for errors.Is.
func gramErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// SPDX-License-Identifier: MIT

package regress

import "errors"

var (
	// ErrNoObservations indicates that no complete row reached the fit.
	ErrNoObservations = errors.New("regress: no complete observations")

	// ErrNotFitted indicates use of a model without coefficients.
	ErrNotFitted = errors.New("regress: model not fitted")

	// ErrNonFinite indicates NaN or Inf in the accumulated statistics.
	ErrNonFinite = errors.New("regress: non-finite statistics")

	// ErrBadParams indicates invalid fit parameters.
	ErrBadParams = errors.New("regress: invalid parameters")
)

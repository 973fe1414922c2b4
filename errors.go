package absynth

import "errors"

var (
	// ErrNumericalInstability is returned when the analysis operator has no
	// nullspace to extract (p <= d), is rank deficient, or an SVD fails to converge.
	ErrNumericalInstability = errors.New("absynth: numerical instability")

	// ErrDimensionMismatch is returned when operand shapes disagree at a
	// composition boundary.
	ErrDimensionMismatch = errors.New("absynth: dimension mismatch")

	// ErrSolverFailure is returned when a synthesis solver produces a result
	// of the wrong length. Errors raised by the solver itself are passed through.
	ErrSolverFailure = errors.New("absynth: solver failure")
)

// ErrInvalidMultiplier is returned for a negative or NaN nullspace multiplier.
var ErrInvalidMultiplier = errors.New("absynth: invalid nullspace multiplier")

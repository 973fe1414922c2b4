package absynth

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// AggregateSystem is the stacked synthesis problem
//
//	Ã = [ M·D ; λ·V⊥ ]   ỹ = [ y ; 0 ]
//
// Ã has m+(p-d) rows and p columns. ỹ has one column per trial.
type AggregateSystem struct {
	Matrix       *mat.Dense
	Measurements *mat.Dense
	Multiplier   float64
}

// Dims returns the shape of the aggregate matrix.
func (s *AggregateSystem) Dims() (rows, cols int) {
	return s.Matrix.Dims()
}

// BuildAggregate stacks the acquisition system acq·dict on top of lambda·nullspace
// and pads the measurements y (m×trials) with p-d zero rows.
// lambda == 0 keeps the zero block so that the output shape never depends on lambda.
func BuildAggregate(acq, dict, nullspace, y mat.Matrix, lambda float64) (*AggregateSystem, error) {
	if lambda < 0 || math.IsNaN(lambda) {
		return nil, fmt.Errorf("multiplier %g: %w", lambda, ErrInvalidMultiplier)
	}
	m, d := acq.Dims()
	dr, p := dict.Dims()
	q, nc := nullspace.Dims()
	yr, n := y.Dims()
	switch {
	case dr != d:
		return nil, fmt.Errorf("acquisition %d×%d, dictionary %d×%d: %w", m, d, dr, p, ErrDimensionMismatch)
	case nc != p:
		return nil, fmt.Errorf("dictionary %d×%d, nullspace %d×%d: %w", dr, p, q, nc, ErrDimensionMismatch)
	case yr != m:
		return nil, fmt.Errorf("acquisition has %d rows, measurements %d: %w", m, yr, ErrDimensionMismatch)
	case n == 0:
		return nil, fmt.Errorf("no measurement columns: %w", ErrDimensionMismatch)
	}

	upper := mat.NewDense(m, p, nil)
	upper.Mul(acq, dict)
	a := mat.NewDense(m+q, p, nil)
	if q == 0 {
		a.Copy(upper)
	} else {
		lower := mat.NewDense(q, p, nil)
		lower.Scale(lambda, nullspace)
		a.Stack(upper, lower)
	}

	yt := mat.NewDense(m+q, n, nil)
	yt.Slice(0, m, 0, n).(*mat.Dense).Copy(y)
	return &AggregateSystem{
		Matrix:       a,
		Measurements: yt,
		Multiplier:   lambda,
	}, nil
}

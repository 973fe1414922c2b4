package absynth

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SynthesisSolver finds a sparse coefficient vector γ with a·γ ≈ y.
// eps is the noise budget: solvers stop once ‖y - a·γ‖₂ is within it,
// each according to its own stopping rule. The returned vector has one
// entry per column of a.
type SynthesisSolver interface {
	Solve(y mat.Vector, a mat.Matrix, eps float64) (*mat.VecDense, error)
}

// AnalysisSolver recovers a signal x with small ‖omega·x‖ from y ≈ acq·x.
// The returned vector has one entry per column of acq.
type AnalysisSolver interface {
	SolveVec(y mat.Vector, acq, omega mat.Matrix, eps float64) (*mat.VecDense, error)
}

// SolveColumns runs s on every column of y independently and returns the
// coefficients as columns of a cols(a)×cols(y) matrix. eps holds one budget
// per column; nil means zero for all of them. Solver errors are returned as is.
func SolveColumns(s SynthesisSolver, y *mat.Dense, a mat.Matrix, eps []float64) (*mat.Dense, error) {
	rows, cols := a.Dims()
	yr, n := y.Dims()
	if yr != rows {
		return nil, fmt.Errorf("system has %d rows, measurements %d: %w", rows, yr, ErrDimensionMismatch)
	}
	if eps != nil && len(eps) != n {
		return nil, fmt.Errorf("%d noise budgets for %d columns: %w", len(eps), n, ErrDimensionMismatch)
	}
	out := mat.NewDense(cols, n, nil)
	for j := range n {
		e := 0.0
		if eps != nil {
			e = eps[j]
		}
		g, err := s.Solve(y.ColView(j), a, e)
		if err != nil {
			return nil, err
		}
		if g == nil || g.Len() != cols {
			got := 0
			if g != nil {
				got = g.Len()
			}
			return nil, fmt.Errorf("column %d: %d coefficients, want %d: %w", j, got, cols, ErrSolverFailure)
		}
		out.ColView(j).(*mat.VecDense).CopyVec(g)
	}
	return out, nil
}

// LeastSquares returns argmin ‖a·x - b‖₂. Overdetermined well-conditioned
// systems are solved by QR; everything else goes through Pinv, which also
// yields the minimum-norm solution of underdetermined systems.
func LeastSquares(a mat.Matrix, b mat.Vector) (*mat.VecDense, error) {
	r, c := a.Dims()
	if b.Len() != r {
		return nil, fmt.Errorf("system has %d rows, right-hand side %d: %w", r, b.Len(), ErrDimensionMismatch)
	}
	if r >= c {
		var x mat.VecDense
		err := x.SolveVec(a, b)
		if err == nil {
			return &x, nil
		}
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, err
		}
	}
	pinv, err := Pinv(a, DefaultRcond)
	if err != nil {
		return nil, err
	}
	x := mat.NewVecDense(c, nil)
	x.MulVec(pinv, b)
	return x, nil
}

// Package absynth recovers analysis-sparse signals (‖Ω·x‖ small) with any
// synthesis-sparse solver, by augmenting the acquisition system with a
// penalized projection onto the nullspace of the analysis operator's
// pseudo-inverse.
package absynth

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Solver is the analysis-by-synthesis recovery engine.
// It is safe for concurrent use if its synthesis solver is.
type Solver struct {
	synthesis SynthesisSolver
	policy    MultiplierPolicy
}

// NewSolver returns a Solver delegating to synthesis. A nil policy means FixedMultiplier(1).
func NewSolver(synthesis SynthesisSolver, policy MultiplierPolicy) *Solver {
	if policy == nil {
		policy = FixedMultiplier(1)
	}
	return &Solver{
		synthesis: synthesis,
		policy:    policy,
	}
}

// Solve recovers one signal per measurement column. y is m×trials, where m is
// the number of rows of acq; a single 1×m row is accepted as one trial.
// eps holds one noise budget per trial, or nil.
func (s *Solver) Solve(y mat.Matrix, acq, omega mat.Matrix, eps []float64) (*mat.Dense, error) {
	m, _ := acq.Dims()
	ym, err := orient(y, m)
	if err != nil {
		return nil, err
	}
	proj, err := Project(omega)
	if err != nil {
		return nil, err
	}
	return s.SolveProjected(ym, acq, proj, eps)
}

// SolveVec recovers a single signal. It makes Solver an AnalysisSolver.
func (s *Solver) SolveVec(y mat.Vector, acq, omega mat.Matrix, eps float64) (*mat.VecDense, error) {
	x, err := s.Solve(y, acq, omega, []float64{eps})
	if err != nil {
		return nil, err
	}
	return mat.NewVecDense(x.RawMatrix().Rows, mat.Col(nil, 0, x)), nil
}

// SolveProjected is Solve with the projection of the operator computed by the caller,
// so one Projection can serve many trials and multipliers.
func (s *Solver) SolveProjected(y *mat.Dense, acq mat.Matrix, proj *Projection, eps []float64) (*mat.Dense, error) {
	_, d := acq.Dims()
	_, sd := proj.Dims()
	if d != sd {
		return nil, fmt.Errorf("acquisition has %d columns, operator %d: %w", d, sd, ErrDimensionMismatch)
	}
	lambda := s.policy.Multiplier(acq, proj)
	sys, err := BuildAggregate(acq, proj.Dictionary, proj.Nullspace, y, lambda)
	if err != nil {
		return nil, err
	}
	gamma, err := SolveColumns(s.synthesis, sys.Measurements, sys.Matrix, eps)
	if err != nil {
		return nil, err
	}
	_, n := gamma.Dims()
	x := mat.NewDense(d, n, nil)
	x.Mul(proj.Dictionary, gamma)
	return x, nil
}

// orient returns y as a channels×trials copy. A single row holding exactly
// channels values is taken as one transposed column; any other shape that
// does not start with channels rows is rejected.
func orient(y mat.Matrix, channels int) (*mat.Dense, error) {
	r, c := y.Dims()
	switch {
	case r == channels && c > 0:
		return mat.DenseCopyOf(y), nil
	case r == 1 && c == channels:
		return mat.DenseCopyOf(y.T()), nil
	}
	return nil, fmt.Errorf("measurements %d×%d for %d channels: %w", r, c, channels, ErrDimensionMismatch)
}

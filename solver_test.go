package absynth_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
	"github.com/setanarut/absynth/solvers"
)

type failingSolver struct{ err error }

func (f failingSolver) Solve(mat.Vector, mat.Matrix, float64) (*mat.VecDense, error) {
	return nil, f.err
}

type shortSolver struct{}

func (shortSolver) Solve(y mat.Vector, _ mat.Matrix, _ float64) (*mat.VecDense, error) {
	return mat.NewVecDense(1, nil), nil
}

func TestSolver_ZeroMultiplierIsMinNormUpToNullspace(t *testing.T) {
	const m, d, p, n = 5, 12, 24, 3
	rng := rand.New(rand.NewPCG(21, 22))
	omega := randn(rng, p, d)
	acq := randn(rng, m, d)
	y := randn(rng, m, n)

	s := absynth.NewSolver(solvers.MinNorm{}, absynth.FixedMultiplier(0))
	x, err := s.Solve(y, acq, omega, nil)
	require.NoError(t, err)
	r, c := x.Dims()
	require.Equal(t, d, r)
	require.Equal(t, n, c)

	// the estimate solves M·x = y ...
	var mx mat.Dense
	mx.Mul(acq, x)
	assert.True(t, mat.EqualApprox(&mx, y, 1e-9))

	// ... and with the nullspace block zeroed it is D·(M·D)⁺·y
	proj := mustProject(t, omega)
	var md mat.Dense
	md.Mul(acq, proj.Dictionary)
	mdPinv, err := absynth.Pinv(&md, absynth.DefaultRcond)
	require.NoError(t, err)
	var gamma, want mat.Dense
	gamma.Mul(mdPinv, y)
	want.Mul(proj.Dictionary, &gamma)
	assert.True(t, mat.EqualApprox(x, &want, 1e-9))
}

func TestSolver_VectorInVectorOut(t *testing.T) {
	const m, d, p = 4, 8, 16
	rng := rand.New(rand.NewPCG(23, 24))
	omega := randn(rng, p, d)
	acq := randn(rng, m, d)
	y := randn(rng, m, 1)
	s := absynth.NewSolver(solvers.MinNorm{}, absynth.FixedMultiplier(1))

	col, err := s.Solve(y, acq, omega, nil)
	require.NoError(t, err)

	v, err := s.SolveVec(y.ColView(0), acq, omega, 0)
	require.NoError(t, err)
	assert.Equal(t, d, v.Len())
	assert.True(t, mat.EqualApprox(v, col, 1e-12))

	// a single row of m values is one transposed measurement
	row, err := s.Solve(y.T(), acq, omega, nil)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(row, col, 1e-12))
}

func TestSolver_RejectsAmbiguousMeasurements(t *testing.T) {
	rng := rand.New(rand.NewPCG(25, 26))
	s := absynth.NewSolver(solvers.MinNorm{}, nil)
	_, err := s.Solve(randn(rng, 3, 4), randn(rng, 4, 8), randn(rng, 16, 8), nil)
	assert.ErrorIs(t, err, absynth.ErrDimensionMismatch)

	_, err = s.Solve(randn(rng, 4, 2), randn(rng, 4, 8), randn(rng, 16, 8), []float64{1})
	assert.ErrorIs(t, err, absynth.ErrDimensionMismatch, "one budget for two columns")

	_, err = s.Solve(randn(rng, 4, 1), randn(rng, 4, 8), randn(rng, 16, 7), nil)
	assert.ErrorIs(t, err, absynth.ErrDimensionMismatch, "operator width")
}

func TestSolver_PropagatesSolverErrors(t *testing.T) {
	rng := rand.New(rand.NewPCG(27, 28))
	omega, acq, y := randn(rng, 16, 8), randn(rng, 4, 8), randn(rng, 4, 1)

	boom := errors.New("boom")
	_, err := absynth.NewSolver(failingSolver{boom}, nil).Solve(y, acq, omega, nil)
	assert.Equal(t, boom, err)

	_, err = absynth.NewSolver(shortSolver{}, nil).Solve(y, acq, omega, nil)
	assert.ErrorIs(t, err, absynth.ErrSolverFailure)
}

func TestSolver_NoNullspace(t *testing.T) {
	rng := rand.New(rand.NewPCG(29, 30))
	_, err := absynth.NewSolver(solvers.MinNorm{}, nil).Solve(randn(rng, 4, 1), randn(rng, 4, 8), randn(rng, 8, 8), nil)
	assert.ErrorIs(t, err, absynth.ErrNumericalInstability)
}

func TestSolver_SolveProjectedMatchesSolve(t *testing.T) {
	rng := rand.New(rand.NewPCG(31, 32))
	omega, acq, y := randn(rng, 20, 10), randn(rng, 6, 10), randn(rng, 6, 3)
	eps := []float64{0.1, 0.2, 0.3}
	s := absynth.NewSolver(solvers.OMP{}, absynth.BlockNormMultiplier{Scale: 1})

	want, err := s.Solve(y, acq, omega, eps)
	require.NoError(t, err)
	got, err := s.SolveProjected(y, acq, mustProject(t, omega), eps)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
}

func TestLeastSquares(t *testing.T) {
	rng := rand.New(rand.NewPCG(33, 34))
	a := randn(rng, 10, 4)
	x0 := mat.NewVecDense(4, []float64{1, -2, 3, 0.5})
	b := mat.NewVecDense(10, nil)
	b.MulVec(a, x0)
	x, err := absynth.LeastSquares(a, b)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(x, x0, 1e-10))

	// rank-deficient systems fall back to the pseudo-inverse
	a.SetCol(3, mat.Col(nil, 0, a))
	_, err = absynth.LeastSquares(a, b)
	assert.NoError(t, err)

	_, err = absynth.LeastSquares(a, mat.NewVecDense(3, nil))
	assert.ErrorIs(t, err, absynth.ErrDimensionMismatch)
}

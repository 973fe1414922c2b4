package solvers_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
	"github.com/setanarut/absynth/solvers"
)

func randn(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(r, c, data)
}

// sparseProblem returns a, γ with k nonzeros and y = a·γ.
func sparseProblem(seed uint64, rows, cols, k int) (*mat.Dense, *mat.VecDense, *mat.VecDense) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	a := randn(rng, rows, cols)
	gamma := mat.NewVecDense(cols, nil)
	for _, j := range rng.Perm(cols)[:k] {
		gamma.SetVec(j, 1+rng.Float64())
	}
	y := mat.NewVecDense(rows, nil)
	y.MulVec(a, gamma)
	return a, gamma, y
}

func relErr(want, got mat.Vector) float64 {
	var d mat.VecDense
	d.SubVec(want, got)
	return mat.Norm(&d, 2) / mat.Norm(want, 2)
}

func residualNorm(a mat.Matrix, x, y mat.Vector) float64 {
	r := mat.NewVecDense(y.Len(), nil)
	r.MulVec(a, x)
	r.SubVec(r, y)
	return mat.Norm(r, 2)
}

func TestMinNorm_SolvesUnderdetermined(t *testing.T) {
	a, _, y := sparseProblem(1, 8, 20, 3)
	x, err := solvers.MinNorm{}.Solve(y, a, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, x.Len())
	assert.Less(t, residualNorm(a, x, y), 1e-10)

	// minimum norm solutions lie in the row space of a
	var aat mat.Dense
	aat.Mul(a, a.T())
	var w mat.VecDense
	require.NoError(t, w.SolveVec(&aat, y))
	var want mat.VecDense
	want.MulVec(a.T(), &w)
	assert.Less(t, relErr(&want, x), 1e-10)
}

func TestOMP_RecoversSparse(t *testing.T) {
	a, gamma, y := sparseProblem(2, 20, 50, 3)
	got, err := solvers.OMP{}.Solve(y, a, 1e-9)
	require.NoError(t, err)
	assert.Less(t, relErr(gamma, got), 1e-8)
}

func TestOMP_MaxAtoms(t *testing.T) {
	a, _, y := sparseProblem(3, 20, 50, 6)
	got, err := solvers.OMP{MaxAtoms: 2}.Solve(y, a, 0)
	require.NoError(t, err)
	nonzero := 0
	for i := range got.Len() {
		if got.AtVec(i) != 0 {
			nonzero++
		}
	}
	assert.Equal(t, 2, nonzero)
}

func TestOMP_ResidualGrowsWithTolerance(t *testing.T) {
	a, _, y := sparseProblem(4, 20, 50, 8)
	prev := -1.0
	for _, eps := range []float64{0, 0.01, 0.1, 0.5, 1, 2, 5} {
		x, err := solvers.OMP{}.Solve(y, a, eps)
		require.NoError(t, err)
		res := residualNorm(a, x, y)
		assert.GreaterOrEqual(t, res+1e-12, prev, "eps=%g", eps)
		prev = res
	}
}

func TestOMP_ZeroMeasurements(t *testing.T) {
	a, _, _ := sparseProblem(5, 10, 20, 1)
	x, err := solvers.OMP{}.Solve(mat.NewVecDense(10, nil), a, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, mat.Norm(x, 2))
}

func TestSL0_RecoversSparse(t *testing.T) {
	a, gamma, y := sparseProblem(6, 20, 50, 3)
	got, err := solvers.DefaultSL0().Solve(y, a, 1e-6)
	require.NoError(t, err)
	assert.Less(t, relErr(gamma, got), 1e-2)
}

func TestSL0_RejectsBadParameters(t *testing.T) {
	a, _, y := sparseProblem(7, 5, 10, 1)
	bad := solvers.DefaultSL0()
	bad.SigmaDecrease = 1
	_, err := bad.Solve(y, a, 0)
	assert.Error(t, err)
}

func TestTST_RecoversSparse(t *testing.T) {
	a, gamma, y := sparseProblem(8, 30, 60, 2)
	got, err := solvers.DefaultTST().Solve(y, a, 1e-9)
	require.NoError(t, err)
	assert.Less(t, relErr(gamma, got), 1e-6)
}

func TestSolvers_DimensionMismatch(t *testing.T) {
	a, _, _ := sparseProblem(9, 6, 12, 1)
	y := mat.NewVecDense(5, nil)
	for name, s := range map[string]absynth.SynthesisSolver{
		"minnorm": solvers.MinNorm{},
		"omp":     solvers.OMP{},
		"sl0":     solvers.DefaultSL0(),
		"tst":     solvers.DefaultTST(),
	} {
		_, err := s.Solve(y, a, 0)
		assert.ErrorIs(t, err, absynth.ErrDimensionMismatch, name)
	}
}

func TestGAP_RecoversCosparse(t *testing.T) {
	const d, p, l = 10, 20, 7
	rng := rand.New(rand.NewPCG(10, 11))
	omega := randn(rng, p, d)

	lam := columnsOf(omega.T(), rng.Perm(p)[:l])
	pinv, err := absynth.Pinv(lam.T(), absynth.DefaultRcond)
	require.NoError(t, err)
	var proj mat.Dense
	proj.Mul(pinv, lam.T())
	g := randn(rng, d, 1)
	x0 := mat.NewVecDense(d, nil)
	x0.MulVec(&proj, g.ColView(0))
	x0.SubVec(g.ColView(0), x0)

	acq := randn(rng, d, d)
	y := mat.NewVecDense(d, nil)
	y.MulVec(acq, x0)

	got, err := solvers.DefaultGAP().SolveVec(y, acq, omega, 0)
	require.NoError(t, err)
	assert.Less(t, relErr(x0, got), 1e-3)
}

func TestGAP_DimensionMismatch(t *testing.T) {
	rng := rand.New(rand.NewPCG(12, 13))
	_, err := solvers.DefaultGAP().SolveVec(mat.NewVecDense(4, nil), randn(rng, 4, 6), randn(rng, 12, 5), 0)
	assert.ErrorIs(t, err, absynth.ErrDimensionMismatch)
}

// columnsOf returns the listed columns of a as a new matrix.
func columnsOf(a mat.Matrix, idx []int) *mat.Dense {
	r, _ := a.Dims()
	out := mat.NewDense(r, len(idx), nil)
	for k, j := range idx {
		out.SetCol(k, mat.Col(nil, j, a))
	}
	return out
}

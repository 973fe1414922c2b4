package absynth_test

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
)

func TestProject_Oversampling(t *testing.T) {
	const d = 10
	for _, sigma := range []float64{1.2, 2, 5} {
		p := int(math.Round(sigma * d))
		t.Run(fmt.Sprintf("sigma=%g", sigma), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(uint64(p), 7))
			omega := randn(rng, p, d)
			proj := mustProject(t, omega)

			dr, dc := proj.Dictionary.Dims()
			assert.Equal(t, d, dr)
			assert.Equal(t, p, dc)
			nr, nc := proj.Nullspace.Dims()
			assert.Equal(t, p-d, nr)
			assert.Equal(t, p, nc)

			// Ω·D·Ω = Ω
			var od, odo mat.Dense
			od.Mul(omega, proj.Dictionary)
			odo.Mul(&od, omega)
			assert.True(t, mat.EqualApprox(&odo, omega, 1e-9), "pseudo-inverse property")

			// V⊥·Dᵀ = 0
			var vd mat.Dense
			vd.Mul(proj.Nullspace, proj.Dictionary.T())
			assert.Less(t, maxAbs(&vd), 1e-10*mat.Norm(proj.Dictionary, 2))

			// V⊥·V⊥ᵀ = I
			var vv mat.Dense
			vv.Mul(proj.Nullspace, proj.Nullspace.T())
			ident := mat.NewDiagDense(p-d, ones(p-d))
			assert.True(t, mat.EqualApprox(&vv, ident, 1e-10), "orthonormal rows")
		})
	}
}

func TestProject_NoNullspace(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, shape := range [][2]int{{5, 5}, {3, 5}} {
		_, err := absynth.Project(randn(rng, shape[0], shape[1]))
		assert.ErrorIs(t, err, absynth.ErrNumericalInstability, "%dx%d", shape[0], shape[1])
	}
}

func TestProject_RankDeficient(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	omega := randn(rng, 8, 4)
	omega.SetCol(2, make([]float64, 8))
	_, err := absynth.Project(omega)
	assert.ErrorIs(t, err, absynth.ErrNumericalInstability)
}

func TestPinv_Known(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 2,
		0, 0,
	})
	got, err := absynth.Pinv(a, absynth.DefaultRcond)
	require.NoError(t, err)
	want := mat.NewDense(2, 3, []float64{
		1, 0, 0,
		0, 0.5, 0,
	})
	assert.True(t, mat.EqualApprox(got, want, 1e-14))
}

func TestPinv_DropsSmallSingularValues(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 1e-20,
	})
	got, err := absynth.Pinv(a, absynth.DefaultRcond)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.At(0, 0), 1e-14)
	assert.InDelta(t, 0.0, got.At(1, 1), 1e-14)
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

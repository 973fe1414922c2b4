package absynth_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
)

func randn(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(r, c, data)
}

func mustProject(t *testing.T, omega mat.Matrix) *absynth.Projection {
	t.Helper()
	p, err := absynth.Project(omega)
	require.NoError(t, err)
	return p
}

// maxAbs returns the largest absolute entry of m.
func maxAbs(m mat.Matrix) float64 {
	r, c := m.Dims()
	out := 0.0
	for i := range r {
		for j := range c {
			out = max(out, math.Abs(m.At(i, j)))
		}
	}
	return out
}

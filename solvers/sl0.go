package solvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
)

// SL0 is smoothed-l0 minimisation for noisy measurements. The l0 norm is
// approximated by a sum of Gaussians of width sigma, decreased geometrically
// from 2·max|a⁺y| down to SigmaMin. After each gradient step the estimate is
// pulled back onto a·s = y whenever its residual exceeds eps.
type SL0 struct {
	SigmaMin      float64
	SigmaDecrease float64
	Mu0           float64
	// Gradient steps per sigma value.
	L int
}

// DefaultSL0 returns the parameters used in the phase transition experiments.
func DefaultSL0() SL0 {
	return SL0{
		SigmaMin:      0.001,
		SigmaDecrease: 0.5,
		Mu0:           2,
		L:             10,
	}
}

func (s SL0) Solve(y mat.Vector, a mat.Matrix, eps float64) (*mat.VecDense, error) {
	if s.SigmaMin <= 0 || s.SigmaDecrease <= 0 || s.SigmaDecrease >= 1 || s.L <= 0 {
		return nil, fmt.Errorf("sl0: sigma min %g, decrease %g, steps %d", s.SigmaMin, s.SigmaDecrease, s.L)
	}
	rows, cols, err := checkSystem(y, a)
	if err != nil {
		return nil, err
	}
	pinv, err := absynth.Pinv(a, absynth.DefaultRcond)
	if err != nil {
		return nil, err
	}

	x := mat.NewVecDense(cols, nil)
	x.MulVec(pinv, y)
	sigma := 0.0
	for i := range cols {
		sigma = max(sigma, math.Abs(x.AtVec(i)))
	}
	sigma *= 2

	xs := x.RawVector().Data
	r := mat.NewVecDense(rows, nil)
	corr := mat.NewVecDense(cols, nil)
	for sigma > s.SigmaMin {
		twoSigma2 := 2 * sigma * sigma
		for range s.L {
			for i, v := range xs {
				xs[i] = v - s.Mu0*v*math.Exp(-v*v/twoSigma2)
			}
			r.MulVec(a, x)
			r.SubVec(r, y)
			if mat.Norm(r, 2) > eps {
				corr.MulVec(pinv, r)
				x.SubVec(x, corr)
			}
		}
		sigma *= s.SigmaDecrease
	}
	return x, nil
}

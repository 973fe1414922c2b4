package solvers

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
)

// TST is two-stage thresholding in the subspace pursuit form. Every sweep
// merges the current support with the K columns most correlated with the
// residual, refits, keeps the K largest coefficients and refits again.
// K is Ro times the number of rows. Sweeps stop when the relative residual
// falls to eps/‖y‖ or stops decreasing.
type TST struct {
	Sweeps int
	Ro     float64
}

// DefaultTST returns the parameters used in the phase transition experiments.
func DefaultTST() TST {
	return TST{
		Sweeps: 3000,
		Ro:     0.5,
	}
}

func (t TST) Solve(y mat.Vector, a mat.Matrix, eps float64) (*mat.VecDense, error) {
	rows, cols, err := checkSystem(y, a)
	if err != nil {
		return nil, err
	}
	ynorm := mat.Norm(y, 2)
	if ynorm == 0 {
		return mat.NewVecDense(cols, nil), nil
	}
	ro := t.Ro
	if ro <= 0 || ro > 1 {
		ro = 0.5
	}
	k := min(max(int(math.Floor(ro*float64(rows))), 1), cols)
	tol := eps / ynorm

	var (
		support []int
		coef    *mat.VecDense
	)
	r := mat.VecDenseCopyOf(y)
	res := ynorm
	corr := mat.NewVecDense(cols, nil)
	for range t.Sweeps {
		if res/ynorm <= tol {
			break
		}
		corr.MulVec(a.T(), r)
		cand := merge(support, largest(corr.RawVector().Data, k))

		// stage one: fit on the enlarged support, keep the k largest
		wide, err := absynth.LeastSquares(columns(a, cand), y)
		if err != nil {
			return nil, err
		}
		keep := largest(wide.RawVector().Data, k)
		next := make([]int, len(keep))
		for i, j := range keep {
			next[i] = cand[j]
		}
		slices.Sort(next)

		// stage two: refit on the pruned support
		sub := columns(a, next)
		c, err := absynth.LeastSquares(sub, y)
		if err != nil {
			return nil, err
		}
		nr := residual(y, sub, c)
		nres := mat.Norm(nr, 2)
		if coef != nil && nres >= res {
			break
		}
		support, coef, r, res = next, c, nr, nres
	}
	if coef == nil {
		return mat.NewVecDense(cols, nil), nil
	}
	return scatter(cols, support, coef), nil
}

// merge returns the sorted union of two index sets.
func merge(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}

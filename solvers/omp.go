package solvers

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
)

// OMP is orthogonal matching pursuit. Each step adds the column most
// correlated with the residual and refits all selected columns by least
// squares. It stops once the mean squared residual drops to eps²/rows.
type OMP struct {
	// Maximum support size. Zero means min(rows, cols).
	MaxAtoms int
}

func (o OMP) Solve(y mat.Vector, a mat.Matrix, eps float64) (*mat.VecDense, error) {
	rows, cols, err := checkSystem(y, a)
	if err != nil {
		return nil, err
	}
	maxAtoms := min(rows, cols)
	if o.MaxAtoms > 0 {
		maxAtoms = min(maxAtoms, o.MaxAtoms)
	}
	stopTol := eps * eps / float64(rows)

	norms := make([]float64, cols)
	col := make([]float64, rows)
	for j := range cols {
		mat.Col(col, j, a)
		norms[j] = floats.Norm(col, 2)
	}

	r := mat.VecDenseCopyOf(y)
	selected := make([]bool, cols)
	support := make([]int, 0, maxAtoms)
	var coef *mat.VecDense
	corr := mat.NewVecDense(cols, nil)
	for len(support) < maxAtoms {
		if mat.Dot(r, r)/float64(rows) <= stopTol {
			break
		}
		corr.MulVec(a.T(), r)
		best, bestVal := -1, 0.0
		for j := range cols {
			if selected[j] || norms[j] == 0 {
				continue
			}
			if v := math.Abs(corr.AtVec(j)) / norms[j]; v > bestVal {
				best, bestVal = j, v
			}
		}
		if best < 0 {
			break
		}
		selected[best] = true
		support = append(support, best)

		sub := columns(a, support)
		coef, err = absynth.LeastSquares(sub, y)
		if err != nil {
			return nil, err
		}
		r = residual(y, sub, coef)
	}
	if len(support) == 0 {
		return mat.NewVecDense(cols, nil), nil
	}
	return scatter(cols, support, coef), nil
}

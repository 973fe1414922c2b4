package solvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
)

func checkSystem(y mat.Vector, a mat.Matrix) (rows, cols int, err error) {
	rows, cols = a.Dims()
	if y.Len() != rows {
		return 0, 0, fmt.Errorf("system has %d rows, measurements %d: %w", rows, y.Len(), absynth.ErrDimensionMismatch)
	}
	return rows, cols, nil
}

// columns copies the listed columns of a into a new rows×len(idx) matrix.
func columns(a mat.Matrix, idx []int) *mat.Dense {
	rows, _ := a.Dims()
	out := mat.NewDense(rows, len(idx), nil)
	col := make([]float64, rows)
	for k, j := range idx {
		out.SetCol(k, mat.Col(col, j, a))
	}
	return out
}

// residual returns y - a·x.
func residual(y mat.Vector, a mat.Matrix, x mat.Vector) *mat.VecDense {
	r := mat.NewVecDense(y.Len(), nil)
	r.MulVec(a, x)
	r.SubVec(y, r)
	return r
}

// scatter places coef at the support positions of a zero vector of length n.
func scatter(n int, support []int, coef *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(n, nil)
	for k, j := range support {
		out.SetVec(j, coef.AtVec(k))
	}
	return out
}

// largest returns the indices of the k entries of v with the largest magnitude,
// in decreasing order of magnitude.
func largest(v []float64, k int) []int {
	mag := make([]float64, len(v))
	for i, x := range v {
		mag[i] = math.Abs(x)
	}
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	floats.Argsort(mag, idx)
	k = min(k, len(v))
	out := make([]int, k)
	for i := range k {
		out[i] = idx[len(idx)-1-i]
	}
	return out
}

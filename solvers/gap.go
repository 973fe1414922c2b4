package solvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
)

// GAP is greedy analysis pursuit. Starting from the full cosupport, each
// iteration solves
//
//	argmin ‖y - M·x‖² + Weight·‖Ω_Λ·x‖²
//
// and drops from Λ the rows whose analysis coefficient is at least
// GreedyLevel times the largest one. It stops when every coefficient on Λ is
// below StopCoefficient, when the estimate no longer moves, or when Λ would
// shrink below d-m rows.
type GAP struct {
	Iterations      int
	GreedyLevel     float64
	StopCoefficient float64
	Weight          float64
}

// DefaultGAP returns the parameters used in the phase transition experiments.
func DefaultGAP() GAP {
	return GAP{
		Iterations:      1000,
		GreedyLevel:     0.9,
		StopCoefficient: 1e-4,
		Weight:          1e-3,
	}
}

// SolveVec makes GAP an absynth.AnalysisSolver. eps is not used as a
// stopping rule; the cosupport floor bounds how far the fit can relax.
func (g GAP) SolveVec(y mat.Vector, acq, omega mat.Matrix, _ float64) (*mat.VecDense, error) {
	m, d := acq.Dims()
	p, od := omega.Dims()
	if od != d || y.Len() != m {
		return nil, fmt.Errorf("gap: measurements %d, acquisition %d×%d, operator %d×%d: %w",
			y.Len(), m, d, p, od, absynth.ErrDimensionMismatch)
	}
	if g.GreedyLevel <= 0 || g.GreedyLevel > 1 || g.Weight <= 0 {
		return nil, fmt.Errorf("gap: greedy level %g, weight %g", g.GreedyLevel, g.Weight)
	}
	floor := max(d-m, 0)
	cosupport := make([]int, p)
	for i := range p {
		cosupport[i] = i
	}

	x, err := g.fit(y, acq, omega, cosupport)
	if err != nil {
		return nil, err
	}
	z := mat.NewVecDense(p, nil)
	for range g.Iterations {
		z.MulVec(omega, x)
		top := 0.0
		for _, i := range cosupport {
			top = max(top, math.Abs(z.AtVec(i)))
		}
		if top < g.StopCoefficient || len(cosupport) <= floor {
			break
		}
		kept := make([]int, 0, len(cosupport))
		dropped := 0
		for _, i := range cosupport {
			if math.Abs(z.AtVec(i)) >= g.GreedyLevel*top && len(cosupport)-dropped > floor {
				dropped++
				continue
			}
			kept = append(kept, i)
		}
		if dropped == 0 {
			break
		}
		cosupport = kept

		next, err := g.fit(y, acq, omega, cosupport)
		if err != nil {
			return nil, err
		}
		var diff mat.VecDense
		diff.SubVec(next, x)
		xn := mat.Norm(x, 2)
		x = next
		if xn > 0 && mat.Norm(&diff, 2)/xn < 1e-6 {
			break
		}
	}
	return x, nil
}

// fit solves the stacked least squares problem [M; √w·Ω_Λ]·x = [y; 0].
func (g GAP) fit(y mat.Vector, acq, omega mat.Matrix, cosupport []int) (*mat.VecDense, error) {
	m, d := acq.Dims()
	n := len(cosupport)
	a := mat.NewDense(m+n, d, nil)
	a.Slice(0, m, 0, d).(*mat.Dense).Copy(acq)
	sw := math.Sqrt(g.Weight)
	row := make([]float64, d)
	for k, i := range cosupport {
		mat.Row(row, i, omega)
		for j := range row {
			row[j] *= sw
		}
		a.SetRow(m+k, row)
	}
	b := mat.NewVecDense(m+n, nil)
	for i := range m {
		b.SetVec(i, y.AtVec(i))
	}
	return absynth.LeastSquares(a, b)
}

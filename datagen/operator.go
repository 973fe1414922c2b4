package datagen

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Operator returns a random p×d analysis operator. A Gaussian matrix is
// alternately replaced by its nearest tight frame U·Vᵀ and rescaled to unit
// rows until it settles. With Options.Coherent the singular values are then
// spread out by factors 1..d.
func (g *Generator) Operator(d, p int) (*mat.Dense, error) {
	if d <= 0 || p <= d {
		return nil, fmt.Errorf("operator %d×%d: %w", p, d, ErrInvalidSize)
	}
	omega := g.randn(p, d)
	prev := mat.NewDense(p, d, nil)
	for range g.opt.FrameIterations {
		prev.Copy(omega)
		if err := nearestTightFrame(omega); err != nil {
			return nil, err
		}
		normalizeRows(omega)
		if floats.Distance(prev.RawMatrix().Data, omega.RawMatrix().Data, 1) < g.opt.FrameTolerance {
			break
		}
	}
	if g.opt.Coherent {
		if err := spreadSingularValues(omega); err != nil {
			return nil, err
		}
	}
	return omega, nil
}

func nearestTightFrame(a *mat.Dense) error {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return fmt.Errorf("tight frame svd did not converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	a.Mul(&u, v.T())
	return nil
}

func spreadSingularValues(a *mat.Dense) error {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return fmt.Errorf("coherence svd did not converge")
	}
	s := svd.Values(nil)
	for i := range s {
		s[i] *= float64(i + 1)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	var us mat.Dense
	us.Mul(&u, mat.NewDiagDense(len(s), s))
	a.Mul(&us, v.T())
	return nil
}

func normalizeRows(a *mat.Dense) {
	r, _ := a.Dims()
	for i := range r {
		row := a.RawRowView(i)
		if n := floats.Norm(row, 2); n > 0 && !math.IsInf(n, 0) {
			floats.Scale(1/n, row)
		}
	}
}

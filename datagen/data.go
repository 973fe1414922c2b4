package datagen

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/absynth"
)

// nullTol is the relative size below which a projected signal is taken as zero,
// which happens when the cosupport rows already span the whole signal space.
const nullTol = 1e-10

// Data draws trials cosparse unit-norm signals for omega, a Gaussian m×d
// acquisition matrix with unit rows and per-trial Gaussian noise scaled to
// noiseLevel·‖M·x0‖. l is the cosupport size.
func (g *Generator) Data(omega *mat.Dense, m, l int, noiseLevel float64, trials int, model SparsityModel) (*Bundle, error) {
	p, d := omega.Dims()
	switch {
	case m < 1 || m > d:
		return nil, fmt.Errorf("%d measurements for dimension %d: %w", m, d, ErrInvalidSize)
	case l < 0 || l > p:
		return nil, fmt.Errorf("cosupport %d for %d operator rows: %w", l, p, ErrInvalidSize)
	case trials < 1:
		return nil, fmt.Errorf("%d trials: %w", trials, ErrInvalidSize)
	case model != ModelL0:
		return nil, fmt.Errorf("sparsity model %v: %w", model, ErrInvalidSize)
	}

	acq := g.randn(m, d)
	normalizeRows(acq)

	b := &Bundle{
		Operator:     omega,
		Acquisition:  acq,
		Signals:      mat.NewDense(d, trials, nil),
		Measurements: mat.NewDense(m, trials, nil),
		Noise:        mat.NewDense(m, trials, nil),
		Cosupports:   make([][]int, trials),
	}
	clean := mat.NewVecDense(m, nil)
	for j := range trials {
		lambda := g.rng.Perm(p)[:l]
		x0, err := g.cosparse(omega, lambda)
		if err != nil {
			return nil, err
		}
		clean.MulVec(acq, x0)

		noise := mat.NewVecDense(m, g.randn(m, 1).RawMatrix().Data)
		if nn := mat.Norm(noise, 2); nn > 0 {
			noise.ScaleVec(noiseLevel*mat.Norm(clean, 2)/nn, noise)
		}
		b.Signals.SetCol(j, x0.RawVector().Data)
		b.Noise.SetCol(j, noise.RawVector().Data)
		noise.AddVec(noise, clean)
		b.Measurements.SetCol(j, noise.RawVector().Data)
		b.Cosupports[j] = lambda
	}
	return b, nil
}

// cosparse projects a Gaussian vector onto null(Ω_Λ) and normalizes it.
// The result is exactly zero when that nullspace is trivial.
func (g *Generator) cosparse(omega *mat.Dense, lambda []int) (*mat.VecDense, error) {
	_, d := omega.Dims()
	x := mat.NewVecDense(d, g.randn(d, 1).RawMatrix().Data)
	gn := mat.Norm(x, 2)
	if len(lambda) > 0 {
		rows := mat.NewDense(len(lambda), d, nil)
		for k, i := range lambda {
			rows.SetRow(k, omega.RawRowView(i))
		}
		pinv, err := absynth.Pinv(rows, absynth.DefaultRcond)
		if err != nil {
			return nil, err
		}
		var coef mat.VecDense
		coef.MulVec(rows, x)
		var proj mat.VecDense
		proj.MulVec(pinv, &coef)
		x.SubVec(x, &proj)
	}
	n := mat.Norm(x, 2)
	if n <= nullTol*gn {
		return mat.NewVecDense(d, nil), nil
	}
	floats.Scale(1/n, x.RawVector().Data)
	return x, nil
}

package absynth

import "gonum.org/v1/gonum/mat"

// MultiplierPolicy decides the nullspace multiplier λ for one aggregate system.
// acq must have as many columns as the projection's dictionary has rows.
type MultiplierPolicy interface {
	Multiplier(acq mat.Matrix, p *Projection) float64
}

// FixedMultiplier returns its own value regardless of the system.
type FixedMultiplier float64

func (f FixedMultiplier) Multiplier(mat.Matrix, *Projection) float64 {
	return float64(f)
}

// BlockNormMultiplier scales Scale by ‖M·D‖_F / ‖V⊥‖_F so both blocks of the
// aggregate matrix carry comparable energy.
type BlockNormMultiplier struct {
	Scale float64
}

func (b BlockNormMultiplier) Multiplier(acq mat.Matrix, p *Projection) float64 {
	m, _ := acq.Dims()
	_, cols := p.Dictionary.Dims()
	md := mat.NewDense(m, cols, nil)
	md.Mul(acq, p.Dictionary)
	return b.Scale * normRatio(md, p.Nullspace)
}

// DictionaryNormMultiplier scales Scale by ‖D‖_F / ‖V⊥‖_F.
type DictionaryNormMultiplier struct {
	Scale float64
}

func (b DictionaryNormMultiplier) Multiplier(_ mat.Matrix, p *Projection) float64 {
	return b.Scale * normRatio(p.Dictionary, p.Nullspace)
}

func normRatio(num, den mat.Matrix) float64 {
	dn := mat.Norm(den, 2)
	if dn == 0 {
		return 0
	}
	return mat.Norm(num, 2) / dn
}

package absynth

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DefaultRcond is the relative cutoff below which singular values are treated
// as zero by Pinv and by the rank check in Project.
const DefaultRcond = 1e-15

// Projection holds the quantities derived from one analysis operator.
// A Projection is read-only once built and may be shared between solves.
type Projection struct {
	// Analysis operator Ω, p×d with p > d.
	Operator mat.Matrix
	// Moore-Penrose pseudo-inverse of Ω, d×p.
	Dictionary *mat.Dense
	// Orthonormal rows spanning the complement of the dictionary's row space,
	// (p-d)×p. These are the last p-d right singular vectors of the dictionary.
	Nullspace *mat.Dense
}

// Dims returns the operator shape p×d.
func (pr *Projection) Dims() (p, d int) {
	return pr.Operator.Dims()
}

// Project computes the dictionary and nullspace basis of the analysis operator omega.
func Project(omega mat.Matrix) (*Projection, error) {
	p, d := omega.Dims()
	if p == 0 || d == 0 {
		return nil, fmt.Errorf("empty %d×%d operator: %w", p, d, ErrDimensionMismatch)
	}
	if p <= d {
		return nil, fmt.Errorf("operator is %d×%d, no nullspace to extract: %w", p, d, ErrNumericalInstability)
	}
	dict, err := Pinv(omega, DefaultRcond)
	if err != nil {
		return nil, err
	}

	var svd mat.SVD
	if !svd.Factorize(dict, mat.SVDFull) {
		return nil, fmt.Errorf("svd of %d×%d dictionary did not converge: %w", d, p, ErrNumericalInstability)
	}
	if r := rank(svd.Values(nil), DefaultRcond); r < d {
		return nil, fmt.Errorf("operator rank %d < %d: %w", r, d, ErrNumericalInstability)
	}
	var v mat.Dense
	svd.VTo(&v) // p×p, columns are right singular vectors

	ns := mat.NewDense(p-d, p, nil)
	ns.Copy(v.Slice(0, p, d, p).T())
	return &Projection{
		Operator:   omega,
		Dictionary: dict,
		Nullspace:  ns,
	}, nil
}

// Pinv returns the Moore-Penrose pseudo-inverse of a. Singular values not
// larger than rcond times the largest one are excluded from the inverse.
func Pinv(a mat.Matrix, rcond float64) (*mat.Dense, error) {
	r, c := a.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("pinv of empty %d×%d matrix: %w", r, c, ErrDimensionMismatch)
	}
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, fmt.Errorf("svd of %d×%d matrix did not converge: %w", r, c, ErrNumericalInstability)
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u) // r×k
	svd.VTo(&v) // c×k

	cutoff := rcond * s[0]
	raw := v.RawMatrix()
	for j, sv := range s {
		inv := 0.0
		if sv > cutoff {
			inv = 1 / sv
		}
		for i := range raw.Rows {
			raw.Data[i*raw.Stride+j] *= inv
		}
	}
	out := mat.NewDense(c, r, nil)
	out.Mul(&v, u.T())
	return out, nil
}

// rank counts singular values above rcond times the largest one.
// s must be sorted in decreasing order, as returned by mat.SVD.
func rank(s []float64, rcond float64) int {
	if len(s) == 0 {
		return 0
	}
	cutoff := rcond * s[0]
	n := 0
	for _, sv := range s {
		if sv > cutoff {
			n++
		}
	}
	return n
}

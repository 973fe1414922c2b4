// Package datagen produces synthetic analysis-sparse recovery problems:
// analysis operators, cosparse signals, acquisition matrices and noisy
// measurements.
package datagen

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrInvalidSize = errors.New("datagen: invalid problem size")

// SparsityModel selects how cosupports are drawn.
type SparsityModel int

const (
	// ModelL0 picks l operator rows uniformly without replacement.
	ModelL0 SparsityModel = iota
)

func (m SparsityModel) String() string {
	switch m {
	case ModelL0:
		return "l0"
	default:
		return fmt.Sprintf("SparsityModel(%d)", int(m))
	}
}

// Bundle is everything generated for one grid point. Trials are columns.
type Bundle struct {
	Operator     *mat.Dense // Ω, p×d
	Acquisition  *mat.Dense // M, m×d
	Signals      *mat.Dense // x0, d×trials
	Measurements *mat.Dense // y = M·x0 + noise, m×trials
	Noise        *mat.Dense // m×trials
	Cosupports   [][]int    // Λ per trial, rows of Ω orthogonal to x0
}

// Trials returns the number of generated signals.
func (b *Bundle) Trials() int {
	_, n := b.Signals.Dims()
	return n
}

// Options tunes operator generation.
type Options struct {
	// Maximum alternating projections towards a unit-norm tight frame.
	FrameIterations int
	// Stop projecting once the summed absolute change falls below this.
	FrameTolerance float64
	// Multiply the i-th singular value of Ω by i+1, which makes the
	// dictionary pinv(Ω) coherent.
	Coherent bool
}

func DefaultOptions() Options {
	return Options{
		FrameIterations: 200,
		FrameTolerance:  1e-8,
		Coherent:        true,
	}
}

// Generator draws every random quantity from one seeded source, so a
// sequence of calls is reproducible for a given seed.
type Generator struct {
	opt    Options
	rng    *rand.Rand
	normal distuv.Normal
}

func New(seed uint64, opt Options) *Generator {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Generator{
		opt:    opt,
		rng:    rand.New(src),
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Sizes converts grid ratios to problem sizes: p = σ·d, m = δ·d and the
// cosparsity l = d - ρ·m, each rounded half to even.
func Sizes(d int, sigma, delta, rho float64) (p, m, l int) {
	fd := float64(d)
	p = int(math.RoundToEven(sigma * fd))
	m = int(math.RoundToEven(delta * fd))
	l = int(math.RoundToEven(fd - rho*float64(m)))
	return p, m, l
}

// NoiseLevel converts a signal to noise ratio in dB to the ratio ‖noise‖/‖M·x0‖.
func NoiseLevel(snrDB float64) float64 {
	return 1 / math.Pow(10, snrDB/10)
}

// Generate produces the operator and data for one (delta, rho) grid point.
func (g *Generator) Generate(d int, sigma, delta, rho float64, trials int, snrDB float64) (*Bundle, error) {
	p, m, l := Sizes(d, sigma, delta, rho)
	omega, err := g.Operator(d, p)
	if err != nil {
		return nil, err
	}
	return g.Data(omega, m, l, NoiseLevel(snrDB), trials, ModelL0)
}

func (g *Generator) randn(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = g.normal.Rand()
	}
	return mat.NewDense(r, c, data)
}

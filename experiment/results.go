package experiment

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// IndependentResult holds the success map of a multiplier-independent
// algorithm: rows follow Config.Rhos, columns Config.Deltas.
type IndependentResult struct {
	Name    string
	Success *mat.Dense
}

// DependentResult holds one success map per multiplier, in Config.Lambdas order.
type DependentResult struct {
	Name    string
	Success []*mat.Dense
}

// Results is the output of one harness run. It is not modified after Run returns.
type Results struct {
	RunID       string
	Config      Config
	Independent []IndependentResult
	Dependent   []DependentResult
}

func newResults(runID string, cfg Config, algos Algorithms) *Results {
	rows, cols := len(cfg.Rhos), len(cfg.Deltas)
	res := &Results{
		RunID:       runID,
		Config:      cfg,
		Independent: make([]IndependentResult, len(algos.Independent)),
		Dependent:   make([]DependentResult, len(algos.Dependent)),
	}
	for i, alg := range algos.Independent {
		res.Independent[i] = IndependentResult{
			Name:    alg.Name,
			Success: mat.NewDense(rows, cols, nil),
		}
	}
	for i, alg := range algos.Dependent {
		maps := make([]*mat.Dense, len(cfg.Lambdas))
		for k := range maps {
			maps[k] = mat.NewDense(rows, cols, nil)
		}
		res.Dependent[i] = DependentResult{
			Name:    alg.Name,
			Success: maps,
		}
	}
	return res
}

// SuccessFromError maps a mean relative error to a success value 1 - err.
// NaN and negative errors are degenerate and score 0, as does anything worse
// than the zero estimate (err > 1).
func SuccessFromError(meanErr float64) float64 {
	if degenerate(meanErr) {
		return 0
	}
	return max(1-meanErr, 0)
}

func degenerate(meanErr float64) bool {
	return math.IsNaN(meanErr) || meanErr < 0
}

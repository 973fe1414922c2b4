package experiment

import (
	"fmt"

	"github.com/setanarut/absynth"
	"github.com/setanarut/absynth/solvers"
)

// Independent is an algorithm run once per grid point.
type Independent struct {
	Name   string
	Solver absynth.AnalysisSolver
}

// Dependent is a synthesis solver run through absynth.Solver once per grid
// point and multiplier.
type Dependent struct {
	Name   string
	Solver absynth.SynthesisSolver
	// Policy maps a multiplier from the grid to the policy used for it.
	// Nil means absynth.FixedMultiplier(lambda).
	Policy func(lambda float64) absynth.MultiplierPolicy
}

func (d Dependent) policy(lambda float64) absynth.MultiplierPolicy {
	if d.Policy == nil {
		return absynth.FixedMultiplier(lambda)
	}
	return d.Policy(lambda)
}

// Algorithms is the registration table of an experiment. Names label the
// result maps and must be unique across both families.
type Algorithms struct {
	Independent []Independent
	Dependent   []Dependent
}

// StandardAlgorithms returns GAP as the multiplier-independent baseline and
// SL0, OMP and TST on the aggregate system.
func StandardAlgorithms() Algorithms {
	return Algorithms{
		Independent: []Independent{
			{Name: "GAP", Solver: solvers.DefaultGAP()},
		},
		Dependent: []Dependent{
			{Name: "SL0a", Solver: solvers.DefaultSL0()},
			{Name: "OMPeps", Solver: solvers.OMP{}},
			{Name: "TST", Solver: solvers.DefaultTST()},
		},
	}
}

// Names lists algorithm names, multiplier-independent first.
func (a Algorithms) Names() []string {
	out := make([]string, 0, len(a.Independent)+len(a.Dependent))
	for _, alg := range a.Independent {
		out = append(out, alg.Name)
	}
	for _, alg := range a.Dependent {
		out = append(out, alg.Name)
	}
	return out
}

func (a Algorithms) clone() Algorithms {
	return Algorithms{
		Independent: append([]Independent(nil), a.Independent...),
		Dependent:   append([]Dependent(nil), a.Dependent...),
	}
}

func (a Algorithms) validate() error {
	if len(a.Independent)+len(a.Dependent) == 0 {
		return fmt.Errorf("%w: no algorithms", ErrInvalidConfig)
	}
	seen := make(map[string]bool)
	check := func(name string, nilSolver bool) error {
		switch {
		case name == "":
			return fmt.Errorf("%w: unnamed algorithm", ErrInvalidConfig)
		case seen[name]:
			return fmt.Errorf("%w: duplicate algorithm %q", ErrInvalidConfig, name)
		case nilSolver:
			return fmt.Errorf("%w: algorithm %q has no solver", ErrInvalidConfig, name)
		}
		seen[name] = true
		return nil
	}
	for _, alg := range a.Independent {
		if err := check(alg.Name, alg.Solver == nil); err != nil {
			return err
		}
	}
	for _, alg := range a.Dependent {
		if err := check(alg.Name, alg.Solver == nil); err != nil {
			return err
		}
	}
	return nil
}

// Package solvers provides sparse recovery algorithms behind the absynth
// solver contracts: synthesis solvers (MinNorm, OMP, SL0, TST) for the
// aggregate systems built by absynth.Solver, and GAP, a greedy analysis
// solver used as the multiplier-free baseline.
package solvers

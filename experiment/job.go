package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/setanarut/absynth"
	"github.com/setanarut/absynth/datagen"
)

// epsFactor scales the true noise norm into the per-trial noise budget.
const epsFactor = 1.1

// job is one (delta, rho) grid point with its generated data.
type job struct {
	idelta, irho int
	delta, rho   float64
	bundle       *datagen.Bundle
}

// jobResult holds mean relative errors: one per independent algorithm, and
// one per (dependent algorithm, multiplier).
type jobResult struct {
	independent []float64
	dependent   [][]float64
}

// runJob solves every trial of j with every algorithm. It reads only j and the
// harness' immutable configuration.
func (h *Harness) runJob(ctx context.Context, j job, log *slog.Logger) (jobResult, error) {
	b := j.bundle
	n := b.Trials()
	eps := make([]float64, n)
	for t := range n {
		eps[t] = epsFactor * mat.Norm(b.Noise.ColView(t), 2)
	}
	log = log.With("delta", j.delta, "rho", j.rho)

	var (
		res jobResult
		err error
	)
	if res.independent, err = h.runIndependent(ctx, j, eps, log); err != nil {
		return res, err
	}
	if res.dependent, err = h.runDependent(ctx, j, eps, log); err != nil {
		return res, err
	}
	h.metrics.points.Inc()
	log.Debug("grid point done")
	return res, nil
}

// ============ MULTIPLIER-INDEPENDENT ============

func (h *Harness) runIndependent(ctx context.Context, j job, eps []float64, log *slog.Logger) ([]float64, error) {
	b := j.bundle
	n := len(eps)
	_, d := b.Operator.Dims()
	out := make([]float64, len(h.algos.Independent))
	x := mat.NewDense(d, n, nil)
	for i, alg := range h.algos.Independent {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		for t := range n {
			xt, err := alg.Solver.SolveVec(b.Measurements.ColView(t), b.Acquisition, b.Operator, eps[t])
			if err == nil && (xt == nil || xt.Len() != d) {
				got := 0
				if xt != nil {
					got = xt.Len()
				}
				err = fmt.Errorf("%d values for dimension %d: %w", got, d, absynth.ErrSolverFailure)
			}
			if err != nil {
				h.metrics.trials.WithLabelValues(alg.Name, "error").Inc()
				return nil, fmt.Errorf("%s at delta=%g rho=%g trial %d: %w", alg.Name, j.delta, j.rho, t, err)
			}
			x.ColView(t).(*mat.VecDense).CopyVec(xt)
		}
		h.metrics.batches.WithLabelValues(alg.Name).Observe(time.Since(start).Seconds())
		h.metrics.trials.WithLabelValues(alg.Name, "ok").Add(float64(n))
		out[i] = meanRelativeError(b.Signals, x)
		log.Info("avg relative error", "algorithm", alg.Name, "error", out[i])
	}
	return out, nil
}

// ============ AGGREGATE SYSTEM ============

// runDependent shares one projection of the operator between all
// multipliers and algorithms of the grid point.
func (h *Harness) runDependent(ctx context.Context, j job, eps []float64, log *slog.Logger) ([][]float64, error) {
	out := make([][]float64, len(h.algos.Dependent))
	if len(out) == 0 {
		return out, nil
	}
	b := j.bundle
	proj, err := absynth.Project(b.Operator)
	if err != nil {
		return nil, fmt.Errorf("delta=%g rho=%g: %w", j.delta, j.rho, err)
	}
	for i := range out {
		out[i] = make([]float64, len(h.cfg.Lambdas))
	}
	for k, lambda := range h.cfg.Lambdas {
		for i, alg := range h.algos.Dependent {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start := time.Now()
			s := absynth.NewSolver(alg.Solver, alg.policy(lambda))
			x, err := s.SolveProjected(b.Measurements, b.Acquisition, proj, eps)
			if err != nil {
				h.metrics.trials.WithLabelValues(alg.Name, "error").Inc()
				return nil, fmt.Errorf("%s at delta=%g rho=%g lambda=%g: %w", alg.Name, j.delta, j.rho, lambda, err)
			}
			h.metrics.batches.WithLabelValues(alg.Name).Observe(time.Since(start).Seconds())
			h.metrics.trials.WithLabelValues(alg.Name, "ok").Add(float64(len(eps)))
			out[i][k] = meanRelativeError(b.Signals, x)
			log.Info("avg relative error", "algorithm", alg.Name, "lambda", lambda, "error", out[i][k])
		}
	}
	return out, nil
}

// meanRelativeError averages ‖x0 - x‖/‖x0‖ over the columns. A zero ground
// truth makes the mean NaN or +Inf.
func meanRelativeError(want, got *mat.Dense) float64 {
	r, n := want.Dims()
	rel := make([]float64, n)
	w := make([]float64, r)
	g := make([]float64, r)
	for t := range n {
		mat.Col(w, t, want)
		mat.Col(g, t, got)
		rel[t] = floats.Distance(w, g, 2) / floats.Norm(w, 2)
	}
	return stat.Mean(rel, nil)
}

// Package experiment runs phase transition experiments: for every
// (delta, rho) grid point it generates cosparse problems, recovers them with
// each registered algorithm and turns the mean relative error into a success
// value.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/setanarut/absynth/datagen"
)

// DataGenerator produces the problems of one grid point.
type DataGenerator interface {
	Generate(d int, sigma, delta, rho float64, trials int, snrDB float64) (*datagen.Bundle, error)
}

type Harness struct {
	cfg     Config
	algos   Algorithms
	gen     DataGenerator
	logger  *slog.Logger
	metrics *Metrics
	workers int
}

type Option func(*Harness)

// WithLogger sets the progress logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(h *Harness) {
		if m != nil {
			h.metrics = m
		}
	}
}

// WithGenerator replaces the default generator seeded from Config.Seed.
func WithGenerator(g DataGenerator) Option {
	return func(h *Harness) {
		if g != nil {
			h.gen = g
		}
	}
}

// WithWorkers solves up to n grid points concurrently. Values below 2 keep
// the run on the calling goroutine.
func WithWorkers(n int) Option {
	return func(h *Harness) {
		h.workers = n
	}
}

// New validates cfg and algos and returns a harness ready to Run.
func New(cfg Config, algos Algorithms, opts ...Option) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := algos.validate(); err != nil {
		return nil, err
	}
	h := &Harness{
		cfg:     cfg,
		algos:   algos.clone(),
		logger:  slog.New(slog.DiscardHandler),
		workers: 1,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.gen == nil {
		h.gen = datagen.New(cfg.Seed, datagen.DefaultOptions())
	}
	if h.metrics == nil {
		h.metrics = NewMetrics()
	}
	return h, nil
}

func (h *Harness) Metrics() *Metrics {
	return h.metrics
}

// Run generates the data of every grid point on the calling goroutine, in
// delta-major order, then solves the grid points on the worker pool. The
// result does not depend on the number of workers. The first failure aborts
// the run.
func (h *Harness) Run(ctx context.Context) (*Results, error) {
	runID := uuid.NewString()
	log := h.logger.With("run_id", runID)
	c := h.cfg
	log.Info("experiment started",
		"d", c.Dimension,
		"sigma", c.Oversampling,
		"deltas", len(c.Deltas),
		"rhos", len(c.Rhos),
		"lambdas", len(c.Lambdas),
		"numvects", c.Trials,
		"snr_db", c.SNRdB,
		"workers", h.workers,
		"algorithms", h.algos.Names(),
	)
	start := time.Now()

	jobs, err := h.dispatch(ctx, log)
	if err != nil {
		return nil, err
	}
	out, err := runPool(ctx, h.workers, jobs, func(ctx context.Context, j job) (jobResult, error) {
		return h.runJob(ctx, j, log)
	})
	if err != nil {
		log.Error("experiment failed", "err", err)
		return nil, err
	}

	res := newResults(runID, c, h.algos)
	for i, j := range jobs {
		r := out[i]
		for a, e := range r.independent {
			res.Independent[a].Success.Set(j.irho, j.idelta, h.success(log, h.algos.Independent[a].Name, j, e))
		}
		for a, errs := range r.dependent {
			for k, e := range errs {
				res.Dependent[a].Success[k].Set(j.irho, j.idelta, h.success(log, h.algos.Dependent[a].Name, j, e))
			}
		}
	}
	log.Info("experiment finished", "points", len(jobs), "elapsed", time.Since(start))
	return res, nil
}

func (h *Harness) dispatch(ctx context.Context, log *slog.Logger) ([]job, error) {
	c := h.cfg
	jobs := make([]job, 0, c.GridPoints())
	for id, delta := range c.Deltas {
		for ir, rho := range c.Rhos {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			log.Debug("generating", "delta", delta, "rho", rho)
			b, err := h.gen.Generate(c.Dimension, c.Oversampling, delta, rho, c.Trials, c.SNRdB)
			if err != nil {
				return nil, fmt.Errorf("generate delta=%g rho=%g: %w", delta, rho, err)
			}
			jobs = append(jobs, job{
				idelta: id,
				irho:   ir,
				delta:  delta,
				rho:    rho,
				bundle: b,
			})
		}
	}
	return jobs, nil
}

func (h *Harness) success(log *slog.Logger, name string, j job, meanErr float64) float64 {
	if degenerate(meanErr) {
		log.Warn("degenerate error, success set to 0",
			"algorithm", name, "delta", j.delta, "rho", j.rho, "error", meanErr)
	}
	return SuccessFromError(meanErr)
}

// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

// Package search selects, for every target variable, which sources enter its
// autoregressive model and at which lag, by greedy hill climbing on the PRSS.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"selvar/internal/batch"
	"selvar/internal/metrics"
	"selvar/internal/regress"
)

// Config controls the search. Negative MaxLags, BatchSize or MaxIter select
// adaptive lag ceilings, a single maximal batch, and running to convergence.
type Config struct {
	// Lag ceiling for every target; < 0 grows it per target from 1
	MaxLags int
	// Consecutive timepoints per batch; < 0 uses one maximal batch
	BatchSize int
	// Cap on committed moves per target; < 0 runs until no move improves
	MaxIter int
	// > 0 logs committed moves, > 1 also logs every candidate
	Trace int
	// Whether a target's own past is a candidate predictor
	SelfLags bool
	// Targets searched concurrently; <= 0 uses runtime.NumCPU()
	Workers int
}

// DefaultConfig returns a lag ceiling of 1, one batch, no iteration cap and
// self-lags allowed.
func DefaultConfig() Config {
	return Config{
		MaxLags:   1,
		BatchSize: -1,
		MaxIter:   -1,
		SelfLags:  true,
	}
}

// VariableInfo describes how the search for one target ended.
type VariableInfo struct {
	Target int
	// Lag ceiling the final model was searched under
	Ceiling int
	// Moves committed, across all ceilings for adaptive searches
	Iterations int
	// PRSS of the final predictor set
	PRSS float64
	// False when MaxIter stopped the climb before a local optimum
	Converged bool
	// PRSS of the starting set and after every move at the final ceiling
	Path []float64
}

// Result holds the selected structure. Column j describes the model of target j.
type Result struct {
	Lags         LagMatrix
	Scores       *mat.Dense
	Coefficients *mat.Dense
	Info         []VariableInfo
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for progress and trace output.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the collectors updated during the search.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine runs the per-target hill climbing.
type Engine struct {
	cfg     Config
	solver  regress.Solver
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// New returns an Engine fitting models with solver.
func New(cfg Config, solver regress.Solver, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		solver: solver,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search selects the lag structure of y (T timepoints x N variables).
// Targets are independent problems and are searched concurrently; the result
// does not depend on the number of workers.
func (e *Engine) Search(ctx context.Context, y mat.Matrix) (*Result, error) {
	if err := regress.Probe(e.solver); err != nil {
		return nil, err
	}

	T, N := y.Dims()

	// Partition at the starting ceiling up front so missing data fails
	// before any target is searched.
	start := e.cfg.MaxLags
	if start < 0 {
		start = 1
	}
	batches, err := batch.Partition(T, start, e.cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	shared := regress.NewEvaluator(y, batches, e.solver)

	res := &Result{
		Lags:         NewLagMatrix(N),
		Scores:       mat.NewDense(N, N, nil),
		Coefficients: mat.NewDense(N, N, nil),
		Info:         make([]VariableInfo, N),
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for j := 0; j < N; j++ {
		g.Go(func() error {
			began := time.Now()

			var (
				st      *state
				ceiling int
				err     error
			)
			if e.cfg.MaxLags >= 0 {
				ceiling = e.cfg.MaxLags
				st, err = e.fixed(gctx, shared, j, N)
			} else {
				st, ceiling, err = e.adaptive(gctx, y, shared, j, N)
			}
			if err != nil {
				return fmt.Errorf("target %d: %w", j, err)
			}

			e.metrics.ObserveSearch(time.Since(began))
			res.store(j, ceiling, st)

			e.logger.Debug().
				Int("target", j).
				Int("ceiling", ceiling).
				Int("iterations", st.iters).
				Float64("prss", st.fit.PRSS).
				Bool("converged", st.converged).
				Msg("target searched")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.metrics.SetLinks(res.Lags.Count())
	return res, nil
}

// state is the private search state of one target.
type state struct {
	lags      []int
	fit       *regress.Fit
	iters     int
	converged bool
	path      []float64
}

// fixed climbs from the empty set under a fixed ceiling.
func (e *Engine) fixed(ctx context.Context, ev *regress.Evaluator, target, n int) (*state, error) {
	st, err := e.start(ev, target, make([]int, n))
	if err != nil {
		return nil, err
	}
	if err := e.climb(ctx, ev, target, e.cfg.MaxLags, st); err != nil {
		return nil, err
	}
	return st, nil
}

// adaptive grows the ceiling from 1 while the climb at ceiling+1 still lowers
// the PRSS with a predictor at the new lag.
func (e *Engine) adaptive(ctx context.Context, y mat.Matrix, ev *regress.Evaluator, target, n int) (*state, int, error) {
	T, _ := y.Dims()

	ceiling := 1
	st, err := e.start(ev, target, make([]int, n))
	if err != nil {
		return nil, 0, err
	}
	if err := e.climb(ctx, ev, target, ceiling, st); err != nil {
		return nil, 0, err
	}

	for {
		next := ceiling + 1
		batches, err := batch.Partition(T, next, e.cfg.BatchSize)
		if errors.Is(err, batch.ErrInsufficientData) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		nev := regress.NewEvaluator(y, batches, e.solver)

		// Re-score the current set on the batches of the larger ceiling so
		// the comparison is on equal data.
		trial, err := e.start(nev, target, st.lags)
		if err != nil {
			return nil, 0, err
		}
		trial.iters = st.iters
		baseline := trial.fit.PRSS

		if err := e.climb(ctx, nev, target, next, trial); err != nil {
			return nil, 0, err
		}
		if !(trial.fit.PRSS < baseline) || !usesLag(trial.lags, next) {
			break
		}

		if e.cfg.Trace > 0 {
			e.logger.Info().
				Int("target", target).
				Int("ceiling", next).
				Float64("prss", trial.fit.PRSS).
				Msg("lag ceiling raised")
		}
		st, ceiling = trial, next
	}
	return st, ceiling, nil
}

// start evaluates lags as the initial state of a climb.
func (e *Engine) start(ev *regress.Evaluator, target int, lags []int) (*state, error) {
	st := &state{lags: append([]int(nil), lags...)}

	fit, err := e.evaluate(ev, target, st.lags)
	switch {
	case errors.Is(err, regress.ErrSingularModel):
		fit = &regress.Fit{PRSS: math.Inf(1)}
	case err != nil:
		return nil, err
	}
	st.fit = fit
	st.path = []float64{fit.PRSS}
	return st, nil
}

// climb commits the best strictly improving move until none is left or
// MaxIter moves have been made. Moves set lags[i] to any value in
// [0, ceiling] other than its current one; scanning sources then lags in
// ascending order with a strict comparison keeps the smallest (source, lag)
// among equal PRSS values.
func (e *Engine) climb(ctx context.Context, ev *regress.Evaluator, target, ceiling int, st *state) error {
	n := len(st.lags)
	cand := make([]int, n)

	for e.cfg.MaxIter < 0 || st.iters < e.cfg.MaxIter {
		if err := ctx.Err(); err != nil {
			return err
		}

		bestSrc, bestLag := -1, 0
		bestFit := st.fit
		copy(cand, st.lags)

		for i := 0; i < n; i++ {
			if i == target && !e.cfg.SelfLags {
				continue
			}
			orig := st.lags[i]
			for l := 0; l <= ceiling; l++ {
				if l == orig {
					continue
				}
				cand[i] = l

				fit, err := e.evaluate(ev, target, cand)
				if errors.Is(err, regress.ErrSingularModel) {
					continue
				}
				if err != nil {
					return err
				}
				if e.cfg.Trace > 1 {
					e.logger.Info().
						Int("target", target).
						Int("source", i).
						Int("lag", l).
						Float64("prss", fit.PRSS).
						Msg("candidate")
				}
				if fit.PRSS < bestFit.PRSS {
					bestSrc, bestLag, bestFit = i, l, fit
				}
			}
			cand[i] = orig
		}

		if bestSrc < 0 {
			st.converged = true
			return nil
		}

		kind := moveKind(st.lags[bestSrc], bestLag)
		st.lags[bestSrc] = bestLag
		st.fit = bestFit
		st.iters++
		st.path = append(st.path, bestFit.PRSS)
		e.metrics.ObserveMove(kind)

		if e.cfg.Trace > 0 {
			e.logger.Info().
				Int("target", target).
				Int("step", st.iters).
				Str("move", kind).
				Int("source", bestSrc).
				Int("lag", bestLag).
				Float64("prss", bestFit.PRSS).
				Msg("move committed")
		}
	}

	st.converged = false
	return nil
}

func (e *Engine) evaluate(ev *regress.Evaluator, target int, lags []int) (*regress.Fit, error) {
	fit, err := ev.Evaluate(target, Predictors(lags))
	e.metrics.ObserveEvaluation(errors.Is(err, regress.ErrSingularModel))
	return fit, err
}

// Predictors lists the included (source, lag) pairs of a lag vector in
// ascending source order.
func Predictors(lags []int) []batch.Predictor {
	var preds []batch.Predictor
	for i, l := range lags {
		if l > 0 {
			preds = append(preds, batch.Predictor{Source: i, Lag: l})
		}
	}
	return preds
}

func usesLag(lags []int, lag int) bool {
	for _, l := range lags {
		if l == lag {
			return true
		}
	}
	return false
}

func moveKind(from, to int) string {
	switch {
	case from == 0:
		return "add"
	case to == 0:
		return "remove"
	default:
		return "relag"
	}
}

// store writes column target. Each target owns its column, so concurrent
// stores for different targets do not race.
func (r *Result) store(target, ceiling int, st *state) {
	c := 0
	for i, l := range st.lags {
		r.Lags[i][target] = l
		if l == 0 {
			continue
		}
		coef := st.fit.Coef[c]
		c++
		r.Coefficients.Set(i, target, coef)
		r.Scores.Set(i, target, math.Abs(coef))
	}

	r.Info[target] = VariableInfo{
		Target:     target,
		Ceiling:    ceiling,
		Iterations: st.iters,
		PRSS:       st.fit.PRSS,
		Converged:  st.converged,
		Path:       st.path,
	}
}

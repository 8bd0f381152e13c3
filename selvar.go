// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package selvar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"selvar/internal/batch"
	"selvar/internal/metrics"
	"selvar/internal/regress"
	"selvar/internal/search"
	"selvar/internal/series"
	"selvar/internal/significance"
)

// Errors returned by Run, matched with errors.Is.
var (
	ErrKernelUnavailable = regress.ErrKernelUnavailable
	ErrSingularModel     = regress.ErrSingularModel
	ErrInsufficientData  = batch.ErrInsufficientData
	ErrInvalidBatchSize  = batch.ErrInvalidBatchSize
	ErrInvalidLag        = batch.ErrInvalidLag
	ErrInvalidSeries     = series.ErrInvalidSeries
)

type (
	// Solver fits one least-squares problem; see CholeskySolver.
	Solver = regress.Solver
	// Solution is what a Solver returns.
	Solution = regress.Solution
	// CholeskySolver is the default Solver.
	CholeskySolver = regress.CholeskySolver
	// LagMatrix holds the selected lag of source i for target j at [i][j].
	LagMatrix = search.LagMatrix
	// VariableInfo describes how the search of one target ended.
	VariableInfo = search.VariableInfo
	// TestedLink is the likelihood-ratio test of one selected link.
	TestedLink = significance.Link
)

// Options configures Run.
type Options struct {
	// Lag ceiling; negative grows it per target from 1
	MaxLags int
	// Timepoints per batch; negative uses one batch over the whole series
	BatchSize int
	// Cap on committed moves per target; negative runs to convergence
	MaxIter int
	// 1 logs committed moves, 2 also logs every candidate
	Trace int
	// Whether a variable's own past may predict it
	SelfLags bool
	// Targets searched concurrently; 0 uses every CPU
	Workers int

	Detrend     bool
	Standardise bool

	// Variable names; V1..VN when absent or of the wrong length
	Names []string

	// Least-squares kernel; nil uses CholeskySolver
	Solver  Solver
	Logger  *zerolog.Logger
	Metrics *metrics.Metrics
}

// DefaultOptions returns a fixed ceiling of 1, one batch, no iteration cap,
// self-lags allowed and standardised input.
func DefaultOptions() Options {
	cfg := search.DefaultConfig()
	return Options{
		MaxLags:     cfg.MaxLags,
		BatchSize:   cfg.BatchSize,
		MaxIter:     cfg.MaxIter,
		SelfLags:    cfg.SelfLags,
		Standardise: true,
	}
}

// Result is the outcome of one run. Matrix entry (i, j) describes source i
// predicting target j.
type Result struct {
	RunID uuid.UUID
	Names []string

	Lags LagMatrix
	// |mean coefficient| of every selected link, 0 without a link
	Scores *mat.Dense
	// Signed mean coefficient of every selected link
	Coefficients *mat.Dense
	// Bonferroni corrected p-values; 1 and meaningless without a link
	PValues *mat.Dense

	Info  []VariableInfo
	Tests []TestedLink
}

// Link is one selected link in reporting form.
type Link struct {
	Source     int
	Target     int
	SourceName string
	TargetName string
	Lag        int
	Score      float64
	// Signed mean coefficient
	Coefficient float64
	// Bonferroni corrected p-value
	PValue float64
}

// Links lists the selected links ordered by target then source.
func (r *Result) Links() []Link {
	var out []Link
	for j := range r.Lags {
		for i := range r.Lags {
			lag := r.Lags[i][j]
			if lag == 0 {
				continue
			}
			out = append(out, Link{
				Source:      i,
				Target:      j,
				SourceName:  r.Names[i],
				TargetName:  r.Names[j],
				Lag:         lag,
				Score:       r.Scores.At(i, j),
				Coefficient: r.Coefficients.At(i, j),
				PValue:      r.PValues.At(i, j),
			})
		}
	}
	return out
}

// Run selects and tests the lag structure of data, T timepoints by N variables.
// data is not modified.
func Run(ctx context.Context, data *mat.Dense, opts Options) (*Result, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	solver := opts.Solver
	if solver == nil {
		solver = CholeskySolver{}
	}

	// Fail before any work when the kernel cannot solve.
	if err := regress.Probe(solver); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidSeries)
	}

	y, err := series.Preprocess(data, series.PreprocessOptions{
		Detrend:     opts.Detrend,
		Standardise: opts.Standardise,
	})
	if err != nil {
		return nil, err
	}
	T, N := y.Dims()

	id := uuid.New()
	logger = logger.With().Str("run_id", id.String()).Logger()
	logger.Info().
		Int("timepoints", T).
		Int("variables", N).
		Int("maxlags", opts.MaxLags).
		Int("batchsize", opts.BatchSize).
		Msg("lag search started")
	began := time.Now()

	engine := search.New(search.Config{
		MaxLags:   opts.MaxLags,
		BatchSize: opts.BatchSize,
		MaxIter:   opts.MaxIter,
		Trace:     opts.Trace,
		SelfLags:  opts.SelfLags,
		Workers:   opts.Workers,
	}, solver,
		search.WithLogger(logger.With().Str("component", "search").Logger()),
		search.WithMetrics(opts.Metrics),
	)
	sr, err := engine.Search(ctx, y)
	if err != nil {
		return nil, fmt.Errorf("lag search: %w", err)
	}

	ceilings := make([]int, N)
	for j, info := range sr.Info {
		ceilings[j] = info.Ceiling
	}

	tester := significance.New(opts.BatchSize, solver,
		significance.WithLogger(logger.With().Str("component", "significance").Logger()),
		significance.WithMetrics(opts.Metrics),
	)
	tests, err := tester.Test(ctx, y, sr.Lags, ceilings)
	if err != nil {
		return nil, fmt.Errorf("significance: %w", err)
	}

	res := &Result{
		RunID:        id,
		Names:        series.DefaultNames(opts.Names, N),
		Lags:         sr.Lags,
		Scores:       sr.Scores,
		Coefficients: sr.Coefficients,
		PValues:      significance.PValues(tests, N),
		Info:         sr.Info,
		Tests:        tests,
	}

	logger.Info().
		Int("links", sr.Lags.Count()).
		Int("max_lag", sr.Lags.Max()).
		Dur("elapsed", time.Since(began)).
		Msg("lag search finished")
	return res, nil
}

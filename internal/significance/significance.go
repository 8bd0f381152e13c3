// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

// Package significance attaches likelihood-ratio p-values to the links chosen
// by the lag search.
//
// The p-values are naive: the links being tested were selected on the same
// data, so they are biased towards significance. They are useful to rank
// links and must not be used to formally test whether an edge exists.
package significance

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"selvar/internal/batch"
	"selvar/internal/metrics"
	"selvar/internal/regress"
	"selvar/internal/search"
)

// Link is one tested (source, target, lag) edge.
type Link struct {
	Source int
	Target int
	Lag    int
	// Likelihood-ratio statistic, full against reduced model
	Statistic float64
	// Parameters of the full and the reduced model over all batches, 0 for
	// a model that could not be fitted
	DFFull    int
	DFReduced int
	// Uncorrected p-value
	PValue float64
	// True when either model could not be fitted; PValue is then 1
	Singular bool
}

// Option configures a Tester.
type Option func(*Tester)

// WithLogger sets the logger of the tester.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tester) { t.logger = logger }
}

// WithMetrics sets the collectors updated per test.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tester) { t.metrics = m }
}

// Tester runs the likelihood-ratio tests.
type Tester struct {
	batchSize int
	solver    regress.Solver
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// New returns a Tester that partitions with batchSize, the value the search
// was run with.
func New(batchSize int, solver regress.Solver, opts ...Option) *Tester {
	t := &Tester{
		batchSize: batchSize,
		solver:    solver,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Test returns one Link per nonzero entry of lags, ordered by target then
// source. ceilings[j] is the lag ceiling target j was searched under; both
// models of target j are fitted on the batches of that ceiling.
func (t *Tester) Test(ctx context.Context, y mat.Matrix, lags search.LagMatrix, ceilings []int) ([]Link, error) {
	if err := regress.Probe(t.solver); err != nil {
		return nil, err
	}

	T, N := y.Dims()
	if len(lags) != N || len(ceilings) != N {
		return nil, fmt.Errorf("significance: %d variables, %d lag rows, %d ceilings", N, len(lags), len(ceilings))
	}

	var links []Link
	for j := 0; j < N; j++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		col := lags.Column(j)
		preds := search.Predictors(col)
		if len(preds) == 0 {
			continue
		}

		batches, err := batch.Partition(T, ceilings[j], t.batchSize)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", j, err)
		}
		ev := regress.NewEvaluator(y, batches, t.solver)

		full, err := ev.Evaluate(j, preds)
		if err != nil && !errors.Is(err, regress.ErrSingularModel) {
			return nil, fmt.Errorf("target %d: %w", j, err)
		}
		fullErr := err

		for _, p := range preds {
			link := Link{
				Source: p.Source,
				Target: j,
				Lag:    p.Lag,
				PValue: 1,
			}
			t.metrics.ObserveLinkTest()

			if fullErr != nil {
				link.Singular = true
				links = append(links, link)
				continue
			}
			link.DFFull = full.Params

			reduced, err := ev.Evaluate(j, without(preds, p.Source))
			if errors.Is(err, regress.ErrSingularModel) {
				link.Singular = true
				links = append(links, link)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("target %d: %w", j, err)
			}

			link.DFReduced = reduced.Params
			link.Statistic = Statistic(full, reduced)
			link.PValue = PValue(link.Statistic, link.DFFull-link.DFReduced)
			links = append(links, link)

			t.logger.Debug().
				Int("source", link.Source).
				Int("target", link.Target).
				Int("lag", link.Lag).
				Float64("statistic", link.Statistic).
				Float64("p", link.PValue).
				Msg("link tested")
		}
	}
	return links, nil
}

// Statistic is the likelihood-ratio statistic of full against reduced,
// summed over their batches: sum of n_b * ln(RSS_reduced,b / RSS_full,b).
// A perfect full fit against an imperfect reduced one gives +Inf.
func Statistic(full, reduced *regress.Fit) float64 {
	s := 0.0
	for b := range full.RSS {
		rf, rr := full.RSS[b], reduced.RSS[b]
		switch {
		case rf <= 0 && rr <= 0:
			continue
		case rf <= 0:
			return math.Inf(1)
		}
		s += float64(full.N[b]) * math.Log(rr/rf)
	}
	if s < 0 || math.IsNaN(s) {
		return 0
	}
	return s
}

// PValue is the chi-squared upper tail of stat with df degrees of freedom.
// df <= 0 gives 1.
func PValue(stat float64, df int) float64 {
	if df <= 0 {
		return 1
	}
	if math.IsInf(stat, 1) {
		return 0
	}
	chi := distuv.ChiSquared{K: float64(df)}
	return clip(chi.Survival(stat))
}

// Bonferroni multiplies p by the number of ordered pairs of n variables and
// clips the result to [0, 1].
func Bonferroni(p float64, n int) float64 {
	return clip(p * float64(n*(n-1)))
}

// PValues returns the n x n matrix of Bonferroni corrected p-values. Entries
// without a tested link are 1 and carry no meaning.
func PValues(links []Link, n int) *mat.Dense {
	pv := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pv.Set(i, j, 1)
		}
	}
	for _, l := range links {
		pv.Set(l.Source, l.Target, Bonferroni(l.PValue, n))
	}
	return pv
}

func without(preds []batch.Predictor, source int) []batch.Predictor {
	out := make([]batch.Predictor, 0, len(preds)-1)
	for _, p := range preds {
		if p.Source != source {
			out = append(out, p)
		}
	}
	return out
}

func clip(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

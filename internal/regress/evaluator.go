// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

// Package regress fits lagged linear models over batches and scores them by
// their predicted residual sum of squares (PRSS).
package regress

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"selvar/internal/batch"
)

// minResidualLeverage is the smallest 1-h_tt accepted before a point counts
// as interpolated and the fit as singular.
const minResidualLeverage = 1e-10

// Fit is the result of evaluating one predictor set for one target.
type Fit struct {
	// Leave-one-out predicted residual sum of squares, summed over batches
	PRSS float64
	// In-sample residual sum of squares of each batch
	RSS []float64
	// Number of response timepoints of each batch
	N []int
	// Coefficients of the predictors averaged over batches, intercept excluded
	Coef []float64
	// Parameters fitted across all batches, intercepts included
	Params int
}

// Evaluator scores predictor sets for any target of one series over a fixed
// set of batches. It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	y       mat.Matrix
	batches []batch.Batch
	solver  Solver
}

// NewEvaluator returns an Evaluator over y. The batches must come from
// batch.Partition with a ceiling at least as large as any predictor lag.
func NewEvaluator(y mat.Matrix, batches []batch.Batch, solver Solver) *Evaluator {
	return &Evaluator{y: y, batches: batches, solver: solver}
}

// Evaluate fits target on preds, plus an intercept, in every batch. An empty
// predictor set is the intercept-only model. Any batch that cannot be fitted
// makes the whole candidate fail with ErrSingularModel.
func (e *Evaluator) Evaluate(target int, preds []batch.Predictor) (*Fit, error) {
	k := len(preds)
	fit := &Fit{
		RSS:    make([]float64, len(e.batches)),
		N:      make([]int, len(e.batches)),
		Coef:   make([]float64, k),
		Params: len(e.batches) * (k + 1),
	}

	for b, bt := range e.batches {
		X, y := bt.Design(e.y, target, preds)

		sol, err := e.solver.Solve(X, y)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", b, err)
		}

		// PRESS: sum of (e_t / (1 - h_tt))^2
		for t, h := range sol.Leverage {
			d := 1 - h
			if d < minResidualLeverage {
				return nil, fmt.Errorf("batch %d: %w: leverage %g at row %d", b, ErrSingularModel, h, t)
			}
			r := sol.Residuals.AtVec(t) / d
			fit.PRSS += r * r
		}

		fit.RSS[b] = sol.RSS
		fit.N[b] = bt.Len
		for c := 0; c < k; c++ {
			fit.Coef[c] += sol.Beta.AtVec(c + 1)
		}
	}

	if nb := len(e.batches); nb > 0 {
		for c := range fit.Coef {
			fit.Coef[c] /= float64(nb)
		}
	}
	return fit, nil
}

// TotalRSS returns the in-sample residual sum of squares over all batches.
func (f *Fit) TotalRSS() float64 {
	s := 0.0
	for _, r := range f.RSS {
		s += r
	}
	return s
}

// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package series

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PreprocessOptions selects the conditioning steps applied before a search.
type PreprocessOptions struct {
	// Subtract a least-squares line over time from every column
	Detrend bool
	// Scale every column to zero mean and unit standard deviation
	Standardise bool
}

// Validate checks that y has at least 2 timepoints, at least 2 variables and
// only finite values.
func Validate(y mat.Matrix) error {
	if y == nil {
		return fmt.Errorf("%w: nil matrix", ErrInvalidSeries)
	}
	T, N := y.Dims()
	if T < 2 {
		return fmt.Errorf("%w: need at least 2 timepoints, got %d", ErrInvalidSeries, T)
	}
	if N < 2 {
		return fmt.Errorf("%w: need at least 2 variables, got %d", ErrInvalidSeries, N)
	}
	for t := 0; t < T; t++ {
		for k := 0; k < N; k++ {
			v := y.At(t, k)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite value %v at row %d col %d", ErrInvalidSeries, v, t, k)
			}
		}
	}
	return nil
}

// Preprocess validates y and returns a conditioned copy. The input is never modified.
func Preprocess(y mat.Matrix, opts PreprocessOptions) (*mat.Dense, error) {
	if err := Validate(y); err != nil {
		return nil, err
	}

	out := mat.DenseCopyOf(y)
	if opts.Detrend {
		Detrend(out)
	}
	if opts.Standardise {
		if err := Standardise(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Detrend removes a linear time trend from every column of y in place.
func Detrend(y *mat.Dense) {
	T, N := y.Dims()
	times := make([]float64, T)
	for t := range times {
		times[t] = float64(t)
	}

	col := make([]float64, T)
	for k := 0; k < N; k++ {
		mat.Col(col, k, y)
		alpha, beta := stat.LinearRegression(times, col, nil, false)
		for t := 0; t < T; t++ {
			y.Set(t, k, col[t]-(alpha+beta*times[t]))
		}
	}
}

// Standardise rescales every column of y in place to zero mean and unit
// (population) standard deviation. Constant columns are only centred.
func Standardise(y *mat.Dense) error {
	T, N := y.Dims()
	col := make([]float64, T)
	for k := 0; k < N; k++ {
		mat.Col(col, k, y)

		mean, err := stats.Mean(col)
		if err != nil {
			return fmt.Errorf("mean of column %d: %w", k, err)
		}
		sd, err := stats.StandardDeviation(col)
		if err != nil {
			return fmt.Errorf("standard deviation of column %d: %w", k, err)
		}
		if sd == 0 {
			sd = 1
		}

		for t := 0; t < T; t++ {
			y.Set(t, k, (col[t]-mean)/sd)
		}
	}
	return nil
}

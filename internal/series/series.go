// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

// Package series holds the T x N input matrix and the shared conditioning
// steps (validation, detrending, standardisation) applied before a search.
package series

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidSeries is returned when the input matrix cannot be searched.
var ErrInvalidSeries = errors.New("series: invalid input matrix")

// TimeSeries is a named T x N series, one row per timepoint.
type TimeSeries struct {
	Y        *mat.Dense
	VarNames []string
}

// New names the columns of y. A nil names slice gives V1..VN.
func New(y *mat.Dense, names []string) (*TimeSeries, error) {
	if y == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidSeries)
	}
	_, N := y.Dims()
	if names != nil && len(names) != N {
		return nil, fmt.Errorf("%w: %d names for %d variables", ErrInvalidSeries, len(names), N)
	}

	return &TimeSeries{
		Y:        y,
		VarNames: DefaultNames(names, N),
	}, nil
}

// DefaultNames returns names unchanged when it has n entries, otherwise V1..Vn.
func DefaultNames(names []string, n int) []string {
	if len(names) == n {
		return names
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("V%d", i+1)
	}
	return out
}

// Dims returns the number of timepoints and variables.
func (ts *TimeSeries) Dims() (T, N int) {
	return ts.Y.Dims()
}

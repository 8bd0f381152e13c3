// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

// Package batch splits a series into windows of consecutive timepoints that
// are fitted as independent least-squares samples.
package batch

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInsufficientData is returned when not even one batch fits after the
	// first maxlag timepoints are reserved for lagged history.
	ErrInsufficientData = errors.New("batch: insufficient data")

	// ErrInvalidBatchSize is returned for a batch size of zero.
	ErrInvalidBatchSize = errors.New("batch: batch size must be non-zero")

	// ErrInvalidLag is returned for a negative lag ceiling.
	ErrInvalidLag = errors.New("batch: lag ceiling must be >= 0")
)

// Predictor is one lagged regressor: the value of Source, Lag steps before
// the response timepoint.
type Predictor struct {
	Source int
	Lag    int
}

// Batch is a window of response timepoints [Start, Start+Len).
type Batch struct {
	Start int
	Len   int
}

// Partition returns the batches for a series of T timepoints.
// A negative batchsize gives one batch over all T-maxlag usable timepoints,
// otherwise floor((T-maxlag)/batchsize) batches of exactly batchsize points
// and the trailing remainder is dropped.
func Partition(T, maxlag, batchsize int) ([]Batch, error) {
	if maxlag < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLag, maxlag)
	}
	if batchsize == 0 {
		return nil, ErrInvalidBatchSize
	}

	usable := T - maxlag
	if batchsize < 0 {
		if usable < 1 {
			return nil, fmt.Errorf("%w: T = %d, maxlag = %d", ErrInsufficientData, T, maxlag)
		}
		return []Batch{{Start: maxlag, Len: usable}}, nil
	}

	n := 0
	if usable > 0 {
		n = usable / batchsize
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: T = %d, maxlag = %d, batchsize = %d",
			ErrInsufficientData, T, maxlag, batchsize)
	}

	batches := make([]Batch, n)
	for b := range batches {
		batches[b] = Batch{Start: maxlag + b*batchsize, Len: batchsize}
	}
	return batches, nil
}

// Design builds the regression problem of one batch for target: an intercept
// column followed by one column per predictor, and the response vector.
// The caller guarantees every predictor lag is <= the maxlag used to partition.
func (b Batch) Design(y mat.Matrix, target int, preds []Predictor) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(b.Len, len(preds)+1, nil)
	resp := mat.NewVecDense(b.Len, nil)

	for r := 0; r < b.Len; r++ {
		t := b.Start + r
		X.Set(r, 0, 1.0)
		for c, p := range preds {
			X.Set(r, c+1, y.At(t-p.Lag, p.Source))
		}
		resp.SetVec(r, y.At(t, target))
	}
	return X, resp
}

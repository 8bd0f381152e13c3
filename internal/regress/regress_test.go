// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package regress

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"selvar/internal/batch"
)

// almostEqual compares floats with tolerance
func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

type failingSolver struct{}

func (failingSolver) Solve(*mat.Dense, *mat.VecDense) (*Solution, error) {
	return nil, errors.New("no lapack")
}

type wrongSolver struct{}

func (wrongSolver) Solve(x *mat.Dense, _ *mat.VecDense) (*Solution, error) {
	_, p := x.Dims()
	return &Solution{Beta: mat.NewVecDense(p, nil)}, nil
}

func TestCholeskySolverExactLine(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{1, 0, 1, 1, 1, 2, 1, 3})
	y := mat.NewVecDense(4, []float64{-1, 1, 3, 5})

	sol, err := CholeskySolver{}.Solve(x, y)
	require.NoError(t, err)

	assert.True(t, almostEqual(sol.Beta.AtVec(0), -1, 1e-10))
	assert.True(t, almostEqual(sol.Beta.AtVec(1), 2, 1e-10))
	assert.True(t, almostEqual(sol.RSS, 0, 1e-18))

	// trace of the hat matrix equals the number of parameters
	sum := 0.0
	for _, h := range sol.Leverage {
		sum += h
	}
	assert.True(t, almostEqual(sum, 2, 1e-10))
}

func TestCholeskySolverSingular(t *testing.T) {
	tests := []struct {
		name string
		x    *mat.Dense
	}{
		{"duplicate column", mat.NewDense(4, 3, []float64{
			1, 1, 1,
			1, 2, 2,
			1, 3, 3,
			1, 4, 4,
		})},
		{"too few rows", mat.NewDense(2, 2, []float64{1, 0, 1, 1})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, _ := tc.x.Dims()
			_, err := CholeskySolver{}.Solve(tc.x, mat.NewVecDense(n, nil))
			assert.ErrorIs(t, err, ErrSingularModel)
		})
	}
}

func TestProbe(t *testing.T) {
	assert.NoError(t, Probe(CholeskySolver{}))
	assert.ErrorIs(t, Probe(nil), ErrKernelUnavailable)
	assert.ErrorIs(t, Probe(failingSolver{}), ErrKernelUnavailable)
	assert.ErrorIs(t, Probe(wrongSolver{}), ErrKernelUnavailable)
}

func TestEvaluateInterceptOnly(t *testing.T) {
	// target column 0, one batch over rows 1..4
	y := mat.NewDense(5, 2, []float64{
		9, 0,
		1, 0,
		2, 0,
		4, 0,
		5, 0,
	})
	batches, err := batch.Partition(5, 1, -1)
	require.NoError(t, err)

	fit, err := NewEvaluator(y, batches, CholeskySolver{}).Evaluate(0, nil)
	require.NoError(t, err)

	// mean 3, residuals -2 -1 1 2, leverage 1/4
	wantRSS := 4.0 + 1 + 1 + 4
	wantPRSS := wantRSS * (4.0 / 3) * (4.0 / 3)
	assert.True(t, almostEqual(fit.TotalRSS(), wantRSS, 1e-10))
	assert.True(t, almostEqual(fit.PRSS, wantPRSS, 1e-10))
	assert.Equal(t, 1, fit.Params)
	assert.Equal(t, []int{4}, fit.N)
	assert.Empty(t, fit.Coef)
}

func TestEvaluateRecoversLaggedCoefficient(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	T := 60
	y := mat.NewDense(T, 2, nil)
	for r := 0; r < T; r++ {
		y.Set(r, 0, rng.NormFloat64())
		if r >= 2 {
			y.Set(r, 1, 1+0.5*y.At(r-2, 0))
		}
	}

	batches, err := batch.Partition(T, 2, 10)
	require.NoError(t, err)
	require.Len(t, batches, 5)

	fit, err := NewEvaluator(y, batches, CholeskySolver{}).Evaluate(1, []batch.Predictor{{Source: 0, Lag: 2}})
	require.NoError(t, err)

	assert.True(t, almostEqual(fit.Coef[0], 0.5, 1e-8), "coef %v", fit.Coef[0])
	assert.True(t, fit.TotalRSS() < 1e-12)
	assert.Equal(t, 10, fit.Params)
}

func TestEvaluatePRSSNotBelowRSS(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	T := 40
	y := mat.NewDense(T, 3, nil)
	for r := 0; r < T; r++ {
		for k := 0; k < 3; k++ {
			y.Set(r, k, rng.NormFloat64())
		}
	}
	batches, err := batch.Partition(T, 2, -1)
	require.NoError(t, err)
	ev := NewEvaluator(y, batches, CholeskySolver{})

	fit, err := ev.Evaluate(0, []batch.Predictor{{Source: 1, Lag: 1}, {Source: 2, Lag: 2}})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fit.PRSS, fit.TotalRSS())
	assert.Len(t, fit.Coef, 2)
}

func TestEvaluateSingularCandidate(t *testing.T) {
	// source 1 is constant, collinear with the intercept
	T := 10
	y := mat.NewDense(T, 2, nil)
	for r := 0; r < T; r++ {
		y.Set(r, 0, float64(r*r%7))
		y.Set(r, 1, 3)
	}
	batches, err := batch.Partition(T, 1, -1)
	require.NoError(t, err)

	_, err = NewEvaluator(y, batches, CholeskySolver{}).Evaluate(0, []batch.Predictor{{Source: 1, Lag: 1}})
	assert.ErrorIs(t, err, ErrSingularModel)
}

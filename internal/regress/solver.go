// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package regress

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingularModel is returned when a design matrix cannot be fitted:
	// rank deficient, badly conditioned, or not more rows than parameters.
	ErrSingularModel = errors.New("regress: singular model")

	// ErrKernelUnavailable is returned when no working least-squares solver
	// is configured.
	ErrKernelUnavailable = errors.New("regress: numeric kernel unavailable")
)

// maxCondition bounds the condition number of X'X accepted by CholeskySolver.
const maxCondition = 1e14

// Solution is the least-squares fit of one design matrix.
type Solution struct {
	// Coefficients, aligned with the design columns
	Beta *mat.VecDense
	// Residuals y - X*Beta
	Residuals *mat.VecDense
	// Residual sum of squares
	RSS float64
	// Diagonal of the hat matrix X(X'X)^-1X'
	Leverage []float64
}

// Solver fits one ordinary least-squares problem.
type Solver interface {
	Solve(x *mat.Dense, y *mat.VecDense) (*Solution, error)
}

// CholeskySolver solves the normal equations through a Cholesky
// factorisation of X'X.
type CholeskySolver struct{}

// Solve implements Solver.
func (CholeskySolver) Solve(x *mat.Dense, y *mat.VecDense) (*Solution, error) {
	n, p := x.Dims()
	if n <= p {
		return nil, fmt.Errorf("%w: %d rows for %d parameters", ErrSingularModel, n, p)
	}

	// X'X
	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, fmt.Errorf("%w: X'X is not positive definite", ErrSingularModel)
	}
	if c := chol.Cond(); math.IsNaN(c) || c > maxCondition {
		return nil, fmt.Errorf("%w: condition number %g", ErrSingularModel, c)
	}

	// B = (X'X)^(-1) X'y
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	beta := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(beta, &xty); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularModel, err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, beta)

	resid := mat.NewVecDense(n, nil)
	resid.SubVec(y, &fitted)

	// h_tt = x_t' (X'X)^-1 x_t
	lev := make([]float64, n)
	z := mat.NewVecDense(p, nil)
	for r := 0; r < n; r++ {
		row := x.RowView(r)
		if err := chol.SolveVecTo(z, row); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingularModel, err)
		}
		lev[r] = mat.Dot(row, z)
	}

	return &Solution{
		Beta:      beta,
		Residuals: resid,
		RSS:       mat.Dot(resid, resid),
		Leverage:  lev,
	}, nil
}

// Probe checks that solver is usable by fitting a line with a known answer.
// It is run once before any search work.
func Probe(solver Solver) error {
	if solver == nil {
		return fmt.Errorf("%w: no solver configured", ErrKernelUnavailable)
	}

	x := mat.NewDense(3, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
	})
	y := mat.NewVecDense(3, []float64{1, 3, 5})

	sol, err := solver.Solve(x, y)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKernelUnavailable, err)
	}
	if sol == nil || sol.Beta == nil || sol.Beta.Len() != 2 {
		return fmt.Errorf("%w: malformed solution", ErrKernelUnavailable)
	}
	if math.Abs(sol.Beta.AtVec(0)-1) > 1e-9 || math.Abs(sol.Beta.AtVec(1)-2) > 1e-9 {
		return fmt.Errorf("%w: probe fit (%g, %g), want (1, 2)",
			ErrKernelUnavailable, sol.Beta.AtVec(0), sol.Beta.AtVec(1))
	}
	return nil
}

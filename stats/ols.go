package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var nan = math.NaN()

var errSingular = errors.New("stats: singular design matrix")

// ols fits y = X b by least squares and returns b, the standard errors
// of b and the residuals.
func ols(x *mat.Dense, y []float64) (coef, stdErr, resid []float64, err error) {
	n, k := x.Dims()
	if n != len(y) || n <= k {
		return nil, nil, nil, errSingular
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, nil, nil, errSingular
	}

	yv := mat.NewVecDense(n, y)
	var xty, b mat.VecDense
	xty.MulVec(x.T(), yv)
	if err := chol.SolveVecTo(&b, &xty); err != nil {
		return nil, nil, nil, errSingular
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &b)
	resid = make([]float64, n)
	sse := 0.0
	for i := range resid {
		resid[i] = y[i] - fitted.AtVec(i)
		sse += resid[i] * resid[i]
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, nil, nil, errSingular
	}
	s2 := sse / float64(n-k)
	coef = make([]float64, k)
	stdErr = make([]float64, k)
	for i := range coef {
		coef[i] = b.AtVec(i)
		stdErr[i] = math.Sqrt(s2 * inv.At(i, i))
	}
	return coef, stdErr, resid, nil
}

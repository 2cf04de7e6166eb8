package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// PortmanteauResult is the outcome of a Ljung-Box or Box-Pierce test.
type PortmanteauResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox tests for autocorrelation in residuals up to lag h. The null
// hypothesis is no autocorrelation; a p-value below 0.05 rejects it.
// fitdf is the number of estimated model parameters (p + q for ARIMA).
func LjungBox(residuals []float64, lags, fitdf int) *PortmanteauResult {
	return portmanteau(residuals, lags, fitdf, func(n, k int, r float64) float64 {
		return float64(n*(n+2)) * r * r / float64(n-k)
	})
}

// BoxPierce is the unweighted variant of LjungBox.
func BoxPierce(residuals []float64, lags, fitdf int) *PortmanteauResult {
	return portmanteau(residuals, lags, fitdf, func(n, _ int, r float64) float64 {
		return float64(n) * r * r
	})
}

func portmanteau(x []float64, lags, fitdf int, term func(n, k int, r float64) float64) *PortmanteauResult {
	n := len(x)
	if n < 10 || lags < 1 {
		return nil
	}
	if lags >= n {
		lags = n - 1
	}

	acf := ACF(x, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += term(n, k, acf[k])
	}

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	return &PortmanteauResult{
		Statistic: q,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}

// DurbinWatson returns the Durbin-Watson statistic for first-order
// autocorrelation: about 2 means none, below 2 positive, above 2 negative.
// It returns NaN for fewer than two residuals or all-zero residuals.
func DurbinWatson(residuals []float64) float64 {
	n := len(residuals)
	if n < 2 {
		return nan
	}
	den := floats.Dot(residuals, residuals)
	if den == 0 {
		return nan
	}
	num := 0.0
	for i := 1; i < n; i++ {
		d := residuals[i] - residuals[i-1]
		num += d * d
	}
	return num / den
}

package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ACF calculates the sample autocorrelation of x for lags 0 to maxLag.
// maxLag is capped at len(x)-1. It returns nil for constant input.
func ACF(x []float64, maxLag int) []float64 {
	n := len(x)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := stat.Mean(x, nil)
	denom := 0.0
	for _, v := range x {
		denom += (v - mean) * (v - mean)
	}
	if denom == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := range acf {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (x[i] - mean) * (x[i-k] - mean)
		}
		acf[k] = sum / denom
	}
	return acf
}

// PACF calculates the partial autocorrelation for lags 0 to maxLag using
// the Durbin-Levinson recursion. Lag 0 is always 1.
func PACF(x []float64, maxLag int) []float64 {
	if maxLag >= len(x) {
		maxLag = len(x) - 1
	}
	if maxLag < 1 {
		return nil
	}

	acf := ACF(x, maxLag)
	if acf == nil {
		return nil
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1
	pacf[1] = acf[1]

	prev := []float64{0, acf[1]}
	for k := 2; k <= maxLag; k++ {
		num, den := acf[k], 1.0
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
			den -= prev[j] * acf[j]
		}
		if den == 0 {
			break
		}

		cur := make([]float64, k+1)
		cur[k] = num / den
		for j := 1; j < k; j++ {
			cur[j] = prev[j] - cur[k]*prev[k-j]
		}
		pacf[k] = cur[k]
		prev = cur
	}
	return pacf
}

// Correlogram holds ACF or PACF values with their 95% confidence band.
type Correlogram struct {
	Lags       []int
	Values     []float64
	ConfBounds float64 // +-1.96/sqrt(n)
}

// ACFWithConfidence calculates ACF with confidence bounds.
func ACFWithConfidence(x []float64, maxLag int) *Correlogram {
	return correlogram(ACF(x, maxLag), len(x))
}

// PACFWithConfidence calculates PACF with confidence bounds.
func PACFWithConfidence(x []float64, maxLag int) *Correlogram {
	return correlogram(PACF(x, maxLag), len(x))
}

func correlogram(values []float64, n int) *Correlogram {
	if values == nil {
		return nil
	}
	lags := make([]int, len(values))
	for i := range lags {
		lags[i] = i
	}
	return &Correlogram{
		Lags:       lags,
		Values:     values,
		ConfBounds: 1.96 / math.Sqrt(float64(n)),
	}
}

// SignificantLags returns the lags (excluding 0) whose value exceeds confBound.
func SignificantLags(values []float64, confBound float64) []int {
	var significant []int
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]) > confBound {
			significant = append(significant, i)
		}
	}
	return significant
}

// CheckSeasonality tests whether x has a seasonal period of m at
// significance level alpha. The ACF at lag m must be a local maximum and
// exceed its Bartlett confidence bound. When m is 0 the candidate period
// is the first ACF local maximum up to maxLag that passes the test; the
// detected period (or 0) is returned along with the verdict.
func CheckSeasonality(x []float64, m, maxLag int, alpha float64) (bool, int) {
	if m == 1 || len(x) < 3 {
		return false, 0
	}
	if maxLag <= 0 || maxLag >= len(x) {
		maxLag = len(x) - 1
	}
	if m > maxLag {
		return false, 0
	}

	acf := ACF(x, maxLag)
	if acf == nil {
		return false, 0
	}

	var candidates []int
	for k := 2; k < len(acf)-1; k++ {
		if acf[k] > acf[k-1] && acf[k] > acf[k+1] {
			candidates = append(candidates, k)
		}
	}

	if m != 0 {
		found := false
		for _, k := range candidates {
			if k == m {
				found = true
				break
			}
		}
		if !found {
			return false, m
		}
		candidates = []int{m}
	}

	z := distuv.UnitNormal.Quantile(1 - alpha/2)
	n := float64(len(x))
	for _, k := range candidates {
		// Bartlett's formula for the variance of r_k.
		sum := 0.0
		for i := 1; i < k; i++ {
			sum += acf[i] * acf[i]
		}
		bound := z * math.Sqrt((1+2*sum)/n)
		if acf[k] > bound {
			return true, k
		}
	}
	return false, m
}

package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// UnitRootResult is the outcome of an ADF, KPSS or Phillips-Perron test.
type UnitRootResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	CriticalVals map[string]float64 // at 1%, 5% and 10%
	IsStationary bool
}

var dickeyFullerCritical = map[string]float64{
	"1%":  -3.43,
	"5%":  -2.86,
	"10%": -2.57,
}

// ADF performs the Augmented Dickey-Fuller test. The null hypothesis is a
// unit root; p < 0.05 rejects it and the series is deemed stationary.
// maxLag <= 0 selects floor((n-1)^(1/3)).
func ADF(x []float64, maxLag int) *UnitRootResult {
	n := len(x)
	if n < 10 {
		return nil
	}
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	diff := Difference(x, 1)
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}

	// dy_t = a + b*y_{t-1} + sum g_j dy_{t-j}
	cols := 2 + maxLag
	design := mat.NewDense(nObs, cols, nil)
	y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = diff[t]
		design.Set(i, 0, 1)
		design.Set(i, 1, x[t])
		for j := 1; j <= maxLag; j++ {
			design.Set(i, 1+j, diff[t-j])
		}
	}

	coef, se, _, err := ols(design, y)
	if err != nil {
		return nil
	}

	tStat := coef[1] / se[1]
	p := mackinnonPValue(tStat)
	return &UnitRootResult{
		Statistic:    tStat,
		PValue:       p,
		Lags:         maxLag,
		NObs:         nObs,
		CriticalVals: dickeyFullerCritical,
		IsStationary: p < 0.05,
	}
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test. The null
// hypothesis is stationarity. regression is "c" (level) or "ct" (trend).
func KPSS(x []float64, regression string, nlags int) *UnitRootResult {
	n := len(x)
	if n < 10 {
		return nil
	}
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}

	resid := make([]float64, n)
	if regression == "ct" {
		t := make([]float64, n)
		for i := range t {
			t[i] = float64(i)
		}
		a, b := stat.LinearRegression(t, x, nil, false)
		for i, v := range x {
			resid[i] = v - a - b*t[i]
		}
	} else {
		mean := stat.Mean(x, nil)
		for i, v := range x {
			resid[i] = v - mean
		}
	}

	s2 := longRunVariance(resid, nlags)
	if s2 <= 0 {
		s2 = 1e-10
	}

	eta, cum := 0.0, 0.0
	for _, r := range resid {
		cum += r
		eta += cum * cum
	}
	kpss := eta / (float64(n) * float64(n) * s2)

	critical := map[string]float64{"10%": 0.347, "5%": 0.463, "1%": 0.739}
	if regression == "ct" {
		critical = map[string]float64{"10%": 0.119, "5%": 0.146, "1%": 0.216}
	}

	p := kpssPValue(kpss, regression)
	return &UnitRootResult{
		Statistic:    kpss,
		PValue:       p,
		Lags:         nlags,
		NObs:         n,
		CriticalVals: critical,
		IsStationary: p >= 0.05,
	}
}

// PhillipsPerron performs the Phillips-Perron unit root test, which
// corrects the Dickey-Fuller statistic for serial correlation with a
// Newey-West long-run variance instead of lagged differences.
func PhillipsPerron(x []float64, nlags int) *UnitRootResult {
	n := len(x)
	if n < 10 {
		return nil
	}
	if nlags <= 0 {
		nlags = int(math.Floor(4 * math.Pow(float64(n)/100, 0.25)))
	}

	nObs := n - 1
	y := Difference(x, 1)
	design := mat.NewDense(nObs, 2, nil)
	for i := 0; i < nObs; i++ {
		design.Set(i, 0, 1)
		design.Set(i, 1, x[i])
	}

	coef, se, resid, err := ols(design, y)
	if err != nil {
		return nil
	}

	gamma0 := 0.0
	for _, r := range resid {
		gamma0 += r * r
	}
	gamma0 /= float64(nObs)
	lambda2 := longRunVariance(resid, nlags)

	lagged := x[:nObs]
	mean := stat.Mean(lagged, nil)
	ssx := 0.0
	for _, v := range lagged {
		ssx += (v - mean) * (v - mean)
	}

	tStat := coef[1] / se[1]
	correction := 0.0
	if lambda2 > 0 && ssx > 0 {
		correction = (lambda2 - gamma0) * math.Sqrt(float64(nObs)) / (2 * math.Sqrt(lambda2) * math.Sqrt(ssx))
	}
	pp := math.Sqrt(gamma0/lambda2)*tStat - correction

	p := mackinnonPValue(pp)
	return &UnitRootResult{
		Statistic:    pp,
		PValue:       p,
		Lags:         nlags,
		NObs:         nObs,
		CriticalVals: dickeyFullerCritical,
		IsStationary: p < 0.05,
	}
}

// longRunVariance is the Newey-West estimator with Bartlett weights.
func longRunVariance(resid []float64, lags int) float64 {
	n := float64(len(resid))
	s2 := 0.0
	for _, r := range resid {
		s2 += r * r
	}
	s2 /= n
	for l := 1; l <= lags && l < len(resid); l++ {
		cov := 0.0
		for i := l; i < len(resid); i++ {
			cov += resid[i] * resid[i-l]
		}
		s2 += 2 * (1 - float64(l)/float64(lags+1)) * cov / n
	}
	return s2
}

// mackinnonPValue interpolates the asymptotic MacKinnon (1994) table for
// the constant-only regression.
func mackinnonPValue(t float64) float64 {
	switch {
	case t < -3.96:
		return 0.001
	case t < -3.43:
		return 0.01
	case t < -2.86:
		return 0.05
	case t < -2.57:
		return 0.10
	case t < -1.94:
		return 0.25
	case t < -1.62:
		return 0.50
	default:
		return math.Min(0.5+(t+1.62)*0.25, 0.99)
	}
}

func kpssPValue(s float64, regression string) float64 {
	if regression == "ct" {
		switch {
		case s > 0.216:
			return 0.01
		case s > 0.146:
			return 0.05
		case s > 0.119:
			return 0.10
		default:
			return 0.10 + (0.119-s)*2
		}
	}
	switch {
	case s > 0.739:
		return 0.01
	case s > 0.463:
		return 0.05
	case s > 0.347:
		return 0.10
	default:
		return 0.10 + (0.347-s)*0.5
	}
}

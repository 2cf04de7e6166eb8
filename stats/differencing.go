package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Difference returns x[i] - x[i-lag]. The result has len(x)-lag elements,
// or is empty when lag >= len(x).
func Difference(x []float64, lag int) []float64 {
	if lag <= 0 || lag >= len(x) {
		return []float64{}
	}
	out := make([]float64, len(x)-lag)
	for i := range out {
		out[i] = x[i+lag] - x[i]
	}
	return out
}

// Undifference inverts d rounds of first differencing of forecast, given
// the history the differences were taken from.
func Undifference(history, forecast []float64, d int) []float64 {
	out := append([]float64(nil), forecast...)
	for k := d; k > 0; k-- {
		level := history
		for i := 1; i < k; i++ {
			level = Difference(level, 1)
		}
		out = Integrate(level, out, 1)
	}
	return out
}

// Integrate inverts one difference at the given lag: it returns y with
// y[j] = z[j] + y[j-lag], taking the first lag predecessors from the end
// of history. Missing history is treated as zero.
func Integrate(history, z []float64, lag int) []float64 {
	out := make([]float64, len(z))
	n := len(history)
	for j, v := range z {
		switch {
		case j >= lag:
			out[j] = v + out[j-lag]
		case n-lag+j >= 0:
			out[j] = v + history[n-lag+j]
		default:
			out[j] = v
		}
	}
	return out
}

// NDiffs determines the number of first differences required for
// stationarity, up to maxD (default 2). testType is "kpss" (default) or "adf".
func NDiffs(x []float64, maxD int, testType string) int {
	if maxD <= 0 {
		maxD = 2
	}

	current := x
	for d := 0; d < maxD; d++ {
		var stationary bool
		if testType == "adf" {
			result := ADF(current, 0)
			stationary = result != nil && result.IsStationary
		} else {
			result := KPSS(current, "c", 0)
			stationary = result != nil && result.IsStationary
		}
		if stationary {
			return d
		}

		current = Difference(current, 1)
		if len(current) < 10 {
			return d
		}
	}
	return maxD
}

// NSDiffs determines the number of seasonal differences required. One
// difference is suggested while the seasonal strength F_S is at least 0.64.
func NSDiffs(x []float64, period int, maxD int) int {
	if maxD <= 0 {
		maxD = 1
	}
	if period <= 1 || len(x) < 2*period {
		return 0
	}

	current := x
	for d := 0; d < maxD; d++ {
		if SeasonalStrength(current, period) < 0.64 {
			return d
		}
		current = Difference(current, period)
		if len(current) < 2*period {
			return d
		}
	}
	return maxD
}

// SeasonalStrength returns F_S = max(0, 1 - Var(R)/Var(S+R)) from an
// additive classical decomposition.
func SeasonalStrength(x []float64, period int) float64 {
	if len(x) < 2*period {
		return 0
	}
	decomp := Decompose(x, period, Additive)
	if decomp == nil {
		return 0
	}

	var resid, seasonalResid []float64
	for i, r := range decomp.Residual {
		if math.IsNaN(r) || math.IsNaN(decomp.Seasonal[i]) {
			continue
		}
		resid = append(resid, r)
		seasonalResid = append(seasonalResid, decomp.Seasonal[i]+r)
	}
	if len(resid) < 2 {
		return 0
	}

	varSR := stat.Variance(seasonalResid, nil)
	if varSR == 0 {
		return 0
	}
	return math.Max(0, 1-stat.Variance(resid, nil)/varSR)
}

// AICc calculates the corrected Akaike Information Criterion
// AIC + 2k(k+1)/(n-k-1).
func AICc(aic float64, nObs int, nParams int) float64 {
	k := float64(nParams)
	n := float64(nObs)
	if n-k-1 <= 0 {
		return math.Inf(1)
	}
	return aic + 2*k*(k+1)/(n-k-1)
}

// InformationCriteria holds AIC, AICc and BIC for one fitted model.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// CalculateIC calculates all information criteria from a log-likelihood.
func CalculateIC(logLik float64, nObs int, nParams int) *InformationCriteria {
	k := float64(nParams)
	aic := -2*logLik + 2*k
	return &InformationCriteria{
		AIC:    aic,
		AICc:   AICc(aic, nObs, nParams),
		BIC:    -2*logLik + k*math.Log(float64(nObs)),
		LogLik: logLik,
	}
}

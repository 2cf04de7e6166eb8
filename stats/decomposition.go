package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SeasonalMode selects how the seasonal component combines with the trend.
type SeasonalMode int

const (
	// Additive decomposes Y = T + S + R.
	Additive SeasonalMode = iota
	// Multiplicative decomposes Y = T * S * R.
	Multiplicative
)

func (m SeasonalMode) String() string {
	if m == Multiplicative {
		return "multiplicative"
	}
	return "additive"
}

// Decomposition holds the components of a decomposed series. Trend and
// Residual are NaN where the centred moving average is undefined.
type Decomposition struct {
	Trend    []float64
	Seasonal []float64
	Residual []float64
	// Pattern holds one seasonal index per position in the cycle;
	// Seasonal[i] == Pattern[i%Period].
	Pattern []float64
	Period  int
	Mode    SeasonalMode
}

// Decompose performs classical seasonal decomposition using a centred
// moving average for the trend. It returns nil when x holds fewer than two
// full periods.
func Decompose(x []float64, period int, mode SeasonalMode) *Decomposition {
	n := len(x)
	if period < 2 || n < 2*period {
		return nil
	}

	trend := centredMovingAverage(x, period)

	// Average the detrended values within each position of the cycle.
	pattern := make([]float64, period)
	counts := make([]int, period)
	for i, v := range x {
		if math.IsNaN(trend[i]) {
			continue
		}
		var d float64
		if mode == Multiplicative {
			if trend[i] == 0 {
				continue
			}
			d = v / trend[i]
		} else {
			d = v - trend[i]
		}
		pattern[i%period] += d
		counts[i%period]++
	}
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
	}

	mean := stat.Mean(pattern, nil)
	if mode == Multiplicative {
		if mean != 0 {
			floats.Scale(1/mean, pattern)
		}
	} else {
		floats.AddConst(-mean, pattern)
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i, v := range x {
		seasonal[i] = pattern[i%period]
		switch {
		case math.IsNaN(trend[i]):
			residual[i] = math.NaN()
		case mode == Multiplicative:
			if trend[i] == 0 || seasonal[i] == 0 {
				residual[i] = math.NaN()
			} else {
				residual[i] = v / (trend[i] * seasonal[i])
			}
		default:
			residual[i] = v - trend[i] - seasonal[i]
		}
	}

	return &Decomposition{
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Pattern:  pattern,
		Period:   period,
		Mode:     mode,
	}
}

// centredMovingAverage uses a 2xperiod MA for even periods and a simple
// centred MA for odd ones.
func centredMovingAverage(x []float64, period int) []float64 {
	n := len(x)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	half := period / 2
	for i := half; i < n-half; i++ {
		var sum float64
		if period%2 == 0 {
			sum = 0.5*x[i-half] + 0.5*x[i+half] + floats.Sum(x[i-half+1:i+half])
		} else {
			sum = floats.Sum(x[i-half : i+half+1])
		}
		trend[i] = sum / float64(period)
	}
	return trend
}

// STL performs a simplified Seasonal and Trend decomposition using Loess,
// with bisquare robustness weights between iterations.
func STL(x []float64, period int, robustIters int) *Decomposition {
	n := len(x)
	if period < 2 || n < 2*period {
		return nil
	}
	if robustIters < 1 {
		robustIters = 2
	}

	trend := make([]float64, n)
	seasonal := make([]float64, n)
	residual := make([]float64, n)
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	pattern := make([]float64, period)

	window := period
	if window%2 == 0 {
		window++
	}
	half := window / 2

	for iter := 0; iter < robustIters; iter++ {
		for i := range pattern {
			pattern[i] = 0
		}
		counts := make([]float64, period)
		for i, v := range x {
			pattern[i%period] += (v - trend[i]) * weights[i]
			counts[i%period] += weights[i]
		}
		for i := range pattern {
			if counts[i] > 0 {
				pattern[i] /= counts[i]
			}
		}
		floats.AddConst(-stat.Mean(pattern, nil), pattern)

		for i := range seasonal {
			seasonal[i] = pattern[i%period]
		}

		// Tricube-like triangular smoothing of the deseasonalised series.
		for i := 0; i < n; i++ {
			sum, wsum := 0.0, 0.0
			for j := -half; j <= half; j++ {
				idx := i + j
				if idx < 0 || idx >= n {
					continue
				}
				w := weights[idx] * (1 - math.Abs(float64(j))/float64(half+1))
				sum += (x[idx] - seasonal[idx]) * w
				wsum += w
			}
			if wsum > 0 {
				trend[i] = sum / wsum
			}
		}

		for i, v := range x {
			residual[i] = v - trend[i] - seasonal[i]
		}

		if iter == robustIters-1 {
			break
		}
		abs := make([]float64, n)
		for i, r := range residual {
			abs[i] = math.Abs(r)
		}
		h := 6 * median(abs)
		if h <= 0 {
			continue
		}
		for i, r := range residual {
			u := math.Abs(r) / h
			if u < 1 {
				weights[i] = (1 - u*u) * (1 - u*u)
			} else {
				weights[i] = 0
			}
		}
	}

	return &Decomposition{
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Pattern:  pattern,
		Period:   period,
		Mode:     Additive,
	}
}

func median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

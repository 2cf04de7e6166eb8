package timeseries

import (
	"math"
	"time"
)

// Diff calculates the first difference of every component (d=1).
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN calculates the lag-n difference of every component.
func (s *Series) DiffN(n int) *Series {
	return s.lagged(n, func(cur, prev float64) float64 { return cur - prev })
}

// SeasonalDiff calculates the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	return s.DiffN(m)
}

// Lag shifts every component forward by k steps; the first k timestamps are dropped.
func (s *Series) Lag(k int) *Series {
	return s.lagged(k, func(_, prev float64) float64 { return prev })
}

func (s *Series) lagged(k int, fn func(cur, prev float64) float64) *Series {
	n := len(s.times)
	if k <= 0 || n <= k {
		return s.empty()
	}

	rows := n - k
	data := make([]float64, rows*s.width)
	for r := 0; r < rows; r++ {
		for c := 0; c < s.width; c++ {
			data[r*s.width+c] = fn(s.data[(r+k)*s.width+c], s.data[r*s.width+c])
		}
	}

	times := make([]time.Time, rows)
	copy(times, s.times[k:])

	return derive(times, data, s.width, s.Components(), s.freq)
}

// Log applies the natural logarithm; non-positive values become NaN.
func (s *Series) Log() *Series {
	return s.Map(func(v float64) float64 {
		if v > 0 {
			return math.Log(v)
		}
		return math.NaN()
	})
}

// MovingAverage calculates a trailing simple moving average per component.
func (s *Series) MovingAverage(window int) *Series {
	n := len(s.times)
	if window <= 0 || window > n {
		return s.empty()
	}

	rows := n - window + 1
	data := make([]float64, rows*s.width)
	for c := 0; c < s.width; c++ {
		sum := 0.0
		for i := 0; i < window; i++ {
			sum += s.data[i*s.width+c]
		}
		data[c] = sum / float64(window)

		for i := window; i < n; i++ {
			sum = sum - s.data[(i-window)*s.width+c] + s.data[i*s.width+c]
			data[(i-window+1)*s.width+c] = sum / float64(window)
		}
	}

	times := make([]time.Time, rows)
	copy(times, s.times[window-1:])

	return derive(times, data, s.width, s.Components(), s.freq)
}

// Normalize standardizes each component (z-score). Constant components are left unchanged.
func (s *Series) Normalize() *Series {
	mean := s.Mean()
	std := s.Std()

	data := make([]float64, len(s.data))
	for r := range s.times {
		for c := 0; c < s.width; c++ {
			v := s.data[r*s.width+c]
			if std[c] == 0 {
				data[r*s.width+c] = v
				continue
			}
			data[r*s.width+c] = (v - mean[c]) / std[c]
		}
	}
	return derive(s.Timestamps(), data, s.width, s.Components(), s.freq)
}

func (s *Series) empty() *Series {
	return derive([]time.Time{}, []float64{}, s.width, s.Components(), s.freq)
}

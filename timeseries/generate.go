package timeseries

import (
	"math"
	"math/rand/v2"
	"time"
)

// Range describes a regular time index.
type Range struct {
	Start  time.Time
	Freq   Freq
	Length int
}

// DailyFrom returns a daily range of n steps starting at start.
func DailyFrom(start time.Time, n int) Range {
	return Range{Start: start, Freq: Daily, Length: n}
}

// Times materialises the range.
func (r Range) Times() []time.Time {
	out := make([]time.Time, r.Length)
	for i := range out {
		out[i] = r.Freq.Add(r.Start, i)
	}
	return out
}

func (r Range) series(values []float64) *Series {
	return derive(r.Times(), values, 1, ordinalNames(1), r.Freq)
}

// Linear returns a series going linearly from start to end (both included).
func Linear(r Range, start, end float64) *Series {
	values := make([]float64, r.Length)
	step := 0.0
	if r.Length > 1 {
		step = (end - start) / float64(r.Length-1)
	}
	for i := range values {
		values[i] = start + float64(i)*step
	}
	return r.series(values)
}

// Constant returns a series holding value at every timestamp.
func Constant(r Range, value float64) *Series {
	values := make([]float64, r.Length)
	for i := range values {
		values[i] = value
	}
	return r.series(values)
}

// Sine returns amplitude*sin(2*pi*frequency*i + phase) + offset, where
// frequency is in cycles per step.
func Sine(r Range, frequency, amplitude, phase, offset float64) *Series {
	values := make([]float64, r.Length)
	for i := range values {
		values[i] = amplitude*math.Sin(2*math.Pi*frequency*float64(i)+phase) + offset
	}
	return r.series(values)
}

// Gaussian returns independent normal draws with the given mean and
// standard deviation. The same seed always yields the same series.
func Gaussian(r Range, mean, std float64, seed uint64) *Series {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	values := make([]float64, r.Length)
	for i := range values {
		values[i] = mean + std*rng.NormFloat64()
	}
	return r.series(values)
}

// RandomWalk returns the cumulative sum of normal steps.
func RandomWalk(r Range, mean, std float64, seed uint64) *Series {
	steps := Gaussian(r, mean, std, seed)
	values := steps.Column(0)
	for i := 1; i < len(values); i++ {
		values[i] += values[i-1]
	}
	return r.series(values)
}

package fft

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

var _ forecasting.Model = (*Model)(nil)

func generate(n int, f func(t float64) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(float64(i))
	}
	return out
}

func TestFFTSinusoid(t *testing.T) {
	wave := func(t float64) float64 { return 3 * math.Sin(2*math.Pi*t/8) }
	model := New(Config{FreqsToKeep: 1})
	require.NoError(t, model.Fit(timeseries.New(generate(64, wave))))

	out, err := model.Predict(12)
	require.NoError(t, err)
	for i, v := range out.Column(0) {
		assert.InDelta(t, wave(float64(64+i)), v, 1e-9)
	}
}

func TestFFTKeepsStrongestFrequencies(t *testing.T) {
	signal := func(t float64) float64 {
		return 5 + 4*math.Sin(2*math.Pi*t/16) + 0.1*math.Cos(2*math.Pi*t/4)
	}
	values := generate(64, signal)

	all := New(Config{})
	require.NoError(t, all.Fit(timeseries.New(values)))
	full, err := all.Predict(8)
	require.NoError(t, err)

	two := New(Config{FreqsToKeep: 2})
	require.NoError(t, two.Fit(timeseries.New(values)))
	reduced, err := two.Predict(8)
	require.NoError(t, err)

	for i := range 8 {
		tt := float64(64 + i)
		assert.InDelta(t, signal(tt), full.Column(0)[i], 1e-9)
		assert.InDelta(t, 5+4*math.Sin(2*math.Pi*tt/16), reduced.Column(0)[i], 1e-9)
	}
}

func TestFFTPolynomialDetrend(t *testing.T) {
	line := func(t float64) float64 { return 2 + 0.5*t }
	model := New(Config{FreqsToKeep: 3, Detrend: PolynomialDetrend, TrendDegree: 1})
	require.NoError(t, model.Fit(timeseries.New(generate(40, line))))

	out, err := model.Predict(5)
	require.NoError(t, err)
	for i, v := range out.Column(0) {
		assert.InDelta(t, line(float64(40+i)), v, 1e-8)
	}
}

func TestFFTExponentialDetrend(t *testing.T) {
	growth := func(t float64) float64 { return 2 * math.Exp(0.05*t) }
	model := New(Config{FreqsToKeep: 3, Detrend: ExponentialDetrend})
	require.NoError(t, model.Fit(timeseries.New(generate(40, growth))))

	out, err := model.Predict(5)
	require.NoError(t, err)
	for i, v := range out.Column(0) {
		want := growth(float64(40 + i))
		assert.InDelta(t, want, v, 1e-6*want)
	}

	err = model.Fit(timeseries.New([]float64{1, 0, 2, 3}))
	assert.ErrorIs(t, err, forecasting.ErrConfiguration)
}

func TestFFTValidation(t *testing.T) {
	assert.ErrorIs(t, New(DefaultConfig()).Fit(timeseries.New([]float64{1})), forecasting.ErrConfiguration)

	bad := New(Config{Detrend: PolynomialDetrend, TrendDegree: 5})
	assert.ErrorIs(t, bad.Fit(timeseries.New([]float64{1, 2, 3})), forecasting.ErrConfiguration)

	_, err := New(DefaultConfig()).Predict(1)
	assert.ErrorIs(t, err, forecasting.ErrNotFitted)
	assert.Equal(t, "fft(10,none)", New(DefaultConfig()).Name())
}

func TestKeepStrongest(t *testing.T) {
	coeffs := []complex128{1, 5i, -3, 0.5}
	keepStrongest(coeffs, 2)
	assert.Equal(t, []complex128{0, 5i, -3, 0}, coeffs)

	untouched := []complex128{1, 2}
	keepStrongest(untouched, 0)
	assert.Equal(t, []complex128{1, 2}, untouched)
}

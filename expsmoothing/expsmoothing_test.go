package expsmoothing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

var _ forecasting.Model = (*Model)(nil)

func periodic(pattern []float64, n int, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + pattern[i%len(pattern)]
	}
	return out
}

func TestHoltLinearTrend(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 2*float64(i) + 1
	}

	model := New(Config{Trend: AdditiveTrend, Alpha: 0.5, Beta: 0.5})
	require.NoError(t, model.Fit(timeseries.New(values)))
	assert.Equal(t, Params{Alpha: 0.5, Beta: 0.5, Phi: 1}, model.Params)
	assert.Zero(t, model.SSE)

	out, err := model.Predict(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{41, 43, 45}, out.Column(0))
}

func TestDampedTrendFlattens(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i)
	}

	model := New(Config{Trend: DampedTrend, Alpha: 0.5, Beta: 0.5, Phi: 0.5})
	require.NoError(t, model.Fit(timeseries.New(values)))

	out, err := model.Predict(4)
	require.NoError(t, err)
	f := out.Column(0)
	for h := 1; h < len(f); h++ {
		assert.Greater(t, f[h], f[h-1])
		assert.Less(t, f[h], 19+float64(h+1))
	}
	assert.InDelta(t, 0.5*(f[1]-f[0]), f[2]-f[1], 1e-9)
}

func TestAdditiveSeasonality(t *testing.T) {
	pattern := []float64{1, 5, 3, 7}
	values := periodic(pattern, 24, 10)

	model := New(Config{Seasonal: AdditiveSeasonality, Period: 4})
	require.NoError(t, model.Fit(timeseries.New(values)))
	assert.InDelta(t, 0, model.SSE, 1e-18)

	out, err := model.Predict(6)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{11, 15, 13, 17, 11, 15}, out.Column(0), 1e-9)
}

func TestMultiplicativeSeasonality(t *testing.T) {
	values := periodic([]float64{0.5, 1, 1.5, 1}, 32, 0)
	for i := range values {
		values[i] *= 100
	}

	model := New(Config{Seasonal: MultiplicativeSeasonality, Period: 4})
	require.NoError(t, model.Fit(timeseries.New(values)))

	out, err := model.Predict(4)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{50, 100, 150, 100}, out.Column(0), 1e-6)

	values[3] = 0
	err = model.Fit(timeseries.New(values))
	assert.ErrorIs(t, err, forecasting.ErrConfiguration)
}

func TestGridSearchPrefersLowerSSE(t *testing.T) {
	values := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17}

	searched := New(Config{Trend: AdditiveTrend})
	require.NoError(t, searched.Fit(timeseries.New(values)))

	fixed := New(Config{Trend: AdditiveTrend, Alpha: 0.99, Beta: 0.5})
	require.NoError(t, fixed.Fit(timeseries.New(values)))

	assert.LessOrEqual(t, searched.SSE, fixed.SSE)
	assert.Contains(t, smoothingGrid, searched.Params.Alpha)
	assert.Contains(t, slowGrid, searched.Params.Beta)
	assert.Zero(t, searched.Params.Gamma)
}

func TestConfigValidation(t *testing.T) {
	short := timeseries.New([]float64{1, 2, 3, 4, 5})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"period too small", Config{Seasonal: AdditiveSeasonality, Period: 1}},
		{"fewer than two seasons", Config{Seasonal: AdditiveSeasonality, Period: 4}},
		{"alpha above one", Config{Alpha: 1.5}},
		{"negative beta", Config{Trend: AdditiveTrend, Beta: -0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.cfg).Fit(short)
			assert.ErrorIs(t, err, forecasting.ErrConfiguration)
		})
	}

	_, err := New(DefaultConfig()).Predict(1)
	assert.ErrorIs(t, err, forecasting.ErrNotFitted)
}

func TestFitSimple(t *testing.T) {
	s, err := FitSimple([]float64{4, 8}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 6.0, s.Level)
	assert.Equal(t, 16.0, s.SSE)

	constant, err := FitSimple([]float64{3, 3, 3, 3}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, constant.Level)
	assert.Zero(t, constant.SSE)

	// A step change is tracked fastest by the largest alpha.
	step, err := FitSimple([]float64{0, 0, 0, 10, 10, 10, 10}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.99, step.Alpha)

	_, err = FitSimple(nil, 0)
	assert.ErrorIs(t, err, forecasting.ErrConfiguration)
}

func TestName(t *testing.T) {
	assert.Equal(t, "exponential-smoothing(additive,additive)", New(DefaultConfig()).Name())
	assert.Equal(t, "exponential-smoothing(damped,none)", New(Config{Trend: DampedTrend}).Name())
}

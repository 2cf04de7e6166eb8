package theta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

var _ forecasting.Model = (*Model)(nil)

func linear(n int) *timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = 10 + float64(i)
	}
	return timeseries.New(values)
}

func TestThetaDrift(t *testing.T) {
	model := New(DefaultConfig())
	require.NoError(t, model.Fit(linear(30)))

	assert.Nil(t, model.Season)
	assert.InDelta(t, 0.5, model.Drift, 1e-9)

	out, err := model.Predict(5)
	require.NoError(t, err)
	f := out.Column(0)
	for h := 1; h < len(f); h++ {
		assert.InDelta(t, 0.5, f[h]-f[h-1], 1e-9)
	}
}

func TestThetaOneIsSimpleSmoothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theta = 1
	cfg.Alpha = 0.5
	model := New(cfg)
	require.NoError(t, model.Fit(timeseries.New([]float64{4, 8, 4, 8})))

	out, err := model.Predict(3)
	require.NoError(t, err)
	// Levels: 4 -> 6 -> 5 -> 6.5
	assert.Equal(t, []float64{6.5, 6.5, 6.5}, out.Column(0))
	assert.Zero(t, model.Drift)
}

func TestThetaSeasonal(t *testing.T) {
	pattern := []float64{110, 120, 130, 120}
	values := make([]float64, 48)
	for i := range values {
		values[i] = pattern[i%4]
	}
	jan1 := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	series, err := timeseries.NewWithTimestamps(timeseries.DailyFrom(jan1, 48).Times(), values)
	require.NoError(t, err)

	model := New(DefaultConfig())
	require.NoError(t, model.Fit(series))
	require.Len(t, model.Season, 4)

	out, err := model.Predict(6)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{110, 120, 130, 120, 110, 120}, out.Column(0), 1e-6)
	assert.Equal(t, jan1.AddDate(0, 0, 48), out.StartTime())
}

func TestThetaSeasonalityDisabled(t *testing.T) {
	values := make([]float64, 48)
	for i := range values {
		values[i] = []float64{110, 120, 130, 120}[i%4]
	}

	cfg := DefaultConfig()
	cfg.SeasonalityPeriod = 1
	model := New(cfg)
	require.NoError(t, model.Fit(timeseries.New(values)))
	assert.Nil(t, model.Season)
}

func TestThetaValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theta = 0
	assert.ErrorIs(t, New(cfg).Fit(linear(10)), forecasting.ErrConfiguration)
	assert.ErrorIs(t, New(DefaultConfig()).Fit(linear(2)), forecasting.ErrConfiguration)

	_, err := New(DefaultConfig()).Predict(1)
	assert.ErrorIs(t, err, forecasting.ErrNotFitted)
	assert.Equal(t, "theta(2)", New(DefaultConfig()).Name())
}

package neural

import (
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

var (
	_ forecasting.Model = (*Model)(nil)

	jan1 = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
)

func ramp(n int) *timeseries.Series {
	return timeseries.Linear(timeseries.DailyFrom(jan1, n), 0, float64(n-1))
}

func config(inputLength, outputLength int) *Config {
	cfg := DefaultConfig()
	cfg.InputLength = inputLength
	cfg.OutputLength = outputLength
	cfg.Epochs = 2
	cfg.ModelName = "test-model"
	return cfg
}

func TestPredictBeforeFit(t *testing.T) {
	_, err := New(config(4, 1)).Predict(1)
	assert.ErrorIs(t, err, forecasting.ErrNotFitted)
}

func TestUseFullOutputLength(t *testing.T) {
	series := ramp(100)
	m := New(config(12, 3))
	require.NoError(t, m.Fit(series))

	for _, n := range []int{7, 2, 4} {
		pred, err := m.Predict(n, forecasting.UseFullOutputLength(true))
		require.NoError(t, err)
		assert.Equal(t, n, pred.Len())
		assert.Equal(t, 1, pred.Width())
		assert.Equal(t, jan1.AddDate(0, 0, 100), pred.StartTime())
	}

	// Without full output length a long horizon is rolled one row at a time.
	pred, err := m.Predict(5)
	require.NoError(t, err)
	assert.Equal(t, 5, pred.Len())

	pred, err = m.Predict(2)
	require.NoError(t, err)
	assert.Equal(t, 2, pred.Len())
}

func TestRolledForecastContinuesFirstCall(t *testing.T) {
	m := New(config(6, 3))
	require.NoError(t, m.Fit(ramp(60)))

	short, err := m.Predict(3, forecasting.UseFullOutputLength(true))
	require.NoError(t, err)
	long, err := m.Predict(9, forecasting.UseFullOutputLength(true))
	require.NoError(t, err)
	assert.Equal(t, short.Column(0), long.Column(0)[:3])

	// The first row of a step-by-step forecast is the first row of a call.
	stepped, err := m.Predict(4)
	require.NoError(t, err)
	assert.Equal(t, short.At(0, 0), stepped.At(0, 0))
}

func TestMultivariate(t *testing.T) {
	series := ramp(100)
	multi, err := series.Stack(series.Map(func(v float64) float64 { return 2 * v }))
	require.NoError(t, err)

	// missing targets
	assert.ErrorIs(t, New(config(4, 1)).Fit(multi), forecasting.ErrMissingTargets)

	// input size 1 cannot read two components
	assert.ErrorIs(t, New(config(4, 1), timeseries.Index(0)).Fit(multi), forecasting.ErrConfiguration)

	cfg := config(4, 3)
	cfg.InputSize = 2
	m := New(cfg, timeseries.Index(0))
	require.NoError(t, m.Fit(multi))

	pred, err := m.Predict(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, pred.Components())

	// The second component is not forecast, so it cannot be fed back.
	_, err = m.Predict(4, forecasting.UseFullOutputLength(true))
	assert.ErrorIs(t, err, forecasting.ErrConfiguration)
	_, err = m.Predict(4)
	assert.ErrorIs(t, err, forecasting.ErrConfiguration)
}

func TestBacktestTargetWidths(t *testing.T) {
	series := timeseries.Linear(timeseries.DailyFrom(jan1, 50), 0, 1)
	multi, err := series.Stack(series)
	require.NoError(t, err)
	multi, err = multi.Rename("0", "1")
	require.NoError(t, err)

	tests := []struct {
		outputSize int
		horizon    int
		targets    []string
	}{
		{1, 1, []string{"0"}},
		{1, 3, []string{"1"}},
		{2, 3, []string{"0", "1"}},
	}
	for _, tt := range tests {
		cfg := config(12, 3)
		cfg.Epochs = 1
		cfg.InputSize = 2
		cfg.OutputSize = tt.outputSize
		m := New(cfg, timeseries.Names(tt.targets...)...)

		target, err := multi.Select(timeseries.Names(tt.targets...)...)
		require.NoError(t, err)

		bt := forecasting.DefaultConfig()
		bt.Start = time.Date(2000, 1, 25, 0, 0, 0, 0, time.UTC)
		bt.Horizon = tt.horizon
		bt.UseFullOutputLength = true

		result, err := forecasting.Backtest(m, multi, target, bt)
		require.NoError(t, err, tt.targets)
		assert.Equal(t, len(tt.targets), result.Forecast.Width(), tt.targets)
		assert.Equal(t, tt.targets, result.Forecast.Components())
	}
}

func TestTooShort(t *testing.T) {
	err := New(config(12, 3)).Fit(ramp(14))
	assert.ErrorIs(t, err, forecasting.ErrConfiguration)
}

func TestValidation(t *testing.T) {
	series := ramp(100)
	train, err := series.Slice(0, 60)
	require.NoError(t, err)
	val, err := series.Slice(60, 100)
	require.NoError(t, err)

	cfg := config(12, 1)
	cfg.Epochs = 5
	m := New(cfg)
	require.NoError(t, m.Fit(train, forecasting.WithValidation(val)))
	assert.GreaterOrEqual(t, m.BestEpoch, 0)
	assert.Less(t, m.BestEpoch, 5)
	assert.False(t, math.IsNaN(m.ValidationLoss))

	pred, err := m.Predict(6, forecasting.UseFullOutputLength(true))
	require.NoError(t, err)
	assert.Equal(t, 6, pred.Len())

	short, err := series.Slice(90, 100)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Fit(train, forecasting.WithValidation(short)), forecasting.ErrConfiguration)
}

func TestDeterministicSeed(t *testing.T) {
	series := ramp(100)

	a := New(config(8, 2))
	require.NoError(t, a.Fit(series))
	b := New(config(8, 2))
	require.NoError(t, b.Fit(series))

	predA, err := a.Predict(6, forecasting.UseFullOutputLength(true))
	require.NoError(t, err)
	predB, err := b.Predict(6, forecasting.UseFullOutputLength(true))
	require.NoError(t, err)
	assert.True(t, predA.Equal(predB))
}

func TestCheckpointRoundTrip(t *testing.T) {
	series := ramp(100)
	dir := t.TempDir()

	cfg := config(8, 2)
	cfg.Epochs = 4
	cfg.CheckpointDir = dir
	cfg.ModelName = "unittest-model"
	m := New(cfg)
	require.NoError(t, m.Fit(series))
	require.NoError(t, m.SaveCheckpoint())

	loaded, err := LoadFromCheckpoint(dir, "unittest-model")
	require.NoError(t, err)
	assert.Equal(t, m.Name(), loaded.Name())

	pred1, err := m.Predict(6, forecasting.UseFullOutputLength(true))
	require.NoError(t, err)
	pred2, err := loaded.Predict(6, forecasting.UseFullOutputLength(true))
	require.NoError(t, err)
	assert.Equal(t, pred1.Values(), pred2.Values())
	assert.True(t, pred1.Equal(pred2))

	// A differently seeded model does not.
	other := config(8, 2)
	other.Epochs = 4
	other.Seed = 42
	m3 := New(other)
	require.NoError(t, m3.Fit(series))
	pred3, err := m3.Predict(6, forecasting.UseFullOutputLength(true))
	require.NoError(t, err)
	assert.NotEqual(t, pred1.Values(), pred3.Values())

	pred4, err := m3.Predict(1)
	require.NoError(t, err)
	assert.Equal(t, 1, pred4.Len())
}

func TestSharedConfig(t *testing.T) {
	cfg := config(4, 1)
	cfg.ModelName = ""
	cfg.CheckpointDir = t.TempDir()

	a := New(cfg)
	b := New(cfg)
	assert.Empty(t, cfg.ModelName)
	assert.NotEmpty(t, a.Config.ModelName)
	assert.NotEqual(t, a.Config.ModelName, b.Config.ModelName)

	require.NoError(t, a.Fit(ramp(30)))
	require.NoError(t, b.Fit(ramp(30)))
	require.NoError(t, a.SaveCheckpoint())
	require.NoError(t, b.SaveCheckpoint())
	entries, err := os.ReadDir(cfg.CheckpointDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	a.Config.Epochs = 9
	assert.Equal(t, 2, b.Config.Epochs)
	assert.Equal(t, 2, cfg.Epochs)
}

func TestLoadedModelRefits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m", CheckpointFile)
	m := New(config(4, 1))
	require.NoError(t, m.Fit(ramp(30)))
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Fit(ramp(40)))
	pred, err := loaded.Predict(2)
	require.NoError(t, err)
	assert.Equal(t, jan1.AddDate(0, 0, 40), pred.StartTime())
}

func TestCorruptCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), CheckpointFile)
	m := New(config(4, 1))
	require.Error(t, m.Save(path), "unfitted model saved")
	require.NoError(t, m.Fit(ramp(30)))
	require.NoError(t, m.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Load(path)
	assert.ErrorIs(t, err, ErrCorruptCheckpoint)

	require.NoError(t, os.WriteFile(path, []byte{1, 2}, 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrCorruptCheckpoint)

	_, err = LoadFromCheckpoint(t.TempDir(), "missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

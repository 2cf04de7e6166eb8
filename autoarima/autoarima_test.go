package autoarima

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/metrics"
	"github.com/sartorproj/goforecast/timeseries"
)

var _ forecasting.Model = (*Model)(nil)

func ar1Series(n int, phi float64) *timeseries.Series {
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = phi*(values[i-1]-100) + 100 + float64(i%7-3)/3
	}
	return timeseries.New(values)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 5, config.MaxP)
	assert.Equal(t, 2, config.MaxD)
	assert.Equal(t, 5, config.MaxQ)
	assert.Equal(t, "aic", config.Criterion)
	assert.True(t, config.Stepwise)
	assert.NotNil(t, config.Logger)
}

func TestAutoARIMAStationary(t *testing.T) {
	config := DefaultConfig()
	config.MaxP = 3
	config.MaxQ = 3

	result, err := AutoARIMA(ar1Series(200, 0.6), config)
	require.NoError(t, err)
	require.NotNil(t, result.Model)
	assert.False(t, result.IsSeasonal)
	assert.LessOrEqual(t, result.P, 3)
	assert.LessOrEqual(t, result.Q, 3)
	assert.Positive(t, result.ModelsEvaluated)
	assert.Equal(t, result.AIC, result.Criterion)
}

func TestAutoARIMANonStationary(t *testing.T) {
	n := 200
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = values[i-1] + 0.5 + float64(i%5-2)/2
	}

	config := DefaultConfig()
	config.MaxP = 2
	config.MaxQ = 2

	result, err := AutoARIMA(timeseries.New(values), config)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.D, 1)
}

func TestAutoARIMASeasonal(t *testing.T) {
	n := 120
	values := make([]float64, n)
	for i := range values {
		seasonal := 15 * math.Sin(2*math.Pi*float64(i)/12)
		values[i] = 100 + float64(i)*0.3 + seasonal + float64(i%5-2)/3
	}

	config := DefaultConfig()
	config.Seasonal = true
	config.SeasonalM = 12
	config.MaxP = 2
	config.MaxQ = 2
	config.MaxSP = 1
	config.MaxSQ = 1

	result, err := AutoARIMA(timeseries.New(values), config)
	require.NoError(t, err)
	assert.True(t, result.IsSeasonal)
	require.NotNil(t, result.SeasonalModel)
	assert.Equal(t, 12, result.M)
	assert.LessOrEqual(t, result.SP, 1)
	assert.LessOrEqual(t, result.SQ, 1)
}

func TestAutoARIMAPredict(t *testing.T) {
	n := 100
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + float64(i)/10 + float64(i%5-2)
	}

	config := DefaultConfig()
	config.MaxP = 2
	config.MaxQ = 2

	result, err := AutoARIMA(timeseries.New(values), config)
	require.NoError(t, err)

	forecasts, err := result.Predict(5)
	require.NoError(t, err)
	require.Len(t, forecasts, 5)
	for _, f := range forecasts {
		assert.False(t, math.IsNaN(f) || math.IsInf(f, 0))
	}
	assert.NotEmpty(t, result.Residuals())
	assert.Contains(t, result.Name(), "arima(")
}

func TestAutoARIMACriteria(t *testing.T) {
	series := ar1Series(100, 0.4)

	for _, criterion := range []string{"aic", "aicc", "bic"} {
		config := DefaultConfig()
		config.Criterion = criterion
		config.MaxP = 2
		config.MaxQ = 2

		result, err := AutoARIMA(series, config)
		require.NoError(t, err, criterion)

		want := map[string]float64{"aic": result.AIC, "aicc": result.AICc, "bic": result.BIC}[criterion]
		assert.Equal(t, want, result.Criterion, criterion)
	}

	config := DefaultConfig()
	config.Criterion = "hqic"
	_, err := AutoARIMA(series, config)
	assert.ErrorIs(t, err, forecasting.ErrConfiguration)
}

func TestAutoARIMAExhaustiveSearch(t *testing.T) {
	series := ar1Series(100, 0.5)

	config := DefaultConfig()
	config.Stepwise = false
	config.MaxP = 2
	config.MaxQ = 2
	config.Parallelism = 3

	result, err := AutoARIMA(series, config)
	require.NoError(t, err)
	assert.Equal(t, 9, result.ModelsEvaluated)

	// The exhaustive search never does worse than stepwise on the same grid.
	config.Stepwise = true
	stepwise, err := AutoARIMA(series, config)
	require.NoError(t, err)
	assert.Equal(t, result.D, stepwise.D)
	assert.LessOrEqual(t, result.Criterion, stepwise.Criterion)

	// Scheduling does not change the outcome.
	config.Stepwise = false
	config.Parallelism = 1
	sequential, err := AutoARIMA(series, config)
	require.NoError(t, err)
	assert.Equal(t, result.P, sequential.P)
	assert.Equal(t, result.Q, sequential.Q)
	assert.Equal(t, result.Criterion, sequential.Criterion)
}

func TestAutoARIMAADFTest(t *testing.T) {
	n := 150
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = values[i-1] + 0.5 + float64(i%5-2)/5
	}

	config := DefaultConfig()
	config.StationTest = "adf"
	config.MaxP = 2
	config.MaxQ = 2

	result, err := AutoARIMA(timeseries.New(values), config)
	require.NoError(t, err)
	assert.LessOrEqual(t, result.D, 2)
}

func TestDetermineDifferencing(t *testing.T) {
	trend := make([]float64, 100)
	for i := range trend {
		trend[i] = float64(i)*0.5 + float64(i%5-2)/5
	}

	assert.GreaterOrEqual(t, determineDifferencing(trend, 2, "kpss"), 1)
	assert.Equal(t, 0, determineDifferencing(trend, 0, "kpss"))
}

func TestDetermineSeasonalDifferencing(t *testing.T) {
	values := make([]float64, 120)
	for i := range values {
		values[i] = 100 + 20*math.Sin(2*math.Pi*float64(i)/12)
	}

	assert.Equal(t, 1, determineSeasonalDifferencing(values, 1, 12))
	assert.Equal(t, 0, determineSeasonalDifferencing(values, 0, 12))
}

func TestAutoARIMANilConfig(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 100 + float64(i%5-2)
	}

	result, err := AutoARIMA(timeseries.New(values), nil)
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestAutoARIMARejectsBadInput(t *testing.T) {
	multi, err := ar1Series(50, 0.5).Stack(ar1Series(50, 0.2))
	require.NoError(t, err)
	_, err = AutoARIMA(multi, nil)
	assert.Error(t, err)

	config := DefaultConfig()
	config.Seasonal = true
	_, err = AutoARIMA(ar1Series(50, 0.5), config)
	assert.ErrorIs(t, err, forecasting.ErrConfiguration)

	_, err = Search([]float64{1, 2, 3}, nil)
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestAutoARIMALogsSelection(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	config := DefaultConfig()
	config.MaxP = 1
	config.MaxQ = 1
	config.Logger = zap.New(core)

	_, err := AutoARIMA(ar1Series(100, 0.5), config)
	require.NoError(t, err)

	selected := logs.FilterMessage("model selected").All()
	require.Len(t, selected, 1)
	assert.Contains(t, selected[0].ContextMap(), "model")
	assert.NotEmpty(t, logs.FilterMessage("candidate fitted").All())

	core, logs = observer.New(zapcore.InfoLevel)
	config.Logger = zap.New(core)
	config.Trace = true
	_, err = AutoARIMA(ar1Series(100, 0.5), config)
	require.NoError(t, err)
	assert.NotEmpty(t, logs.FilterMessage("candidate fitted").All())
}

func TestModelBacktest(t *testing.T) {
	jan1 := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	series := timeseries.Linear(timeseries.DailyFrom(jan1, 60), 0, 59)

	config := DefaultConfig()
	config.MaxP = 1
	config.MaxQ = 1
	model := New(config)

	_, err := model.Predict(1)
	assert.ErrorIs(t, err, forecasting.ErrNotFitted)

	cfg := forecasting.DefaultConfig()
	cfg.StartFraction = 0.8
	cfg.Horizon = 2
	cfg.Metrics = map[string]metrics.Func{"mae": metrics.MAE}

	result, err := forecasting.Backtest(model, series, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "auto-arima", result.Model)
	assert.NotNil(t, model.Result())
	assert.Equal(t, 12, result.Forecast.Len())
}

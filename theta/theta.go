package theta

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/expsmoothing"
	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// Config configures a Model.
type Config struct {
	// Theta weights the long-run trend line; 2 is the classical method.
	Theta float64
	// SeasonalityPeriod is the period tested for seasonality. 0 searches
	// the ACF for one; 1 disables deseasonalisation.
	SeasonalityPeriod int
	// Alpha fixes the smoothing level; 0 estimates it.
	Alpha float64
	// Significance is the level of the seasonality test.
	Significance float64
}

// DefaultConfig returns the classical Theta method with automatic
// seasonality detection.
func DefaultConfig() Config {
	return Config{Theta: 2, Significance: 0.05}
}

// Model is a Theta forecaster.
type Model struct {
	forecasting.Univariate
	Config Config

	// Season is the multiplicative seasonal pattern applied to forecasts,
	// nil when the series was not deseasonalised.
	Season []float64
	Alpha  float64
	Drift  float64

	level float64
	n     int
}

// New creates a model.
func New(cfg Config, targets ...timeseries.ComponentID) *Model {
	m := &Model{Config: cfg}
	m.SetTargets(targets...)
	return m
}

// Name reports the model with its theta.
func (m *Model) Name() string { return fmt.Sprintf("theta(%g)", m.Config.Theta) }

// Fit estimates the seasonal pattern, the smoothing level and the drift.
func (m *Model) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	y, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	if m.Config.Theta == 0 {
		return fmt.Errorf("theta must be non-zero: %w", forecasting.ErrConfiguration)
	}
	if len(y) < 3 {
		return fmt.Errorf("theta needs at least 3 values, got %d: %w", len(y), forecasting.ErrConfiguration)
	}

	m.Season = m.seasonality(y)
	adjusted := y
	if m.Season != nil {
		adjusted = make([]float64, len(y))
		for i, v := range y {
			adjusted[i] = v / m.Season[i%len(m.Season)]
		}
	}

	ses, err := expsmoothing.FitSimple(adjusted, m.Config.Alpha)
	if err != nil {
		return err
	}

	t := make([]float64, len(adjusted))
	floats.Span(t, 0, float64(len(t)-1))
	_, slope := stat.LinearRegression(t, adjusted, nil, false)

	m.Alpha = ses.Alpha
	m.level = ses.Level
	m.Drift = slope * (m.Config.Theta - 1) / m.Config.Theta
	m.n = len(y)
	m.MarkFitted()
	return nil
}

// seasonality returns the multiplicative seasonal pattern of y, rotated so
// that index i%period matches y[i], or nil.
func (m *Model) seasonality(y []float64) []float64 {
	period := m.Config.SeasonalityPeriod
	if period == 1 || floats.Min(y) <= 0 {
		return nil
	}
	alpha := m.Config.Significance
	if alpha <= 0 {
		alpha = 0.05
	}
	seasonal, found := stats.CheckSeasonality(y, period, len(y)/2, alpha)
	if !seasonal || found < 2 {
		return nil
	}
	decomp := stats.Decompose(y, found, stats.Multiplicative)
	if decomp == nil {
		return nil
	}
	for _, s := range decomp.Pattern {
		if s <= 0 || math.IsNaN(s) {
			return nil
		}
	}
	return decomp.Pattern
}

// Predict forecasts n steps after the training series.
func (m *Model) Predict(n int, _ ...forecasting.PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	// The drift starts where the smoothed level sits on the trend line.
	offset := (1 - math.Pow(1-m.Alpha, float64(m.n))) / m.Alpha
	out := make([]float64, n)
	for i := range out {
		out[i] = m.level + m.Drift*(float64(i)+offset)
		if m.Season != nil {
			out[i] *= m.Season[(m.n+i)%len(m.Season)]
		}
	}
	return m.Forecast(out)
}

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

// TrendMode selects the shape of the theta=0 line.
type TrendMode int

const (
	LinearTrend TrendMode = iota
	// ExponentialTrend fits the line to the logarithm of the series.
	ExponentialTrend
)

func (t TrendMode) String() string {
	if t == ExponentialTrend {
		return "exponential"
	}
	return "linear"
}

// ModelMode selects how the theta line and the trend line are combined.
type ModelMode int

const (
	AdditiveModel ModelMode = iota
	MultiplicativeModel
)

func (m ModelMode) String() string {
	if m == MultiplicativeModel {
		return "multiplicative"
	}
	return "additive"
}

// FourThetaConfig configures a FourTheta model.
type FourThetaConfig struct {
	// Theta weights the trend line. Unlike the classical method, 0 is
	// allowed and forecasts the trend line alone.
	Theta float64
	// SeasonalityPeriod is the period tested for seasonality. 0 searches
	// the ACF for one; 1 disables deseasonalisation.
	SeasonalityPeriod int
	Season            expsmoothing.Seasonality
	Model             ModelMode
	Trend             TrendMode
	// Normalize divides the series by its mean before fitting.
	Normalize bool
	// Alpha fixes the smoothing level; 0 estimates it.
	Alpha        float64
	Significance float64
}

// DefaultFourThetaConfig returns theta 2 with multiplicative
// seasonality, an additive model, a linear trend and normalisation.
func DefaultFourThetaConfig() FourThetaConfig {
	return FourThetaConfig{
		Theta:        2,
		Season:       expsmoothing.MultiplicativeSeasonality,
		Model:        AdditiveModel,
		Trend:        LinearTrend,
		Normalize:    true,
		Significance: 0.05,
	}
}

func (c FourThetaConfig) validate() error {
	if c.Season < expsmoothing.NoSeasonality || c.Season > expsmoothing.MultiplicativeSeasonality {
		return fmt.Errorf("season mode %d: %w", c.Season, forecasting.ErrConfiguration)
	}
	if c.Model != AdditiveModel && c.Model != MultiplicativeModel {
		return fmt.Errorf("model mode %d: %w", c.Model, forecasting.ErrConfiguration)
	}
	if c.Trend != LinearTrend && c.Trend != ExponentialTrend {
		return fmt.Errorf("trend mode %d: %w", c.Trend, forecasting.ErrConfiguration)
	}
	if c.SeasonalityPeriod < 0 {
		return fmt.Errorf("seasonality period %d: %w", c.SeasonalityPeriod, forecasting.ErrConfiguration)
	}
	return nil
}

// FourTheta generalises the Theta method: the trend line may be linear or
// exponential, the theta line may combine with it additively or
// multiplicatively, and the seasonal pattern may be additive or
// multiplicative.
type FourTheta struct {
	forecasting.Univariate
	Config FourThetaConfig

	// Modes in effect after Fit. Series with non-positive values fall back
	// to an additive model with a linear trend and additive seasonality.
	Season expsmoothing.Seasonality
	Model  ModelMode
	Trend  TrendMode

	// Pattern is the seasonal pattern on the normalised scale, nil when
	// the series was not deseasonalised.
	Pattern   []float64
	Alpha     float64
	Intercept float64
	Slope     float64

	scale float64
	level float64
	n     int
}

// NewFourTheta creates a FourTheta model.
func NewFourTheta(cfg FourThetaConfig, targets ...timeseries.ComponentID) *FourTheta {
	m := &FourTheta{Config: cfg}
	m.SetTargets(targets...)
	return m
}

// Name describes the model and its configured modes.
func (m *FourTheta) Name() string {
	return fmt.Sprintf("four-theta(%g,%s,%s,%s)", m.Config.Theta, m.Config.Model, m.Config.Trend, m.Config.Season)
}

// Fit normalises and deseasonalises the target, fits the trend line and
// smooths the theta line.
func (m *FourTheta) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	y, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	if err := m.Config.validate(); err != nil {
		return err
	}
	if len(y) < 3 {
		return fmt.Errorf("four theta needs at least 3 values, got %d: %w", len(y), forecasting.ErrConfiguration)
	}

	m.scale = 1
	if mean := stat.Mean(y, nil); m.Config.Normalize && mean != 0 {
		m.scale = mean
	}
	values := make([]float64, len(y))
	for i, v := range y {
		values[i] = v / m.scale
	}

	m.Season, m.Model, m.Trend = m.Config.Season, m.Config.Model, m.Config.Trend
	if floats.Min(values) <= 0 {
		m.Model, m.Trend = AdditiveModel, LinearTrend
		if m.Season == expsmoothing.MultiplicativeSeasonality {
			m.Season = expsmoothing.AdditiveSeasonality
		}
	}

	m.Pattern = m.seasonality(values)
	adjusted := values
	if m.Pattern != nil {
		adjusted = make([]float64, len(values))
		for i, v := range values {
			adjusted[i] = m.deseason(v, i)
		}
	}
	if floats.Min(adjusted) <= 0 {
		m.Model, m.Trend = AdditiveModel, LinearTrend
	}

	t := make([]float64, len(adjusted))
	floats.Span(t, 0, float64(len(t)-1))
	line := adjusted
	if m.Trend == ExponentialTrend {
		line = make([]float64, len(adjusted))
		for i, v := range adjusted {
			line[i] = math.Log(v)
		}
	}
	m.Intercept, m.Slope = stat.LinearRegression(t, line, nil, false)

	trend := make([]float64, len(adjusted))
	for i := range trend {
		trend[i] = m.drift(i)
	}
	if m.Model == MultiplicativeModel && floats.Min(trend) <= 0 {
		m.Model = AdditiveModel
	}

	theta := m.Config.Theta
	thetaLine := make([]float64, len(adjusted))
	for i, v := range adjusted {
		if m.Model == MultiplicativeModel {
			thetaLine[i] = math.Pow(v, theta) * math.Pow(trend[i], 1-theta)
		} else {
			thetaLine[i] = theta*v + (1-theta)*trend[i]
		}
	}

	ses, err := expsmoothing.FitSimple(thetaLine, m.Config.Alpha)
	if err != nil {
		return err
	}
	m.Alpha = ses.Alpha
	m.level = ses.Level
	m.n = len(y)
	m.MarkFitted()
	return nil
}

// seasonality returns the seasonal pattern of values in the effective
// season mode, rotated so that index i%period matches values[i], or nil.
func (m *FourTheta) seasonality(values []float64) []float64 {
	if m.Season == expsmoothing.NoSeasonality || m.Config.SeasonalityPeriod == 1 {
		return nil
	}
	alpha := m.Config.Significance
	if alpha <= 0 {
		alpha = 0.05
	}
	seasonal, found := stats.CheckSeasonality(values, m.Config.SeasonalityPeriod, len(values)/2, alpha)
	if !seasonal || found < 2 {
		return nil
	}
	mode := stats.Additive
	if m.Season == expsmoothing.MultiplicativeSeasonality {
		mode = stats.Multiplicative
	}
	decomp := stats.Decompose(values, found, mode)
	if decomp == nil {
		return nil
	}
	for _, s := range decomp.Pattern {
		if math.IsNaN(s) || (mode == stats.Multiplicative && s <= 0) {
			return nil
		}
	}
	return decomp.Pattern
}

func (m *FourTheta) deseason(v float64, i int) float64 {
	s := m.Pattern[i%len(m.Pattern)]
	if m.Season == expsmoothing.MultiplicativeSeasonality {
		return v / s
	}
	return v - s
}

func (m *FourTheta) reseason(v float64, i int) float64 {
	s := m.Pattern[i%len(m.Pattern)]
	if m.Season == expsmoothing.MultiplicativeSeasonality {
		return v * s
	}
	return v + s
}

// drift evaluates the trend line at position i.
func (m *FourTheta) drift(i int) float64 {
	v := m.Intercept + m.Slope*float64(i)
	if m.Trend == ExponentialTrend {
		return math.Exp(v)
	}
	return v
}

// Predict forecasts n steps after the training series.
func (m *FourTheta) Predict(n int, _ ...forecasting.PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	wses := 0.0
	if m.Config.Theta != 0 {
		wses = 1 / m.Config.Theta
	}
	wdrift := 1 - wses

	out := make([]float64, n)
	for i := range out {
		pos := m.n + i
		trend := m.drift(pos)
		var v float64
		if m.Model == MultiplicativeModel {
			v = math.Pow(m.level, wses) * math.Pow(trend, wdrift)
		} else {
			v = wses*m.level + wdrift*trend
		}
		if m.Pattern != nil {
			v = m.reseason(v, pos)
		}
		out[i] = v * m.scale
	}
	return m.Forecast(out)
}

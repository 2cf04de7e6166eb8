package expsmoothing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

// Trend selects the trend component.
type Trend int

const (
	NoTrend Trend = iota
	AdditiveTrend
	// DampedTrend is an additive trend whose increments shrink by Phi per step.
	DampedTrend
)

func (t Trend) String() string {
	switch t {
	case AdditiveTrend:
		return "additive"
	case DampedTrend:
		return "damped"
	default:
		return "none"
	}
}

// Seasonality selects the seasonal component.
type Seasonality int

const (
	NoSeasonality Seasonality = iota
	AdditiveSeasonality
	MultiplicativeSeasonality
)

func (s Seasonality) String() string {
	switch s {
	case AdditiveSeasonality:
		return "additive"
	case MultiplicativeSeasonality:
		return "multiplicative"
	default:
		return "none"
	}
}

// Config configures a Model. Alpha, Beta, Gamma and Phi are fixed when
// positive and searched when zero.
type Config struct {
	Trend    Trend
	Seasonal Seasonality
	Period   int

	Alpha float64 // level
	Beta  float64 // trend
	Gamma float64 // season
	Phi   float64 // damping
}

// DefaultConfig is an additive trend with additive yearly seasonality on
// monthly data.
func DefaultConfig() Config {
	return Config{Trend: AdditiveTrend, Seasonal: AdditiveSeasonality, Period: 12}
}

var (
	smoothingGrid = []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.99}
	slowGrid      = []float64{0.01, 0.05, 0.1, 0.2, 0.3, 0.5}
	dampingGrid   = []float64{0.8, 0.85, 0.9, 0.95, 0.98}
)

// Params are the smoothing parameters of one run.
type Params struct {
	Alpha, Beta, Gamma, Phi float64
}

// Model is a Holt-Winters exponential smoothing model.
type Model struct {
	forecasting.Univariate
	Config Config

	// Params holds the parameters used by the last fit.
	Params Params
	SSE    float64

	state state
}

type state struct {
	level  float64
	trend  float64
	season []float64
	n      int
}

// New creates a model.
func New(cfg Config, targets ...timeseries.ComponentID) *Model {
	m := &Model{Config: cfg}
	m.SetTargets(targets...)
	return m
}

// Name reports the trend and seasonality of the model.
func (m *Model) Name() string {
	return fmt.Sprintf("exponential-smoothing(%s,%s)", m.Config.Trend, m.Config.Seasonal)
}

func (c Config) validate(y []float64) error {
	if c.Seasonal != NoSeasonality {
		if c.Period < 2 {
			return fmt.Errorf("seasonal period %d: %w", c.Period, forecasting.ErrConfiguration)
		}
		if len(y) < 2*c.Period {
			return fmt.Errorf("need two seasons (%d values), got %d: %w",
				2*c.Period, len(y), forecasting.ErrConfiguration)
		}
	}
	if len(y) < 3 {
		return fmt.Errorf("need at least 3 values, got %d: %w", len(y), forecasting.ErrConfiguration)
	}
	if c.Seasonal == MultiplicativeSeasonality && floats.Min(y) <= 0 {
		return fmt.Errorf("multiplicative seasonality needs positive values: %w", forecasting.ErrConfiguration)
	}
	for _, p := range []float64{c.Alpha, c.Beta, c.Gamma, c.Phi} {
		if p < 0 || p > 1 {
			return fmt.Errorf("smoothing parameter %v outside [0, 1]: %w", p, forecasting.ErrConfiguration)
		}
	}
	return nil
}

// candidates expands the configured parameters into the search grid.
func (c Config) candidates() []Params {
	pick := func(fixed float64, grid []float64, used bool) []float64 {
		switch {
		case !used:
			return []float64{0}
		case fixed > 0:
			return []float64{fixed}
		default:
			return grid
		}
	}
	alphas := pick(c.Alpha, smoothingGrid, true)
	betas := pick(c.Beta, slowGrid, c.Trend != NoTrend)
	gammas := pick(c.Gamma, slowGrid, c.Seasonal != NoSeasonality)
	phis := []float64{1}
	if c.Trend == DampedTrend {
		phis = pick(c.Phi, dampingGrid, true)
	}

	var out []Params
	for _, a := range alphas {
		for _, b := range betas {
			for _, g := range gammas {
				for _, p := range phis {
					out = append(out, Params{Alpha: a, Beta: b, Gamma: g, Phi: p})
				}
			}
		}
	}
	return out
}

// Fit estimates the states on the target component of train.
func (m *Model) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	y, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	if err := m.Config.validate(y); err != nil {
		return err
	}

	best := math.Inf(1)
	for _, p := range m.Config.candidates() {
		st, sse := m.Config.run(y, p)
		if sse < best {
			best = sse
			m.Params, m.state = p, st
		}
	}
	if math.IsInf(best, 1) || math.IsNaN(best) {
		return fmt.Errorf("smoothing diverged: %w", forecasting.ErrConfiguration)
	}
	m.SSE = best
	m.MarkFitted()
	return nil
}

// initial derives starting states from the first values of y and returns
// the index the recursion starts at: 1 without seasonality, else one full
// season in.
func (c Config) initial(y []float64) (state, int) {
	st := state{}
	m := c.Period
	if c.Seasonal == NoSeasonality {
		st.level = y[0]
		if c.Trend != NoTrend && len(y) > 1 {
			st.trend = y[1] - y[0]
		}
		return st, 1
	}

	st.level = stat.Mean(y[:m], nil)
	if c.Trend != NoTrend {
		st.trend = (stat.Mean(y[m:2*m], nil) - st.level) / float64(m)
	}
	st.season = make([]float64, m)
	for i := range st.season {
		if c.Seasonal == MultiplicativeSeasonality {
			st.season[i] = y[i] / st.level
		} else {
			st.season[i] = y[i] - st.level
		}
	}
	return st, m
}

// run filters y with p and returns the final state and the one-step SSE.
func (c Config) run(y []float64, p Params) (state, float64) {
	st, start := c.initial(y)
	sse := 0.0
	for t := start; t < len(y); t++ {
		v := y[t]
		damped := p.Phi * st.trend
		base := st.level + damped

		var s, fitted float64
		switch c.Seasonal {
		case AdditiveSeasonality:
			s = st.season[t%c.Period]
			fitted = base + s
		case MultiplicativeSeasonality:
			s = st.season[t%c.Period]
			fitted = base * s
		default:
			fitted = base
		}
		e := v - fitted
		sse += e * e

		var level float64
		switch c.Seasonal {
		case AdditiveSeasonality:
			level = p.Alpha*(v-s) + (1-p.Alpha)*base
			st.season[t%c.Period] = p.Gamma*(v-level) + (1-p.Gamma)*s
		case MultiplicativeSeasonality:
			level = p.Alpha*(v/s) + (1-p.Alpha)*base
			if level != 0 {
				st.season[t%c.Period] = p.Gamma*(v/level) + (1-p.Gamma)*s
			}
		default:
			level = p.Alpha*v + (1-p.Alpha)*base
		}
		if c.Trend != NoTrend {
			st.trend = p.Beta*(level-st.level) + (1-p.Beta)*damped
		}
		st.level = level
	}
	st.n = len(y)
	return st, sse
}

// Predict forecasts n steps after the training series.
func (m *Model) Predict(n int, _ ...forecasting.PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	return m.Forecast(m.forecast(n))
}

func (m *Model) forecast(n int) []float64 {
	st := m.state
	out := make([]float64, n)
	cum, phi := 0.0, m.Params.Phi
	for h := 1; h <= n; h++ {
		cum += math.Pow(phi, float64(h))
		v := st.level + cum*st.trend
		switch m.Config.Seasonal {
		case AdditiveSeasonality:
			v += st.season[(st.n+h-1)%m.Config.Period]
		case MultiplicativeSeasonality:
			v *= st.season[(st.n+h-1)%m.Config.Period]
		}
		out[h-1] = v
	}
	return out
}

// Simple is a fitted simple exponential smoothing.
type Simple struct {
	Alpha float64
	// Level is the final smoothed level and the flat forecast.
	Level float64
	SSE   float64
}

// FitSimple runs simple exponential smoothing over y with the level
// initialised to y[0].
// A zero alpha is chosen on a 0.01 grid by minimum one-step SSE.
func FitSimple(y []float64, alpha float64) (*Simple, error) {
	if len(y) == 0 {
		return nil, fmt.Errorf("simple smoothing of empty series: %w", forecasting.ErrConfiguration)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha %v outside [0, 1]: %w", alpha, forecasting.ErrConfiguration)
	}
	cfg := Config{}
	if alpha > 0 {
		st, sse := cfg.run(y, Params{Alpha: alpha, Phi: 1})
		return &Simple{Alpha: alpha, Level: st.level, SSE: sse}, nil
	}

	var best *Simple
	for i := 1; i <= 99; i++ {
		a := float64(i) / 100
		st, sse := cfg.run(y, Params{Alpha: a, Phi: 1})
		if best == nil || sse < best.SSE {
			best = &Simple{Alpha: a, Level: st.level, SSE: sse}
		}
	}
	return best, nil
}

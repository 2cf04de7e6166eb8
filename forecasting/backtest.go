package forecasting

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sartorproj/goforecast/metrics"
	"github.com/sartorproj/goforecast/timeseries"
)

// Config holds backtest settings.
type Config struct {
	// Start is the first split point. It must be a timestamp of the
	// series. When zero, StartFraction is used instead.
	Start         time.Time
	StartFraction float64

	// Horizon is the number of steps forecast per window.
	Horizon int
	// Stride is the distance between split points. Stitched backtests
	// require Stride == Horizon (the default); last-points backtests
	// default to 1.
	Stride int
	// LastPointsOnly keeps only the final forecast step of every window.
	LastPointsOnly bool

	UseFullOutputLength bool

	Metrics map[string]metrics.Func

	Verbose         bool
	Logger          *zap.Logger
	Instrumentation *Instrumentation
}

// DefaultConfig returns default backtest settings.
func DefaultConfig() *Config {
	return &Config{
		StartFraction:       0.5,
		Horizon:             1,
		UseFullOutputLength: true,
		Metrics:             map[string]metrics.Func{"r2": metrics.R2},
		Logger:              zap.NewNop(),
	}
}

// Window records one fit/predict cycle.
type Window struct {
	Index           int
	SplitTime       time.Time
	TrainLength     int
	FitDuration     time.Duration
	PredictDuration time.Duration
}

// Result is the outcome of a backtest.
type Result struct {
	RunID string
	Model string
	// Forecast is the stitched prediction series.
	Forecast *timeseries.Series
	// Truth holds the target values at the forecast timestamps.
	Truth *timeseries.Series
	// Residuals is Truth minus Forecast.
	Residuals *timeseries.Series
	Scores    map[string]float64
	Windows   []Window
}

// SplitPoints returns the row positions at which training ends, one per
// window, for a series of the given length.
func (c *Config) SplitPoints(series *timeseries.Series) ([]int, error) {
	if c.Horizon < 1 {
		return nil, fmt.Errorf("horizon %d: %w", c.Horizon, ErrConfiguration)
	}

	stride := c.Stride
	switch {
	case c.LastPointsOnly && stride == 0:
		stride = 1
	case !c.LastPointsOnly && stride == 0:
		stride = c.Horizon
	case !c.LastPointsOnly && stride != c.Horizon:
		return nil, fmt.Errorf("stitched backtest needs stride %d == horizon %d: %w", stride, c.Horizon, ErrConfiguration)
	}
	if stride < 1 {
		return nil, fmt.Errorf("stride %d: %w", stride, ErrConfiguration)
	}

	start, err := c.startIndex(series)
	if err != nil {
		return nil, err
	}
	n := series.Len()
	if start+c.Horizon > n {
		return nil, fmt.Errorf("start at row %d leaves no full horizon of %d in %d rows: %w",
			start, c.Horizon, n, timeseries.ErrOutOfRange)
	}

	var splits []int
	for s := start; s+c.Horizon <= n; s += stride {
		splits = append(splits, s)
	}
	return splits, nil
}

func (c *Config) startIndex(series *timeseries.Series) (int, error) {
	var idx int
	if !c.Start.IsZero() {
		i, err := series.IndexOf(c.Start)
		if err != nil {
			return 0, fmt.Errorf("backtest start: %w", err)
		}
		idx = i
	} else {
		if c.StartFraction <= 0 || c.StartFraction >= 1 {
			return 0, fmt.Errorf("start fraction %g: %w", c.StartFraction, ErrConfiguration)
		}
		idx = int(c.StartFraction * float64(series.Len()))
	}
	if idx < 1 {
		return 0, fmt.Errorf("backtest start leaves no training data: %w", timeseries.ErrOutOfRange)
	}
	return idx, nil
}

// Backtest evaluates model by rolling-origin forecasting over series.
//
// For every split point the model is refit on all rows before the split
// and asked for cfg.Horizon steps. The forecasts are stitched together
// and scored against target, which defaults to the target components of
// series. Any failure aborts the run.
func Backtest(model Model, series, target *timeseries.Series, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	name := model.Name()

	cols, err := ResolveTargets(series, model.Targets(), model.Capabilities())
	if err != nil {
		cfg.Instrumentation.ObserveFailure(name, "validate")
		return nil, err
	}
	names := TargetNames(series, cols)

	if target == nil {
		if target, err = series.SelectIndices(cols...); err != nil {
			return nil, err
		}
	} else if !sameNames(target.Components(), names) {
		cfg.Instrumentation.ObserveFailure(name, "validate")
		return nil, fmt.Errorf("target series has %v, model forecasts %v: %w",
			target.Components(), names, ErrTargetMismatch)
	}

	fit := func(split int) error {
		train, err := series.Slice(0, split)
		if err != nil {
			return err
		}
		return model.Fit(train)
	}
	predict := func(int) (*timeseries.Series, error) {
		return model.Predict(cfg.Horizon, UseFullOutputLength(cfg.UseFullOutputLength))
	}
	return Run(name, series, target, cfg, fit, predict)
}

// Run drives the windows of a backtest. For every split point of series
// it calls fit with the split position, then predict, which must return
// cfg.Horizon rows shaped like target. The forecasts are stitched (or
// reduced to their last rows), recorded, logged and instrumented, and the
// result is scored against target. Any failure aborts the run.
func Run(name string, series, target *timeseries.Series, cfg *Config,
	fit func(split int) error, predict func(split int) (*timeseries.Series, error)) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	names := target.Components()

	splits, err := cfg.SplitPoints(series)
	if err != nil {
		cfg.Instrumentation.ObserveFailure(name, "validate")
		return nil, err
	}

	runID := uuid.NewString()
	log := logger.With(zap.String("run_id", runID), zap.String("model", name))
	logWindow := log.Debug
	if cfg.Verbose {
		logWindow = log.Info
	}
	log.Debug("backtest started",
		zap.Int("windows", len(splits)),
		zap.Int("horizon", cfg.Horizon),
		zap.Strings("targets", names))

	var (
		forecast  *timeseries.Series
		lastTimes []time.Time
		lastRows  [][]float64
		windows   = make([]Window, 0, len(splits))
	)

	for i, split := range splits {
		begin := time.Now()
		if err := fit(split); err != nil {
			cfg.Instrumentation.ObserveFailure(name, "fit")
			return nil, fmt.Errorf("window %d fit: %w", i, err)
		}
		fitDuration := time.Since(begin)

		begin = time.Now()
		pred, err := predict(split)
		if err != nil {
			cfg.Instrumentation.ObserveFailure(name, "predict")
			return nil, fmt.Errorf("window %d predict: %w", i, err)
		}
		predictDuration := time.Since(begin)

		if pred.Len() != cfg.Horizon || pred.Width() != len(names) {
			cfg.Instrumentation.ObserveFailure(name, "predict")
			return nil, fmt.Errorf("window %d: forecast is %dx%d, expected %dx%d: %w",
				i, pred.Len(), pred.Width(), cfg.Horizon, len(names), ErrDimensionMismatch)
		}

		switch {
		case cfg.LastPointsOnly:
			lastTimes = append(lastTimes, pred.Time(cfg.Horizon-1))
			lastRows = append(lastRows, pred.Row(cfg.Horizon-1))
		case forecast == nil:
			forecast = pred
		default:
			if forecast, err = forecast.Append(pred); err != nil {
				cfg.Instrumentation.ObserveFailure(name, "stitch")
				return nil, fmt.Errorf("window %d: %w", i, err)
			}
		}

		w := Window{
			Index:           i,
			SplitTime:       series.Time(split),
			TrainLength:     split,
			FitDuration:     fitDuration,
			PredictDuration: predictDuration,
		}
		windows = append(windows, w)
		cfg.Instrumentation.ObserveWindow(name, fitDuration, predictDuration)

		logWindow("backtest window",
			zap.Int("window", i),
			zap.Time("split", w.SplitTime),
			zap.Int("train_length", split),
			zap.Duration("fit", fitDuration),
			zap.Duration("predict", predictDuration))
	}

	if cfg.LastPointsOnly {
		if forecast, err = timeseries.FromRows(lastTimes, lastRows, names); err != nil {
			return nil, err
		}
	}

	result, err := NewResult(runID, name, forecast, target, cfg.Metrics, windows)
	if err != nil {
		cfg.Instrumentation.ObserveFailure(name, "score")
		return nil, err
	}
	cfg.Instrumentation.ObserveScores(name, result.Scores)

	fields := []zap.Field{zap.Int("windows", len(windows)), zap.Int("points", forecast.Len())}
	for _, metric := range sortedKeys(result.Scores) {
		fields = append(fields, zap.Float64(metric, result.Scores[metric]))
	}
	log.Info("backtest finished", fields...)

	return result, nil
}

// NewResult aligns forecast with target, computes residuals and scores
// every metric.
func NewResult(runID, model string, forecast, target *timeseries.Series, ms map[string]metrics.Func, windows []Window) (*Result, error) {
	truth, err := target.AtTimes(forecast.Timestamps())
	if err != nil {
		return nil, fmt.Errorf("align truth: %w", err)
	}
	residuals, err := metrics.Residuals(truth, forecast)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(ms))
	for _, name := range sortedKeys(ms) {
		v, err := ms[name](truth, forecast)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", name, err)
		}
		scores[name] = v
	}

	return &Result{
		RunID:     runID,
		Model:     model,
		Forecast:  forecast,
		Truth:     truth,
		Residuals: residuals,
		Scores:    scores,
		Windows:   windows,
	}, nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package autoarima

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/goforecast/arima"
	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/sarima"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// ErrNoModel is returned when no candidate order could be fitted.
var ErrNoModel = errors.New("autoarima: no candidate model could be fitted")

// Config holds configuration for auto ARIMA search.
type Config struct {
	MaxP        int    // Maximum AR order (default: 5)
	MaxD        int    // Maximum differencing order (default: 2)
	MaxQ        int    // Maximum MA order (default: 5)
	MaxSP       int    // Maximum seasonal AR order (default: 2)
	MaxSD       int    // Maximum seasonal differencing order (default: 1)
	MaxSQ       int    // Maximum seasonal MA order (default: 2)
	Seasonal    bool   // Whether to consider seasonal models
	SeasonalM   int    // Seasonal period (required if Seasonal=true)
	Stepwise    bool   // Use stepwise search instead of exhaustive
	Criterion   string // Information criterion: "aic", "aicc" or "bic" (default: "aic")
	Trace       bool   // Log every candidate at info level
	StationTest string // Stationarity test: "adf" or "kpss" (default: "kpss")
	// Parallelism bounds the number of candidates fitted at once by the
	// exhaustive search. 0 means GOMAXPROCS.
	Parallelism int
	Logger      *zap.Logger
}

// DefaultConfig returns the default auto ARIMA configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxP:        5,
		MaxD:        2,
		MaxQ:        5,
		MaxSP:       2,
		MaxSD:       1,
		MaxSQ:       2,
		Seasonal:    false,
		Stepwise:    true,
		Criterion:   "aic",
		StationTest: "kpss",
		Logger:      zap.NewNop(),
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Criterion) {
	case "", "aic", "aicc", "bic":
	default:
		return fmt.Errorf("unknown criterion %q: %w", c.Criterion, forecasting.ErrConfiguration)
	}
	if c.Seasonal && c.SeasonalM < 2 {
		return fmt.Errorf("seasonal period %d: %w", c.SeasonalM, forecasting.ErrConfiguration)
	}
	if c.MaxP < 0 || c.MaxQ < 0 || c.MaxD < 0 || c.MaxSP < 0 || c.MaxSQ < 0 || c.MaxSD < 0 {
		return fmt.Errorf("negative maximum order: %w", forecasting.ErrConfiguration)
	}
	return nil
}

func (c *Config) score(ic *stats.InformationCriteria) float64 {
	switch strings.ToLower(c.Criterion) {
	case "bic":
		return ic.BIC
	case "aicc":
		return ic.AICc
	default:
		return ic.AIC
	}
}

// Result represents the result of auto ARIMA model selection.
type Result struct {
	// Non-seasonal model (if no seasonality)
	Model *arima.Model
	// Seasonal model (if seasonal)
	SeasonalModel *sarima.Model

	// Best parameters found
	P  int
	D  int
	Q  int
	SP int
	SD int
	SQ int
	M  int

	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64
	Criterion float64

	ModelsEvaluated int
	IsSeasonal      bool
}

// AutoARIMA selects the best ARIMA or SARIMA model for a univariate series.
func AutoARIMA(series *timeseries.Series, config *Config) (*Result, error) {
	values, err := series.Univariate()
	if err != nil {
		return nil, err
	}
	return Search(values, config)
}

// Search selects the best model for raw observations.
func Search(y []float64, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	d := determineDifferencing(y, config.MaxD, config.StationTest)
	sd := 0
	if config.Seasonal {
		sd = determineSeasonalDifferencing(y, config.MaxSD, config.SeasonalM)
	}
	log.Debug("differencing selected",
		zap.Int("d", d),
		zap.Int("seasonalD", sd),
		zap.String("test", config.StationTest),
	)

	s := &searcher{
		y:         y,
		d:         d,
		sd:        sd,
		cfg:       config,
		log:       log,
		visited:   make(map[order]bool),
		bestScore: math.Inf(1),
	}
	if config.Stepwise {
		s.stepwise()
	} else if err := s.exhaustive(); err != nil {
		return nil, err
	}

	if s.best == nil {
		return nil, fmt.Errorf("%w after %d attempts", ErrNoModel, len(s.visited))
	}
	result := s.result()
	log.Info("model selected",
		zap.String("model", s.best.Name()),
		zap.String("criterion", config.Criterion),
		zap.Float64("score", result.Criterion),
		zap.Int("evaluated", result.ModelsEvaluated),
	)
	return result, nil
}

// candidate is the part of arima.Model and sarima.Model the search needs.
type candidate interface {
	Name() string
	FitValues(y []float64) error
	ForecastValues(steps int) ([]float64, error)
	Residuals() []float64
	Criteria() *stats.InformationCriteria
}

type order struct {
	p, q, sp, sq int
}

type searcher struct {
	y     []float64
	d, sd int
	cfg   *Config
	log   *zap.Logger

	visited   map[order]bool
	evaluated int
	best      candidate
	bestOrder order
	bestScore float64
}

func (s *searcher) build(o order) candidate {
	if s.cfg.Seasonal {
		return sarima.New(o.p, s.d, o.q, o.sp, s.sd, o.sq, s.cfg.SeasonalM)
	}
	return arima.New(o.p, s.d, o.q)
}

func (s *searcher) allowed(o order) bool {
	c := s.cfg
	if o.p < 0 || o.p > c.MaxP || o.q < 0 || o.q > c.MaxQ {
		return false
	}
	if !c.Seasonal {
		return o.sp == 0 && o.sq == 0
	}
	return o.sp >= 0 && o.sp <= c.MaxSP && o.sq >= 0 && o.sq <= c.MaxSQ
}

// consider records a fitted candidate and reports whether it is the new best.
func (s *searcher) consider(o order, c candidate, err error) bool {
	if err != nil {
		s.log.Debug("candidate rejected", zap.String("model", c.Name()), zap.Error(err))
		return false
	}
	s.evaluated++
	score := s.cfg.score(c.Criteria())

	level := zap.DebugLevel
	if s.cfg.Trace {
		level = zap.InfoLevel
	}
	if ce := s.log.Check(level, "candidate fitted"); ce != nil {
		ce.Write(zap.String("model", c.Name()), zap.Float64("score", score))
	}

	if score < s.bestScore {
		s.best, s.bestOrder, s.bestScore = c, o, score
		return true
	}
	return false
}

func (s *searcher) try(o order) bool {
	if !s.allowed(o) || s.visited[o] {
		return false
	}
	s.visited[o] = true
	c := s.build(o)
	return s.consider(o, c, c.FitValues(s.y))
}

// stepwise starts from a few simple orders and moves to the best
// neighbouring order until none improves the criterion.
func (s *searcher) stepwise() {
	starts := []order{{0, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}, {1, 1, 0, 0}, {2, 2, 0, 0}}
	if s.cfg.Seasonal {
		starts = []order{{0, 0, 0, 0}, {1, 0, 1, 0}, {0, 1, 0, 1}, {1, 1, 1, 1}, {2, 2, 1, 1}}
	}
	for _, o := range starts {
		s.try(o)
	}
	if s.best == nil {
		return
	}

	for improved := true; improved; {
		improved = false
		for _, o := range s.neighbours(s.bestOrder) {
			if s.try(o) {
				improved = true
			}
		}
	}
}

func (s *searcher) neighbours(o order) []order {
	out := []order{
		{o.p + 1, o.q, o.sp, o.sq},
		{o.p - 1, o.q, o.sp, o.sq},
		{o.p, o.q + 1, o.sp, o.sq},
		{o.p, o.q - 1, o.sp, o.sq},
	}
	if !s.cfg.Seasonal {
		return append(out, order{o.p + 1, o.q + 1, 0, 0}, order{o.p - 1, o.q - 1, 0, 0})
	}
	return append(out,
		order{o.p, o.q, o.sp + 1, o.sq},
		order{o.p, o.q, o.sp - 1, o.sq},
		order{o.p, o.q, o.sp, o.sq + 1},
		order{o.p, o.q, o.sp, o.sq - 1},
	)
}

// exhaustive fits every allowed order. Candidates are fitted concurrently
// and compared in grid order, so the result does not depend on scheduling.
func (s *searcher) exhaustive() error {
	var grid []order
	for p := 0; p <= s.cfg.MaxP; p++ {
		for q := 0; q <= s.cfg.MaxQ; q++ {
			if !s.cfg.Seasonal {
				grid = append(grid, order{p, q, 0, 0})
				continue
			}
			for sp := 0; sp <= s.cfg.MaxSP; sp++ {
				for sq := 0; sq <= s.cfg.MaxSQ; sq++ {
					grid = append(grid, order{p, q, sp, sq})
				}
			}
		}
	}

	limit := s.cfg.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	type fit struct {
		model candidate
		err   error
	}
	fits := make([]fit, len(grid))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, o := range grid {
		g.Go(func() error {
			c := s.build(o)
			fits[i] = fit{model: c, err: c.FitValues(s.y)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, o := range grid {
		s.visited[o] = true
		s.consider(o, fits[i].model, fits[i].err)
	}
	return nil
}

func (s *searcher) result() *Result {
	ic := s.best.Criteria()
	r := &Result{
		P:               s.bestOrder.p,
		D:               s.d,
		Q:               s.bestOrder.q,
		AIC:             ic.AIC,
		AICc:            ic.AICc,
		BIC:             ic.BIC,
		LogLik:          ic.LogLik,
		Criterion:       s.bestScore,
		ModelsEvaluated: s.evaluated,
	}
	switch m := s.best.(type) {
	case *sarima.Model:
		r.SeasonalModel = m
		r.IsSeasonal = true
		r.SP, r.SD, r.SQ, r.M = s.bestOrder.sp, s.sd, s.bestOrder.sq, s.cfg.SeasonalM
	case *arima.Model:
		r.Model = m
	}
	return r
}

// determineDifferencing chooses d by repeated stationarity tests. With
// "kpss" the ADF test must agree unless KPSS is clear-cut (p > 0.1).
func determineDifferencing(y []float64, maxD int, testType string) int {
	current := y
	for d := 0; d < maxD; d++ {
		stationary := false
		if testType == "adf" {
			result := stats.ADF(current, 0)
			stationary = result != nil && result.IsStationary
		} else {
			kpss := stats.KPSS(current, "c", 0)
			adf := stats.ADF(current, 0)
			kpssStationary := kpss != nil && kpss.IsStationary
			adfStationary := adf != nil && adf.IsStationary
			stationary = kpssStationary && (adfStationary || kpss.PValue > 0.1)
		}
		if stationary {
			return d
		}

		current = stats.Difference(current, 1)
		if len(current) < 10 {
			return d
		}
	}
	return maxD
}

// determineSeasonalDifferencing suggests D from the seasonal strength of
// the series.
func determineSeasonalDifferencing(y []float64, maxSD int, period int) int {
	if maxSD <= 0 {
		return 0
	}
	return min(stats.NSDiffs(y, period, maxSD), maxSD)
}

func (r *Result) model() candidate {
	if r.IsSeasonal && r.SeasonalModel != nil {
		return r.SeasonalModel
	}
	if r.Model != nil {
		return r.Model
	}
	return nil
}

// Name describes the selected order.
func (r *Result) Name() string {
	if c := r.model(); c != nil {
		return c.Name()
	}
	return "auto-arima"
}

// Predict generates forecasts using the selected model.
func (r *Result) Predict(steps int) ([]float64, error) {
	c := r.model()
	if c == nil {
		return nil, forecasting.ErrNotFitted
	}
	return c.ForecastValues(steps)
}

// Residuals returns the model residuals.
func (r *Result) Residuals() []float64 {
	if c := r.model(); c != nil {
		return c.Residuals()
	}
	return nil
}

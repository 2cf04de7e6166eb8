package sarima

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/internal/css"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// Order represents SARIMA model order (p, d, q) x (P, D, Q, m).
type Order struct {
	P int // Non-seasonal AR order
	D int // Non-seasonal differencing order
	Q int // Non-seasonal MA order
	// Seasonal components
	SP int // Seasonal AR order
	SD int // Seasonal differencing order
	SQ int // Seasonal MA order
	M  int // Seasonal period (e.g., 12 for monthly data with yearly seasonality)
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

func (o Order) seasonal() bool {
	return o.SP > 0 || o.SD > 0 || o.SQ > 0
}

func (o Order) minObs() int {
	return o.P + o.Q + o.D + (o.SP+o.SD+o.SQ)*o.M + 20
}

// Model represents a SARIMA model.
type Model struct {
	forecasting.Univariate

	Order     Order
	ARCoeffs  []float64 // Non-seasonal AR coefficients
	MACoeffs  []float64 // Non-seasonal MA coefficients
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64

	// levels[0] is the training data, levels[i] its i-th difference.
	levels [][]float64
	est    *css.Estimate
}

// New creates a new SARIMA model with the specified order.
func New(p, d, q, sp, sd, sq, m int, targets ...timeseries.ComponentID) *Model {
	model := &Model{
		Order: Order{
			P: p, D: d, Q: q,
			SP: sp, SD: sd, SQ: sq, M: m,
		},
		ARCoeffs:  make([]float64, p),
		MACoeffs:  make([]float64, q),
		SARCoeffs: make([]float64, sp),
		SMACoeffs: make([]float64, sq),
	}
	model.SetTargets(targets...)
	return model
}

// Name reports the model with its seasonal order.
func (m *Model) Name() string { return "sarima" + m.Order.String() }

// Fit fits the model to the target component of train.
func (m *Model) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	values, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	if err := m.FitValues(values); err != nil {
		return err
	}
	m.MarkFitted()
	return nil
}

// FitValues fits the model to raw observations.
func (m *Model) FitValues(y []float64) error {
	m.est = nil
	o := m.Order
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 {
		return fmt.Errorf("sarima order %s: %w", o, forecasting.ErrConfiguration)
	}
	if o.seasonal() && o.M < 2 {
		return fmt.Errorf("sarima seasonal period %d: %w", o.M, forecasting.ErrConfiguration)
	}
	if len(y) < o.minObs() {
		return fmt.Errorf("sarima%s needs %d observations, got %d: %w",
			o, o.minObs(), len(y), forecasting.ErrConfiguration)
	}

	// Non-seasonal differences first, then seasonal ones.
	levels := [][]float64{append([]float64(nil), y...)}
	for range o.D {
		levels = append(levels, stats.Difference(levels[len(levels)-1], 1))
	}
	for range o.SD {
		levels = append(levels, stats.Difference(levels[len(levels)-1], o.M))
	}
	diffed := levels[len(levels)-1]
	if len(diffed) == 0 {
		return fmt.Errorf("sarima%s: differencing left no observations: %w", o, forecasting.ErrConfiguration)
	}

	ar0 := make([]float64, o.P+o.SP)
	if maxLag := max(o.P, o.SP*o.M); maxLag > 0 {
		if acf := stats.ACF(diffed, maxLag); acf != nil {
			for i := range o.P {
				ar0[i] = acf[i+1] * 0.5
			}
			for i := range o.SP {
				if lag := (i + 1) * o.M; lag < len(acf) {
					ar0[o.P+i] = acf[lag] * 0.5
				}
			}
		}
	}

	est := css.Fit(diffed, css.Orders(o.P, o.Q, o.SP, o.SQ, o.M), ar0, nil, css.WithMomentum())
	ic := est.Criteria()

	m.levels = levels
	m.est = est
	m.ARCoeffs, m.SARCoeffs = est.AR[:o.P], est.AR[o.P:]
	m.MACoeffs, m.SMACoeffs = est.MA[:o.Q], est.MA[o.Q:]
	m.Intercept = est.Intercept
	m.Variance = est.Variance
	m.AIC, m.AICc, m.BIC, m.LogLik = ic.AIC, ic.AICc, ic.BIC, ic.LogLik
	return nil
}

// Predict forecasts n steps after the training series.
func (m *Model) Predict(n int, _ ...forecasting.PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	values, err := m.ForecastValues(n)
	if err != nil {
		return nil, err
	}
	return m.Forecast(values)
}

// ForecastValues forecasts steps values after the fitted observations.
func (m *Model) ForecastValues(steps int) ([]float64, error) {
	if m.est == nil {
		return nil, forecasting.ErrNotFitted
	}
	if steps < 1 {
		return nil, fmt.Errorf("forecast horizon %d: %w", steps, forecasting.ErrConfiguration)
	}
	top := len(m.levels) - 1
	out := m.est.Forecast(m.levels[top], steps)
	return m.integrate(out), nil
}

// integrate undoes the seasonal differences, then the non-seasonal ones.
func (m *Model) integrate(out []float64) []float64 {
	for k := len(m.levels) - 1; k > 0; k-- {
		lag := 1
		if k > m.Order.D {
			lag = m.Order.M
		}
		out = stats.Integrate(m.levels[k-1], out, lag)
	}
	return out
}

// Interval is a point forecast with symmetric prediction bounds.
type Interval struct {
	Forecast *timeseries.Series
	Lower    *timeseries.Series
	Upper    *timeseries.Series
}

// PredictInterval forecasts n steps with prediction bounds at the given
// confidence level (0.95 if outside (0, 1)). The forecast error variance
// at horizon h is Variance times the sum of the first h squared psi
// weights of the integrated model.
func (m *Model) PredictInterval(n int, confidence float64) (*Interval, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	point, lower, upper, err := m.IntervalValues(n, confidence)
	if err != nil {
		return nil, err
	}
	out := &Interval{}
	for _, v := range []struct {
		dst    **timeseries.Series
		values []float64
	}{{&out.Forecast, point}, {&out.Lower, lower}, {&out.Upper, upper}} {
		if *v.dst, err = m.Forecast(v.values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// IntervalValues is PredictInterval on raw values.
func (m *Model) IntervalValues(steps int, confidence float64) (point, lower, upper []float64, err error) {
	point, err = m.ForecastValues(steps)
	if err != nil {
		return nil, nil, nil, err
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}
	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)

	psi := m.est.PsiWeights(steps, m.Order.D, m.Order.SD, m.Order.M)
	lower = make([]float64, steps)
	upper = make([]float64, steps)
	acc := 0.0
	for h := range steps {
		acc += psi[h] * psi[h]
		se := math.Sqrt(m.Variance * acc)
		lower[h] = point[h] - z*se
		upper[h] = point[h] + z*se
	}
	return point, lower, upper, nil
}

// Criteria returns the information criteria of the fit, or nil before Fit.
func (m *Model) Criteria() *stats.InformationCriteria {
	if m.est == nil {
		return nil
	}
	return &stats.InformationCriteria{AIC: m.AIC, AICc: m.AICc, BIC: m.BIC, LogLik: m.LogLik}
}

// Residuals returns the residuals on the differenced scale.
func (m *Model) Residuals() []float64 {
	if m.est == nil {
		return nil
	}
	return append([]float64(nil), m.est.Residuals...)
}

// FittedValues returns the one-step fitted values on the differenced scale.
func (m *Model) FittedValues() []float64 {
	if m.est == nil {
		return nil
	}
	return append([]float64(nil), m.est.Fitted...)
}

// Summary represents a model summary.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	SARCoeffs []float64
	SMACoeffs []float64
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64
	NObs      int
	LjungBox  *stats.PortmanteauResult
}

// Summary returns a summary of the fitted model, or nil before Fit.
func (m *Model) Summary() *Summary {
	if m.est == nil {
		return nil
	}
	o := m.Order
	return &Summary{
		Order:     o,
		ARCoeffs:  m.ARCoeffs,
		MACoeffs:  m.MACoeffs,
		SARCoeffs: m.SARCoeffs,
		SMACoeffs: m.SMACoeffs,
		Intercept: m.Intercept,
		Variance:  m.Variance,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		NObs:      len(m.levels[0]),
		LjungBox:  stats.LjungBox(m.est.Residuals, 10, o.P+o.Q+o.SP+o.SQ),
	}
}

package arima

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/internal/css"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model represents an ARIMA model.
type Model struct {
	forecasting.Univariate

	Order     Order
	ARCoeffs  []float64 // AR coefficients (phi)
	MACoeffs  []float64 // MA coefficients (theta)
	Intercept float64
	Variance  float64 // Residual variance
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64

	history []float64
	diffed  []float64
	est     *css.Estimate
}

// New creates a new ARIMA model with the specified order.
func New(p, d, q int, targets ...timeseries.ComponentID) *Model {
	m := &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
	m.SetTargets(targets...)
	return m
}

// Name reports the model with its order.
func (m *Model) Name() string { return "arima" + m.Order.String() }

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
	if o.P < 0 || o.D < 0 || o.Q < 0 {
		return fmt.Errorf("arima order %s: %w", o, forecasting.ErrConfiguration)
	}
	if len(y) < o.P+o.Q+o.D+10 {
		return fmt.Errorf("arima%s needs %d observations, got %d: %w",
			o, o.P+o.Q+o.D+10, len(y), forecasting.ErrConfiguration)
	}

	diffed := y
	for range o.D {
		diffed = stats.Difference(diffed, 1)
	}

	var ar0 []float64
	if o.P > 0 {
		if acf := stats.ACF(diffed, o.P); acf != nil {
			ar0 = yuleWalker(acf, o.P)
		}
	}

	est := css.Fit(diffed, css.Orders(o.P, o.Q, 0, 0, 0), ar0, nil, css.Plain())
	ic := est.Criteria()

	m.history = append([]float64(nil), y...)
	m.diffed = diffed
	m.est = est
	m.ARCoeffs = est.AR
	m.MACoeffs = est.MA
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
	out := m.est.Forecast(m.diffed, steps)
	return stats.Undifference(m.history, out, m.Order.D), nil
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

// Summary describes a fitted model.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
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
	return &Summary{
		Order:     m.Order,
		ARCoeffs:  m.ARCoeffs,
		MACoeffs:  m.MACoeffs,
		Intercept: m.Intercept,
		Variance:  m.Variance,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		NObs:      len(m.history),
		LjungBox:  stats.LjungBox(m.est.Residuals, 10, m.Order.P+m.Order.Q),
	}
}

// yuleWalker solves the Yule-Walker equations R phi = r, where R is the
// Toeplitz autocorrelation matrix. It returns zeros if R is singular.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	r := mat.NewSymDense(order, nil)
	for i := 0; i < order; i++ {
		for j := i; j < order; j++ {
			r.SetSym(i, j, acf[j-i])
		}
	}
	rhs := mat.NewVecDense(order, append([]float64(nil), acf[1:order+1]...))

	phi := make([]float64, order)
	var chol mat.Cholesky
	if !chol.Factorize(r) {
		return phi
	}
	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, rhs); err != nil {
		return phi
	}
	for i := range phi {
		phi[i] = sol.AtVec(i)
	}
	return phi
}

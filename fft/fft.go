package fft

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

// Detrend selects how the trend is removed before the transform.
type Detrend int

const (
	NoDetrend Detrend = iota
	// PolynomialDetrend fits a polynomial of degree TrendDegree.
	PolynomialDetrend
	// ExponentialDetrend fits a line to the logarithm of the series; the
	// series must be positive.
	ExponentialDetrend
)

func (d Detrend) String() string {
	switch d {
	case PolynomialDetrend:
		return "poly"
	case ExponentialDetrend:
		return "exp"
	default:
		return "none"
	}
}

// Config configures a Model.
type Config struct {
	// FreqsToKeep is the number of frequencies with the largest amplitude
	// kept; 0 or less keeps all of them.
	FreqsToKeep int
	Detrend     Detrend
	TrendDegree int
}

// DefaultConfig keeps ten frequencies without detrending.
func DefaultConfig() Config {
	return Config{FreqsToKeep: 10, TrendDegree: 1}
}

// Model is an FFT forecaster.
type Model struct {
	forecasting.Univariate
	Config Config

	filtered []float64
	trend    []float64 // polynomial coefficients, lowest degree first
}

// New creates a model.
func New(cfg Config, targets ...timeseries.ComponentID) *Model {
	m := &Model{Config: cfg}
	m.SetTargets(targets...)
	return m
}

// Name reports the number of kept frequencies and the detrending.
func (m *Model) Name() string {
	return fmt.Sprintf("fft(%d,%s)", m.Config.FreqsToKeep, m.Config.Detrend)
}

// Fit computes the filtered periodic signal of the target component.
func (m *Model) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	y, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	n := len(y)
	if n < 2 {
		return fmt.Errorf("fft needs at least 2 values, got %d: %w", n, forecasting.ErrConfiguration)
	}

	residual := append([]float64(nil), y...)
	m.trend = nil
	switch m.Config.Detrend {
	case PolynomialDetrend:
		if m.trend, err = polyfit(y, m.Config.TrendDegree); err != nil {
			return err
		}
	case ExponentialDetrend:
		if floats.Min(y) <= 0 {
			return fmt.Errorf("exponential detrend needs positive values: %w", forecasting.ErrConfiguration)
		}
		logs := make([]float64, n)
		for i, v := range y {
			logs[i] = math.Log(v)
		}
		if m.trend, err = polyfit(logs, 1); err != nil {
			return err
		}
	}
	for i := range residual {
		residual[i] -= m.trendAt(i)
	}

	transform := fourier.NewFFT(n)
	coeffs := transform.Coefficients(nil, residual)
	keepStrongest(coeffs, m.Config.FreqsToKeep)
	m.filtered = transform.Sequence(nil, coeffs)
	floats.Scale(1/float64(n), m.filtered)

	m.MarkFitted()
	return nil
}

// keepStrongest zeroes all but the k coefficients of largest modulus.
func keepStrongest(coeffs []complex128, k int) {
	if k <= 0 || k >= len(coeffs) {
		return
	}
	order := make([]int, len(coeffs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cmplx.Abs(coeffs[order[a]]) > cmplx.Abs(coeffs[order[b]])
	})
	for _, i := range order[k:] {
		coeffs[i] = 0
	}
}

func (m *Model) trendAt(t int) float64 {
	if m.trend == nil {
		return 0
	}
	v := 0.0
	for d := len(m.trend) - 1; d >= 0; d-- {
		v = v*float64(t) + m.trend[d]
	}
	if m.Config.Detrend == ExponentialDetrend {
		return math.Exp(v)
	}
	return v
}

// Predict continues the filtered signal and the trend for n steps.
func (m *Model) Predict(n int, _ ...forecasting.PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	size := len(m.filtered)
	out := make([]float64, n)
	for i := range out {
		t := size + i
		out[i] = m.filtered[t%size] + m.trendAt(t)
	}
	return m.Forecast(out)
}

// polyfit returns least-squares polynomial coefficients of y against its
// index, lowest degree first.
func polyfit(y []float64, degree int) ([]float64, error) {
	n := len(y)
	if degree < 0 || degree >= n {
		return nil, fmt.Errorf("trend degree %d for %d values: %w", degree, n, forecasting.ErrConfiguration)
	}
	vander := mat.NewDense(n, degree+1, nil)
	for i := 0; i < n; i++ {
		x := 1.0
		for d := 0; d <= degree; d++ {
			vander.Set(i, d, x)
			x *= float64(i)
		}
	}
	var coef mat.VecDense
	if err := coef.SolveVec(vander, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("trend fit: %w", err)
	}
	return coef.RawVector().Data, nil
}

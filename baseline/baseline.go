package baseline

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

// NaiveMean forecasts the mean of the training values.
type NaiveMean struct {
	forecasting.Univariate
	mean float64
}

// NewNaiveMean creates a NaiveMean model.
func NewNaiveMean(targets ...timeseries.ComponentID) *NaiveMean {
	m := &NaiveMean{}
	m.SetTargets(targets...)
	return m
}

// Name identifies the model.
func (m *NaiveMean) Name() string { return "naive-mean" }

// Fit computes the training mean.
func (m *NaiveMean) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	values, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("naive mean on empty series: %w", forecasting.ErrConfiguration)
	}
	m.mean = stat.Mean(values, nil)
	m.MarkFitted()
	return nil
}

// Predict repeats the mean n times.
func (m *NaiveMean) Predict(n int, _ ...forecasting.PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = m.mean
	}
	return m.Forecast(out)
}

// NaiveSeasonal repeats the last K training values. With K = 1 it is the
// random walk forecast.
type NaiveSeasonal struct {
	forecasting.Univariate
	K    int
	last []float64
}

// NewNaiveSeasonal creates a NaiveSeasonal model with period k.
func NewNaiveSeasonal(k int, targets ...timeseries.ComponentID) *NaiveSeasonal {
	m := &NaiveSeasonal{K: k}
	m.SetTargets(targets...)
	return m
}

// Name reports the model with its lag.
func (m *NaiveSeasonal) Name() string { return fmt.Sprintf("naive-seasonal(%d)", m.K) }

// Fit stores the last K values.
func (m *NaiveSeasonal) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	if m.K < 1 {
		return fmt.Errorf("seasonal period %d: %w", m.K, forecasting.ErrConfiguration)
	}
	values, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	if len(values) < m.K {
		return fmt.Errorf("need at least %d values, got %d: %w", m.K, len(values), forecasting.ErrConfiguration)
	}
	m.last = values[len(values)-m.K:]
	m.MarkFitted()
	return nil
}

// Predict cycles through the stored season.
func (m *NaiveSeasonal) Predict(n int, _ ...forecasting.PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = m.last[i%m.K]
	}
	return m.Forecast(out)
}

// NaiveDrift extrapolates the straight line joining the first and last
// training values.
type NaiveDrift struct {
	forecasting.Univariate
	last  float64
	slope float64
}

// NewNaiveDrift creates a NaiveDrift model.
func NewNaiveDrift(targets ...timeseries.ComponentID) *NaiveDrift {
	m := &NaiveDrift{}
	m.SetTargets(targets...)
	return m
}

// Name identifies the model.
func (m *NaiveDrift) Name() string { return "naive-drift" }

// Fit computes the drift.
func (m *NaiveDrift) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	values, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	n := len(values)
	if n == 0 {
		return fmt.Errorf("naive drift on empty series: %w", forecasting.ErrConfiguration)
	}
	m.last = values[n-1]
	m.slope = 0
	if n > 1 {
		m.slope = (values[n-1] - values[0]) / float64(n-1)
	}
	m.MarkFitted()
	return nil
}

// Predict continues the line for n steps.
func (m *NaiveDrift) Predict(n int, _ ...forecasting.PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = m.last + m.slope*float64(i+1)
	}
	return m.Forecast(out)
}

package forecasting

import (
	"errors"

	"github.com/sartorproj/goforecast/timeseries"
)

// driftModel extrapolates the line through the first and last training
// values.
type driftModel struct {
	Univariate
	fits   int
	failAt int
	last   float64
	slope  float64
}

func newDrift(targets ...timeseries.ComponentID) *driftModel {
	m := &driftModel{failAt: -1}
	m.SetTargets(targets...)
	return m
}

func (m *driftModel) Name() string { return "drift" }

func (m *driftModel) Fit(train *timeseries.Series, opts ...FitOption) error {
	values, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	if m.fits == m.failAt {
		return errors.New("boom")
	}
	m.fits++
	n := len(values)
	m.last = values[n-1]
	if n > 1 {
		m.slope = (values[n-1] - values[0]) / float64(n-1)
	}
	m.MarkFitted()
	return nil
}

func (m *driftModel) Predict(n int, _ ...PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = m.last + m.slope*float64(i+1)
	}
	return m.Forecast(out)
}

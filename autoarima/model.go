package autoarima

import (
	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

// Model runs the search on every Fit and forecasts with the selected
// model, so a backtest re-selects the order at each split.
type Model struct {
	forecasting.Univariate

	Config *Config
	result *Result
}

// New creates an auto ARIMA model. A nil config means DefaultConfig.
func New(config *Config, targets ...timeseries.ComponentID) *Model {
	if config == nil {
		config = DefaultConfig()
	}
	m := &Model{Config: config}
	m.SetTargets(targets...)
	return m
}

// Name identifies the model; Result().Name() describes the selected order.
func (m *Model) Name() string { return "auto-arima" }

// Fit selects and fits a model on the target component of train.
func (m *Model) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	m.result = nil
	values, err := m.Prepare(train, opts...)
	if err != nil {
		return err
	}
	result, err := Search(values, m.Config)
	if err != nil {
		return err
	}
	m.result = result
	m.MarkFitted()
	return nil
}

// Predict forecasts n steps with the selected model.
func (m *Model) Predict(n int, _ ...forecasting.PredictOption) (*timeseries.Series, error) {
	if err := m.CheckPredict(n); err != nil {
		return nil, err
	}
	values, err := m.result.Predict(n)
	if err != nil {
		return nil, err
	}
	return m.Forecast(values)
}

// Result returns the outcome of the last search, or nil before Fit.
func (m *Model) Result() *Result {
	return m.result
}

// Package metrics provides error metrics over aligned series.
//
// Every metric is a Func comparing an actual and a predicted series that
// share the same time index and component count. Multivariate inputs are
// scored per component and the scores averaged:
//
//	r2, err := metrics.R2(actual, forecast)
//	perComponent, err := metrics.PerComponent(actual, forecast, metrics.MAE)
//
// Metrics can be looked up by name, which is how the command line and
// backtest configurations refer to them:
//
//	fn, err := metrics.Lookup("mape")
package metrics

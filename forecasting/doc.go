// Package forecasting defines the Model interface shared by every
// forecasting model and the rolling-origin backtest engine built on it.
//
// # Models
//
// A Model is fitted on a series and forecasts a number of steps after its
// end. Multivariate series require explicit targets, given either at
// construction or per fit:
//
//	err := model.Fit(train, forecasting.WithTargets(timeseries.Name("load")))
//	forecast, err := model.Predict(24, forecasting.UseFullOutputLength(true))
//
// Models with a fixed native output length build longer forecasts with
// Rollout. Single-target statistical models embed Univariate for target
// resolution and forecast timestamps.
//
// # Backtesting
//
//	cfg := forecasting.DefaultConfig()
//	cfg.Start = time.Date(2000, 2, 1, 0, 0, 0, 0, time.UTC)
//	cfg.Horizon = 3
//	cfg.Metrics = map[string]metrics.Func{"r2": metrics.R2}
//
//	result, err := forecasting.Backtest(model, series, nil, cfg)
//	fmt.Println(result.Scores["r2"], result.Forecast.Len())
//
// The model is refit at every split point, strictly sequentially. Any
// error aborts the run.
//
// # Instrumentation
//
// Pass an Instrumentation built on a prometheus.Registerer to export
// window counts, failures and fit/predict latencies:
//
//	cfg.Instrumentation = forecasting.NewInstrumentation(registry)
package forecasting

// Package goforecast is a forecasting library with one interface over
// statistical, baseline, regression and windowed neural models, and a
// backtesting engine to compare them.
//
// Every model implements forecasting.Model: it is fit on a
// timeseries.Series and predicts n steps past its end. Multivariate
// series are supported throughout; models that forecast a single
// component are told which one through target identifiers.
//
// # Features
//
//   - Immutable multivariate time series with frequency handling and CSV I/O
//   - ARIMA, SARIMA and Auto-ARIMA (stepwise or concurrent exhaustive search)
//   - Holt-Winters exponential smoothing, Theta, FourTheta and FFT models
//   - Naive mean, seasonal and drift baselines
//   - Linear regression on feature series
//   - Dense window network with validation and checkpoints
//   - Rolling-origin backtesting with stitched or last-point forecasts
//   - Error metrics (R2, MAE, MSE, RMSE, MAPE, sMAPE, OPE)
//   - Statistical tests (ADF, KPSS, Phillips-Perron, Ljung-Box) and decomposition
//
// # Quick Start
//
// Backtest a model:
//
//	series, _ := timeseries.LoadCSV("sales.csv", nil)
//	model := arima.New(1, 1, 0)
//
//	cfg := forecasting.DefaultConfig()
//	cfg.Horizon = 3
//	cfg.Metrics = map[string]metrics.Func{"mape": metrics.MAPE}
//	result, _ := forecasting.Backtest(model, series, nil, cfg)
//	fmt.Println(result.Scores["mape"])
//
// Forecast one component of a multivariate series:
//
//	model := expsmoothing.New(expsmoothing.DefaultConfig(), timeseries.Name("sales"))
//	model.Fit(series)
//	forecast, _ := model.Predict(12)
//
// # Packages
//
//   - timeseries: the Series type, generators and CSV loading
//   - forecasting: the Model interface, target handling and Backtest
//   - metrics: error metrics over aligned series
//   - baseline, arima, sarima, autoarima, expsmoothing, theta, fft: univariate models
//   - regression: linear regression with its own backtest
//   - neural: windowed multi-output model
//   - stats: statistical tests and analysis functions
//
// The goforecast command under cmd/goforecast runs backtests on CSV files.
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
//   - Assimakopoulos, V., & Nikolopoulos, K. (2000). The theta model: a decomposition approach to forecasting
package goforecast

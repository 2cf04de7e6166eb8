// Package autoarima selects ARIMA and SARIMA orders automatically.
//
// The differencing orders are fixed first from unit root and seasonal
// strength tests. The AR and MA orders are then searched either stepwise
// (Hyndman-Khandakar, starting from a few small models and moving to the
// best neighbour) or exhaustively over the whole grid, and the candidate
// with the lowest information criterion wins.
//
// # Selecting an order
//
//	config := autoarima.DefaultConfig()
//	config.Criterion = "aicc"
//
//	result, err := autoarima.AutoARIMA(series, config)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Name(), result.AIC, result.ModelsEvaluated)
//	next, _ := result.Predict(6)
//
// Set Seasonal and SeasonalM to include the seasonal orders in the search.
// With Stepwise false the grid is fitted concurrently, at most Parallelism
// candidates at a time. Every candidate is logged at debug level on
// Config.Logger, or at info level when Trace is set.
//
// # As a forecasting model
//
// Model runs a new search on each Fit, so a backtest re-selects the order
// at every split:
//
//	model := autoarima.New(config, timeseries.Name("sales"))
//	result, err := forecasting.Backtest(model, series, nil, forecasting.DefaultConfig())
package autoarima

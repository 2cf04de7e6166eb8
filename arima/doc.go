// Package arima implements AutoRegressive Integrated Moving Average (ARIMA) models.
//
// An ARIMA(p,d,q) model combines:
//   - AR(p): AutoRegressive component with p lags
//   - I(d): Integration (differencing) of order d
//   - MA(q): Moving Average component with q lags
//
// Coefficients are estimated by conditional sum of squares, starting the AR
// terms from the Yule-Walker solution.
//
// # Basic Usage
//
//	model := arima.New(1, 1, 0)
//	if err := model.Fit(series); err != nil {
//	    log.Fatal(err)
//	}
//	forecast, _ := model.Predict(10)
//
// Model implements forecasting.Model, so it can be backtested directly:
//
//	result, err := forecasting.Backtest(arima.New(1, 1, 1), series, nil, cfg)
//
// # Model Selection
//
// Use information criteria (AIC, AICc, BIC) to compare models; lower is
// better. Summary also carries a Ljung-Box test of the residuals.
//
// For seasonal data, use the sarima package instead.
// For automatic model selection, use the autoarima package.
package arima

// Package regression forecasts a target series from feature series that
// are known over the forecast horizon.
//
// Model is an ordinary least squares fit of the target on the feature
// components, solved with a QR decomposition. Backtest evaluates it by
// rolling origin: at every split the model is refit on the rows before the
// split and predicts the following rows from their features.
//
//	model := regression.New()
//	result, err := regression.Backtest(model, features, target, cfg)
package regression

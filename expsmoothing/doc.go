// Package expsmoothing implements Holt-Winters exponential smoothing.
//
// The trend may be absent, additive or damped, and the seasonality absent,
// additive or multiplicative. Smoothing parameters left at zero in Config
// are chosen by a grid search that minimises the in-sample one-step sum of
// squared errors:
//
//	cfg := expsmoothing.DefaultConfig()
//	cfg.Period = 7
//	model := expsmoothing.New(cfg)
//	if err := model.Fit(series); err != nil {
//	    log.Fatal(err)
//	}
//	forecast, _ := model.Predict(14)
//
// FitSimple exposes simple exponential smoothing on raw values; the theta
// package builds on it.
package expsmoothing

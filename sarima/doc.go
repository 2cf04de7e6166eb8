// Package sarima fits seasonal ARIMA(p,d,q)(P,D,Q)[m] models.
//
// Seasonal and non-seasonal differencing are applied before estimation;
// the multiplicative AR and MA polynomials are estimated by conditional
// sum of squares and forecasts are integrated back to the original level.
//
//	// the airline model for monthly data
//	model := sarima.New(0, 1, 1, 0, 1, 1, 12)
//	if err := model.Fit(series); err != nil {
//	    return err
//	}
//
//	interval, _ := model.PredictInterval(24, 0.9)
//	fmt.Println(interval.Forecast.Column(0), interval.Lower.Column(0))
//
// The bounds come from the psi weights of the integrated model and unit
// normal quantiles, so they widen with the horizon. AIC, AICc and BIC are
// set on the model after Fit and can be compared across orders; autoarima
// automates that comparison.
package sarima

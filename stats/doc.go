// Package stats provides statistical tests and analysis functions used by
// the forecasting models.
//
// Every function works on a plain []float64 so that models can apply them
// to a single component of a series.
//
// # Stationarity Tests
//
//	// H0: unit root (non-stationary)
//	adf := stats.ADF(x, 0)
//
//	// H0: stationary
//	kpss := stats.KPSS(x, "c", 0)
//
//	pp := stats.PhillipsPerron(x, 0)
//
// # Differencing Analysis
//
//	d := stats.NDiffs(x, 2, "kpss")
//	sd := stats.NSDiffs(x, 12, 1)
//
// # Autocorrelation Functions
//
//	acf := stats.ACF(x, 20)
//	pacf := stats.PACF(x, 20)
//
//	c := stats.ACFWithConfidence(x, 20)
//	significant := stats.SignificantLags(c.Values, c.ConfBounds)
//
//	// Is there a yearly cycle in monthly data?
//	seasonal, period := stats.CheckSeasonality(x, 12, 24, 0.05)
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(residuals, 10, p+q)
//	if lb.PValue > 0.05 {
//	    // residuals look like white noise
//	}
//	dw := stats.DurbinWatson(residuals)
//
// # Decomposition
//
//	decomp := stats.Decompose(x, 12, stats.Multiplicative)
//	stl := stats.STL(x, 12, 2)
package stats

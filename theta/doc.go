// Package theta implements the classical Theta forecasting method.
//
// The series is first tested for seasonality; if the autocorrelation at
// the seasonal lag is significant it is divided by a multiplicative
// seasonal pattern. The deseasonalised series is forecast with simple
// exponential smoothing plus a drift of (theta-1)/theta times the slope
// of its linear trend, and the seasonal pattern is reapplied.
//
// FourTheta generalises the method along three axes: the trend line is
// linear or exponential, the theta line and the trend line combine
// additively or multiplicatively, and the seasonal pattern is additive or
// multiplicative. Series are optionally normalised by their mean first.
//
//	cfg := theta.DefaultFourThetaConfig()
//	cfg.Trend = theta.ExponentialTrend
//	model := theta.NewFourTheta(cfg)
package theta

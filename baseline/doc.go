// Package baseline implements naive forecasting models used as reference
// points in backtests.
//
//	NaiveMean      repeats the mean of the training series
//	NaiveSeasonal  repeats the last K observations
//	NaiveDrift     extends the line through the first and last observation
//
// All three forecast a single target component:
//
//	model := baseline.NewNaiveDrift()
//	result, err := forecasting.Backtest(model, series, nil, cfg)
package baseline

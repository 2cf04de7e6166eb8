package regression

import (
	"fmt"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

// Backtest evaluates model by rolling origin over features and target,
// which must share their index. At every split point of cfg the model is
// fit on the rows before the split and predicts the next cfg.Horizon rows
// from their features. In last-points mode only the final row of each
// window is kept.
func Backtest(model *Model, features, target *timeseries.Series, cfg *forecasting.Config) (*forecasting.Result, error) {
	if cfg == nil {
		cfg = forecasting.DefaultConfig()
	}
	name := model.Name()

	if err := sameIndex(features, target); err != nil {
		cfg.Instrumentation.ObserveFailure(name, "validate")
		return nil, err
	}
	if target.Width() != 1 {
		cfg.Instrumentation.ObserveFailure(name, "validate")
		return nil, fmt.Errorf("target has %d components: %w", target.Width(), forecasting.ErrConfiguration)
	}

	fit := func(split int) error {
		trainX, err := features.Slice(0, split)
		if err != nil {
			return err
		}
		trainY, err := target.Slice(0, split)
		if err != nil {
			return err
		}
		return model.Fit(trainX, trainY)
	}
	predict := func(split int) (*timeseries.Series, error) {
		nextX, err := features.Slice(split, split+cfg.Horizon)
		if err != nil {
			return nil, err
		}
		return model.Predict(nextX)
	}
	return forecasting.Run(name, target, target, cfg, fit, predict)
}

package cmd

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sartorproj/goforecast/arima"
	"github.com/sartorproj/goforecast/autoarima"
	"github.com/sartorproj/goforecast/baseline"
	"github.com/sartorproj/goforecast/expsmoothing"
	"github.com/sartorproj/goforecast/fft"
	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/neural"
	"github.com/sartorproj/goforecast/sarima"
	"github.com/sartorproj/goforecast/theta"
	"github.com/sartorproj/goforecast/timeseries"
)

// modelParams carries everything a factory may need to build a model.
type modelParams struct {
	settings *settings
	targets  []timeseries.ComponentID
	width    int
	logger   *zap.Logger
}

type factory struct {
	help  string
	build func(modelParams) (forecasting.Model, error)
}

var registry = map[string]factory{
	"naive-mean": {
		help: "mean of the training values",
		build: func(s modelParams) (forecasting.Model, error) {
			return baseline.NewNaiveMean(s.targets...), nil
		},
	},
	"naive-seasonal": {
		help: "repeats the last --period values",
		build: func(s modelParams) (forecasting.Model, error) {
			return baseline.NewNaiveSeasonal(s.settings.Period, s.targets...), nil
		},
	},
	"naive-drift": {
		help: "line through the first and last training values",
		build: func(s modelParams) (forecasting.Model, error) {
			return baseline.NewNaiveDrift(s.targets...), nil
		},
	},
	"arima": {
		help: "ARIMA of --order p,d,q",
		build: func(s modelParams) (forecasting.Model, error) {
			o, err := parseInts(s.settings.Order, 3)
			if err != nil {
				return nil, err
			}
			return arima.New(o[0], o[1], o[2], s.targets...), nil
		},
	},
	"sarima": {
		help: "SARIMA of --order p,d,q and --seasonal-order P,D,Q,m",
		build: func(s modelParams) (forecasting.Model, error) {
			o, err := parseInts(s.settings.Order, 3)
			if err != nil {
				return nil, err
			}
			so, err := parseInts(s.settings.SeasonalOrder, 4)
			if err != nil {
				return nil, err
			}
			return sarima.New(o[0], o[1], o[2], so[0], so[1], so[2], so[3], s.targets...), nil
		},
	},
	"auto-arima": {
		help: "stepwise ARIMA search; seasonal when --period > 1",
		build: func(s modelParams) (forecasting.Model, error) {
			cfg := autoarima.DefaultConfig()
			cfg.Logger = s.logger
			if s.settings.Period > 1 {
				cfg.Seasonal = true
				cfg.SeasonalM = s.settings.Period
			}
			return autoarima.New(cfg, s.targets...), nil
		},
	},
	"exponential-smoothing": {
		help: "Holt-Winters with additive trend and season of --period",
		build: func(s modelParams) (forecasting.Model, error) {
			cfg := expsmoothing.DefaultConfig()
			if s.settings.Period > 1 {
				cfg.Period = s.settings.Period
			} else {
				cfg.Seasonal = expsmoothing.NoSeasonality
			}
			return expsmoothing.New(cfg, s.targets...), nil
		},
	},
	"theta": {
		help: "classical Theta method",
		build: func(s modelParams) (forecasting.Model, error) {
			cfg := theta.DefaultConfig()
			cfg.SeasonalityPeriod = s.settings.Period
			return theta.New(cfg, s.targets...), nil
		},
	},
	"four-theta": {
		help: "Theta with exponential trend and multiplicative combination",
		build: func(s modelParams) (forecasting.Model, error) {
			cfg := theta.DefaultFourThetaConfig()
			cfg.SeasonalityPeriod = s.settings.Period
			cfg.Trend = theta.ExponentialTrend
			cfg.Model = theta.MultiplicativeModel
			return theta.NewFourTheta(cfg, s.targets...), nil
		},
	},
	"fft": {
		help: "strongest Fourier frequencies over a linear trend",
		build: func(s modelParams) (forecasting.Model, error) {
			cfg := fft.DefaultConfig()
			cfg.Detrend = fft.PolynomialDetrend
			return fft.New(cfg, s.targets...), nil
		},
	},
	"window-model": {
		help: "dense window network reading every column",
		build: func(s modelParams) (forecasting.Model, error) {
			cfg := neural.DefaultConfig()
			cfg.InputSize = s.width
			cfg.OutputSize = max(len(s.targets), 1)
			cfg.Seed = s.settings.Seed
			cfg.Logger = s.logger
			if s.settings.InputLength > 0 {
				cfg.InputLength = s.settings.InputLength
			}
			if s.settings.OutputLength > 0 {
				cfg.OutputLength = s.settings.OutputLength
			}
			if s.settings.Epochs > 0 {
				cfg.Epochs = s.settings.Epochs
			}
			return neural.New(cfg, s.targets...), nil
		},
	},
}

func buildModel(name string, s modelParams) (forecasting.Model, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q (see goforecast models): %w", name, forecasting.ErrConfiguration)
	}
	return f.build(s)
}

func modelNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

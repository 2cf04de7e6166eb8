package forecasting

import (
	"errors"
	"fmt"

	"github.com/sartorproj/goforecast/timeseries"
)

var (
	// ErrConfiguration is returned for invalid model or backtest settings.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrMissingTargets is returned when a multivariate series is given to
	// a model that has no target components configured. It wraps
	// ErrConfiguration.
	ErrMissingTargets = fmt.Errorf("missing target indices: %w", ErrConfiguration)

	// ErrTargetMismatch is returned when a target series does not hold the
	// components the model forecasts. It wraps ErrConfiguration.
	ErrTargetMismatch = fmt.Errorf("target indices mismatch: %w", ErrConfiguration)

	// ErrHorizonExceeded is returned when a forecast longer than the
	// native output length is requested without full output length. It
	// wraps ErrConfiguration.
	ErrHorizonExceeded = fmt.Errorf("horizon exceeds output length: %w", ErrConfiguration)

	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("model must be fitted before prediction")

	// ErrDimensionMismatch is returned when widths or indices disagree.
	ErrDimensionMismatch = timeseries.ErrDimensionMismatch
)

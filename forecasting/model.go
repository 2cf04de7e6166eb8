package forecasting

import (
	"github.com/sartorproj/goforecast/timeseries"
)

// Model is implemented by every forecasting model.
type Model interface {
	// Name identifies the model in logs, metrics and results.
	Name() string
	Capabilities() Capabilities
	// Targets returns the configured target components, or nil.
	Targets() []timeseries.ComponentID
	Fit(train *timeseries.Series, opts ...FitOption) error
	// Predict forecasts n steps after the end of the training series.
	// The result has one component per target.
	Predict(n int, opts ...PredictOption) (*timeseries.Series, error)
}

// Capabilities describes the shape a model consumes and produces.
type Capabilities struct {
	// InputSize is the number of components read per time step.
	InputSize int
	// OutputSize is the number of components forecast.
	OutputSize int
	// OutputLength is the native forecast length of one internal call;
	// 0 means any length.
	OutputLength int
}

// FitOption customises a single Fit call.
type FitOption func(*FitOptions)

// FitOptions holds the resolved fit options.
type FitOptions struct {
	Validation *timeseries.Series
	Targets    []timeseries.ComponentID
}

// WithValidation supplies a series for model selection during training.
// Models that do not validate ignore it.
func WithValidation(series *timeseries.Series) FitOption {
	return func(o *FitOptions) {
		o.Validation = series
	}
}

// WithTargets overrides the configured targets for this fit.
func WithTargets(ids ...timeseries.ComponentID) FitOption {
	return func(o *FitOptions) {
		o.Targets = ids
	}
}

// NewFitOptions applies opts over the configured targets.
func NewFitOptions(configured []timeseries.ComponentID, opts ...FitOption) FitOptions {
	o := FitOptions{Targets: configured}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// PredictOption customises a single Predict call.
type PredictOption func(*PredictOptions)

// PredictOptions holds the resolved predict options.
type PredictOptions struct {
	FullOutputLength bool
}

// UseFullOutputLength lets a model with a fixed output length issue as
// many native calls as needed to cover the horizon.
func UseFullOutputLength(full bool) PredictOption {
	return func(o *PredictOptions) {
		o.FullOutputLength = full
	}
}

// NewPredictOptions applies opts over the defaults.
func NewPredictOptions(opts ...PredictOption) PredictOptions {
	var o PredictOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

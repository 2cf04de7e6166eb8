package forecasting

import (
	"fmt"

	"github.com/sartorproj/goforecast/timeseries"
)

// Univariate holds the bookkeeping shared by models that forecast one
// target component from its own history. Embed it and call Prepare at
// the start of Fit, MarkFitted at the end, and Forecast from Predict.
type Univariate struct {
	targets []timeseries.ComponentID
	target  int
	train   *timeseries.Series
	fitted  bool
}

// SetTargets configures the target component. At most one is allowed.
func (u *Univariate) SetTargets(ids ...timeseries.ComponentID) {
	u.targets = ids
}

// Targets returns the configured target.
func (u *Univariate) Targets() []timeseries.ComponentID {
	return u.targets
}

// Capabilities reports a single-input, single-output model of unbounded
// output length.
func (u *Univariate) Capabilities() Capabilities {
	return Capabilities{InputSize: 1, OutputSize: 1}
}

// Prepare resolves the target of train and returns its values. It resets
// the fitted state.
func (u *Univariate) Prepare(train *timeseries.Series, opts ...FitOption) ([]float64, error) {
	u.fitted = false
	o := NewFitOptions(u.targets, opts...)

	cols, err := ResolveTargets(train, o.Targets, u.Capabilities())
	if err != nil {
		return nil, err
	}
	component, err := train.SelectIndices(cols...)
	if err != nil {
		return nil, err
	}

	u.target = cols[0]
	u.train = component
	return component.Column(0), nil
}

// MarkFitted records a successful fit.
func (u *Univariate) MarkFitted() {
	u.fitted = true
}

// Fitted reports whether the model has been fitted.
func (u *Univariate) Fitted() bool {
	return u.fitted
}

// Training returns the target component of the last training series.
func (u *Univariate) Training() *timeseries.Series {
	return u.train
}

// TargetIndex returns the ordinal resolved at the last fit.
func (u *Univariate) TargetIndex() int {
	return u.target
}

// CheckPredict validates a Predict call.
func (u *Univariate) CheckPredict(n int) error {
	if !u.fitted {
		return ErrNotFitted
	}
	if n < 1 {
		return fmt.Errorf("forecast horizon %d: %w", n, ErrConfiguration)
	}
	return nil
}

// Forecast wraps values into a series continuing the training index and
// named after the target component.
func (u *Univariate) Forecast(values []float64) (*timeseries.Series, error) {
	times, err := u.train.TimesAfter(len(values))
	if err != nil {
		return nil, err
	}
	return timeseries.NewMultivariate(times, [][]float64{values}, u.train.Components(),
		timeseries.WithFreq(u.train.Freq()))
}

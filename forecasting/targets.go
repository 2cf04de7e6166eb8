package forecasting

import (
	"fmt"

	"github.com/sartorproj/goforecast/timeseries"
)

// ResolveTargets turns target identifiers into ordinals of series.
//
// Without targets a univariate series resolves to its only component and
// a multivariate one fails with ErrMissingTargets. When caps.OutputSize
// is set, the number of targets must match it.
func ResolveTargets(series *timeseries.Series, targets []timeseries.ComponentID, caps Capabilities) ([]int, error) {
	if len(targets) == 0 {
		if series.Width() > 1 {
			return nil, fmt.Errorf("series has %d components: %w", series.Width(), ErrMissingTargets)
		}
		return []int{0}, nil
	}

	cols, err := series.Resolve(targets...)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(cols))
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("component #%d targeted twice: %w", c, ErrConfiguration)
		}
		seen[c] = struct{}{}
	}

	if caps.OutputSize > 0 && len(cols) != caps.OutputSize {
		return nil, fmt.Errorf("%d targets for output size %d: %w", len(cols), caps.OutputSize, ErrConfiguration)
	}
	return cols, nil
}

// CheckInputSize verifies that a model reading every component of the
// series was configured for its width.
func CheckInputSize(series *timeseries.Series, caps Capabilities) error {
	if caps.InputSize > 0 && series.Width() != caps.InputSize {
		return fmt.Errorf("series has %d components, model input size is %d: %w",
			series.Width(), caps.InputSize, ErrConfiguration)
	}
	return nil
}

// TargetNames returns the names of the resolved target components.
func TargetNames(series *timeseries.Series, cols []int) []string {
	all := series.Components()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = all[c]
	}
	return names
}

package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/timeseries"
)

var (
	// ErrDimensionMismatch is returned when the two series do not share
	// index and width.
	ErrDimensionMismatch = timeseries.ErrDimensionMismatch

	// ErrZeroActual is returned by percentage metrics whose denominator
	// would be zero.
	ErrZeroActual = errors.New("actual values contain zeros")

	// ErrUnknownMetric is returned by Lookup.
	ErrUnknownMetric = errors.New("unknown metric")
)

// Func scores a prediction against the actual values.
type Func func(actual, predicted *timeseries.Series) (float64, error)

// columnFunc scores one component.
type columnFunc func(actual, predicted []float64) (float64, error)

func (fn columnFunc) averaged(actual, predicted *timeseries.Series) (float64, error) {
	scores, err := perComponent(actual, predicted, fn)
	if err != nil {
		return 0, err
	}
	return stat.Mean(scores, nil), nil
}

// PerComponent returns metric scored separately for every component.
func PerComponent(actual, predicted *timeseries.Series, metric Func) ([]float64, error) {
	if err := aligned(actual, predicted); err != nil {
		return nil, err
	}
	scores := make([]float64, actual.Width())
	for c := range scores {
		a, err := actual.SelectIndices(c)
		if err != nil {
			return nil, err
		}
		p, err := predicted.SelectIndices(c)
		if err != nil {
			return nil, err
		}
		if scores[c], err = metric(a, p); err != nil {
			return nil, err
		}
	}
	return scores, nil
}

func perComponent(actual, predicted *timeseries.Series, fn columnFunc) ([]float64, error) {
	if err := aligned(actual, predicted); err != nil {
		return nil, err
	}
	if actual.Len() == 0 {
		return nil, fmt.Errorf("score empty series: %w", ErrDimensionMismatch)
	}
	scores := make([]float64, actual.Width())
	for c := range scores {
		var err error
		if scores[c], err = fn(actual.Column(c), predicted.Column(c)); err != nil {
			return nil, fmt.Errorf("component %q: %w", actual.Components()[c], err)
		}
	}
	return scores, nil
}

func aligned(actual, predicted *timeseries.Series) error {
	if actual.Width() != predicted.Width() {
		return fmt.Errorf("%d actual components, %d predicted: %w", actual.Width(), predicted.Width(), ErrDimensionMismatch)
	}
	if actual.Len() != predicted.Len() {
		return fmt.Errorf("%d actual rows, %d predicted: %w", actual.Len(), predicted.Len(), ErrDimensionMismatch)
	}
	for i := 0; i < actual.Len(); i++ {
		if !actual.Time(i).Equal(predicted.Time(i)) {
			return fmt.Errorf("time index differs at row %d: %w", i, ErrDimensionMismatch)
		}
	}
	return nil
}

// R2 is the coefficient of determination 1 - SS_res/SS_tot.
func R2(actual, predicted *timeseries.Series) (float64, error) {
	return columnFunc(func(a, p []float64) (float64, error) {
		return stat.RSquaredFrom(p, a, nil), nil
	}).averaged(actual, predicted)
}

// MAE is the mean absolute error.
func MAE(actual, predicted *timeseries.Series) (float64, error) {
	return columnFunc(func(a, p []float64) (float64, error) {
		sum := 0.0
		for i := range a {
			sum += math.Abs(a[i] - p[i])
		}
		return sum / float64(len(a)), nil
	}).averaged(actual, predicted)
}

// MSE is the mean squared error.
func MSE(actual, predicted *timeseries.Series) (float64, error) {
	return columnFunc(mse).averaged(actual, predicted)
}

// RMSE is the root mean squared error.
func RMSE(actual, predicted *timeseries.Series) (float64, error) {
	return columnFunc(func(a, p []float64) (float64, error) {
		m, _ := mse(a, p)
		return math.Sqrt(m), nil
	}).averaged(actual, predicted)
}

func mse(a, p []float64) (float64, error) {
	d := make([]float64, len(a))
	floats.SubTo(d, a, p)
	return floats.Dot(d, d) / float64(len(a)), nil
}

// MAPE is the mean absolute percentage error, in percent.
func MAPE(actual, predicted *timeseries.Series) (float64, error) {
	return columnFunc(func(a, p []float64) (float64, error) {
		sum := 0.0
		for i := range a {
			if a[i] == 0 {
				return 0, ErrZeroActual
			}
			sum += math.Abs((a[i] - p[i]) / a[i])
		}
		return 100 * sum / float64(len(a)), nil
	}).averaged(actual, predicted)
}

// SMAPE is the symmetric mean absolute percentage error, in percent,
// bounded by 200.
func SMAPE(actual, predicted *timeseries.Series) (float64, error) {
	return columnFunc(func(a, p []float64) (float64, error) {
		sum := 0.0
		for i := range a {
			den := (math.Abs(a[i]) + math.Abs(p[i])) / 2
			if den == 0 {
				return 0, ErrZeroActual
			}
			sum += math.Abs(a[i]-p[i]) / den
		}
		return 100 * sum / float64(len(a)), nil
	}).averaged(actual, predicted)
}

// OPE is the overall percentage error |sum(a - p)| / |sum(a)|, in percent.
func OPE(actual, predicted *timeseries.Series) (float64, error) {
	return columnFunc(func(a, p []float64) (float64, error) {
		total := floats.Sum(a)
		if total == 0 {
			return 0, ErrZeroActual
		}
		return 100 * math.Abs((total-floats.Sum(p))/total), nil
	}).averaged(actual, predicted)
}

// CoefficientOfVariation is RMSE relative to the actual mean, in percent.
func CoefficientOfVariation(actual, predicted *timeseries.Series) (float64, error) {
	return columnFunc(func(a, p []float64) (float64, error) {
		mean := stat.Mean(a, nil)
		if mean == 0 {
			return 0, ErrZeroActual
		}
		m, _ := mse(a, p)
		return 100 * math.Sqrt(m) / mean, nil
	}).averaged(actual, predicted)
}

// Residuals returns actual minus predicted.
func Residuals(actual, predicted *timeseries.Series) (*timeseries.Series, error) {
	if err := aligned(actual, predicted); err != nil {
		return nil, err
	}
	return actual.Sub(predicted)
}

var registry = map[string]Func{
	"r2":    R2,
	"mae":   MAE,
	"mse":   MSE,
	"rmse":  RMSE,
	"mape":  MAPE,
	"smape": SMAPE,
	"ope":   OPE,
	"cv":    CoefficientOfVariation,
}

// Lookup returns the metric registered under name (case insensitive).
func Lookup(name string) (Func, error) {
	fn, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownMetric)
	}
	return fn, nil
}

// Parse resolves a list of metric names into a name -> Func map.
func Parse(names ...string) (map[string]Func, error) {
	out := make(map[string]Func, len(names))
	for _, name := range names {
		fn, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		out[strings.ToLower(strings.TrimSpace(name))] = fn
	}
	return out, nil
}

// Names lists the registered metric names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

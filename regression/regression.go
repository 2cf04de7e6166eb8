package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

// ErrRankDeficient is returned when the features are linearly dependent.
var ErrRankDeficient = errors.New("regression: features are linearly dependent")

// Model is a linear regression of one target component on features.
type Model struct {
	FitIntercept bool

	Coefficients []float64
	Intercept    float64

	features []string
	target   []string
	freq     timeseries.Freq
	fitted   bool
}

// New creates a model that fits an intercept.
func New() *Model {
	return &Model{FitIntercept: true}
}

// Name identifies the model.
func (m *Model) Name() string { return "linear-regression" }

// Fit regresses target on the components of features. Both series must
// share their index; target must have a single component.
func (m *Model) Fit(features, target *timeseries.Series) error {
	m.fitted = false
	if target.Width() != 1 {
		return fmt.Errorf("target has %d components: %w", target.Width(), forecasting.ErrConfiguration)
	}
	if err := sameIndex(features, target); err != nil {
		return err
	}

	n, k := features.Len(), features.Width()
	cols := k
	if m.FitIntercept {
		cols++
	}
	if n < cols {
		return fmt.Errorf("%d rows for %d coefficients: %w", n, cols, forecasting.ErrConfiguration)
	}

	x := m.design(features)
	y := mat.NewVecDense(n, target.Column(0))

	var qr mat.QR
	qr.Factorize(x)
	if c := qr.Cond(); c > 1e12 || math.IsNaN(c) {
		return ErrRankDeficient
	}
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return fmt.Errorf("%w: %v", ErrRankDeficient, err)
	}

	coef := beta.RawVector().Data
	if m.FitIntercept {
		m.Intercept, m.Coefficients = coef[0], append([]float64(nil), coef[1:]...)
	} else {
		m.Intercept, m.Coefficients = 0, append([]float64(nil), coef...)
	}
	m.features = features.Components()
	m.target = target.Components()
	m.freq = target.Freq()
	m.fitted = true
	return nil
}

func (m *Model) design(features *timeseries.Series) *mat.Dense {
	n, k := features.Len(), features.Width()
	offset := 0
	if m.FitIntercept {
		offset = 1
	}
	x := mat.NewDense(n, k+offset, nil)
	for i := 0; i < n; i++ {
		if m.FitIntercept {
			x.Set(i, 0, 1)
		}
		for j, v := range features.Row(i) {
			x.Set(i, j+offset, v)
		}
	}
	return x
}

// Predict evaluates the fitted regression on every row of features. The
// result shares the index of features and is named after the target.
func (m *Model) Predict(features *timeseries.Series) (*timeseries.Series, error) {
	if !m.fitted {
		return nil, forecasting.ErrNotFitted
	}
	if features.Width() != len(m.features) {
		return nil, fmt.Errorf("features have %d components, model was fit on %d: %w",
			features.Width(), len(m.features), forecasting.ErrDimensionMismatch)
	}

	out := make([]float64, features.Len())
	for i := range out {
		v := m.Intercept
		for j, x := range features.Row(i) {
			v += m.Coefficients[j] * x
		}
		out[i] = v
	}
	freq := features.Freq()
	if freq.IsZero() {
		freq = m.freq
	}
	return timeseries.NewMultivariate(features.Timestamps(), [][]float64{out}, m.target,
		timeseries.WithFreq(freq))
}

func sameIndex(a, b *timeseries.Series) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("features have %d rows, target %d: %w", a.Len(), b.Len(), forecasting.ErrDimensionMismatch)
	}
	ta, tb := a.Timestamps(), b.Timestamps()
	for i := range ta {
		if !ta[i].Equal(tb[i]) {
			return fmt.Errorf("features and target differ at row %d: %w", i, forecasting.ErrDimensionMismatch)
		}
	}
	return nil
}

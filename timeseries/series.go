package timeseries

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Series is an immutable, possibly multivariate time series. Values are
// stored row-major: one row per timestamp, one column per component.
type Series struct {
	times      []time.Time
	components []string
	data       []float64
	width      int
	freq       Freq
}

// Option customises series construction.
type Option func(*options)

type options struct {
	freq Freq
}

// WithFreq sets the frequency instead of inferring it from the index.
// It is required to extend single-row series into the future.
func WithFreq(f Freq) Option {
	return func(o *options) {
		o.freq = f
	}
}

// epoch anchors the synthetic index used by New.
var epoch = time.Unix(0, 0).UTC()

// New creates a univariate series from values on an hourly index.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = epoch.Add(time.Duration(i) * time.Hour)
	}
	data := make([]float64, len(values))
	copy(data, values)
	return &Series{
		times:      timestamps,
		components: ordinalNames(1),
		data:       data,
		width:      1,
		freq:       Every(time.Hour),
	}
}

// NewWithTimestamps creates a univariate series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64, opts ...Option) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("%d timestamps for %d values: %w", len(timestamps), len(values), ErrDimensionMismatch)
	}
	data := make([]float64, len(values))
	copy(data, values)
	return build(timestamps, data, 1, nil, opts)
}

// NewMultivariate creates a series from one slice per component. names
// may be nil, in which case components are named by ordinal.
func NewMultivariate(timestamps []time.Time, columns [][]float64, names []string, opts ...Option) (*Series, error) {
	width := len(columns)
	if width == 0 {
		return nil, ErrEmpty
	}
	data := make([]float64, len(timestamps)*width)
	for c, col := range columns {
		if len(col) != len(timestamps) {
			return nil, fmt.Errorf("component %d has %d values for %d timestamps: %w",
				c, len(col), len(timestamps), ErrDimensionMismatch)
		}
		for r, v := range col {
			data[r*width+c] = v
		}
	}
	return build(timestamps, data, width, names, opts)
}

// FromRows creates a series from one slice per timestamp.
func FromRows(timestamps []time.Time, rows [][]float64, names []string, opts ...Option) (*Series, error) {
	if len(rows) != len(timestamps) {
		return nil, fmt.Errorf("%d rows for %d timestamps: %w", len(rows), len(timestamps), ErrDimensionMismatch)
	}
	width := len(names)
	if len(rows) > 0 {
		width = len(rows[0])
	}
	if width == 0 {
		return nil, ErrEmpty
	}
	data := make([]float64, 0, len(rows)*width)
	for r, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d values, expected %d: %w", r, len(row), width, ErrDimensionMismatch)
		}
		data = append(data, row...)
	}
	return build(timestamps, data, width, names, opts)
}

func build(timestamps []time.Time, data []float64, width int, names []string, opts []Option) (*Series, error) {
	if width < 1 {
		return nil, ErrEmpty
	}
	if names == nil {
		names = ordinalNames(width)
	}
	if len(names) != width {
		return nil, fmt.Errorf("%d names for %d components: %w", len(names), width, ErrDimensionMismatch)
	}
	seen := make(map[string]struct{}, width)
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate component name %q", name)
		}
		seen[name] = struct{}{}
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, fmt.Errorf("at position %d: %w", i, ErrUnsortedIndex)
		}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.freq.IsZero() {
		o.freq = inferFreq(timestamps)
	}

	ts := make([]time.Time, len(timestamps))
	copy(ts, timestamps)
	cn := make([]string, width)
	copy(cn, names)

	return &Series{
		times:      ts,
		components: cn,
		data:       data,
		width:      width,
		freq:       o.freq,
	}, nil
}

// derive builds a series from freshly allocated slices owned by the caller.
func derive(times []time.Time, data []float64, width int, names []string, freq Freq) *Series {
	return &Series{
		times:      times,
		components: names,
		data:       data,
		width:      width,
		freq:       freq,
	}
}

// Len returns the number of timestamps.
func (s *Series) Len() int {
	return len(s.times)
}

// Width returns the number of components.
func (s *Series) Width() int {
	return s.width
}

// Freq returns the frequency of the index.
func (s *Series) Freq() Freq {
	return s.freq
}

// Components returns the component names.
func (s *Series) Components() []string {
	out := make([]string, len(s.components))
	copy(out, s.components)
	return out
}

// Timestamps returns a copy of the time index.
func (s *Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.times))
	copy(out, s.times)
	return out
}

// Time returns the timestamp at position i.
func (s *Series) Time(i int) time.Time {
	return s.times[i]
}

// StartTime returns the first timestamp, or the zero time for an empty series.
func (s *Series) StartTime() time.Time {
	if len(s.times) == 0 {
		return time.Time{}
	}
	return s.times[0]
}

// EndTime returns the last timestamp, or the zero time for an empty series.
func (s *Series) EndTime() time.Time {
	if len(s.times) == 0 {
		return time.Time{}
	}
	return s.times[len(s.times)-1]
}

// At returns the value at row r and component c.
func (s *Series) At(r, c int) float64 {
	return s.data[r*s.width+c]
}

// Row returns a copy of the values at position r.
func (s *Series) Row(r int) []float64 {
	out := make([]float64, s.width)
	copy(out, s.data[r*s.width:(r+1)*s.width])
	return out
}

// Column returns a copy of component c.
func (s *Series) Column(c int) []float64 {
	out := make([]float64, len(s.times))
	for r := range out {
		out[r] = s.data[r*s.width+c]
	}
	return out
}

// Values returns a copy of all values, one slice per timestamp.
func (s *Series) Values() [][]float64 {
	out := make([][]float64, len(s.times))
	for r := range out {
		out[r] = s.Row(r)
	}
	return out
}

// Matrix returns the values as a dense (time x component) matrix, or nil
// for an empty series.
func (s *Series) Matrix() *mat.Dense {
	if len(s.times) == 0 {
		return nil
	}
	data := make([]float64, len(s.data))
	copy(data, s.data)
	return mat.NewDense(len(s.times), s.width, data)
}

// Univariate returns the values of a single-component series.
func (s *Series) Univariate() ([]float64, error) {
	if s.width != 1 {
		return nil, fmt.Errorf("series has %d components, expected 1: %w", s.width, ErrDimensionMismatch)
	}
	return s.Column(0), nil
}

// Sum returns the sum of each component.
func (s *Series) Sum() []float64 {
	out := make([]float64, s.width)
	for c := range out {
		out[c] = floats.Sum(s.Column(c))
	}
	return out
}

// RowSums returns the sum across components for every timestamp.
func (s *Series) RowSums() []float64 {
	out := make([]float64, len(s.times))
	for r := range out {
		out[r] = floats.Sum(s.data[r*s.width : (r+1)*s.width])
	}
	return out
}

// Mean returns the arithmetic mean of each component.
func (s *Series) Mean() []float64 {
	out := make([]float64, s.width)
	if len(s.times) == 0 {
		return out
	}
	for c := range out {
		out[c] = stat.Mean(s.Column(c), nil)
	}
	return out
}

// Std returns the sample standard deviation of each component.
func (s *Series) Std() []float64 {
	out := make([]float64, s.width)
	if len(s.times) < 2 {
		return out
	}
	for c := range out {
		out[c] = stat.StdDev(s.Column(c), nil)
	}
	return out
}

// Min returns the minimum of each component.
func (s *Series) Min() []float64 {
	out := make([]float64, s.width)
	for c := range out {
		if len(s.times) == 0 {
			out[c] = math.NaN()
			continue
		}
		out[c] = floats.Min(s.Column(c))
	}
	return out
}

// Max returns the maximum of each component.
func (s *Series) Max() []float64 {
	out := make([]float64, s.width)
	for c := range out {
		if len(s.times) == 0 {
			out[c] = math.NaN()
			continue
		}
		out[c] = floats.Max(s.Column(c))
	}
	return out
}

// Equal reports whether both series have the same index, components and values.
func (s *Series) Equal(other *Series) bool {
	if other == nil || s.width != other.width || len(s.times) != len(other.times) {
		return false
	}
	for i, name := range s.components {
		if other.components[i] != name {
			return false
		}
	}
	for i, t := range s.times {
		if !other.times[i].Equal(t) {
			return false
		}
	}
	return floats.Equal(s.data, other.data)
}

func (s *Series) String() string {
	return fmt.Sprintf("Series(len=%d, components=%v, start=%s, end=%s, freq=%s)",
		len(s.times), s.components, s.StartTime().Format(time.RFC3339), s.EndTime().Format(time.RFC3339), s.freq)
}

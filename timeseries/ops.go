package timeseries

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Slice returns rows [start, end).
func (s *Series) Slice(start, end int) (*Series, error) {
	if start < 0 || end > len(s.times) || start > end {
		return nil, fmt.Errorf("slice [%d, %d) of %d rows: %w", start, end, len(s.times), ErrOutOfRange)
	}

	times := make([]time.Time, end-start)
	copy(times, s.times[start:end])
	data := make([]float64, (end-start)*s.width)
	copy(data, s.data[start*s.width:end*s.width])

	return derive(times, data, s.width, s.Components(), s.freq), nil
}

// IndexOf returns the position of timestamp t.
func (s *Series) IndexOf(t time.Time) (int, error) {
	i := sort.Search(len(s.times), func(i int) bool {
		return !s.times[i].Before(t)
	})
	if i == len(s.times) || !s.times[i].Equal(t) {
		return -1, fmt.Errorf("timestamp %s not in index: %w", t.Format(time.RFC3339), ErrOutOfRange)
	}
	return i, nil
}

// SliceTime returns the rows with start <= t < end. Both bounds must lie
// within [StartTime, EndTime] extended by one frequency step.
func (s *Series) SliceTime(start, end time.Time) (*Series, error) {
	if len(s.times) == 0 || end.Before(start) {
		return nil, fmt.Errorf("time slice [%s, %s): %w", start, end, ErrOutOfRange)
	}
	limit := s.EndTime()
	if !s.freq.IsZero() {
		limit = s.freq.Add(limit, 1)
	}
	if start.Before(s.StartTime()) || end.After(limit) {
		return nil, fmt.Errorf("time slice [%s, %s) outside [%s, %s]: %w",
			start.Format(time.RFC3339), end.Format(time.RFC3339),
			s.StartTime().Format(time.RFC3339), limit.Format(time.RFC3339), ErrOutOfRange)
	}
	lo := sort.Search(len(s.times), func(i int) bool { return !s.times[i].Before(start) })
	hi := sort.Search(len(s.times), func(i int) bool { return !s.times[i].Before(end) })
	return s.Slice(lo, hi)
}

// Before returns every row strictly before t. t must be inside the index.
func (s *Series) Before(t time.Time) (*Series, error) {
	i, err := s.IndexOf(t)
	if err != nil {
		return nil, err
	}
	return s.Slice(0, i)
}

// AtTimes returns the rows at the given timestamps, in the given order.
func (s *Series) AtTimes(timestamps []time.Time) (*Series, error) {
	times := make([]time.Time, len(timestamps))
	data := make([]float64, 0, len(timestamps)*s.width)
	for i, t := range timestamps {
		r, err := s.IndexOf(t)
		if err != nil {
			return nil, err
		}
		times[i] = t
		data = append(data, s.data[r*s.width:(r+1)*s.width]...)
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("at position %d: %w", i, ErrUnsortedIndex)
		}
	}
	freq := inferFreq(times)
	if freq.IsZero() && len(times) < 2 {
		freq = s.freq
	}
	return derive(times, data, s.width, s.Components(), freq), nil
}

// Select returns the requested components in request order.
func (s *Series) Select(ids ...ComponentID) (*Series, error) {
	if len(ids) == 0 {
		return nil, ErrEmpty
	}
	cols, err := s.Resolve(ids...)
	if err != nil {
		return nil, err
	}
	return s.columns(cols), nil
}

// Component returns a single component as a univariate series.
func (s *Series) Component(id ComponentID) (*Series, error) {
	return s.Select(id)
}

// SelectIndices is Select for already resolved ordinals.
func (s *Series) SelectIndices(cols ...int) (*Series, error) {
	if len(cols) == 0 {
		return nil, ErrEmpty
	}
	for _, c := range cols {
		if c < 0 || c >= s.width {
			return nil, fmt.Errorf("component #%d of %d: %w", c, s.width, ErrOutOfRange)
		}
	}
	return s.columns(cols), nil
}

func (s *Series) columns(cols []int) *Series {
	width := len(cols)
	names := make([]string, width)
	for i, c := range cols {
		names[i] = s.components[c]
	}
	data := make([]float64, len(s.times)*width)
	for r := range s.times {
		for i, c := range cols {
			data[r*width+i] = s.data[r*s.width+c]
		}
	}
	return derive(s.Timestamps(), data, width, names, s.freq)
}

// Stack concatenates the components of other after those of s. Both series
// must share the same time index. The names of s are kept; a name of other
// that is already taken gets the first free suffix "_1", "_2" and so on.
func (s *Series) Stack(other *Series) (*Series, error) {
	if !s.sameIndex(other) {
		return nil, fmt.Errorf("stack: %w", ErrDimensionMismatch)
	}

	width := s.width + other.width
	names := s.Components()
	taken := make(map[string]struct{}, width)
	for _, name := range names {
		taken[name] = struct{}{}
	}
	for _, name := range other.components {
		unique := name
		for k := 1; ; k++ {
			if _, ok := taken[unique]; !ok {
				break
			}
			unique = name + "_" + strconv.Itoa(k)
		}
		taken[unique] = struct{}{}
		names = append(names, unique)
	}

	data := make([]float64, len(s.times)*width)
	for r := range s.times {
		copy(data[r*width:], s.data[r*s.width:(r+1)*s.width])
		copy(data[r*width+s.width:], other.data[r*other.width:(r+1)*other.width])
	}
	return derive(s.Timestamps(), data, width, names, s.freq), nil
}

// Append returns s followed by other. other must have the same components
// and start exactly one frequency step after s ends.
func (s *Series) Append(other *Series) (*Series, error) {
	if s.width != other.width {
		return nil, fmt.Errorf("append %d components to %d: %w", other.width, s.width, ErrDimensionMismatch)
	}
	for i, name := range s.components {
		if other.components[i] != name {
			return nil, fmt.Errorf("append component %q onto %q: %w", other.components[i], name, ErrDimensionMismatch)
		}
	}
	if len(s.times) > 0 && len(other.times) > 0 {
		if s.freq.IsZero() {
			if !other.times[0].After(s.EndTime()) {
				return nil, fmt.Errorf("append at %s overlaps series ending %s: %w",
					other.StartTime().Format(time.RFC3339), s.EndTime().Format(time.RFC3339), ErrUnsortedIndex)
			}
		} else if next := s.freq.Add(s.EndTime(), 1); !other.times[0].Equal(next) {
			return nil, fmt.Errorf("append at %s, expected %s: %w",
				other.StartTime().Format(time.RFC3339), next.Format(time.RFC3339), ErrDimensionMismatch)
		}
	}

	times := make([]time.Time, 0, len(s.times)+len(other.times))
	times = append(append(times, s.times...), other.times...)
	data := make([]float64, 0, len(s.data)+len(other.data))
	data = append(append(data, s.data...), other.data...)

	freq := s.freq
	if freq.IsZero() {
		freq = other.freq
	}
	return derive(times, data, s.width, s.Components(), freq), nil
}

// Sub returns s minus other element-wise. Both series must share index and width.
func (s *Series) Sub(other *Series) (*Series, error) {
	if s.width != other.width || !s.sameIndex(other) {
		return nil, fmt.Errorf("sub: %w", ErrDimensionMismatch)
	}
	data := make([]float64, len(s.data))
	for i, v := range s.data {
		data[i] = v - other.data[i]
	}
	return derive(s.Timestamps(), data, s.width, s.Components(), s.freq), nil
}

// Map applies fn to every value.
func (s *Series) Map(fn func(float64) float64) *Series {
	data := make([]float64, len(s.data))
	for i, v := range s.data {
		data[i] = fn(v)
	}
	return derive(s.Timestamps(), data, s.width, s.Components(), s.freq)
}

// Rename returns the series with new component names.
func (s *Series) Rename(names ...string) (*Series, error) {
	data := make([]float64, len(s.data))
	copy(data, s.data)
	return build(s.times, data, s.width, names, []Option{WithFreq(s.freq)})
}

// TimesAfter returns the n timestamps following the end of the series.
func (s *Series) TimesAfter(n int) ([]time.Time, error) {
	if len(s.times) == 0 {
		return nil, fmt.Errorf("times after empty series: %w", ErrOutOfRange)
	}
	if s.freq.IsZero() {
		return nil, ErrIrregularIndex
	}
	out := make([]time.Time, n)
	for i := range out {
		out[i] = s.freq.Add(s.EndTime(), i+1)
	}
	return out, nil
}

func (s *Series) sameIndex(other *Series) bool {
	if len(s.times) != len(other.times) {
		return false
	}
	for i, t := range s.times {
		if !other.times[i].Equal(t) {
			return false
		}
	}
	return true
}

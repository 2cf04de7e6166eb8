package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan1 = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func twoComponents(t *testing.T) *Series {
	t.Helper()
	s, err := NewMultivariate(DailyFrom(jan1, 5).Times(),
		[][]float64{{1, 2, 3, 4, 5}, {10, 20, 30, 40, 50}}, []string{"a", "b"})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	s := New(values)

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 1, s.Width())
	assert.Equal(t, []string{"0"}, s.Components())
	assert.Equal(t, Every(time.Hour), s.Freq())

	got, err := s.Univariate()
	require.NoError(t, err)
	assert.Equal(t, values, got)

	// The series owns its data.
	values[0] = 100
	assert.Equal(t, 1.0, s.At(0, 0))
}

func TestNewWithTimestampsValidation(t *testing.T) {
	_, err := NewWithTimestamps([]time.Time{jan1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = NewWithTimestamps([]time.Time{jan1, jan1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrUnsortedIndex)

	_, err = NewMultivariate(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = NewMultivariate([]time.Time{jan1}, [][]float64{{1}, {2}}, []string{"x", "x"})
	assert.Error(t, err)
}

func TestEmptySeries(t *testing.T) {
	s, err := NewWithTimestamps(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, s.Width())
	assert.Nil(t, s.Matrix())
	assert.True(t, math.IsNaN(s.Min()[0]))
}

func TestFromRows(t *testing.T) {
	s, err := FromRows(DailyFrom(jan1, 2).Times(), [][]float64{{1, 2}, {3, 4}}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, s.Components())
	assert.Equal(t, []float64{1, 3}, s.Column(0))
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, s.Values())

	_, err = FromRows(DailyFrom(jan1, 2).Times(), [][]float64{{1, 2}, {3}}, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFreqInference(t *testing.T) {
	tests := []struct {
		name  string
		times []time.Time
		want  Freq
	}{
		{"daily", DailyFrom(jan1, 4).Times(), Daily},
		{"monthly", Range{Start: jan1, Freq: Monthly(1), Length: 6}.Times(), Monthly(1)},
		{"quarterly", Range{Start: jan1, Freq: Monthly(3), Length: 4}.Times(), Monthly(3)},
		{"month end", monthEnds2000(), MonthEnd(1)},
		{"quarter end", []time.Time{
			time.Date(2000, 3, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 6, 30, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 9, 30, 0, 0, 0, 0, time.UTC),
		}, MonthEnd(3)},
		{"irregular", []time.Time{jan1, jan1.Add(time.Hour), jan1.Add(3 * time.Hour)}, Freq{}},
		{"single", []time.Time{jan1}, Freq{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewWithTimestamps(tt.times, make([]float64, len(tt.times)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Freq())
		})
	}
}

func monthEnds2000() []time.Time {
	out := make([]time.Time, 12)
	for i := range out {
		out[i] = time.Date(2000, time.Month(i+2), 0, 0, 0, 0, 0, time.UTC)
	}
	return out
}

func TestMonthEndFreq(t *testing.T) {
	jan31 := time.Date(2000, 1, 31, 0, 0, 0, 0, time.UTC)
	f := MonthEnd(1)

	assert.Equal(t, time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), f.Add(jan31, 1))
	assert.Equal(t, time.Date(2000, 4, 30, 0, 0, 0, 0, time.UTC), f.Add(jan31, 3))
	assert.Equal(t, time.Date(1999, 11, 30, 0, 0, 0, 0, time.UTC), f.Add(jan31, -2))
	assert.Equal(t, monthEnds2000(), Range{Start: jan31, Freq: f, Length: 12}.Times())
	assert.Equal(t, "1mo-end", f.String())

	s, err := NewWithTimestamps(monthEnds2000(), make([]float64, 12))
	require.NoError(t, err)
	next, err := s.TimesAfter(2)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2001, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2001, 2, 28, 0, 0, 0, 0, time.UTC),
	}, next)

	head, err := s.Slice(0, 1)
	require.NoError(t, err)
	next, err = head.TimesAfter(1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), next[0])
}

func TestStatistics(t *testing.T) {
	s := twoComponents(t)

	assert.Equal(t, []float64{15, 150}, s.Sum())
	assert.Equal(t, []float64{3, 30}, s.Mean())
	assert.Equal(t, []float64{1, 10}, s.Min())
	assert.Equal(t, []float64{5, 50}, s.Max())
	assert.Equal(t, []float64{11, 22, 33, 44, 55}, s.RowSums())

	std := s.Std()
	assert.InDelta(t, math.Sqrt(2.5), std[0], 1e-12)
	assert.InDelta(t, 10*math.Sqrt(2.5), std[1], 1e-12)
}

func TestResolve(t *testing.T) {
	s := twoComponents(t)

	cols, err := s.Resolve(Name("b"), Index(0))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, cols)

	_, err = s.Resolve(Index(2))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = s.Resolve(Name("c"))
	assert.ErrorIs(t, err, ErrUnknownComponent)

	assert.Equal(t, "#3", Index(3).String())
	assert.True(t, Name("x").IsName())
}

func TestSelect(t *testing.T) {
	s := twoComponents(t)

	b, err := s.Component(Name("b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, b.Components())
	assert.Equal(t, []float64{10, 20, 30, 40, 50}, b.Column(0))

	swapped, err := s.Select(Indices(1, 0)...)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, swapped.Components())
	assert.Equal(t, []float64{20, 2}, swapped.Row(1))

	_, err = s.Select()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestStack(t *testing.T) {
	s := twoComponents(t)
	c, err := NewWithTimestamps(s.Timestamps(), []float64{7, 7, 7, 7, 7})
	require.NoError(t, err)
	c, err = c.Rename("c")
	require.NoError(t, err)

	stacked, err := s.Stack(c)
	require.NoError(t, err)
	assert.Equal(t, 3, stacked.Width())
	assert.Equal(t, []string{"a", "b", "c"}, stacked.Components())
	assert.Equal(t, []float64{3, 30, 7}, stacked.Row(2))

	twice, err := s.Stack(s)
	require.NoError(t, err)
	assert.Equal(t, 2*s.Width(), twice.Width())
	assert.Equal(t, []string{"a", "b", "a_1", "b_1"}, twice.Components())
	back, err := twice.Select(Indices(0, 1)...)
	require.NoError(t, err)
	assert.True(t, s.Equal(back))
	copied, err := twice.Select(Names("a_1", "b_1")...)
	require.NoError(t, err)
	assert.Equal(t, s.Values(), copied.Values())

	y, err := New([]float64{1, 2, 3, 4, 5}).Rename("y")
	require.NoError(t, err)
	yy, err := y.Stack(y)
	require.NoError(t, err)
	yyy, err := yy.Stack(y)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "y_1", "y_2"}, yyy.Components())
	first, err := yyy.SelectIndices(0)
	require.NoError(t, err)
	assert.True(t, y.Equal(first))

	other := New([]float64{1, 2, 3, 4, 5})
	_, err = s.Stack(other)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSlice(t *testing.T) {
	s := twoComponents(t)

	sub, err := s.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, s.Time(1), sub.StartTime())
	assert.Equal(t, []float64{20, 30}, sub.Column(1))

	empty, err := s.Slice(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	for _, bounds := range [][2]int{{-1, 2}, {0, 6}, {3, 2}} {
		_, err := s.Slice(bounds[0], bounds[1])
		assert.ErrorIs(t, err, ErrOutOfRange, "bounds %v", bounds)
	}
}

func TestSliceTime(t *testing.T) {
	s := twoComponents(t)

	sub, err := s.SliceTime(jan1.AddDate(0, 0, 1), jan1.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, sub.Column(0))

	// One step past the end is a valid exclusive bound.
	tail, err := s.SliceTime(jan1.AddDate(0, 0, 3), jan1.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, 2, tail.Len())

	_, err = s.SliceTime(jan1.AddDate(0, 0, -1), jan1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = s.SliceTime(jan1, jan1.AddDate(0, 0, 9))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBeforeAndAtTimes(t *testing.T) {
	s := twoComponents(t)

	head, err := s.Before(jan1.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, head.Column(0))

	_, err = s.Before(jan1.AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ErrOutOfRange)

	picked, err := s.AtTimes([]time.Time{jan1.AddDate(0, 0, 1), jan1.AddDate(0, 0, 4)})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, picked.Column(0))
	assert.Equal(t, Every(72*time.Hour), picked.Freq())
}

func TestAppend(t *testing.T) {
	s := twoComponents(t)
	head, err := s.Slice(0, 2)
	require.NoError(t, err)
	tail, err := s.Slice(2, 5)
	require.NoError(t, err)

	joined, err := head.Append(tail)
	require.NoError(t, err)
	assert.True(t, s.Equal(joined))

	_, err = head.Append(s)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	a, err := s.Component(Name("a"))
	require.NoError(t, err)
	_, err = head.Append(a)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTimesAfter(t *testing.T) {
	monthly := Constant(Range{Start: jan1, Freq: Monthly(1), Length: 3}, 1)

	next, err := monthly.TimesAfter(2)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2000, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 5, 1, 0, 0, 0, 0, time.UTC),
	}, next)

	irregular, err := NewWithTimestamps([]time.Time{jan1, jan1.Add(time.Hour), jan1.Add(5 * time.Hour)}, []float64{1, 2, 3})
	require.NoError(t, err)
	_, err = irregular.TimesAfter(1)
	assert.ErrorIs(t, err, ErrIrregularIndex)

	single, err := NewWithTimestamps([]time.Time{jan1}, []float64{1}, WithFreq(Daily))
	require.NoError(t, err)
	next, err = single.TimesAfter(1)
	require.NoError(t, err)
	assert.Equal(t, jan1.AddDate(0, 0, 1), next[0])
}

func TestDiff(t *testing.T) {
	s := New([]float64{1, 3, 6, 10, 15})

	assert.Equal(t, []float64{2, 3, 4, 5}, s.Diff().Column(0))
	assert.Equal(t, []float64{5, 7, 9}, s.DiffN(2).Column(0))
	assert.Equal(t, s.Time(1), s.Diff().StartTime())
}

func TestSeasonalDiff(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 11, 12, 13, 14})
	assert.Equal(t, []float64{10, 10, 10, 10}, s.SeasonalDiff(4).Column(0))

	assert.Equal(t, 0, s.SeasonalDiff(10).Len())
}

func TestLag(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5})
	lagged := s.Lag(2)

	assert.Equal(t, []float64{1, 2, 3}, lagged.Column(0))
	assert.Equal(t, s.Time(2), lagged.StartTime())
}

func TestLog(t *testing.T) {
	s := New([]float64{1, math.E, -1})
	logged := s.Log().Column(0)

	assert.InDelta(t, 0, logged[0], 1e-12)
	assert.InDelta(t, 1, logged[1], 1e-12)
	assert.True(t, math.IsNaN(logged[2]))
}

func TestMovingAverage(t *testing.T) {
	s := twoComponents(t)
	ma := s.MovingAverage(3)

	assert.Equal(t, []float64{2, 3, 4}, ma.Column(0))
	assert.Equal(t, []float64{20, 30, 40}, ma.Column(1))
	assert.Equal(t, s.Time(2), ma.StartTime())
}

func TestNormalize(t *testing.T) {
	s := twoComponents(t)
	n := s.Normalize()

	mean := n.Mean()
	std := n.Std()
	for c := 0; c < n.Width(); c++ {
		assert.InDelta(t, 0, mean[c], 1e-12)
		assert.InDelta(t, 1, std[c], 1e-12)
	}
}

func TestImmutability(t *testing.T) {
	s := twoComponents(t)
	before := s.Values()

	_ = s.Map(func(v float64) float64 { return v * 2 })
	_ = s.Diff()
	_, _ = s.Slice(0, 2)
	_, _ = s.Select(Name("b"))
	_, _ = s.Stack(s)

	row := s.Row(0)
	row[0] = -1
	col := s.Column(0)
	col[0] = -1
	s.Matrix().Set(0, 0, -1)
	s.Timestamps()[0] = time.Time{}

	assert.Equal(t, before, s.Values())
	assert.Equal(t, jan1, s.StartTime())
}

func TestSub(t *testing.T) {
	s := twoComponents(t)
	diff, err := s.Sub(s)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, diff.Max())

	_, err = s.Sub(New([]float64{1}))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestGenerators(t *testing.T) {
	r := DailyFrom(jan1, 50)

	line := Linear(r, 0, 49)
	assert.Equal(t, 50, line.Len())
	assert.Equal(t, 17.0, line.At(17, 0))
	assert.Equal(t, Daily, line.Freq())

	a := Gaussian(r, 0, 1, 42)
	b := Gaussian(r, 0, 1, 42)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(Gaussian(r, 0, 1, 43)))

	walk := RandomWalk(r, 0, 1, 42)
	steps := walk.Diff().Column(0)
	assert.InDelta(t, a.At(1, 0), steps[0], 1e-12)

	sine := Sine(r, 0.25, 2, 0, 1)
	assert.InDelta(t, 3, sine.At(1, 0), 1e-12)
}

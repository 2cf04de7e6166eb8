package timeseries

import (
	"fmt"
	"time"
)

// Freq is the spacing between consecutive timestamps. Exactly one of
// Months or Duration is set for a regular index; the zero value means the
// index is irregular or unknown. EndOfMonth anchors a monthly frequency
// to the last day of each month.
type Freq struct {
	Months     int
	Duration   time.Duration
	EndOfMonth bool
}

// Every returns a fixed-duration frequency.
func Every(d time.Duration) Freq {
	return Freq{Duration: d}
}

// Monthly returns a calendar frequency of n months.
func Monthly(n int) Freq {
	return Freq{Months: n}
}

// MonthEnd returns a frequency of n months anchored to month ends.
func MonthEnd(n int) Freq {
	return Freq{Months: n, EndOfMonth: true}
}

// Daily is a frequency of 24 hours.
var Daily = Every(24 * time.Hour)

// IsZero reports whether the frequency is unknown.
func (f Freq) IsZero() bool {
	return f.Months == 0 && f.Duration == 0
}

// Add advances t by k steps.
func (f Freq) Add(t time.Time, k int) time.Time {
	if f.Months != 0 && f.EndOfMonth {
		y, m, _ := t.Date()
		first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
		return first.AddDate(0, f.Months*k+1, -1)
	}
	if f.Months != 0 {
		return t.AddDate(0, f.Months*k, 0)
	}
	return t.Add(time.Duration(k) * f.Duration)
}

func (f Freq) String() string {
	switch {
	case f.Months != 0 && f.EndOfMonth:
		return fmt.Sprintf("%dmo-end", f.Months)
	case f.Months != 0:
		return fmt.Sprintf("%dmo", f.Months)
	case f.Duration != 0:
		return f.Duration.String()
	default:
		return "irregular"
	}
}

// inferFreq detects a month-end step, a fixed duration or a whole-month
// step, in that order.
func inferFreq(ts []time.Time) Freq {
	if len(ts) < 2 {
		return Freq{}
	}
	if f, ok := monthEnds(ts); ok {
		return f
	}

	step := ts[1].Sub(ts[0])
	regular := true
	for i := 2; i < len(ts); i++ {
		if ts[i].Sub(ts[i-1]) != step {
			regular = false
			break
		}
	}
	if regular {
		return Every(step)
	}

	months := monthsBetween(ts[0], ts[1])
	if months <= 0 {
		return Freq{}
	}
	for i := 1; i < len(ts); i++ {
		if !ts[i-1].AddDate(0, months, 0).Equal(ts[i]) {
			return Freq{}
		}
	}
	return Monthly(months)
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// monthEnds reports whether every timestamp is the last day of its month
// and consecutive timestamps are a constant number of months apart.
func monthEnds(ts []time.Time) (Freq, bool) {
	months := monthsBetween(ts[0], ts[1])
	if months <= 0 {
		return Freq{}, false
	}
	f := MonthEnd(months)
	for i, t := range ts {
		if !isMonthEnd(t) {
			return Freq{}, false
		}
		if i > 0 && !f.Add(ts[i-1], 1).Equal(t) {
			return Freq{}, false
		}
	}
	return f, true
}

func isMonthEnd(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}

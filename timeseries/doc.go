// Package timeseries provides the immutable Series type used throughout
// goforecast.
//
// A Series is a time index plus one or more named components. Values are
// stored row-major, one row per timestamp. Every operation returns a new
// Series; the receiver is never modified.
//
// # Creating a Series
//
// Create a univariate series from a slice (hourly index from the Unix epoch):
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New(values)
//
// With an explicit index and several components:
//
//	series, err := timeseries.NewMultivariate(times,
//	    [][]float64{load, temperature}, []string{"load", "temp"})
//
// The frequency is inferred from the index. Fixed steps (hourly, daily)
// and whole calendar months are recognised; use WithFreq to set it
// explicitly, e.g. for a single-row series.
//
// # Components
//
// Components are addressed by ordinal or by name:
//
//	load, err := series.Component(timeseries.Name("load"))
//	both, err := series.Select(timeseries.Indices(1, 0)...)
//	joined, err := load.Stack(other)
//
// # Slicing
//
//	head, err := series.Slice(0, 50)
//	train, err := series.Before(split)
//	window, err := series.SliceTime(from, to)
//
// # Generators
//
// Linear, Constant, Sine, Gaussian and RandomWalk build synthetic series
// over a Range, which is convenient in tests:
//
//	s := timeseries.Linear(timeseries.DailyFrom(start, 50), 0, 49)
//
// # Loading from CSV
//
//	series, err := timeseries.LoadCSVColumn("data.csv", "value")
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.DateColumn = "date"
//	opts.ValueColumns = []string{"load", "temp"}
//	series, err := timeseries.LoadCSV("data.csv", opts)
package timeseries

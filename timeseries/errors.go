package timeseries

import "errors"

var (
	// ErrDimensionMismatch is returned when two series disagree on their
	// time index or component layout.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrOutOfRange is returned when a position, timestamp or ordinal
	// falls outside the series.
	ErrOutOfRange = errors.New("out of range")

	// ErrUnknownComponent is returned when a component name does not exist.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrUnsortedIndex is returned when timestamps are not strictly increasing.
	ErrUnsortedIndex = errors.New("time index must be strictly increasing")

	// ErrIrregularIndex is returned when future timestamps are requested
	// from a series without a regular frequency.
	ErrIrregularIndex = errors.New("time index has no regular frequency")

	// ErrEmpty is returned when a series would have no components.
	ErrEmpty = errors.New("series must have at least one component")
)

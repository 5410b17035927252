package stats

import "errors"

var (
	// ErrNotNumeric is returned when a numeric aggregate or comparison meets
	// a value that is not a number.
	ErrNotNumeric = errors.New("stats: value is not numeric")

	ErrEmpty = errors.New("stats: no values")

	ErrUnknownMode = errors.New("stats: unknown filter mode")

	ErrKindMismatch = errors.New("stats: mixing node and edge statistics")
)

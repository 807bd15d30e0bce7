package analytics

import "errors"

var (
	// ErrInsufficientData means fewer distinct elapsed-day values were supplied
	// than a degree-3 fit needs. Unrecoverable for that fit call.
	ErrInsufficientData = errors.New("analytics: insufficient data for trend fit")

	// ErrModelNotBuilt means an estimate or summary was requested before a
	// model was built. Programmer error, never retried.
	ErrModelNotBuilt = errors.New("analytics: model not built")

	// ErrInvalidArgument covers malformed input: non-positive horizons,
	// zero dates, unsorted or duplicated observations.
	ErrInvalidArgument = errors.New("analytics: invalid argument")
)

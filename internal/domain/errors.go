package domain

import "errors"

var (
	// ErrUnknownColumn is returned when an operation names a column the dataset does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrLengthMismatch is returned when a column does not have one value per row.
	ErrLengthMismatch = errors.New("column length does not match row count")

	// ErrUnordered is returned when timestamps are not strictly increasing.
	ErrUnordered = errors.New("timestamps are not strictly increasing")

	// ErrPhaseNotClassified is returned by corrections that need the phase column
	// before ClassifyPhase has run.
	ErrPhaseNotClassified = errors.New("precipitation phase has not been classified")

	// ErrUnsupportedPeriod is returned for aggregation periods other than monthly and annual.
	ErrUnsupportedPeriod = errors.New("unsupported aggregation period")

	// ErrUnsupportedReducer is returned for reducers other than mean and sum.
	ErrUnsupportedReducer = errors.New("unsupported reducer")

	// ErrInsufficientData is returned when a statistic needs more complete samples.
	ErrInsufficientData = errors.New("insufficient data")
)

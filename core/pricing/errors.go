package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is returned when no forecast points are supplied.
	ErrInsufficientData = errors.New("insufficient forecast data")
	// ErrInvalidValue is returned for NaN or infinite predictions.
	ErrInvalidValue = errors.New("invalid forecast value")
	// ErrIncompleteDay is returned when a day does not cover hours 0-23.
	ErrIncompleteDay = errors.New("incomplete day")
	// ErrUnknownTier is returned when the pricing table lacks a tier multiplier.
	ErrUnknownTier = errors.New("unknown pricing tier")
	// ErrNoMatchingEntry is returned when a schedule has no entry for an instant.
	ErrNoMatchingEntry = errors.New("no matching schedule entry")
	// ErrInvalidK is returned for peak counts outside 1..24.
	ErrInvalidK = errors.New("invalid peak count")
	// ErrUnknownDay is returned for weekday names outside Monday..Sunday.
	ErrUnknownDay = errors.New("unknown day")
)

// DayError reports a day whose bucket set is not exactly hours 0-23.
type DayError struct {
	Day   string
	Hours int
}

func (e *DayError) Error() string {
	return fmt.Sprintf("%s: %s has %d distinct hourly buckets, want 24", ErrIncompleteDay, e.Day, e.Hours)
}

// Unwrap allows errors.Is(err, ErrIncompleteDay).
func (e *DayError) Unwrap() error { return ErrIncompleteDay }

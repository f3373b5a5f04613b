package models

import "errors"

// Custom errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key violation")
	ErrAlreadyApplied = errors.New("match result already applied")

	// ErrPartiallyApplied indicates a match rated for one of its teams only.
	ErrPartiallyApplied = errors.New("match result applied to one team only")

	// ErrMissingInput indicates a required rating or history value is absent.
	ErrMissingInput = errors.New("missing input")

	// ErrInvalidMatchResult indicates scores inconsistent with the match status
	// or a decisive result without a margin.
	ErrInvalidMatchResult = errors.New("invalid match result")

	// ErrInvalidOdds indicates odds at or below 1.0 or a required outcome without odds.
	ErrInvalidOdds = errors.New("invalid odds")

	// ErrNumericDrift indicates a probability vector that no longer sums to one.
	ErrNumericDrift = errors.New("probability sum outside tolerance")
)

package domain

import "errors"

// Structural precondition failures abort a run before any result is produced.
// Statistical undefined-ness is not an error; it travels through the pipeline
// as an invalid OptFloat instead.
var (
	// ErrInsufficientData indicates the input series is shorter than the
	// required estimation window(s).
	ErrInsufficientData = errors.New("insufficient data for requested window")

	// ErrMisalignedInput indicates the two asset series do not share an
	// identical timestamp index.
	ErrMisalignedInput = errors.New("input series are misaligned")
)

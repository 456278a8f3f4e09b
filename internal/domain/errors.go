package domain

import "errors"

// Error taxonomy for the engine. Validation and conflict errors are raised
// before any gateway call; not-found and unavailable errors are surfaced from
// the gateway without any local mutation having happened.
var (
	// ErrValidation: bad input (empty symbol, negative quantity, non-positive rate).
	ErrValidation = errors.New("validation failed")

	// ErrConflict: duplicate symbol under case-insensitive comparison.
	ErrConflict = errors.New("symbol already exists")

	// ErrNotFound: mutation targets an id no longer present.
	ErrNotFound = errors.New("holding not found")

	// ErrUnavailable: transport failure talking to the gateway.
	ErrUnavailable = errors.New("persistence unavailable")
)

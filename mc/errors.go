package mc

import "errors"

// Shared error taxonomy for the pricing core and its collaborators. All
// failures are synchronous and fatal to the current call; nothing is retried
// here and no partial results are returned.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDimensionMismatch   = errors.New("dimension mismatch")
	ErrInsufficientSamples = errors.New("insufficient samples")
	ErrUnknownMethod       = errors.New("unknown sampling method")
	ErrUnbracketedRoot     = errors.New("root not bracketed")
)

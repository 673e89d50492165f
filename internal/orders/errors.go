package orders

import "errors"

// Error kinds the gateway maps to HTTP status codes. Operations wrap
// these with context via fmt.Errorf("%w: ...") and callers test with
// errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
)

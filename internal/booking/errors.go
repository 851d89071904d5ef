package booking

import "errors"

var (
	ErrNotFound          = errors.New("booking not found")
	ErrGigNotFound       = errors.New("gig not found")
	ErrInvalidTransition = errors.New("booking status does not allow this action")
)

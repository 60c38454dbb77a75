package domain

import "errors"

// Error kinds returned by the zone core. All are recoverable; callers test
// them with errors.Is after any wrapping.
var (
	ErrInvalidGeometry   = errors.New("invalid geometry")
	ErrInvalidName       = errors.New("invalid zone name")
	ErrNotFound          = errors.New("zone not found")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrInvalidColor      = errors.New("invalid color")
)

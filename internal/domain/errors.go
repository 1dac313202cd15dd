package domain

import "errors"

// Error kinds. Services wrap these into operation-specific errors; the HTTP
// layer maps each kind to a status code with errors.Is.
var (
	ErrValidation    = errors.New("invalid input")
	ErrAuthorization = errors.New("not allowed")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("temporarily unavailable")
)

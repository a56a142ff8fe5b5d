package models

import "errors"

// Domain errors. Callers match these with errors.Is; the HTTP layer maps them
// to response codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
)

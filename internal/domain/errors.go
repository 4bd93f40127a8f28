package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID indicates an identifier that is not a positive integer.
	ErrInvalidID = errors.New("invalid id")
	// ErrRestrictedRole indicates the current role may not perform the operation.
	ErrRestrictedRole = errors.New("restricted role")
	// ErrValidation marks user-facing validation failures; the wrapped
	// message is safe to show as-is.
	ErrValidation = errors.New("validation failed")
)

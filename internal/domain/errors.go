package domain

import "errors"

// Sentinel errors returned by the core services. Handlers map these to HTTP
// statuses in internal/http/response; anything not listed here is treated as
// a store failure and surfaced as a 500.
var (
	ErrValidation         = errors.New("invalid input")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrBookingNotPending  = errors.New("booking is not pending")
)

package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// user, book, or reservation does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, negative stock).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnavailable is returned when a book has no available copies left to lend.
// Handlers should map this to HTTP 409 Conflict.
var ErrUnavailable = errors.New("unavailable")

// ErrInvalidState is returned when an operation is not allowed from the
// reservation's current status, e.g. returning a reservation twice.
// Handlers should map this to HTTP 409 Conflict.
var ErrInvalidState = errors.New("invalid state")

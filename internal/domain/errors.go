package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrDuplicate is returned when an insert collides with an existing record,
// most notably a second sign-up for the same (trip, name, email).
// Handlers should map this to HTTP 409 Conflict.
var ErrDuplicate = errors.New("already exists")

// ErrForbidden is returned when the caller lacks the privilege for an
// operation (e.g. exporting sensitive data without the admin role).
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

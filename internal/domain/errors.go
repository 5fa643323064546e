package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. an unknown billing state name).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrAlreadyActive is returned by Start while a trip is already open.
// Nothing is mutated. Handlers map this to HTTP 409.
var ErrAlreadyActive = errors.New("a trip is already in progress")

// ErrNoActiveTrip is returned by ChangeState, Peek and Finish when no trip
// is open. Nothing is mutated. Handlers map this to HTTP 409.
var ErrNoActiveTrip = errors.New("no trip in progress")

package domain

import "errors"

// Failure kinds. Commands map them to exit codes and the queue API maps them
// to HTTP statuses; wrap with %w so errors.Is still sees them.
var (
	ErrBadRequest   = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrPrecondition = errors.New("precondition failed")
	ErrAborted      = errors.New("cancelled")
)

package errs

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable is a generic sentinel for unreachable collaborators.
	ErrUnavailable = errors.New("unavailable")
)

package domain

import "errors"

// Failure kinds on the recommendation path. The HTTP layer maps them to status codes.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUserNotFound    = errors.New("user not found")
	ErrDataUnavailable = errors.New("data unavailable")
)

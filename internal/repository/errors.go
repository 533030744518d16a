package repository

import "errors"

// Common repository errors
var (
	// ErrUserNotFound is returned when a user account is not found
	ErrUserNotFound = errors.New("user not found")
)

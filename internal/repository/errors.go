package repository

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned on a users.email unique violation.
	ErrEmailTaken = errors.New("email already in use")
)

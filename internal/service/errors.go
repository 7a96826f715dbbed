package service

import "errors"

var (
	// ErrInvalidInput marks missing or malformed caller input. Surfaced
	// as a client error before any store or cache access happens.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTaskNotFound is returned when the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotOwner is returned when the authenticated caller does not own
	// the task it is trying to read, mutate or delete.
	ErrNotOwner = errors.New("not the task owner")

	// ErrInvalidCredentials covers both unknown email and wrong password;
	// login failures are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

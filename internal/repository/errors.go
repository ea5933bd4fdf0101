package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist,
	// or exists but is not visible to the caller.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (confirmation code, reference number, idempotency key).
	ErrDuplicate = errors.New("duplicate entity")
)

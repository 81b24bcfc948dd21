package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist in its collection.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a collection changed between read and write.
	ErrVersionConflict = errors.New("collection version conflict")
	// ErrNoChange aborts a Mutate without writing.
	ErrNoChange = errors.New("no change")
	// ErrInsufficientBalance is returned when a spend exceeds the confirmed balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidTransition is returned for a disallowed claim status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

package errors

import "errors"

var (
	ErrNotFound = errors.New("rental not found")

	ErrInvalidID = errors.New("invalid rental ID format")

	// ErrStateConflict is returned by a compare-and-set update when the
	// stored state no longer equals the expected one.
	ErrStateConflict = errors.New("rental state changed concurrently")

	ErrLockHeld = errors.New("depot lock is held by another request")

	// ErrLockLost means the lock expired and was taken over before its
	// holder released it.
	ErrLockLost = errors.New("depot lock expired before release")
)

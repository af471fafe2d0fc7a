package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConflict is returned when a booking write would overlap an existing
	// booking for the same room.
	ErrConflict = errors.New("persistence: booking conflict")
	// ErrConstraintViolation is returned when a check constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is missing
	// or still referenced.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)

package history

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no ledger entry carries the requested id.
	ErrNotFound = errors.New("calculation not found")
	// ErrMalformed is returned when persisted ledger bytes cannot be decoded.
	ErrMalformed = errors.New("malformed history ledger")
)

// StorageError reports a durable-storage failure for a ledger operation.
// When Op is "save" the in-memory ledger has already been updated.
type StorageError struct {
	Op   string
	Slot string
	Err  error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("history %s %s: %v", e.Op, e.Slot, e.Err)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

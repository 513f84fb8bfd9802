package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document id has no record.
var ErrNotFound = errors.New("document not found")

// ErrBusy is returned to a writer that could not acquire the document
// lock within the configured wait. The caller may retry.
var ErrBusy = errors.New("document is locked by another writer")

// ValidationError reports input rejected at the store boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a failure of the underlying blob or record store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

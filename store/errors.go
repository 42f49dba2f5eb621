package store

import (
	"errors"
	"fmt"
)

var (
	// ErrTableExists is an exported constant or variable used by the record store.
	ErrTableExists = errors.New("table already exists")
	// ErrTableNotFound is an exported constant or variable used by the record store.
	ErrTableNotFound = errors.New("table not found")
	// ErrRecordNotFound is an exported constant or variable used by the record store.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateKey is an exported constant or variable used by the record store.
	ErrDuplicateKey = errors.New("duplicate value for unique field")
)

// StorageError wraps an I/O failure from the persistence layer. Callers can
// unwrap it to reach the underlying filesystem error.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is (or wraps) a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

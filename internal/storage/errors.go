package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for storage operations.
var (
	ErrLockTimeout = errors.New("storage: lock timeout")
	ErrEmptyPath   = errors.New("storage: empty path")
)

// StorageError wraps a file-system failure with the operation and path involved.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

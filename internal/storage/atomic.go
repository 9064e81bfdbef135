// Package storage holds the file-system primitives shared by the pipeline:
// atomic artifact writes and an advisory lock on the output directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AtomicWriter provides atomic file write operations using temp file + rename.
// The target path either does not exist or holds the complete content.
type AtomicWriter struct {
	path    string
	tmpPath string
	file    *os.File
	done    bool
}

// NewAtomicWriter creates a writer for atomic file updates.
// The temporary file lives in the target's directory so the final rename
// never crosses a file-system boundary.
func NewAtomicWriter(path string) (*AtomicWriter, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	tmpFile, err := os.CreateTemp(dir, ".ytscribe-*.tmp")
	if err != nil {
		return nil, &StorageError{Op: "create temp", Path: dir, Err: err}
	}

	return &AtomicWriter{
		path:    path,
		tmpPath: tmpFile.Name(),
		file:    tmpFile,
	}, nil
}

// Write writes data to the temporary file.
func (w *AtomicWriter) Write(p []byte) (n int, err error) {
	return w.file.Write(p)
}

// Commit syncs the temporary file and renames it over the target.
func (w *AtomicWriter) Commit() error {
	if w.done {
		return nil
	}
	w.done = true

	if err := w.file.Sync(); err != nil {
		w.file.Close()
		os.Remove(w.tmpPath)
		return &StorageError{Op: "sync", Path: w.tmpPath, Err: err}
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return &StorageError{Op: "close", Path: w.tmpPath, Err: err}
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath) // Best effort cleanup
		return &StorageError{Op: "rename", Path: w.path, Err: err}
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit, so it can
// be deferred unconditionally.
func (w *AtomicWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.file.Close()
	return os.Remove(w.tmpPath)
}

// WriteFile streams fn's output into path atomically.
func WriteFile(path string, fn func(io.Writer) error) error {
	w, err := NewAtomicWriter(path)
	if err != nil {
		return err
	}
	defer w.Abort()

	if err := fn(w); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Commit()
}

// Exists reports whether a regular file is present at path.
// Existence is the only check; size and content are not inspected.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

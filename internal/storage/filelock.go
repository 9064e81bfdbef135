package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const lockPollInterval = 10 * time.Millisecond

// FileLock is an advisory, cross-process lock on a directory of artifacts.
// The holder writes its PID into the lock file so a second process can say
// who it is waiting for.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a file lock. The lock is not acquired until Lock() is called.
// The lock file will be created at path + ".lock".
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Path returns the lock file location.
func (l *FileLock) Path() string {
	return l.path
}

// Lock acquires the lock, polling until timeout elapses or ctx is done.
// A timeout returns an error wrapping ErrLockTimeout that names the holder's
// PID when it can be read.
func (l *FileLock) Lock(ctx context.Context, timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return &StorageError{Op: "lock", Path: l.path, Err: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		if err := tryLock(f); err == nil {
			l.file = f
			l.writePID()
			return nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			f.Close()
			return ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
	f.Close()

	if pid, err := l.Holder(); err == nil && pid > 0 {
		return fmt.Errorf("%w: %s held by pid %d", ErrLockTimeout, l.path, pid)
	}
	return fmt.Errorf("%w: %s", ErrLockTimeout, l.path)
}

// Holder returns the PID recorded by the process holding the lock.
func (l *FileLock) Holder() (int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, &StorageError{Op: "read lock", Path: l.path, Err: err}
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, &StorageError{Op: "read lock", Path: l.path, Err: err}
	}
	return pid, nil
}

// writePID records the current process in the lock file. Failure only costs
// the holder hint.
func (l *FileLock) writePID() {
	if err := l.file.Truncate(0); err != nil {
		return
	}
	l.file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
}

// Unlock clears the recorded PID and releases the lock. The lock file stays
// on disk: a waiter may already hold it open, and removing it would let a
// later process lock a fresh file at the same path alongside that waiter.
// Unlocking a lock that is not held is a no-op.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	l.file.Truncate(0)
	unlock(l.file)
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return &StorageError{Op: "unlock", Path: l.path, Err: err}
	}
	return nil
}

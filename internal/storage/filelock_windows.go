//go:build windows

package storage

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockOffset places the locked byte range past the PID so other processes
// can still read the holder.
const lockOffset = 1 << 30

// tryLock takes an exclusive LockFileEx lock without blocking.
func tryLock(f *os.File) error {
	overlapped := windows.Overlapped{Offset: lockOffset}
	return windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		1,
		0,
		&overlapped,
	)
}

func unlock(f *os.File) error {
	overlapped := windows.Overlapped{Offset: lockOffset}
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, &overlapped)
}

//go:build windows

package database

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// lockFile takes a non-blocking exclusive lock on the first byte of f. The
// lock is released when f is closed.
func lockFile(f *os.File) error {
	var ol windows.Overlapped
	err := windows.LockFileEx(windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, &ol)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, windows.ERROR_LOCK_VIOLATION):
		return fmt.Errorf("%w: %s", ErrLocked, f.Name())
	default:
		return fmt.Errorf("lock %s: %w", f.Name(), err)
	}
}

// commitTemp releases the temp file and renames it over path. Windows refuses
// to rename a file this process still has open.
func commitTemp(f *os.File, tmpPath, path string) error {
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// discardTemp releases and removes the temp file.
func discardTemp(f *os.File, tmpPath string) {
	f.Close()
	os.Remove(tmpPath)
}

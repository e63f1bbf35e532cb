//go:build unix

package database

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"fsindex/internal/logging"
)

// lockFile takes a non-blocking exclusive advisory lock on f. The lock is
// released when f is closed.
func lockFile(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EWOULDBLOCK):
			return fmt.Errorf("%w: %s", ErrLocked, f.Name())
		default:
			return fmt.Errorf("lock %s: %w", f.Name(), err)
		}
	}
}

// commitTemp renames the locked temp file over path and only then releases
// the lock, so no other saver can reopen the temp file in between.
func commitTemp(f *os.File, tmpPath, path string) error {
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		logging.Warnf("[database_save] close %s: %v", path, err)
	}
	return nil
}

// discardTemp removes the temp file while it is still locked.
func discardTemp(f *os.File, tmpPath string) {
	os.Remove(tmpPath)
	f.Close()
}

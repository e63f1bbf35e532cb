//go:build !unix && !windows

package database

import (
	"os"

	"fsindex/internal/logging"
)

// lockFile is a no-op where no advisory locking is available.
func lockFile(*os.File) error {
	return nil
}

// commitTemp renames the temp file over path before closing it.
func commitTemp(f *os.File, tmpPath, path string) error {
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		logging.Warnf("[database_save] close %s: %v", path, err)
	}
	return nil
}

// discardTemp removes and closes the temp file.
func discardTemp(f *os.File, tmpPath string) {
	os.Remove(tmpPath)
	f.Close()
}

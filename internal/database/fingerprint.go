package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cespare/xxhash"
	"github.com/edsrzf/mmap-go"
)

// openLocked opens path with flag and takes the database file lock.
func openLocked(path string, flag int) (*os.File, error) {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// openTemp opens and locks the temp file at path for writing.
func openTemp(path string) (*os.File, error) {
	f, err := openLocked(path, os.O_WRONLY|os.O_CREATE)
	if err != nil {
		return nil, err
	}
	if err := checkHeld(f, path); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// checkHeld reports ErrLocked unless f is still the file at path. A concurrent
// save can commit or discard the temp file between our open and our lock,
// leaving the lock on an inode that is no longer at path.
func checkHeld(f *os.File, path string) error {
	held, err := f.Stat()
	if err != nil {
		return err
	}
	cur, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s removed while locking", ErrLocked, path)
	case err != nil:
		return err
	case !os.SameFile(held, cur):
		return fmt.Errorf("%w: %s replaced while locking", ErrLocked, path)
	}
	return nil
}

// mapFile maps the whole of f read-only. Empty files yield a nil mapping.
func mapFile(f *os.File) (mmap.MMap, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", f.Name(), err)
	}
	return m, nil
}

// Fingerprint returns the xxhash of a committed database file. It takes the
// file lock, so it fails with ErrLocked while a save or load is in progress.
func Fingerprint(path string) (uint64, error) {
	f, err := openLocked(path, os.O_RDONLY)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	m, err := mapFile(f)
	if err != nil {
		return 0, err
	}
	if m == nil {
		return xxhash.Sum64(nil), nil
	}
	defer m.Unmap()

	return xxhash.Sum64(m), nil
}

package database

import "errors"

var (
	// ErrCancelled is returned when a scan is stopped through its context.
	ErrCancelled = errors.New("database: scan cancelled")

	// ErrFormat is returned when a database file is malformed: bad magic,
	// version mismatch, truncated data or an invalid parent reference.
	ErrFormat = errors.New("database: invalid file format")

	// ErrLocked is returned when another handle holds the database file lock.
	ErrLocked = errors.New("database: file is locked by another process")

	// ErrNameTooLong is returned when a name cannot be delta-encoded.
	ErrNameTooLong = errors.New("database: name too long to encode")

	// ErrNotDirectory is returned when the save target is not a directory.
	ErrNotDirectory = errors.New("database: not a directory")

	// ErrClosed is returned by operations on a torn-down handle.
	ErrClosed = errors.New("database: handle closed")
)

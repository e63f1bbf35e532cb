// Package database builds, sorts, persists and restores the file index.
//
// A Database owns one generation of entries: two arenas (files and folders)
// and two flat arrays of arena indices that the query side reads. Scan, Load,
// Save and Sort expect the caller to hold the handle lock for their whole
// duration; so do the accessors while any returned array is in use.
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"fsindex/internal/darray"
	"fsindex/internal/logging"
)

const initialArrayCapacity = 1000

// Database is a reference-counted index handle.
type Database struct {
	mu   sync.Mutex
	refs atomic.Int32

	opts   options
	config Config

	tree    *Tree
	files   *darray.Array[FileID]
	folders *darray.Array[FolderID]

	timestamp time.Time
	closed    bool
}

// New creates an empty handle holding a snapshot of cfg. The returned handle
// has one reference.
func New(cfg Config, opts ...Option) *Database {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	db := &Database{
		opts:    o,
		config:  cfg.clone(),
		tree:    newTree(o.blockSize, o.locale),
		files:   darray.New[FileID](initialArrayCapacity),
		folders: darray.New[FolderID](initialArrayCapacity),
	}
	db.refs.Store(1)
	return db
}

// Lock acquires exclusive access to the entry state.
func (db *Database) Lock() { db.mu.Lock() }

// Unlock releases the lock taken by Lock or TryLock.
func (db *Database) Unlock() { db.mu.Unlock() }

// TryLock acquires the lock if it is free and reports whether it did.
func (db *Database) TryLock() bool { return db.mu.TryLock() }

// Ref adds a reference. It does not take the handle lock.
func (db *Database) Ref() {
	n := db.refs.Add(1)
	logging.Debugf("[database_ref] increased to: %d", n)
}

// Unref drops a reference and tears the handle down when none remain. The
// final Unref must not be made while holding the handle lock.
func (db *Database) Unref() {
	n := db.refs.Add(-1)
	logging.Debugf("[database_unref] dropped to: %d", n)
	if n <= 0 {
		db.Close()
	}
}

// Close tears the handle down regardless of outstanding references, which
// are reported. It waits for the handle lock. Callers must stop using the
// handle afterwards.
func (db *Database) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return
	}
	if n := db.refs.Load(); n > 0 {
		logging.Warnf("[database_free] pending references on free: %d", n)
	}
	db.tree.release()
	db.files = nil
	db.folders = nil
	db.closed = true
	logging.Debugf("[database_free] freed")
}

// Refs returns the current reference count.
func (db *Database) Refs() int32 { return db.refs.Load() }

// Config returns the configuration snapshot.
func (db *Database) Config() Config { return db.config.clone() }

// Tree returns the arena owner of the current generation, for entry lookups,
// path reconstruction and comparators.
func (db *Database) Tree() *Tree { return db.tree }

// File returns the file with the given id.
func (db *Database) File(id FileID) *File { return db.tree.File(id) }

// Folder returns the folder with the given id.
func (db *Database) Folder(id FolderID) *Folder { return db.tree.Folder(id) }

// Files returns the file flat array. It is mutated in place by later scans,
// loads and sorts.
func (db *Database) Files() *darray.Array[FileID] { return db.files }

// Folders returns the folder flat array. It is mutated in place by later
// scans, loads and sorts.
func (db *Database) Folders() *darray.Array[FolderID] { return db.folders }

// NumFiles returns the number of files.
func (db *Database) NumFiles() int {
	if db.files == nil {
		return 0
	}
	return db.files.Len()
}

// NumFolders returns the number of folders.
func (db *Database) NumFolders() int {
	if db.folders == nil {
		return 0
	}
	return db.folders.Len()
}

// NumEntries returns the number of files and folders.
func (db *Database) NumEntries() int { return db.NumFiles() + db.NumFolders() }

// Timestamp returns the time of the last successful scan or load.
func (db *Database) Timestamp() time.Time { return db.timestamp }

// reset replaces the current generation with an empty one.
func (db *Database) reset() {
	db.tree.release()
	db.tree = newTree(db.opts.blockSize, db.opts.locale)
	db.files = darray.New[FileID](initialArrayCapacity)
	db.folders = darray.New[FolderID](initialArrayCapacity)
}

// Scan discards the current entries and walks every include root that is
// enabled and marked for update, then sorts the result. On cancellation the
// partially built state is kept unsorted and ErrCancelled is returned.
func (db *Database) Scan(ctx context.Context, progress ProgressFunc) error {
	if db.closed {
		return ErrClosed
	}
	db.reset()

	start := time.Now()
	s := newScanner(ctx, db.config, db.tree, db.files, db.folders, progress, db.opts.progressInterval)
	for _, inc := range db.config.Includes {
		if inc.Path == "" || !inc.Enabled || !inc.Update {
			continue
		}
		if err := s.scanRoot(inc.Path); err != nil {
			logging.Warnf("[database_scan] walk stopped in %s: %v", inc.Path, err)
			return err
		}
	}
	logging.Infof("[database] scanned: %d files, %d folders -> %d total in %v",
		db.NumFiles(), db.NumFolders(), db.NumEntries(), time.Since(start))

	db.Sort()
	db.timestamp = time.Now()
	return nil
}

// Sort orders both flat arrays by path, with names as tiebreak.
func (db *Database) Sort() {
	if db.closed {
		return
	}
	start := time.Now()
	db.files.SortParallel(db.tree.compareFiles, db.opts.sortWorkers)
	logging.Debugf("[database] sorted files: %v", time.Since(start))

	start = time.Now()
	db.folders.SortParallel(db.tree.compareFolders, db.opts.sortWorkers)
	logging.Debugf("[database] sorted folders: %v", time.Since(start))
}

// Save writes the entries in current array order to dir/DefaultFileName,
// replacing any committed file atomically. The temp file is locked from open
// until it has been renamed into place; ErrLocked is returned without blocking
// if another handle holds it. On failure the committed file is left untouched.
// Every name must delta-encode within 255 bytes, which for roots means the
// full path; the scanner skips longer roots.
func (db *Database) Save(dir string) (err error) {
	if db.closed {
		return ErrClosed
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("save database: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("save database: %w: %s", ErrNotDirectory, dir)
	}

	path := filepath.Join(dir, DefaultFileName)
	tmpPath := path + ".tmp"

	tmp, err := openTemp(tmpPath)
	if err != nil {
		if errors.Is(err, ErrLocked) {
			return err
		}
		return fmt.Errorf("save database: %w", err)
	}
	defer func() {
		if err != nil {
			logging.Errorf("[database_save] save failed: %v", err)
			discardTemp(tmp, tmpPath)
		}
	}()

	// Truncate only once the lock is held so a concurrent writer's data is
	// never clobbered.
	if err = tmp.Truncate(0); err != nil {
		return fmt.Errorf("save database: %w", err)
	}

	assignFolderIndices(db.tree, db.folders.Items())
	if err = encode(tmp, db.tree, db.folders.Items(), db.files.Items()); err != nil {
		return fmt.Errorf("save database: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("save database: %w", err)
	}
	if err = commitTemp(tmp, tmpPath, path); err != nil {
		return fmt.Errorf("save database: %w", err)
	}

	logging.Infof("[database] saved %d folders, %d files to %s", db.NumFolders(), db.NumFiles(), path)
	return nil
}

// Load replaces the entries with the contents of the database file at path.
// On any failure the current entries are left untouched.
func (db *Database) Load(path string, progress ProgressFunc) error {
	if db.closed {
		return ErrClosed
	}
	if progress != nil {
		progress(path)
	}

	f, err := openLocked(path, os.O_RDONLY)
	if err != nil {
		if errors.Is(err, ErrLocked) {
			return err
		}
		return fmt.Errorf("load database: %w", err)
	}
	defer f.Close()

	m, err := mapFile(f)
	if err != nil {
		return fmt.Errorf("load database: %w", err)
	}
	if m != nil {
		defer m.Unmap()
	}

	tree := newTree(db.opts.blockSize, db.opts.locale)
	files, folders, err := decode(m, tree)
	if err != nil {
		tree.release()
		logging.Debugf("[database_load] load failed: %v", err)
		return fmt.Errorf("load database %s: %w", path, err)
	}

	db.tree.release()
	db.tree = tree
	db.files = files
	db.folders = folders
	db.timestamp = time.Now()

	logging.Infof("[database] loaded %d folders, %d files from %s", folders.Len(), files.Len(), path)
	return nil
}

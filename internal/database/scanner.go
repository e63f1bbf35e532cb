package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fsindex/internal/darray"
	"fsindex/internal/logging"
)

// ProgressFunc receives the directory currently being visited.
type ProgressFunc func(path string)

// scanner walks include roots into a tree and its flat arrays.
type scanner struct {
	ctx      context.Context
	tree     *Tree
	files    *darray.Array[FileID]
	folders  *darray.Array[FolderID]
	excludes excludeSet
	patterns []string
	hidden   bool

	progress     ProgressFunc
	interval     time.Duration
	lastProgress time.Time

	// path is the directory being visited; it is truncated and extended in
	// place while recursing.
	path []byte
}

func newScanner(ctx context.Context, cfg Config, tree *Tree, files *darray.Array[FileID], folders *darray.Array[FolderID], progress ProgressFunc, interval time.Duration) *scanner {
	return &scanner{
		ctx:          ctx,
		tree:         tree,
		files:        files,
		folders:      folders,
		excludes:     newExcludeSet(cfg.Excludes),
		patterns:     cfg.ExcludeFiles,
		hidden:       cfg.ExcludeHidden,
		progress:     progress,
		interval:     interval,
		lastProgress: time.Now(),
		path:         make([]byte, 0, 4096),
	}
}

// rootName turns an absolute root path into the stored root folder name.
// The filesystem root becomes the empty name.
func rootName(path string) string {
	return strings.TrimRight(filepath.Clean(path), string(filepath.Separator))
}

// scanRoot adds root and everything below it. Missing roots and roots whose
// path is too long to encode are skipped.
func (s *scanner) scanRoot(root string) error {
	if !filepath.IsAbs(root) {
		logging.Warnf("Skipping relative root: %s", root)
		return nil
	}
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	fi, err := os.Stat(root)
	if err != nil || !fi.IsDir() {
		logging.Warnf("Root %s doesn't exist or is not a directory", root)
		return nil
	}

	name := rootName(root)
	if len(name) > maxNameDelta {
		logging.Warnf("Skipping root %s: path longer than %d bytes can't be saved", root, maxNameDelta)
		return nil
	}
	logging.Debugf("Scanning root: %s", root)

	id := s.tree.newRoot(name)
	s.folders.Add(id)

	s.path = append(s.path[:0], name...)
	return s.walk(id)
}

// walk enumerates the directory in s.path, whose folder is parent.
func (s *scanner) walk(parent FolderID) error {
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	s.path = append(s.path, filepath.Separator)
	base := len(s.path)

	dir, err := os.Open(string(s.path))
	if err != nil {
		logging.Debugf("Failed to open directory %s: %v", s.path, err)
		return nil
	}
	names, err := dir.Readdirnames(-1)
	dir.Close()
	if err != nil {
		logging.Debugf("Failed to read directory %s: %v", s.path, err)
	}

	s.reportProgress()

	for _, name := range names {
		if err := s.ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if s.skipName(name) {
			continue
		}

		s.path = append(s.path[:base], name...)
		path := string(s.path)

		fi, err := os.Lstat(path)
		if err != nil {
			logging.Debugf("Can't stat %s: %v", path, err)
			continue
		}

		if !fi.IsDir() {
			size := fi.Size()
			if size < 0 {
				size = 0
			}
			s.files.Add(s.tree.newFile(name, uint64(size), parent))
			continue
		}

		if s.excludes.excluded(path) {
			logging.Debugf("Excluded directory: %s", path)
			continue
		}

		id := s.tree.newFolder(name, parent)
		s.folders.Add(id)
		if err := s.walk(id); err != nil {
			return err
		}
	}
	return nil
}

// skipName applies the name-only exclusion rules.
func (s *scanner) skipName(name string) bool {
	if name == "." || name == ".." {
		return true
	}
	if s.hidden && strings.HasPrefix(name, ".") {
		return true
	}
	for _, p := range s.patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (s *scanner) reportProgress() {
	if s.progress == nil {
		return
	}
	if time.Since(s.lastProgress) < s.interval {
		return
	}
	s.progress(string(s.path))
	s.lastProgress = time.Now()
}

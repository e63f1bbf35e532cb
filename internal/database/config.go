package database

import (
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash"
)

// IncludePath is a scan root. Only paths that are both Enabled and marked for
// Update are walked.
type IncludePath struct {
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
	Update  bool   `json:"update"`
}

// ExcludePath is a directory skipped during the walk. Matching is exact on the
// absolute path, not a prefix match.
type ExcludePath struct {
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
}

// Config is the scan configuration snapshot held by a Database.
type Config struct {
	Includes      []IncludePath `json:"includes"`
	Excludes      []ExcludePath `json:"excludes"`
	ExcludeFiles  []string      `json:"exclude_files"` // glob patterns matched against bare names
	ExcludeHidden bool          `json:"exclude_hidden"`
}

// clone returns a deep copy so later caller mutations don't leak in.
func (c Config) clone() Config {
	return Config{
		Includes:      slices.Clone(c.Includes),
		Excludes:      slices.Clone(c.Excludes),
		ExcludeFiles:  slices.Clone(c.ExcludeFiles),
		ExcludeHidden: c.ExcludeHidden,
	}
}

// Validate reports the first malformed exclude pattern.
func (c Config) Validate() error {
	for _, p := range c.ExcludeFiles {
		if _, err := filepath.Match(p, ""); err != nil {
			return &PatternError{Pattern: p, Err: err}
		}
	}
	return nil
}

// PatternError describes an exclude pattern that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "database: bad exclude pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error { return e.Err }

// excludeSet answers exact-path directory exclusion. The first record for a
// path decides, so a disabled record shadows a later enabled duplicate.
type excludeSet struct {
	byHash map[uint64][]ExcludePath
}

func newExcludeSet(excludes []ExcludePath) excludeSet {
	s := excludeSet{byHash: make(map[uint64][]ExcludePath, len(excludes))}
	for _, e := range excludes {
		h := xxhash.Sum64String(e.Path)
		if slices.ContainsFunc(s.byHash[h], func(x ExcludePath) bool { return x.Path == e.Path }) {
			continue
		}
		s.byHash[h] = append(s.byHash[h], e)
	}
	return s
}

func (s excludeSet) excluded(path string) bool {
	if len(s.byHash) == 0 {
		return false
	}
	for _, e := range s.byHash[xxhash.Sum64String(path)] {
		if e.Path == path {
			return e.Enabled
		}
	}
	return false
}

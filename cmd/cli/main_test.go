package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsindex/internal/database"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.size))
	}
}

func TestBuildConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "scan.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"includes": [{"path": "/data", "enabled": true, "update": false}],
		"excludes": [{"path": "/data/cache", "enabled": true}],
		"exclude_files": ["*.bak"]
	}`), 0o644))

	cfg, err := buildConfig(scanFlags{
		configFile:    file,
		excludeDirs:   []string{"/srv/tmp"},
		excludeFiles:  []string{"*.tmp"},
		excludeHidden: true,
	}, []string{"/srv"})
	require.NoError(t, err)

	assert.Equal(t, []database.IncludePath{
		{Path: "/data", Enabled: true, Update: false},
		{Path: "/srv", Enabled: true, Update: true},
	}, cfg.Includes)
	assert.Equal(t, []database.ExcludePath{
		{Path: "/data/cache", Enabled: true},
		{Path: "/srv/tmp", Enabled: true},
	}, cfg.Excludes)
	assert.Equal(t, []string{"*.bak", "*.tmp"}, cfg.ExcludeFiles)
	assert.True(t, cfg.ExcludeHidden)
}

func TestBuildConfigErrors(t *testing.T) {
	_, err := buildConfig(scanFlags{}, nil)
	assert.Error(t, err)

	_, err = buildConfig(scanFlags{excludeFiles: []string{"[z-"}}, []string{"/srv"})
	var perr *database.PatternError
	assert.ErrorAs(t, err, &perr)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = buildConfig(scanFlags{configFile: bad}, []string{"/srv"})
	assert.Error(t, err)
}

func TestScanInfoList(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("hi"), 0o644))

	db := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := newRootCmd()
		cmd.SetArgs(append([]string{"--db-dir", db, "--log-file", filepath.Join(db, "fsindex.log")}, args...))
		require.NoError(t, cmd.Execute())
	}

	run("scan", root)
	assert.FileExists(t, filepath.Join(db, database.DefaultFileName))
	run("info")
	run("list", "--sort", "size")
	run("list", "--sort", "type")
	run("list", "--folders", "--limit", "1")
}

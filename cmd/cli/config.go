package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fsindex/internal/database"
)

// scanFlags holds the scan command line before it is folded into a
// database.Config.
type scanFlags struct {
	configFile    string
	excludeDirs   []string
	excludeFiles  []string
	excludeHidden bool
}

// loadConfig reads a JSON scan configuration.
func loadConfig(path string) (database.Config, error) {
	var cfg database.Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// buildConfig merges the optional config file with roots and flags. Command
// line roots and excludes are appended after the file's entries.
func buildConfig(f scanFlags, roots []string) (database.Config, error) {
	var cfg database.Config
	if f.configFile != "" {
		var err error
		if cfg, err = loadConfig(f.configFile); err != nil {
			return cfg, err
		}
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return cfg, fmt.Errorf("resolve %s: %w", root, err)
		}
		cfg.Includes = append(cfg.Includes, database.IncludePath{Path: abs, Enabled: true, Update: true})
	}
	for _, dir := range f.excludeDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return cfg, fmt.Errorf("resolve %s: %w", dir, err)
		}
		cfg.Excludes = append(cfg.Excludes, database.ExcludePath{Path: abs, Enabled: true})
	}
	cfg.ExcludeFiles = append(cfg.ExcludeFiles, f.excludeFiles...)
	cfg.ExcludeHidden = cfg.ExcludeHidden || f.excludeHidden

	if len(cfg.Includes) == 0 {
		return cfg, fmt.Errorf("no directories to scan")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

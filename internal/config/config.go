// Package config loads project settings for a cide run from a .cide.kdl
// or .cide.toml file, grounded on the teacher's internal/config package and
// its KDL-primary/TOML-alternate file-extension dispatch.
package config

import (
	"os"
	"path/filepath"

	cideerrors "github.com/standardbeagle/cide/internal/errors"
)

// Config is one project's ingest/search/persistence settings.
type Config struct {
	Root             string
	IncludeLanguages []string
	ExcludeLanguages []string
	ExtraExcludes    []string
	RespectGitignore bool

	MaxConcurrentTasks int
	BatchSize          int

	StoragePath      string
	IncludeCachedIDs bool

	WatchMode       bool
	WatchDebounceMs int
}

// Default returns the baseline configuration used when no .cide.kdl or
// .cide.toml file is found, matching the teacher's zero-config defaults.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Config{
		Root:               cwd,
		RespectGitignore:   true,
		MaxConcurrentTasks: 50,
		BatchSize:          128,
		StoragePath:        ".cide-cache",
		IncludeCachedIDs:   true,
		WatchMode:          false,
		WatchDebounceMs:    300,
	}
}

// Load reads a project config from dir, trying .cide.kdl first and
// .cide.toml second, falling back to Default if neither file exists.
// Relative Root values are resolved against dir.
func Load(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, ".cide.kdl")
	if _, err := os.Stat(kdlPath); err == nil {
		cfg, err := loadKDL(kdlPath)
		if err != nil {
			return nil, err
		}
		return finalize(cfg, dir), nil
	}

	tomlPath := filepath.Join(dir, ".cide.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		cfg, err := loadTOML(tomlPath)
		if err != nil {
			return nil, err
		}
		return finalize(cfg, dir), nil
	}

	cfg := Default()
	cfg.Root = dir
	return cfg, nil
}

func finalize(cfg *Config, dir string) *Config {
	if cfg.Root == "" {
		cfg.Root = dir
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Clean(filepath.Join(dir, cfg.Root))
	}
	if cfg.MaxConcurrentTasks <= 0 {
		cfg.MaxConcurrentTasks = 50
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 128
	}
	return cfg
}

func errConfig(op string, err error, path string) error {
	return cideerrors.Config(op, err).WithPath(path)
}

package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// tomlDocument mirrors Config's field set in TOML's naming convention, kept
// as a separate struct so the wire format can evolve independently of the
// in-memory Config shape, the same separation the teacher keeps between its
// KDL document traversal and its Config struct.
type tomlDocument struct {
	Project struct {
		Root             string `toml:"root"`
		RespectGitignore *bool  `toml:"respect_gitignore"`
	} `toml:"project"`
	Ingest struct {
		MaxConcurrentTasks int `toml:"max_concurrent_tasks"`
		BatchSize          int `toml:"batch_size"`
	} `toml:"ingest"`
	Persistence struct {
		StoragePath      string `toml:"storage_path"`
		IncludeCachedIDs *bool  `toml:"include_cached_ids"`
		WatchMode        *bool  `toml:"watch_mode"`
		WatchDebounceMs  int    `toml:"watch_debounce_ms"`
	} `toml:"persistence"`
	Include       []string `toml:"include"`
	Exclude       []string `toml:"exclude"`
	ExtraExcludes []string `toml:"extra_excludes"`
}

// loadTOML parses a .cide.toml file into a Config, for projects that
// prefer TOML over the primary KDL format.
func loadTOML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errConfig("read_toml", err, path)
	}

	var doc tomlDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errConfig("parse_toml", err, path)
	}

	cfg := Default()
	if doc.Project.Root != "" {
		cfg.Root = doc.Project.Root
	}
	if doc.Project.RespectGitignore != nil {
		cfg.RespectGitignore = *doc.Project.RespectGitignore
	}
	if doc.Ingest.MaxConcurrentTasks > 0 {
		cfg.MaxConcurrentTasks = doc.Ingest.MaxConcurrentTasks
	}
	if doc.Ingest.BatchSize > 0 {
		cfg.BatchSize = doc.Ingest.BatchSize
	}
	if doc.Persistence.StoragePath != "" {
		cfg.StoragePath = doc.Persistence.StoragePath
	}
	if doc.Persistence.IncludeCachedIDs != nil {
		cfg.IncludeCachedIDs = *doc.Persistence.IncludeCachedIDs
	}
	if doc.Persistence.WatchMode != nil {
		cfg.WatchMode = *doc.Persistence.WatchMode
	}
	if doc.Persistence.WatchDebounceMs > 0 {
		cfg.WatchDebounceMs = doc.Persistence.WatchDebounceMs
	}
	cfg.IncludeLanguages = doc.Include
	cfg.ExcludeLanguages = doc.Exclude
	cfg.ExtraExcludes = doc.ExtraExcludes

	return cfg, nil
}

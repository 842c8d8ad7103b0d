package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Root)
	require.Equal(t, 50, cfg.MaxConcurrentTasks)
	require.Equal(t, 128, cfg.BatchSize)
	require.True(t, cfg.RespectGitignore)
}

func TestLoadKDLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
project {
    respect_gitignore false
}
ingest {
    max_concurrent_tasks 8
    batch_size 32
}
persistence {
    storage_path "custom-cache"
    watch_mode true
}
include {
    "python"
    "go"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cide.kdl"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.False(t, cfg.RespectGitignore)
	require.Equal(t, 8, cfg.MaxConcurrentTasks)
	require.Equal(t, 32, cfg.BatchSize)
	require.Equal(t, "custom-cache", cfg.StoragePath)
	require.True(t, cfg.WatchMode)
	require.Equal(t, []string{"python", "go"}, cfg.IncludeLanguages)
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
include = ["python"]

[project]
respect_gitignore = false

[ingest]
max_concurrent_tasks = 16
batch_size = 64

[persistence]
storage_path = "alt-cache"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cide.toml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.False(t, cfg.RespectGitignore)
	require.Equal(t, 16, cfg.MaxConcurrentTasks)
	require.Equal(t, 64, cfg.BatchSize)
	require.Equal(t, "alt-cache", cfg.StoragePath)
	require.Equal(t, []string{"python"}, cfg.IncludeLanguages)
}

func TestLoadKDLTakesPrecedenceOverTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cide.kdl"), []byte(`ingest { max_concurrent_tasks 5 }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cide.toml"), []byte("[ingest]\nmax_concurrent_tasks = 99\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.MaxConcurrentTasks)
}

func TestLoadRejectsZeroOrNegativeOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cide.kdl"), []byte(`ingest { max_concurrent_tasks 0 }`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 50, cfg.MaxConcurrentTasks)
}

// Package persistence serializes a codemodel.CodeBase to a JSON dump plus
// a sidecar cached-ids file, and drives the incremental re-parse/remove
// decision when re-ingesting a previously-serialized codebase, grounded
// on the teacher's metrics_cache.go preference for inspectable JSON state
// over a binary format.
package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/cide/internal/codemodel"
	"github.com/standardbeagle/cide/internal/discovery"
	cideerrors "github.com/standardbeagle/cide/internal/errors"
	"github.com/standardbeagle/cide/internal/interfaces"
	"github.com/standardbeagle/cide/internal/parser"
	"github.com/standardbeagle/cide/internal/resolver"
)

const (
	dumpFileName      = "codebase.json"
	cachedIDsFileName = "cached_ids.json"
)

// Fingerprint returns the xxhash of content over newline-normalized
// bytes, used for cheap staleness detection (teacher dependency,
// equivalent to FastHash in internal/types).
func Fingerprint(content string) uint64 {
	normalized := codemodel.NormalizeNewlines(content)
	return xxhash.Sum64String(normalized)
}

// Serialize writes the codebase's structured dump (and, when
// includeCachedIDs is set, the cached-ids sidecar) under storagePath.
func Serialize(base *codemodel.CodeBase, storagePath string, includeCachedIDs bool) error {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return cideerrors.IO("mkdir_storage", err).WithPath(storagePath)
	}

	data, err := json.MarshalIndent(base, "", "  ")
	if err != nil {
		return cideerrors.IO("marshal_codebase", err).WithPath(storagePath)
	}
	dumpPath := filepath.Join(storagePath, dumpFileName)
	if err := os.WriteFile(dumpPath, data, 0o644); err != nil {
		return cideerrors.IO("write_codebase", err).WithPath(dumpPath)
	}

	if !includeCachedIDs {
		return nil
	}
	idx := codemodel.NewIndex(base)
	idsData, err := json.MarshalIndent(idx.AllIDs(), "", "  ")
	if err != nil {
		return cideerrors.IO("marshal_cached_ids", err).WithPath(storagePath)
	}
	idsPath := filepath.Join(storagePath, cachedIDsFileName)
	if err := os.WriteFile(idsPath, idsData, 0o644); err != nil {
		return cideerrors.IO("write_cached_ids", err).WithPath(idsPath)
	}
	return nil
}

// Deserialize reads the structured dump at storagePath back into a
// CodeBase. The cached-ids sidecar, if present, is never trusted for
// correctness — _cached_elements/_cached_ids are always re-derived by
// the caller via codemodel.NewIndex, per spec.md §9's "never serialize
// partial caches" design note.
func Deserialize(storagePath string) (*codemodel.CodeBase, error) {
	dumpPath := filepath.Join(storagePath, dumpFileName)
	data, err := os.ReadFile(dumpPath)
	if err != nil {
		return nil, cideerrors.IO("read_codebase", err).WithPath(dumpPath)
	}
	var base codemodel.CodeBase
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, cideerrors.IO("unmarshal_codebase", err).WithPath(dumpPath)
	}
	return &base, nil
}

// CheckForUpdates re-parses files whose on-disk fingerprint no longer
// matches the codebase's recorded ContentHash, removes entries for files
// that have disappeared from disk, re-runs the dependency resolver over
// the whole codebase, and optionally re-serializes. Unchanged files are
// left untouched (no re-parse), satisfying the round-trip law that only
// the modified file's element handles change.
func CheckForUpdates(base *codemodel.CodeBase, fs interfaces.FileSystem, registry *parser.Registry, root string, serializeOnChange bool, storagePath string, includeCachedIDs bool) error {
	current, err := fs.Walk(discovery.Options{Root: root, RespectGitignore: true})
	if err != nil {
		return cideerrors.IO("walk", err).WithPath(root)
	}

	onDisk := make(map[string]bool, len(current))
	byPath := make(map[string]*codemodel.CodeFile, len(base.Root))
	for _, f := range base.Root {
		byPath[f.FilePath] = f
	}

	var kept []*codemodel.CodeFile
	changed := false

	for _, f := range current {
		onDisk[f.Path] = true
		text, err := fs.ReadFile(f.AbsPath)
		if err != nil {
			return cideerrors.IO("read_file", err).WithPath(f.Path)
		}
		fingerprint := Fingerprint(text)

		existing, ok := byPath[f.Path]
		if ok && existing.ContentHash == fingerprint {
			kept = append(kept, existing)
			continue
		}

		p, ok := registry.Get(f.Language)
		if !ok {
			continue
		}
		cf, err := p.ParseFile(f.Path, text)
		if err != nil {
			return cideerrors.Parse("parse_file", err).WithPath(f.Path)
		}
		cf.ContentHash = fingerprint
		kept = append(kept, cf)
		changed = true
	}

	for path := range byPath {
		if !onDisk[path] {
			changed = true
		}
	}

	base.Root = kept

	resolver.ResolveIntraFile(base)
	idx := codemodel.NewIndex(base)
	resolver.ResolveInterFiles(base, idx)

	if changed && serializeOnChange {
		return Serialize(base, storagePath, includeCachedIDs)
	}
	return nil
}

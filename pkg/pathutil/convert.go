// Package pathutil converts between absolute and relative paths.
//
// cide's code model keeps file paths relative to the ingested project root
// throughout (codemodel.CodeFile.FilePath, discovery.File.Path); ToRelative
// exists for the one place an absolute path still needs to cross that
// boundary — CLI and logging output built from os.Getwd()-derived paths.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already
// relative, or if it resolves outside rootDir.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}

package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	cideerrors "github.com/standardbeagle/cide/internal/errors"
)

// defaultExcludeDirs are always skipped regardless of .gitignore contents,
// matching every code-intelligence tool's baseline assumption that VCS and
// dependency directories are never source.
var defaultExcludeDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".mypy_cache":  true,
	".pytest_cache": true,
}

// File describes one discovered source file, already classified.
type File struct {
	Path     string // relative to Root, slash-separated
	AbsPath  string
	Language Language
}

// Options controls a Walk invocation.
type Options struct {
	Root            string
	IncludeLangs    []Language // empty means all supported languages
	ExtraExcludes   []string   // additional gitignore-syntax patterns from config
	RespectGitignore bool
}

// Walk traverses Root, applies .gitignore + default + config exclude
// rules, and returns every file whose extension resolves to a supported
// Language and is not in the binary/media skip set.
func Walk(opts Options) ([]File, error) {
	ignores := NewIgnoreSet(opts.Root)
	if opts.RespectGitignore {
		if err := ignores.LoadGitignore(opts.Root); err != nil {
			return nil, cideerrors.IO("load_gitignore", err).WithPath(opts.Root)
		}
	}
	for _, pat := range opts.ExtraExcludes {
		ignores.AddPattern(pat)
	}

	include := map[Language]bool{}
	for _, l := range opts.IncludeLangs {
		include[l] = true
	}

	var files []File
	err := filepath.Walk(opts.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(opts.Root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if defaultExcludeDirs[info.Name()] || ignores.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if ignores.Match(rel, false) {
			return nil
		}
		if ShouldSkip(path) {
			return nil
		}
		lang := LanguageFromPath(path)
		if lang == LangUnknown {
			return nil
		}
		if len(include) > 0 && !include[lang] {
			return nil
		}

		files = append(files, File{Path: rel, AbsPath: path, Language: lang})
		return nil
	})
	if err != nil {
		return nil, cideerrors.IO("walk", err).WithPath(opts.Root)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ReadSource reads a file's contents and normalizes line endings to "\n".
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", cideerrors.IO("read_source", err).WithPath(path)
	}
	text := string(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}

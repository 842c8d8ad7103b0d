// Package interfaces defines the collaborator boundaries that let the
// orchestrator, resolver, and persistence layers be exercised against fakes
// in tests instead of the real filesystem or a real tree-sitter grammar.
package interfaces

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/cide/internal/discovery"
)

// FileSystem abstracts reading source files and listing a codebase's
// files, so the orchestrator can be driven in tests by an in-memory map
// instead of real disk IO.
type FileSystem interface {
	Walk(opts discovery.Options) ([]discovery.File, error)
	ReadFile(path string) (string, error)
}

// OSFileSystem is the production FileSystem backed by the real disk,
// delegating directly to internal/discovery.
type OSFileSystem struct{}

func (OSFileSystem) Walk(opts discovery.Options) ([]discovery.File, error) {
	return discovery.Walk(opts)
}

func (OSFileSystem) ReadFile(path string) (string, error) {
	return discovery.ReadSource(path)
}

// TreeParser abstracts a single tree-sitter grammar binding: parsing
// source text into a syntax tree and running a compiled query against it.
// Language-specific parsers in internal/parser implement their
// node-to-element mapping on top of this, so the mapping logic can be unit
// tested against a fixed tree without re-invoking the C grammar binding
// every time.
type TreeParser interface {
	Parse(source []byte, oldTree *sitter.Tree) (*sitter.Tree, error)
	Language() *sitter.Language
}

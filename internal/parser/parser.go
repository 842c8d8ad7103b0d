// Package parser turns source bytes into a codemodel.CodeFile, one
// implementation per supported language, all built on
// github.com/tree-sitter/go-tree-sitter grammar bindings.
package parser

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/cide/internal/codemodel"
	cideerrors "github.com/standardbeagle/cide/internal/errors"
	"github.com/standardbeagle/cide/internal/discovery"
)

// Parser extracts a codemodel.CodeFile from one source file's bytes.
type Parser interface {
	Language() discovery.Language
	ParseFile(path string, source string) (*codemodel.CodeFile, error)
}

// Registry owns one Parser instance per language, created lazily on first
// use, grounded on the teacher's lazyInit/initialized bookkeeping in
// TreeSitterParser.
type Registry struct {
	mu          sync.RWMutex
	lazyInit    map[discovery.Language]func() Parser
	initialized map[discovery.Language]Parser
}

// NewRegistry returns a Registry with every supported language's
// constructor registered but not yet instantiated.
func NewRegistry() *Registry {
	r := &Registry{
		lazyInit:    make(map[discovery.Language]func() Parser),
		initialized: make(map[discovery.Language]Parser),
	}
	r.lazyInit[discovery.LangPython] = func() Parser { return newPythonParser() }
	r.lazyInit[discovery.LangJavaScript] = func() Parser { return newGenericParser(discovery.LangJavaScript) }
	r.lazyInit[discovery.LangTypeScript] = func() Parser { return newGenericParser(discovery.LangTypeScript) }
	r.lazyInit[discovery.LangGo] = func() Parser { return newGenericParser(discovery.LangGo) }
	r.lazyInit[discovery.LangJava] = func() Parser { return newGenericParser(discovery.LangJava) }
	r.lazyInit[discovery.LangRust] = func() Parser { return newGenericParser(discovery.LangRust) }
	r.lazyInit[discovery.LangCSharp] = func() Parser { return newGenericParser(discovery.LangCSharp) }
	r.lazyInit[discovery.LangCpp] = func() Parser { return newGenericParser(discovery.LangCpp) }
	r.lazyInit[discovery.LangPHP] = func() Parser { return newGenericParser(discovery.LangPHP) }
	r.lazyInit[discovery.LangZig] = func() Parser { return newGenericParser(discovery.LangZig) }
	return r
}

// Get returns the Parser for lang, instantiating it on first request. A
// language with no registered constructor (e.g. LangC, LangUnknown) yields
// (nil, false): the caller skips such files rather than failing the run.
func (r *Registry) Get(lang discovery.Language) (Parser, bool) {
	r.mu.RLock()
	if p, ok := r.initialized[lang]; ok {
		r.mu.RUnlock()
		return p, true
	}
	ctor, ok := r.lazyInit[lang]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.initialized[lang]; ok {
		return p, true
	}
	p := ctor()
	r.initialized[lang] = p
	return p, true
}

// nodeText returns the exact source slice a node spans.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// nodeRawText is like nodeText but, when node does not start in column
// zero, extends the slice back to the start of its line so the result
// preserves the element's original indentation byte-for-byte (spec.md
// §4.2: "original indentation included where the element's first column
// is non-zero"). Use this only for a definition node whose text becomes
// an element's Raw field (function/class/method/attribute/import
// statements) — never for a sub-node read for its semantic value (a
// name, type hint, or parameter), where leading whitespace would corrupt
// the extracted text.
func nodeRawText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	if col := uint(node.StartPoint().Column); col > 0 && col <= start {
		start -= col
	}
	return string(source[start:node.EndByte()])
}

// children returns all direct children of node.
func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := node.ChildCount()
	out := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		out = append(out, node.Child(i))
	}
	return out
}

// wrapParseError builds the typed ParseError for a single-file parse
// failure, which the caller logs and skips per spec.md §4.2's per-file
// failure policy.
func wrapParseError(path string, err error) error {
	return cideerrors.Parse("parse_file", err).WithPath(path)
}

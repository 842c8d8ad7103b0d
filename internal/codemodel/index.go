package codemodel

import (
	"sort"
	"strings"
)

// Index wraps a CodeBase with the process-local caches (_cached_elements,
// _cached_ids) that make identifier lookup O(1). Caches are never
// restored from disk: persistence always re-derives them from the codebase
// after load (the cached_ids.json sidecar Serialize can write is not read
// back), per the design note that transient-memory-dependent caches must
// not be trusted across a process boundary.
type Index struct {
	base     *CodeBase
	elements map[string]Element
	ids      []string
}

// NewIndex builds an Index over base, populating the cached element map
// immediately so lookups are O(1) from the start.
func NewIndex(base *CodeBase) *Index {
	idx := &Index{base: base}
	idx.Rebuild()
	return idx
}

// Base returns the underlying CodeBase.
func (idx *Index) Base() *CodeBase { return idx.base }

// Rebuild repopulates _cached_elements and _cached_ids from the current
// contents of the codebase. Callers invoke this after mutating CodeBase.Root
// directly (e.g. incremental update replacing one file).
func (idx *Index) Rebuild() {
	idx.elements = make(map[string]Element)
	idx.ids = idx.ids[:0]

	for _, f := range idx.base.Root {
		for _, imp := range f.Imports {
			idx.add(imp.UniqueID(), imp)
		}
		for _, c := range f.Classes {
			idx.add(c.UniqueID(), c)
			for _, m := range c.Methods {
				idx.add(m.UniqueID(), m)
			}
			for _, a := range c.Attributes {
				idx.add(a.UniqueID(), a)
			}
		}
		for _, fn := range f.Functions {
			idx.add(fn.UniqueID(), fn)
		}
		for _, v := range f.Variables {
			idx.add(v.UniqueID(), v)
		}
	}
}

func (idx *Index) add(id string, el Element) {
	idx.elements[id] = el
	idx.ids = append(idx.ids, id)
}

// Get resolves an identifier via the cached element map. A miss returns
// (nil, false) rather than falling back to a linear scan: the cache is
// rebuilt whenever the codebase changes, so a miss means the id genuinely
// does not exist.
func (idx *Index) Get(id string) (Element, bool) {
	el, ok := idx.elements[id]
	return el, ok
}

// AllIDs returns every cached unique_id across the whole codebase.
func (idx *Index) AllIDs() []string {
	out := make([]string, len(idx.ids))
	copy(out, idx.ids)
	return out
}

func (idx *Index) collect(pred func(Element) bool) []string {
	var out []string
	for _, id := range idx.ids {
		if pred(idx.elements[id]) {
			out = append(out, id)
		}
	}
	return out
}

// AllImports returns the unique ids of every import across the codebase.
func (idx *Index) AllImports() []string {
	return idx.collect(func(e Element) bool { _, ok := e.(*ImportStatement); return ok })
}

// AllClasses returns the unique ids of every class across the codebase.
func (idx *Index) AllClasses() []string {
	return idx.collect(func(e Element) bool { _, ok := e.(*ClassDefinition); return ok })
}

// AllMethods returns the unique ids of every method across the codebase.
func (idx *Index) AllMethods() []string {
	return idx.collect(func(e Element) bool { _, ok := e.(*MethodDefinition); return ok })
}

// AllAttributes returns the unique ids of every class attribute across the
// codebase.
func (idx *Index) AllAttributes() []string {
	return idx.collect(func(e Element) bool { _, ok := e.(*ClassAttribute); return ok })
}

// AllFunctions returns the unique ids of every module-level function
// across the codebase.
func (idx *Index) AllFunctions() []string {
	return idx.collect(func(e Element) bool { _, ok := e.(*FunctionDefinition); return ok })
}

// AllVariables returns the unique ids of every module-level variable
// across the codebase.
func (idx *Index) AllVariables() []string {
	return idx.collect(func(e Element) bool { _, ok := e.(*VariableDeclaration); return ok })
}

// elementTypeCode is the single-letter code used when TreeViewOptions requests
// include_types: F(unction)/V(ariable)/C(lass)/A(ttribute)/M(ethod).
func elementTypeCode(e Element) string {
	switch e.(type) {
	case *FunctionDefinition:
		return "F"
	case *VariableDeclaration:
		return "V"
	case *ClassDefinition:
		return "C"
	case *ClassAttribute:
		return "A"
	case *MethodDefinition:
		return "M"
	default:
		return "?"
	}
}

// treeDirNode is one directory level of the nested tree dict built by
// buildTreeDict: a map of child directory name to subtree, plus the files
// directly inside this directory.
type treeDirNode struct {
	children map[string]*treeDirNode
	files    []*CodeFile
}

func newTreeDirNode() *treeDirNode {
	return &treeDirNode{children: make(map[string]*treeDirNode)}
}

// buildTreeDict assembles the nested directory dictionary described in
// spec.md §4.4, optionally restricted to filterPaths.
func (idx *Index) buildTreeDict(filterPaths map[string]bool) *treeDirNode {
	root := newTreeDirNode()
	for _, f := range idx.base.Root {
		if filterPaths != nil && !filterPaths[f.FilePath] {
			continue
		}
		parts := strings.Split(f.FilePath, "/")
		dir := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := dir.children[part]
			if !ok {
				child = newTreeDirNode()
				dir.children[part] = child
			}
			dir = child
		}
		dir.files = append(dir.files, f)
	}
	return root
}

// TreeViewOptions configures GetTreeView rendering.
type TreeViewOptions struct {
	IncludeModules bool
	IncludeTypes   bool
	FilterPaths    map[string]bool
}

// GetTreeView renders the codebase's directory structure as an ASCII tree
// using "├──"/"└──"/"│" connectors. When IncludeModules is set, each
// file's top-level element names are emitted as leaves below it; when
// IncludeTypes is also set, each element name is prefixed with its
// single-letter type code.
func (idx *Index) GetTreeView(opts TreeViewOptions) string {
	root := idx.buildTreeDict(opts.FilterPaths)
	var b strings.Builder
	idx.renderDir(&b, root, "", opts)
	return b.String()
}

func (idx *Index) renderDir(b *strings.Builder, dir *treeDirNode, prefix string, opts TreeViewOptions) {
	names := make([]string, 0, len(dir.children))
	for name := range dir.children {
		names = append(names, name)
	}
	sort.Strings(names)

	files := append([]*CodeFile(nil), dir.files...)
	sort.Slice(files, func(i, j int) bool { return files[i].FilePath < files[j].FilePath })

	total := len(names) + len(files)
	i := 0

	for _, name := range names {
		isLast := i == total-1
		connector, branch := connectors(isLast)
		b.WriteString(prefix + connector + name + "\n")
		idx.renderDir(b, dir.children[name], prefix+branch, opts)
		i++
	}

	for _, f := range files {
		isLast := i == total-1
		connector, branch := connectors(isLast)
		base := f.FilePath
		if idx := strings.LastIndex(base, "/"); idx >= 0 {
			base = base[idx+1:]
		}
		b.WriteString(prefix + connector + base + "\n")
		if opts.IncludeModules {
			idx.renderFileElements(b, f, prefix+branch, opts)
		}
		i++
	}
}

func (idx *Index) renderFileElements(b *strings.Builder, f *CodeFile, prefix string, opts TreeViewOptions) {
	var elements []Element
	for _, imp := range f.Imports {
		elements = append(elements, imp)
	}
	for _, v := range f.Variables {
		elements = append(elements, v)
	}
	for _, fn := range f.Functions {
		elements = append(elements, fn)
	}
	for _, c := range f.Classes {
		elements = append(elements, c)
	}

	for i, el := range elements {
		isLast := i == len(elements)-1
		connector, _ := connectors(isLast)
		label := el.ElementName()
		if opts.IncludeTypes {
			label = elementTypeCode(el) + " " + label
		}
		b.WriteString(prefix + connector + label + "\n")
	}
}

func connectors(isLast bool) (connector, branch string) {
	if isLast {
		return "└── ", "    "
	}
	return "├── ", "│   "
}

// CompileTreeNodesDict assembles a per-file textual outline suitable for
// indexing into the search engine: one entry per file path, containing one
// line per top-level element name (imports, variables, functions, classes
// with their methods/attributes indented).
func (idx *Index) CompileTreeNodesDict() map[string][]string {
	out := make(map[string][]string)
	for _, f := range idx.base.Root {
		var lines []string
		for _, imp := range f.Imports {
			lines = append(lines, "import "+imp.AsDependency())
		}
		for _, v := range f.Variables {
			lines = append(lines, "var "+v.Name)
		}
		for _, fn := range f.Functions {
			lines = append(lines, "func "+fn.Name)
		}
		for _, c := range f.Classes {
			lines = append(lines, "class "+c.Name)
			for _, a := range c.Attributes {
				lines = append(lines, "  attr "+a.Name)
			}
			for _, m := range c.Methods {
				lines = append(lines, "  method "+m.Name)
			}
		}
		out[f.FilePath] = lines
	}
	return out
}

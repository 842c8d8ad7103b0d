// Package resolver implements the two-phase dependency resolution pass
// (intra-file, inter-file) that attaches CodeReferences to parsed
// elements, grounded on the traversal/parent-stack bookkeeping pattern in
// the teacher's VisitContext, adapted from a live tree-sitter walk to a
// pass over already-built codemodel.CodeFiles.
package resolver

import (
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/standardbeagle/cide/internal/codemodel"
)

// candidate is one in-file name a target element's raw text might
// mention: an import, a class, a function, a variable, a method, or an
// attribute.
type candidate struct {
	id   string
	name string
	typ  codemodel.ReferenceType
}

var wordBoundaryCache sync.Map // name -> *regexp.Regexp

func wordBoundaryRegexp(name string) *regexp.Regexp {
	if name == "" {
		return nil
	}
	if cached, ok := wordBoundaryCache.Load(name); ok {
		return cached.(*regexp.Regexp)
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return nil
	}
	wordBoundaryCache.Store(name, re)
	return re
}

// countOccurrences returns the word-boundary occurrence count of name in
// text, per spec.md §4.2's reference-counting rule.
func countOccurrences(text, name string) int {
	re := wordBoundaryRegexp(name)
	if re == nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// ResolveIntraFile builds the codebase-wide candidate set (every class,
// function, variable, method, and attribute across every file, plus each
// file's own imports) and, for each candidate name, spends a single
// file-wide occurrence budget across that file's distinct sibling
// elements. Method and attribute references are attached to the owning
// member, never to the class directly; base-class name matches are
// attached to the class's bases_references instead of its own references.
//
// Candidates span the whole codebase rather than a single file: a
// function in one file calling a method defined in another (e.g.
// "A().m()" where A is imported) must still resolve "m" by name, since
// the regex-based approximation has no notion of import-qualified scope
// (spec.md §9: "the same approximation for fidelity").
func ResolveIntraFile(base *codemodel.CodeBase) {
	global := buildGlobalCandidates(base)

	for _, file := range base.Root {
		// Drop references from any earlier pass so that re-running the
		// resolver (e.g. after an incremental update) does not duplicate them.
		for _, v := range file.Variables {
			v.References = nil
		}
		for _, fn := range file.Functions {
			fn.References = nil
		}
		for _, cls := range file.Classes {
			cls.BasesReferences = nil
			for _, m := range cls.Methods {
				m.References = nil
			}
			for _, a := range cls.Attributes {
				a.References = nil
			}
		}
		siblings := buildSiblings(file)
		corpus := joinRaw(siblings)
		fileCandidates := append(append([]candidate(nil), global...), buildImportCandidates(file)...)

		for _, c := range fileCandidates {
			distributeReferences(c, corpus, siblings)
		}
		for _, cls := range file.Classes {
			resolveClassBases(cls, fileCandidates)
		}
	}
}

// sibling is one place an intra-file CodeReference may attach: a
// variable, function, method, or attribute, in file order. Classes
// themselves are never reference targets (only their members and, via
// resolveClassBases, their bases_references).
type sibling struct {
	id      string
	name    string
	raw     string
	append_ func(codemodel.CodeReference)
}

// buildSiblings returns a file's non-import reference targets in file
// order: module-level variables, then functions, then each class's
// methods followed by its attributes (spec.md §4.2: "for a class, visit
// attributes, methods, bases in that order" governs bases resolution
// separately; the order here only matters for which sibling a shared
// budget reaches first when ties are broken by file position).
func buildSiblings(file *codemodel.CodeFile) []sibling {
	var out []sibling
	for _, v := range file.Variables {
		v := v
		out = append(out, sibling{id: v.UniqueID(), name: v.Name, raw: v.Raw,
			append_: func(r codemodel.CodeReference) { v.References = append(v.References, r) }})
	}
	for _, fn := range file.Functions {
		fn := fn
		out = append(out, sibling{id: fn.UniqueID(), name: fn.Name, raw: fn.Raw,
			append_: func(r codemodel.CodeReference) { fn.References = append(fn.References, r) }})
	}
	for _, cls := range file.Classes {
		for _, m := range cls.Methods {
			m := m
			out = append(out, sibling{id: m.UniqueID(), name: m.Name, raw: m.Raw,
				append_: func(r codemodel.CodeReference) { m.References = append(m.References, r) }})
		}
		for _, attr := range cls.Attributes {
			attr := attr
			out = append(out, sibling{id: attr.UniqueID(), name: attr.Name, raw: attr.Raw,
				append_: func(r codemodel.CodeReference) { attr.References = append(attr.References, r) }})
		}
	}
	return out
}

// joinRaw concatenates every sibling's raw text into the corpus a
// candidate's file-wide occurrence count is computed against.
func joinRaw(siblings []sibling) string {
	parts := make([]string, len(siblings))
	for i, s := range siblings {
		parts[i] = s.raw
	}
	return strings.Join(parts, "\n")
}

// distributeReferences spends c's file-wide occurrence budget one
// reference at a time on distinct siblings, in file order, until the
// budget is exhausted; any leftover budget beyond the number of distinct
// matching siblings is dropped rather than duplicated onto one element
// (spec.md §4.2/§4.5, grounded on original_source's
// count_occurences_in_code/_find_references budget-exhaustion loop).
// Self-mentions never count toward the budget or receive a reference.
func distributeReferences(c candidate, corpus string, siblings []sibling) {
	if c.name == "" {
		return
	}
	budget := countOccurrences(corpus, c.name)
	for _, s := range siblings {
		if s.id == c.id {
			budget -= countOccurrences(s.raw, c.name)
		}
	}
	if budget <= 0 {
		return
	}

	for _, s := range siblings {
		if s.id == c.id {
			continue
		}
		if countOccurrences(s.raw, c.name) == 0 {
			continue
		}
		s.append_(codemodel.CodeReference{UniqueID: c.id, Name: c.name, Type: c.typ})
		budget--
		if budget <= 0 {
			return
		}
	}
}

func buildImportCandidates(file *codemodel.CodeFile) []candidate {
	var out []candidate
	for _, imp := range file.Imports {
		out = append(out, candidate{id: imp.UniqueID(), name: imp.AsDependency(), typ: codemodel.RefImport})
	}
	return out
}

func buildGlobalCandidates(base *codemodel.CodeBase) []candidate {
	var out []candidate
	for _, file := range base.Root {
		for _, v := range file.Variables {
			out = append(out, candidate{id: v.UniqueID(), name: v.Name, typ: codemodel.RefVariable})
		}
		for _, fn := range file.Functions {
			out = append(out, candidate{id: fn.UniqueID(), name: fn.Name, typ: codemodel.RefFunction})
		}
		for _, cls := range file.Classes {
			out = append(out, candidate{id: cls.UniqueID(), name: cls.Name, typ: codemodel.RefClass})
			for _, attr := range cls.Attributes {
				out = append(out, candidate{id: attr.UniqueID(), name: attr.Name, typ: codemodel.RefVariable})
			}
			for _, m := range cls.Methods {
				out = append(out, candidate{id: m.UniqueID(), name: m.Name, typ: codemodel.RefMethod})
			}
		}
	}
	return out
}

// resolveClassBases attaches one CodeReference per entry in cls.Bases to
// cls.BasesReferences, resolved against the candidate set (every class
// across the codebase plus the file's own imports) when a matching class
// or import exists; the first candidate with that name wins.
func resolveClassBases(cls *codemodel.ClassDefinition, candidates []candidate) {
	for _, base := range cls.Bases {
		ref := codemodel.CodeReference{Name: base, Type: codemodel.RefInheritance}
		for _, c := range candidates {
			if c.name == base && (c.typ == codemodel.RefClass || c.typ == codemodel.RefImport) {
				ref.UniqueID = c.id
				break
			}
		}
		cls.BasesReferences = append(cls.BasesReferences, ref)
	}
}

// ResolveInterFiles sets each import's definition_id by matching its
// synthesized unique_id against the global codebase, following a single
// re-export hop through another file's import when a direct match fails,
// per spec.md §4.5's inter-file phase.
func ResolveInterFiles(base *codemodel.CodeBase, idx *codemodel.Index) {
	// reexports keys each import by the id its bound name has inside the
	// importing module ("<module>.<as_dependency>"), which is the id another
	// file's import of that name synthesizes.
	reexports := make(map[string][]*codemodel.ImportStatement)
	var allImports []*codemodel.ImportStatement
	for _, file := range base.Root {
		module := strings.ReplaceAll(strings.TrimSuffix(file.FilePath, path.Ext(file.FilePath)), "/", ".")
		for _, imp := range file.Imports {
			key := module + "." + imp.AsDependency()
			reexports[key] = append(reexports[key], imp)
			allImports = append(allImports, imp)
		}
	}

	// Pass 1: direct matches against concrete codebase elements.
	unresolved := allImports[:0:0]
	for _, imp := range allImports {
		id := synthesizeImportID(imp)
		if _, ok := idx.Get(id); ok {
			imp.DefinitionID = id
		} else {
			imp.DefinitionID = ""
			unresolved = append(unresolved, imp)
		}
	}

	// Pass 2: single-hop re-export following against imports resolved in
	// pass 1 (spec.md §9: "multi-hop chains are intentionally not
	// supported").
	// Targets are computed before any is assigned, so an import resolved in
	// this pass is never itself followed.
	followed := make(map[*codemodel.ImportStatement]string, len(unresolved))
	for _, imp := range unresolved {
		followed[imp] = followReexport(synthesizeImportID(imp), imp, reexports)
	}
	for imp, def := range followed {
		imp.DefinitionID = def
	}
}

// synthesizeImportID builds "<source>.<name>" (or "<source>" when no name
// was imported). Package index/init file paths are not compressed to their
// directory, so a definition in such a file (e.g. "pkg/__init__.py", id
// "pkg.__init__.X") does not match an import of "pkg.X".
func synthesizeImportID(imp *codemodel.ImportStatement) string {
	if imp.Name != "" {
		return imp.Source + "." + imp.Name
	}
	return imp.Source
}

// followReexport finds another file's import that binds id inside its own
// module (a re-export) and that was itself resolved directly, following
// exactly one hop (per
// spec.md §9's "multi-hop chains are intentionally not supported").
func followReexport(id string, self *codemodel.ImportStatement, byID map[string][]*codemodel.ImportStatement) string {
	for _, other := range byID[id] {
		if other == self {
			continue
		}
		if other.DefinitionID != "" {
			return other.DefinitionID
		}
	}
	return ""
}

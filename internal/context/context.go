// Package context assembles a renderable slice of a codebase around a set
// of requested element ids: the transitive reference walk, element
// classification, and <FILE_START::path> wrapping are a direct port of
// original_source's wrap_content/get_context contract, expressed the way
// the teacher builds multi-stage text assembly over the code model.
package context

import (
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/cide/internal/codemodel"
)

// packagesBlockName is the synthetic file path used for the grouped
// import block, never a real source path so it can never collide.
const packagesBlockName = "PACKAGES"

var nonWordRe = regexp.MustCompile(`\W`)

// sanitizePath replaces every non-word rune in path with "_", matching
// wrap_content's sanitization rule (spec.md names the wrapper format but
// not the exact sanitization; resolved from original_source).
func sanitizePath(path string) string {
	return nonWordRe.ReplaceAllString(path, "_")
}

// Structure is the classified result of a transitive context walk.
type Structure struct {
	RequestedElements []codemodel.Element
	Imports           []*codemodel.ImportStatement
	Variables         []*codemodel.VariableDeclaration
	Functions         []*codemodel.FunctionDefinition
	Classes           []*codemodel.ClassDefinition
	ClassMethods      []*codemodel.MethodDefinition
	ClassAttributes   []*codemodel.ClassAttribute
}

// Result is the rendered output of Get: context blocks (everything walked
// transitively, excluding the requested elements themselves) and target
// blocks (the requested elements, rendered separately per spec.md §4.6
// point 5 so a caller can keep them concatenated or split).
type Result struct {
	Structure     *Structure
	ContextBlocks []string
	TargetBlocks  []string
}

// AsString joins context and target blocks with a double newline.
func (r *Result) AsString() string {
	return strings.Join(r.AsStringList(), "\n\n")
}

// AsStringList returns context blocks followed by target blocks.
func (r *Result) AsStringList() []string {
	out := make([]string, 0, len(r.ContextBlocks)+len(r.TargetBlocks))
	out = append(out, r.ContextBlocks...)
	out = append(out, r.TargetBlocks...)
	return out
}

// Get normalizes requestedIDs, walks references transitively to depth (0
// means requested-only), classifies the collected elements, and renders
// them into file-wrapped blocks. literals supplies a fallback rendering
// for any requested id that the index cannot resolve (spec.md §4.6 step
// 1); a nil map means unresolved ids are simply dropped.
func Get(idx *codemodel.Index, requestedIDs []string, depth int, literals map[string]string) *Result {
	normalized := normalizeIDs(requestedIDs)

	requested := make(map[string]codemodel.Element)
	var missingLiterals []string
	for _, id := range normalized {
		if el, ok := idx.Get(id); ok {
			requested[id] = el
		} else if lit, ok := literals[id]; ok {
			missingLiterals = append(missingLiterals, lit)
		}
	}

	visited := make(map[string]codemodel.Element)
	for id, el := range requested {
		visited[id] = el
	}
	walk(idx, requested, depth, visited)

	structure := classify(idx, requested, visited)

	ctxBlocks := render(idx, structure, false)
	targetBlocks := render(idx, structure, true)
	ctxBlocks = append(ctxBlocks, missingLiterals...)

	return &Result{Structure: structure, ContextBlocks: ctxBlocks, TargetBlocks: targetBlocks}
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// walk performs a breadth-first expansion of requested's references up to
// depth hops, adding every newly reached element into visited.
func walk(idx *codemodel.Index, requested map[string]codemodel.Element, depth int, visited map[string]codemodel.Element) {
	frontier := make(map[string]codemodel.Element, len(requested))
	for id, el := range requested {
		frontier[id] = el
	}

	for hop := 0; hop < depth; hop++ {
		next := make(map[string]codemodel.Element)
		for _, el := range frontier {
			for _, ref := range el.ElementReferences() {
				if ref.UniqueID == "" || visited[ref.UniqueID] != nil {
					continue
				}
				target, ok := idx.Get(ref.UniqueID)
				if !ok {
					continue
				}
				visited[ref.UniqueID] = target
				next[ref.UniqueID] = target
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}
}

// classify sorts visited elements into the CodeContextStructure buckets,
// identifying partial classes: methods/attributes whose owning class was
// not itself visited.
func classify(idx *codemodel.Index, requested, visited map[string]codemodel.Element) *Structure {
	s := &Structure{}

	for _, el := range requested {
		s.RequestedElements = append(s.RequestedElements, el)
	}

	visitedClasses := make(map[string]bool)
	for id, el := range visited {
		if _, ok := el.(*codemodel.ClassDefinition); ok {
			visitedClasses[id] = true
		}
	}

	// Elements already part of the requested/target set are rendered by
	// the target pass only, never duplicated into the context buckets
	// (spec.md §4.6: "the output never contains an element twice").
	for id, el := range visited {
		if _, ok := requested[id]; ok {
			continue
		}
		switch t := el.(type) {
		case *codemodel.ImportStatement:
			s.Imports = append(s.Imports, t)
		case *codemodel.VariableDeclaration:
			s.Variables = append(s.Variables, t)
		case *codemodel.FunctionDefinition:
			s.Functions = append(s.Functions, t)
		case *codemodel.ClassDefinition:
			s.Classes = append(s.Classes, t)
		case *codemodel.MethodDefinition:
			if !visitedClasses[t.ClassID] {
				s.ClassMethods = append(s.ClassMethods, t)
			}
		case *codemodel.ClassAttribute:
			if !visitedClasses[t.ClassID] {
				s.ClassAttributes = append(s.ClassAttributes, t)
			}
		}
	}

	return s
}

// firstLine returns raw up to (not including) its first newline, the
// "naive first-newline-split" partial-class header synthesis spec.md §9
// leaves as an open question and directs be resolved by preserving
// source truncation behavior rather than brace/indent-aware parsing.
func firstLine(raw string) string {
	if idx := strings.IndexByte(raw, '\n'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

// render produces one wrapped block per file that contributed elements
// (plus one synthetic PACKAGES block for imports), in file-path order;
// when target is true it renders requested elements instead of the
// transitively-walked context.
func render(idx *codemodel.Index, s *Structure, target bool) []string {
	byFile := make(map[string][]string)
	var fileOrder []string
	addLine := func(filePath, line string) {
		if _, ok := byFile[filePath]; !ok {
			fileOrder = append(fileOrder, filePath)
		}
		byFile[filePath] = append(byFile[filePath], line)
	}

	var imports []*codemodel.ImportStatement
	var variables []*codemodel.VariableDeclaration
	var functions []*codemodel.FunctionDefinition
	var classes []*codemodel.ClassDefinition
	var methods []*codemodel.MethodDefinition
	var attrs []*codemodel.ClassAttribute

	if target {
		for _, el := range s.RequestedElements {
			switch t := el.(type) {
			case *codemodel.ImportStatement:
				imports = append(imports, t)
			case *codemodel.VariableDeclaration:
				variables = append(variables, t)
			case *codemodel.FunctionDefinition:
				functions = append(functions, t)
			case *codemodel.ClassDefinition:
				classes = append(classes, t)
			case *codemodel.MethodDefinition:
				methods = append(methods, t)
			case *codemodel.ClassAttribute:
				attrs = append(attrs, t)
			}
		}
	} else {
		imports, variables, functions, classes, methods, attrs =
			s.Imports, s.Variables, s.Functions, s.Classes, s.ClassMethods, s.ClassAttributes
	}

	for _, v := range variables {
		addLine(v.FilePath, v.Raw)
	}
	for _, fn := range functions {
		addLine(fn.FilePath, fn.Raw)
	}
	for _, c := range classes {
		addLine(c.FilePath, c.Raw)
	}

	partialByClass := make(map[string][]string)
	var partialOrder []string
	partialFile := make(map[string]string)
	for _, m := range methods {
		if _, ok := partialByClass[m.ClassID]; !ok {
			partialOrder = append(partialOrder, m.ClassID)
		}
		partialByClass[m.ClassID] = append(partialByClass[m.ClassID], m.Raw)
		partialFile[m.ClassID] = m.FilePath
	}
	for _, a := range attrs {
		if _, ok := partialByClass[a.ClassID]; !ok {
			partialOrder = append(partialOrder, a.ClassID)
		}
		partialByClass[a.ClassID] = append(partialByClass[a.ClassID], a.Raw)
		partialFile[a.ClassID] = a.FilePath
	}
	for _, classID := range partialOrder {
		header := classHeaderFor(idx, classID)
		body := strings.Join(append([]string{header}, partialByClass[classID]...), "\n\n")
		addLine(partialFile[classID], body)
	}

	sort.Strings(fileOrder)
	blocks := make([]string, 0, len(fileOrder))
	for _, path := range fileOrder {
		content := strings.Join(byFile[path], "\n\n")
		blocks = append(blocks, wrapBlock(path, content))
	}

	if len(imports) > 0 {
		var lines []string
		for _, imp := range imports {
			lines = append(lines, imp.Raw)
		}
		blocks = append(blocks, wrapBlock(packagesBlockName, strings.Join(lines, "\n")))
	}

	return blocks
}

// classHeaderFor synthesizes a partial class's header line by resolving
// the owning ClassDefinition through idx directly: the class itself need
// not be part of the rendered set for its header to be recoverable.
func classHeaderFor(idx *codemodel.Index, classID string) string {
	if el, ok := idx.Get(classID); ok {
		if c, ok := el.(*codemodel.ClassDefinition); ok {
			return firstLine(c.Raw)
		}
	}
	return "class " + classID
}

// wrapBlock wraps content with the <FILE_START::path>/<FILE_END::path>
// markers, sanitizing path per wrap_content.
func wrapBlock(path, content string) string {
	sanitized := sanitizePath(path)
	var b strings.Builder
	b.WriteString("<FILE_START::")
	b.WriteString(sanitized)
	b.WriteString(">\n")
	b.WriteString(content)
	b.WriteString("\n</FILE_END::")
	b.WriteString(sanitized)
	b.WriteString(">")
	return b.String()
}

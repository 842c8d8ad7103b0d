// Package codemodel defines the canonical data shape every language parser
// emits and every downstream consumer (resolver, context retriever, search
// index) indexes against: imports, variables, functions, classes and their
// members, each carrying its exact source text and a stable unique_id.
package codemodel

import "strings"

// Element is the tagged-variant sum-type interface every code element
// implements: an import, a variable, a function, a method, a class
// attribute, or a class. Container-specific behavior (attributes on
// classes, signature on functions) lives on the concrete type, not here.
type Element interface {
	UniqueID() string
	ElementName() string
	ElementFilePath() string
	ElementRaw() string
	ElementReferences() []CodeReference
}

// ReferenceType enumerates the kinds of cross-reference a CodeReference can
// carry.
type ReferenceType string

const (
	RefImport      ReferenceType = "import"
	RefVariable    ReferenceType = "variable"
	RefFunction    ReferenceType = "function"
	RefClass       ReferenceType = "class"
	RefMethod      ReferenceType = "method"
	RefInheritance ReferenceType = "inheritance"
)

// CodeReference points at another element by name and, once resolved, by
// unique_id. References are weak: they never hold a direct handle, only a
// string key resolved through CodeBase's cached element map.
type CodeReference struct {
	UniqueID string        `json:"unique_id,omitempty"`
	Name     string        `json:"name"`
	Type     ReferenceType `json:"type"`
}

// ImportType classifies how a module is being imported.
type ImportType string

const (
	ImportAbsolute   ImportType = "absolute"
	ImportRelative   ImportType = "relative"
	ImportSideEffect ImportType = "side_effect"
)

// ImportStatement represents one import/include/use declaration.
type ImportStatement struct {
	FilePath     string     `json:"file_path"`
	Source       string     `json:"source"`
	Name         string     `json:"name,omitempty"`
	Alias        string     `json:"alias,omitempty"`
	ImportType   ImportType `json:"import_type"`
	Raw          string     `json:"raw"`
	DefinitionID string     `json:"definition_id,omitempty"`

	// uniqueID overrides the computed id when set through SetUniqueID. The
	// resolver does not set it: ResolveInterFiles records its match in
	// DefinitionID and leaves the import's own id file-qualified.
	uniqueID string
}

// AsDependency returns the name this import is referenced by in source:
// alias if present, else name, else the raw source path.
func (i *ImportStatement) AsDependency() string {
	if i.Alias != "" {
		return i.Alias
	}
	if i.Name != "" {
		return i.Name
	}
	return i.Source
}

// UniqueID returns the import's canonical id: file_path + ":" + source (+
// ":" + name when an explicit imported name is present), unless an id has
// been set through SetUniqueID. This is
// deliberately file-path-qualified rather than "<source>.<name>": that
// latter form is only ever a *lookup key* the resolver synthesizes to
// find a matching definition elsewhere in the codebase (spec.md §4.5),
// never the import's own identity — a file-qualified default keeps an
// import's id from colliding with the class/function it resolves to.
func (i *ImportStatement) UniqueID() string {
	if i.uniqueID != "" {
		return i.uniqueID
	}
	if i.Name != "" {
		return i.FilePath + ":" + i.Source + ":" + i.Name
	}
	return i.FilePath + ":" + i.Source
}

// SetUniqueID overrides the default file-qualified id. Nothing in the
// resolver calls it; unresolved imports keep their default id.
func (i *ImportStatement) SetUniqueID(id string) { i.uniqueID = id }

func (i *ImportStatement) ElementName() string              { return i.Name }
func (i *ImportStatement) ElementFilePath() string           { return i.FilePath }
func (i *ImportStatement) ElementRaw() string                { return i.Raw }
func (i *ImportStatement) ElementReferences() []CodeReference { return nil }

// VariableDeclaration represents a module-level or class-level variable.
type VariableDeclaration struct {
	FilePath   string          `json:"file_path"`
	Name       string          `json:"name"`
	TypeHint   string          `json:"type_hint,omitempty"`
	Value      string          `json:"value,omitempty"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	References []CodeReference `json:"references,omitempty"`
	Raw        string          `json:"raw"`

	uniqueID string
}

func (v *VariableDeclaration) UniqueID() string {
	if v.uniqueID != "" {
		return v.uniqueID
	}
	return joinID(basePath(v.FilePath), v.Name)
}
func (v *VariableDeclaration) SetUniqueID(id string) { v.uniqueID = id }

func (v *VariableDeclaration) ElementName() string               { return v.Name }
func (v *VariableDeclaration) ElementFilePath() string            { return v.FilePath }
func (v *VariableDeclaration) ElementRaw() string                 { return v.Raw }
func (v *VariableDeclaration) ElementReferences() []CodeReference { return v.References }

// Parameter is a single function/method parameter.
type Parameter struct {
	Name         string `json:"name"`
	TypeHint     string `json:"type_hint,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// IsOptional reports whether the parameter carries a default value.
func (p Parameter) IsOptional() bool { return p.DefaultValue != "" }

// FunctionSignature describes a callable's parameters and return type.
type FunctionSignature struct {
	Parameters []Parameter `json:"parameters,omitempty"`
	ReturnType string      `json:"return_type,omitempty"`
}

// FunctionDefinition represents a module-level function.
type FunctionDefinition struct {
	FilePath   string             `json:"file_path"`
	Name       string             `json:"name"`
	Signature  *FunctionSignature `json:"signature,omitempty"`
	Modifiers  []string           `json:"modifiers,omitempty"`
	Decorators []string           `json:"decorators,omitempty"`
	Docstring  string             `json:"docstring,omitempty"`
	References []CodeReference    `json:"references,omitempty"`
	Raw        string             `json:"raw"`

	uniqueID string
}

func (f *FunctionDefinition) UniqueID() string {
	if f.uniqueID != "" {
		return f.uniqueID
	}
	return joinID(basePath(f.FilePath), f.Name)
}
func (f *FunctionDefinition) SetUniqueID(id string) { f.uniqueID = id }

func (f *FunctionDefinition) ElementName() string               { return f.Name }
func (f *FunctionDefinition) ElementFilePath() string            { return f.FilePath }
func (f *FunctionDefinition) ElementRaw() string                 { return f.Raw }
func (f *FunctionDefinition) ElementReferences() []CodeReference { return f.References }

// MethodDefinition is a FunctionDefinition owned by a class.
type MethodDefinition struct {
	FunctionDefinition
	ClassID string `json:"class_id"`
}

// UniqueID for a method is always <class.unique_id>.<method_name>.
func (m *MethodDefinition) UniqueID() string {
	return m.ClassID + "." + m.Name
}

// Visibility classifies a class attribute's access level.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// ClassAttribute is a VariableDeclaration owned by a class.
type ClassAttribute struct {
	VariableDeclaration
	Visibility Visibility `json:"visibility"`
	ClassID    string     `json:"class_id"`
}

// UniqueID for an attribute is always <class.unique_id>.<attribute_name>.
func (a *ClassAttribute) UniqueID() string {
	return a.ClassID + "." + a.Name
}

// ClassDefinition represents a class/struct/interface-like type.
type ClassDefinition struct {
	FilePath         string           `json:"file_path"`
	Name             string           `json:"name"`
	Bases            []string         `json:"bases,omitempty"`
	BasesReferences  []CodeReference  `json:"bases_references,omitempty"`
	Attributes       []*ClassAttribute `json:"attributes,omitempty"`
	Methods          []*MethodDefinition `json:"methods,omitempty"`
	ownReferences    []CodeReference
	Raw              string `json:"raw"`

	uniqueID string
}

func (c *ClassDefinition) UniqueID() string {
	if c.uniqueID != "" {
		return c.uniqueID
	}
	return joinID(basePath(c.FilePath), c.Name)
}
func (c *ClassDefinition) SetUniqueID(id string) { c.uniqueID = id }

func (c *ClassDefinition) ElementName() string     { return c.Name }
func (c *ClassDefinition) ElementFilePath() string  { return c.FilePath }
func (c *ClassDefinition) ElementRaw() string       { return c.Raw }
func (c *ClassDefinition) ElementReferences() []CodeReference { return c.References() }

// SetOwnReferences stores the class-level references the resolver attaches
// directly to the class (as opposed to its members).
func (c *ClassDefinition) SetOwnReferences(refs []CodeReference) { c.ownReferences = refs }

// References returns the computed union of the class's own references, its
// attributes' references, its methods' references, and its base-class
// references, per spec.md §3's invariant that this union is never mutated
// directly by callers.
func (c *ClassDefinition) References() []CodeReference {
	var out []CodeReference
	out = append(out, c.ownReferences...)
	for _, a := range c.Attributes {
		out = append(out, a.References...)
	}
	for _, m := range c.Methods {
		out = append(out, m.References...)
	}
	out = append(out, c.BasesReferences...)
	return out
}

// AddMethod appends a method to the class, overwriting the method's
// FilePath and ClassID to match ownership (spec.md §3 invariant).
func (c *ClassDefinition) AddMethod(m *MethodDefinition) {
	m.FilePath = c.FilePath
	m.ClassID = c.UniqueID()
	c.Methods = append(c.Methods, m)
}

// AddAttribute appends an attribute to the class, overwriting its FilePath
// and ClassID to match ownership.
func (c *ClassDefinition) AddAttribute(a *ClassAttribute) {
	a.FilePath = c.FilePath
	a.ClassID = c.UniqueID()
	c.Attributes = append(c.Attributes, a)
}

// CodeFile is the parsed representation of a single source file.
type CodeFile struct {
	FilePath  string                 `json:"file_path"`
	Imports   []*ImportStatement     `json:"imports,omitempty"`
	Variables []*VariableDeclaration `json:"variables,omitempty"`
	Functions []*FunctionDefinition  `json:"functions,omitempty"`
	Classes   []*ClassDefinition     `json:"classes,omitempty"`
	Raw       string                 `json:"raw"`

	// ContentHash is the xxhash fingerprint of Raw, used by persistence to
	// detect staleness without re-parsing unchanged files.
	ContentHash uint64 `json:"content_hash"`
}

func (f *CodeFile) allIDs(get func(*CodeFile) []string) []string { return get(f) }

// AllImports returns the unique ids of every import in file order.
func (f *CodeFile) AllImports() []string {
	ids := make([]string, 0, len(f.Imports))
	for _, i := range f.Imports {
		ids = append(ids, i.UniqueID())
	}
	return ids
}

// AllClasses returns the unique ids of every class in file order.
func (f *CodeFile) AllClasses() []string {
	ids := make([]string, 0, len(f.Classes))
	for _, c := range f.Classes {
		ids = append(ids, c.UniqueID())
	}
	return ids
}

// AllMethods returns the unique ids of every method across all classes, in
// file order (classes in declaration order, methods within each class in
// declaration order).
func (f *CodeFile) AllMethods() []string {
	var ids []string
	for _, c := range f.Classes {
		for _, m := range c.Methods {
			ids = append(ids, m.UniqueID())
		}
	}
	return ids
}

// AllAttributes returns the unique ids of every attribute across all
// classes, in file order.
func (f *CodeFile) AllAttributes() []string {
	var ids []string
	for _, c := range f.Classes {
		for _, a := range c.Attributes {
			ids = append(ids, a.UniqueID())
		}
	}
	return ids
}

// AllFunctions returns the unique ids of every module-level function.
func (f *CodeFile) AllFunctions() []string {
	ids := make([]string, 0, len(f.Functions))
	for _, fn := range f.Functions {
		ids = append(ids, fn.UniqueID())
	}
	return ids
}

// AllVariables returns the unique ids of every module-level variable.
func (f *CodeFile) AllVariables() []string {
	ids := make([]string, 0, len(f.Variables))
	for _, v := range f.Variables {
		ids = append(ids, v.UniqueID())
	}
	return ids
}

// CachedIDs returns the union of this file's ids in the fixed order spec.md
// §3 mandates: imports, classes, methods, attributes, functions, variables.
func (f *CodeFile) CachedIDs() []string {
	var ids []string
	ids = append(ids, f.AllImports()...)
	ids = append(ids, f.AllClasses()...)
	ids = append(ids, f.AllMethods()...)
	ids = append(ids, f.AllAttributes()...)
	ids = append(ids, f.AllFunctions()...)
	ids = append(ids, f.AllVariables()...)
	return ids
}

// CodeBase owns every parsed CodeFile in a codebase. It is a plain
// container; identifier lookup and caching live in codemodel.Index so that
// CodeBase itself stays trivially serializable (spec.md §9: "never
// serialize partial caches ... always re-derive from the serialized code
// model").
type CodeBase struct {
	Root []*CodeFile `json:"root"`
}

// basePath strips the file extension and normalizes separators to dots,
// e.g. "pkg/a.py" -> "pkg.a".
func basePath(filePath string) string {
	p := strings.ReplaceAll(filePath, "\\", "/")
	if idx := strings.LastIndex(p, "."); idx >= 0 {
		// Only strip a trailing extension, not dots that are part of
		// directory names.
		if slash := strings.LastIndex(p, "/"); slash < idx {
			p = p[:idx]
		}
	}
	p = strings.ReplaceAll(p, "/", ".")
	return p
}

func joinID(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

// NormalizeNewlines folds "\r\n" and "\r" to "\n" so raw text never
// contains a carriage return after reading, per spec.md §3's invariant.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

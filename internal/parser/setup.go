package parser

import (
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
)

// grammar bundles a tree-sitter language and a parser already bound to it,
// the unit every per-language setup function in this file produces,
// grounded on the teacher's setupJavaScript/setupGo/... pattern in
// parser_language_setup.go.
type grammar struct {
	language *sitter.Language
	parser   *sitter.Parser
}

func newGrammar(languagePtr unsafe.Pointer) *grammar {
	language := sitter.NewLanguage(languagePtr)
	p := sitter.NewParser()
	if err := p.SetLanguage(language); err != nil {
		return &grammar{language: language, parser: nil}
	}
	return &grammar{language: language, parser: p}
}

func pythonGrammar() *grammar     { return newGrammar(tree_sitter_python.Language()) }
func javascriptGrammar() *grammar { return newGrammar(tree_sitter_javascript.Language()) }
func typescriptGrammar() *grammar { return newGrammar(tree_sitter_typescript.LanguageTypescript()) }
func goGrammar() *grammar         { return newGrammar(tree_sitter_go.Language()) }
func javaGrammar() *grammar       { return newGrammar(tree_sitter_java.Language()) }
func rustGrammar() *grammar       { return newGrammar(tree_sitter_rust.Language()) }
func csharpGrammar() *grammar     { return newGrammar(tree_sitter_csharp.Language()) }
func cppGrammar() *grammar        { return newGrammar(tree_sitter_cpp.Language()) }
func phpGrammar() *grammar        { return newGrammar(tree_sitter_php.LanguagePHP()) }
func zigGrammar() *grammar        { return newGrammar(tree_sitter_zig.Language()) }

// genericQueries captures top-level functions, classes/structs/interfaces
// and imports/includes across the stub languages with one generic query
// per grammar, per SPEC_FULL.md's decision to give every tree-sitter
// grammar dependency a home without duplicating Python's full
// reference-resolution fidelity.
var genericQueries = map[string]string{
	"javascript": `
        (function_declaration name: (identifier) @function.name) @function
        (class_declaration name: (identifier) @class.name) @class
        (import_statement source: (string) @import.source) @import
    `,
	"typescript": `
        (function_declaration name: (identifier) @function.name) @function
        (class_declaration name: (type_identifier) @class.name) @class
        (import_statement source: (string) @import.source) @import
    `,
	"go": `
        (function_declaration name: (identifier) @function.name) @function
        (type_declaration (type_spec name: (type_identifier) @class.name type: (struct_type))) @class
        (import_spec path: (interpreted_string_literal) @import.source) @import
    `,
	"java": `
        (method_declaration name: (identifier) @function.name) @function
        (class_declaration name: (identifier) @class.name) @class
        (import_declaration (scoped_identifier) @import.source) @import
    `,
	"rust": `
        (function_item name: (identifier) @function.name) @function
        (struct_item name: (type_identifier) @class.name) @class
        (use_declaration argument: (_) @import.source) @import
    `,
	"csharp": `
        (method_declaration name: (identifier) @function.name) @function
        (class_declaration name: (identifier) @class.name) @class
        (using_directive (qualified_name) @import.source) @import
    `,
	"cpp": `
        (function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
        (class_specifier name: (type_identifier) @class.name) @class
        (preproc_include path: (_) @import.source) @import
    `,
	"php": `
        (function_definition name: (name) @function.name) @function
        (class_declaration name: (name) @class.name) @class
        (namespace_use_declaration) @import
    `,
	"zig": `
        (FnProto name: (IDENTIFIER) @function.name) @function
    `,
}

package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/cide/internal/codemodel"
	"github.com/standardbeagle/cide/internal/discovery"
)

// pythonParser is the one full reference-implementation parser: it
// extracts imports, module-level variables and functions, classes with
// their methods and attributes, decorators, and docstrings. Node-kind
// handling is grounded on tree-sitter-python's grammar and on
// original_source's PythonParser, generalized from an imports-only
// implementation to cover every element variant the code model defines.
type pythonParser struct {
	grammar *grammar
}

func newPythonParser() *pythonParser {
	return &pythonParser{grammar: pythonGrammar()}
}

func (p *pythonParser) Language() discovery.Language { return discovery.LangPython }

func (p *pythonParser) ParseFile(path string, source string) (*codemodel.CodeFile, error) {
	raw := codemodel.NormalizeNewlines(source)
	file := &codemodel.CodeFile{FilePath: path, Raw: raw}

	if p.grammar.parser == nil {
		return file, nil
	}

	content := []byte(raw)
	tree := p.grammar.parser.Parse(content, nil)
	if tree == nil {
		return file, wrapParseError(path, errNilTree)
	}
	defer tree.Close()

	root := tree.RootNode()
	for _, child := range children(root) {
		p.processTopLevel(child, content, file, nil)
	}

	return file, nil
}

var errNilTree = &parseFailure{"tree-sitter parser returned no tree"}

type parseFailure struct{ msg string }

func (e *parseFailure) Error() string { return e.msg }

// processTopLevel dispatches one module-level (or, recursively, one
// decorated-definition-unwrapped) statement node into the CodeFile.
func (p *pythonParser) processTopLevel(node *sitter.Node, content []byte, file *codemodel.CodeFile, decorators []string) {
	switch node.Kind() {
	case "import_statement":
		file.Imports = append(file.Imports, p.processImportStatement(node, content, file.FilePath)...)
	case "import_from_statement":
		file.Imports = append(file.Imports, p.processImportFromStatement(node, content, file.FilePath)...)
	case "decorated_definition":
		p.processDecoratedDefinition(node, content, file)
	case "function_definition":
		file.Functions = append(file.Functions, p.buildFunction(node, content, file.FilePath, decorators))
	case "class_definition":
		file.Classes = append(file.Classes, p.buildClass(node, content, file.FilePath, decorators))
	case "expression_statement":
		if v := p.tryVariable(node, content, file.FilePath); v != nil {
			file.Variables = append(file.Variables, v)
		}
	}
}

func (p *pythonParser) processDecoratedDefinition(node *sitter.Node, content []byte, file *codemodel.CodeFile) {
	var decorators []string
	var def *sitter.Node
	for _, child := range children(node) {
		switch child.Kind() {
		case "decorator":
			decorators = append(decorators, strings.TrimPrefix(nodeText(child, content), "@"))
		case "function_definition", "class_definition":
			def = child
		}
	}
	if def == nil {
		return
	}
	raw := nodeRawText(node, content)
	switch def.Kind() {
	case "function_definition":
		fn := p.buildFunction(def, content, file.FilePath, decorators)
		fn.Raw = raw
		file.Functions = append(file.Functions, fn)
	case "class_definition":
		cls := p.buildClass(def, content, file.FilePath, decorators)
		cls.Raw = raw
		file.Classes = append(file.Classes, cls)
	}
}

func (p *pythonParser) processImportStatement(node *sitter.Node, content []byte, filePath string) []*codemodel.ImportStatement {
	raw := nodeRawText(node, content)
	var imports []*codemodel.ImportStatement
	for _, child := range children(node) {
		switch child.Kind() {
		case "dotted_name":
			imports = append(imports, &codemodel.ImportStatement{
				FilePath:   filePath,
				Source:     nodeText(child, content),
				ImportType: codemodel.ImportAbsolute,
				Raw:        raw,
			})
		case "aliased_import":
			name := nodeText(child.ChildByFieldName("name"), content)
			alias := nodeText(child.ChildByFieldName("alias"), content)
			imports = append(imports, &codemodel.ImportStatement{
				FilePath:   filePath,
				Source:     name,
				Alias:      alias,
				ImportType: codemodel.ImportAbsolute,
				Raw:        raw,
			})
		}
	}
	return imports
}

func (p *pythonParser) processImportFromStatement(node *sitter.Node, content []byte, filePath string) []*codemodel.ImportStatement {
	raw := nodeRawText(node, content)
	moduleNode := node.ChildByFieldName("module_name")
	source := nodeText(moduleNode, content)
	importType := codemodel.ImportAbsolute
	if moduleNode != nil && moduleNode.Kind() == "relative_import" {
		importType = codemodel.ImportRelative
	}

	var imports []*codemodel.ImportStatement
	sawImportKeyword := false
	for _, child := range children(node) {
		if child.Kind() == "import" {
			sawImportKeyword = true
			continue
		}
		if !sawImportKeyword {
			continue
		}
		switch child.Kind() {
		case "wildcard_import":
			imports = append(imports, &codemodel.ImportStatement{
				FilePath: filePath, Source: source, ImportType: importType, Raw: raw,
			})
		case "dotted_name":
			imports = append(imports, &codemodel.ImportStatement{
				FilePath: filePath, Source: source, Name: nodeText(child, content),
				ImportType: importType, Raw: raw,
			})
		case "aliased_import":
			name := nodeText(child.ChildByFieldName("name"), content)
			alias := nodeText(child.ChildByFieldName("alias"), content)
			imports = append(imports, &codemodel.ImportStatement{
				FilePath: filePath, Source: source, Name: name, Alias: alias,
				ImportType: importType, Raw: raw,
			})
		}
	}
	if len(imports) == 0 && source != "" {
		imports = append(imports, &codemodel.ImportStatement{
			FilePath: filePath, Source: source, ImportType: codemodel.ImportSideEffect, Raw: raw,
		})
	}
	return imports
}

func (p *pythonParser) buildFunction(node *sitter.Node, content []byte, filePath string, decorators []string) *codemodel.FunctionDefinition {
	nameNode := node.ChildByFieldName("name")
	fn := &codemodel.FunctionDefinition{
		FilePath:   filePath,
		Name:       nodeText(nameNode, content),
		Raw:        nodeRawText(node, content),
		Decorators: decorators,
		Signature:  p.buildSignature(node, content),
	}
	fn.Docstring = p.firstDocstring(node.ChildByFieldName("body"), content)
	return fn
}

func (p *pythonParser) buildSignature(node *sitter.Node, content []byte) *codemodel.FunctionSignature {
	sig := &codemodel.FunctionSignature{}
	paramsNode := node.ChildByFieldName("parameters")
	if paramsNode == nil {
		return sig
	}
	for _, child := range children(paramsNode) {
		switch child.Kind() {
		case "identifier":
			sig.Parameters = append(sig.Parameters, codemodel.Parameter{Name: nodeText(child, content)})
		case "typed_parameter":
			name := ""
			typeHint := ""
			for _, sub := range children(child) {
				if sub.Kind() == "identifier" && name == "" {
					name = nodeText(sub, content)
				} else if sub.Kind() == "type" {
					typeHint = nodeText(sub, content)
				}
			}
			sig.Parameters = append(sig.Parameters, codemodel.Parameter{Name: name, TypeHint: typeHint})
		case "default_parameter", "typed_default_parameter":
			name := nodeText(child.ChildByFieldName("name"), content)
			typeHint := nodeText(child.ChildByFieldName("type"), content)
			value := nodeText(child.ChildByFieldName("value"), content)
			sig.Parameters = append(sig.Parameters, codemodel.Parameter{Name: name, TypeHint: typeHint, DefaultValue: value})
		}
	}
	if retNode := node.ChildByFieldName("return_type"); retNode != nil {
		sig.ReturnType = nodeText(retNode, content)
	}
	return sig
}

// firstDocstring returns a function/class body's leading string-literal
// statement with its quote delimiters stripped, or "" if the body does
// not open with one.
func (p *pythonParser) firstDocstring(body *sitter.Node, content []byte) string {
	if body == nil {
		return ""
	}
	stmts := children(body)
	if len(stmts) == 0 {
		return ""
	}
	first := stmts[0]
	if first.Kind() != "expression_statement" {
		return ""
	}
	exprChildren := children(first)
	if len(exprChildren) == 0 || exprChildren[0].Kind() != "string" {
		return ""
	}
	text := nodeText(exprChildren[0], content)
	return strings.Trim(text, "\"'")
}

func (p *pythonParser) buildClass(node *sitter.Node, content []byte, filePath string, decorators []string) *codemodel.ClassDefinition {
	nameNode := node.ChildByFieldName("name")
	cls := &codemodel.ClassDefinition{
		FilePath: filePath,
		Name:     nodeText(nameNode, content),
		Raw:      nodeRawText(node, content),
	}
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for _, child := range children(supers) {
			if child.Kind() == "identifier" || child.Kind() == "attribute" {
				cls.Bases = append(cls.Bases, nodeText(child, content))
			}
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	for _, stmt := range children(body) {
		switch stmt.Kind() {
		case "function_definition":
			cls.AddMethod(&codemodel.MethodDefinition{FunctionDefinition: *p.buildFunction(stmt, content, filePath, nil)})
		case "decorated_definition":
			var memberDecorators []string
			var def *sitter.Node
			for _, c := range children(stmt) {
				if c.Kind() == "decorator" {
					memberDecorators = append(memberDecorators, strings.TrimPrefix(nodeText(c, content), "@"))
				} else if c.Kind() == "function_definition" {
					def = c
				}
			}
			if def != nil {
				fn := p.buildFunction(def, content, filePath, memberDecorators)
				fn.Raw = nodeRawText(stmt, content)
				cls.AddMethod(&codemodel.MethodDefinition{FunctionDefinition: *fn})
			}
		case "expression_statement":
			if v := p.tryVariable(stmt, content, filePath); v != nil {
				cls.AddAttribute(&codemodel.ClassAttribute{
					VariableDeclaration: *v,
					Visibility:          visibilityFor(v.Name),
				})
			}
		}
	}
	return cls
}

func visibilityFor(name string) codemodel.Visibility {
	switch {
	case strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__"):
		return codemodel.VisibilityPrivate
	case strings.HasPrefix(name, "_"):
		return codemodel.VisibilityProtected
	default:
		return codemodel.VisibilityPublic
	}
}

func (p *pythonParser) tryVariable(exprStmt *sitter.Node, content []byte, filePath string) *codemodel.VariableDeclaration {
	stmtChildren := children(exprStmt)
	if len(stmtChildren) != 1 {
		return nil
	}
	assign := stmtChildren[0]
	var name, typeHint, value string
	switch assign.Kind() {
	case "assignment":
		name = nodeText(assign.ChildByFieldName("left"), content)
		typeHint = nodeText(assign.ChildByFieldName("type"), content)
		value = nodeText(assign.ChildByFieldName("right"), content)
	default:
		return nil
	}
	if name == "" || strings.Contains(name, ".") || strings.Contains(name, "[") {
		return nil
	}
	return &codemodel.VariableDeclaration{
		FilePath: filePath,
		Name:     name,
		TypeHint: typeHint,
		Value:    value,
		Raw:      nodeRawText(exprStmt, content),
	}
}

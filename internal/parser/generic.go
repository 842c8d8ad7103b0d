package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/cide/internal/codemodel"
	"github.com/standardbeagle/cide/internal/discovery"
)

// genericParser extracts top-level functions, classes/structs/interfaces
// and imports/includes with a single tree-sitter query per grammar. It
// does not implement resolve_intra_file_dependencies/
// resolve_inter_files_dependencies fidelity: that full reference-linking
// behavior is reserved for the Python reference parser per the
// Implementation Budget ("one full reference parser and stubs for
// additional languages").
type genericParser struct {
	lang    discovery.Language
	grammar *grammar
	query   *sitter.Query
}

var languageQueryKey = map[discovery.Language]string{
	discovery.LangJavaScript: "javascript",
	discovery.LangTypeScript: "typescript",
	discovery.LangGo:         "go",
	discovery.LangJava:       "java",
	discovery.LangRust:       "rust",
	discovery.LangCSharp:     "csharp",
	discovery.LangCpp:        "cpp",
	discovery.LangPHP:        "php",
	discovery.LangZig:        "zig",
}

var languageGrammar = map[discovery.Language]func() *grammar{
	discovery.LangJavaScript: javascriptGrammar,
	discovery.LangTypeScript: typescriptGrammar,
	discovery.LangGo:         goGrammar,
	discovery.LangJava:       javaGrammar,
	discovery.LangRust:       rustGrammar,
	discovery.LangCSharp:     csharpGrammar,
	discovery.LangCpp:        cppGrammar,
	discovery.LangPHP:        phpGrammar,
	discovery.LangZig:        zigGrammar,
}

func newGenericParser(lang discovery.Language) *genericParser {
	g := languageGrammar[lang]()
	p := &genericParser{lang: lang, grammar: g}
	if g.parser == nil {
		return p
	}
	queryStr := genericQueries[languageQueryKey[lang]]
	query, err := sitter.NewQuery(g.language, queryStr)
	if err == nil {
		p.query = query
	}
	return p
}

func (p *genericParser) Language() discovery.Language { return p.lang }

func (p *genericParser) ParseFile(path string, source string) (*codemodel.CodeFile, error) {
	raw := codemodel.NormalizeNewlines(source)
	file := &codemodel.CodeFile{FilePath: path, Raw: raw}

	if p.grammar.parser == nil || p.query == nil {
		return file, nil
	}

	content := []byte(raw)
	tree := p.grammar.parser.Parse(content, nil)
	if tree == nil {
		return file, nil
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()

	captureNames := p.query.CaptureNames()
	matches := qc.Matches(p.query, tree.RootNode(), content)

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var mainNode, nameNode *sitter.Node
		var mainCapture string
		for _, c := range match.Captures {
			name := captureNames[c.Index]
			node := c.Node
			switch name {
			case "function", "class", "import":
				mainCapture = name
				mainNode = &node
			case "function.name", "class.name":
				nameNode = &node
			case "import.source":
				nameNode = &node
			}
		}
		if mainNode == nil {
			continue
		}

		switch mainCapture {
		case "function":
			file.Functions = append(file.Functions, &codemodel.FunctionDefinition{
				FilePath: path,
				Name:     nodeText(nameNode, content),
				Raw:      nodeRawText(mainNode, content),
			})
		case "class":
			file.Classes = append(file.Classes, &codemodel.ClassDefinition{
				FilePath: path,
				Name:     nodeText(nameNode, content),
				Raw:      nodeRawText(mainNode, content),
			})
		case "import":
			source := nodeText(nameNode, content)
			file.Imports = append(file.Imports, &codemodel.ImportStatement{
				FilePath:   path,
				Source:     trimQuotes(source),
				ImportType: codemodel.ImportAbsolute,
				Raw:        nodeRawText(mainNode, content),
			})
		}
	}

	return file, nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '<') {
		return s[1 : len(s)-1]
	}
	return s
}

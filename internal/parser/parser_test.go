package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cide/internal/discovery"
)

func TestRegistryLazyInitReturnsSameInstance(t *testing.T) {
	r := NewRegistry()
	p1, ok := r.Get(discovery.LangPython)
	require.True(t, ok)
	p2, ok := r.Get(discovery.LangPython)
	require.True(t, ok)
	require.Same(t, p1, p2)
}

func TestRegistryUnsupportedLanguage(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get(discovery.LangC)
	require.False(t, ok)
}

func TestPythonParserExtractsClassAndFunction(t *testing.T) {
	p := newPythonParser()

	fileA, err := p.ParseFile("pkg/a.py", "class A:\n    def m(self): return 1\n")
	require.NoError(t, err)
	require.Len(t, fileA.Classes, 1)
	require.Equal(t, "A", fileA.Classes[0].Name)
	require.Len(t, fileA.Classes[0].Methods, 1)
	require.Equal(t, "m", fileA.Classes[0].Methods[0].Name)

	fileB, err := p.ParseFile("pkg/b.py", "from pkg.a import A\n\ndef f():\n    return A().m()\n")
	require.NoError(t, err)
	require.Len(t, fileB.Imports, 1)
	require.Equal(t, "pkg.a", fileB.Imports[0].Source)
	require.Equal(t, "A", fileB.Imports[0].Name)
	require.Len(t, fileB.Functions, 1)
	require.Equal(t, "f", fileB.Functions[0].Name)
}

func TestPythonParserDocstringAndDecorators(t *testing.T) {
	p := newPythonParser()
	src := "@staticmethod\ndef helper():\n    \"\"\"does a thing\"\"\"\n    return None\n"
	file, err := p.ParseFile("pkg/c.py", src)
	require.NoError(t, err)
	require.Len(t, file.Functions, 1)
	fn := file.Functions[0]
	require.Equal(t, "helper", fn.Name)
	require.Contains(t, fn.Decorators, "staticmethod")
	require.Equal(t, "does a thing", fn.Docstring)
}

func TestPythonParserPreservesMemberIndentation(t *testing.T) {
	p := newPythonParser()
	src := "class A:\n    def m(self): return 1\n    x = 1\n"
	file, err := p.ParseFile("pkg/e.py", src)
	require.NoError(t, err)
	require.Len(t, file.Classes, 1)
	cls := file.Classes[0]

	require.Len(t, cls.Methods, 1)
	require.True(t, strings.HasPrefix(cls.Methods[0].Raw, "    def m"), "method Raw = %q", cls.Methods[0].Raw)

	require.Len(t, cls.Attributes, 1)
	require.True(t, strings.HasPrefix(cls.Attributes[0].Raw, "    x = 1"), "attribute Raw = %q", cls.Attributes[0].Raw)

	// The class's own Raw starts at column zero, so it is unaffected.
	require.True(t, strings.HasPrefix(cls.Raw, "class A:"))
}

func TestPythonParserModuleVariable(t *testing.T) {
	p := newPythonParser()
	file, err := p.ParseFile("pkg/d.py", "VERSION = \"1.0\"\n")
	require.NoError(t, err)
	require.Len(t, file.Variables, 1)
	require.Equal(t, "VERSION", file.Variables[0].Name)
}

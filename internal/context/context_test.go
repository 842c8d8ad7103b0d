package context

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cide/internal/codemodel"
	"github.com/standardbeagle/cide/internal/resolver"
)

func buildSampleCodebase() *codemodel.CodeBase {
	class := &codemodel.ClassDefinition{FilePath: "pkg/a.py", Name: "A", Raw: "class A:\n    def m(self): return 1\n"}
	class.AddMethod(&codemodel.MethodDefinition{FunctionDefinition: codemodel.FunctionDefinition{Name: "m", Raw: "def m(self): return 1"}})
	fileA := &codemodel.CodeFile{FilePath: "pkg/a.py", Classes: []*codemodel.ClassDefinition{class}, Raw: class.Raw}

	imp := &codemodel.ImportStatement{FilePath: "pkg/b.py", Source: "pkg.a", Name: "A", Raw: "from pkg.a import A"}
	fn := &codemodel.FunctionDefinition{FilePath: "pkg/b.py", Name: "f", Raw: "def f():\n    return A().m()\n"}
	fileB := &codemodel.CodeFile{FilePath: "pkg/b.py", Imports: []*codemodel.ImportStatement{imp}, Functions: []*codemodel.FunctionDefinition{fn}, Raw: imp.Raw + "\n\n" + fn.Raw}

	return &codemodel.CodeBase{Root: []*codemodel.CodeFile{fileA, fileB}}
}

func TestGetContextDepthZeroReturnsOnlyRequested(t *testing.T) {
	cb := buildSampleCodebase()
	resolver.ResolveIntraFile(cb)
	idx := codemodel.NewIndex(cb)
	resolver.ResolveInterFiles(cb, idx)

	result := Get(idx, []string{"pkg.b.f"}, 0, nil)
	full := result.AsString()
	require.Contains(t, full, "return A().m()")
	require.NotContains(t, full, "class A")
}

func TestGetContextDepthOneIncludesTransitiveRefs(t *testing.T) {
	cb := buildSampleCodebase()
	resolver.ResolveIntraFile(cb)
	idx := codemodel.NewIndex(cb)
	resolver.ResolveInterFiles(cb, idx)

	result := Get(idx, []string{"pkg.b.f"}, 1, nil)
	full := result.AsString()
	require.Contains(t, full, "return A().m()")
	require.Contains(t, full, "from pkg.a import A")
	require.Contains(t, full, "def m(self): return 1")
}

func TestGetContextUnresolvedIDUsesLiteralFallback(t *testing.T) {
	cb := buildSampleCodebase()
	idx := codemodel.NewIndex(cb)

	result := Get(idx, []string{"missing.id"}, 0, map[string]string{"missing.id": "literal text"})
	require.Contains(t, result.AsStringList(), "literal text")
}

func TestGetContextDedupesAcrossBlocks(t *testing.T) {
	cb := buildSampleCodebase()
	resolver.ResolveIntraFile(cb)
	idx := codemodel.NewIndex(cb)
	resolver.ResolveInterFiles(cb, idx)

	result := Get(idx, []string{"pkg.b.f", "pkg.a.A.m"}, 1, nil)
	count := 0
	for _, block := range result.AsStringList() {
		if containsCount(block, "def m(self): return 1") > 0 {
			count += containsCount(block, "def m(self): return 1")
		}
	}
	require.Equal(t, 1, count)
}

func containsCount(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
		}
	}
	return count
}

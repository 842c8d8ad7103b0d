package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cide/internal/codemodel"
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

func TestResolveIntraFileAttachesReferences(t *testing.T) {
	cb := buildSampleCodebase()
	ResolveIntraFile(cb)

	fn := cb.Root[1].Functions[0]
	require.Contains(t, fn.References, codemodel.CodeReference{UniqueID: "pkg/b.py:pkg.a:A", Name: "A", Type: codemodel.RefImport})
	require.Contains(t, fn.References, codemodel.CodeReference{UniqueID: "pkg.a.A.m", Name: "m", Type: codemodel.RefMethod})
	require.Contains(t, fn.References, codemodel.CodeReference{UniqueID: "pkg.a.A", Name: "A", Type: codemodel.RefClass})
}

func TestResolveInterFilesSetsDefinitionID(t *testing.T) {
	cb := buildSampleCodebase()
	ResolveIntraFile(cb)
	idx := codemodel.NewIndex(cb)
	ResolveInterFiles(cb, idx)

	imp := cb.Root[1].Imports[0]
	require.Equal(t, "pkg.a.A", imp.DefinitionID)
}

func TestResolveInterFilesUnresolvedImportClearsDefinitionID(t *testing.T) {
	cb := &codemodel.CodeBase{Root: []*codemodel.CodeFile{
		{FilePath: "pkg/x.py", Imports: []*codemodel.ImportStatement{
			{FilePath: "pkg/x.py", Source: "os", Name: "path", Raw: "from os import path"},
		}},
	}}
	idx := codemodel.NewIndex(cb)
	ResolveInterFiles(cb, idx)

	require.Equal(t, "", cb.Root[0].Imports[0].DefinitionID)
}

func TestResolveIntraFileDistributesSharedBudgetAcrossSiblings(t *testing.T) {
	// "helper" occurs three times across the file's non-import raw text:
	// once in its own declaration, which does not count, and once each in
	// fn1 and fn2. The shared budget of 2 must land one
	// reference on each distinct sibling, not two references piled onto
	// whichever sibling happens to mention it, and not one reference per
	// mention within a single sibling.
	helper := &codemodel.FunctionDefinition{FilePath: "pkg/c.py", Name: "helper", Raw: "def helper():\n    return 1\n"}
	fn1 := &codemodel.FunctionDefinition{FilePath: "pkg/c.py", Name: "fn1", Raw: "def fn1():\n    return helper()\n"}
	fn2 := &codemodel.FunctionDefinition{FilePath: "pkg/c.py", Name: "fn2", Raw: "def fn2():\n    return helper()\n"}
	file := &codemodel.CodeFile{FilePath: "pkg/c.py", Functions: []*codemodel.FunctionDefinition{helper, fn1, fn2}}

	ResolveIntraFile(&codemodel.CodeBase{Root: []*codemodel.CodeFile{file}})

	require.Len(t, fn1.References, 1)
	require.Len(t, fn2.References, 1)
	require.Equal(t, codemodel.CodeReference{UniqueID: helper.UniqueID(), Name: "helper", Type: codemodel.RefFunction}, fn1.References[0])
	require.Equal(t, codemodel.CodeReference{UniqueID: helper.UniqueID(), Name: "helper", Type: codemodel.RefFunction}, fn2.References[0])
}

func TestResolveIntraFileDropsLeftoverBudgetBeyondDistinctSiblings(t *testing.T) {
	// "helper" occurs three times in the non-import corpus besides its own
	// declaration, but only one distinct sibling (fn1) can receive it: the
	// leftover budget must be
	// dropped, not duplicated onto fn1.
	helper := &codemodel.FunctionDefinition{FilePath: "pkg/d.py", Name: "helper", Raw: "def helper():\n    return 1\n"}
	fn1 := &codemodel.FunctionDefinition{FilePath: "pkg/d.py", Name: "fn1", Raw: "def fn1():\n    helper()\n    helper()\n    return helper()\n"}
	file := &codemodel.CodeFile{FilePath: "pkg/d.py", Functions: []*codemodel.FunctionDefinition{helper, fn1}}

	ResolveIntraFile(&codemodel.CodeBase{Root: []*codemodel.CodeFile{file}})

	require.Len(t, fn1.References, 1)
}

func TestClassBasesReferences(t *testing.T) {
	base := &codemodel.ClassDefinition{FilePath: "pkg/base.py", Name: "Base", Raw: "class Base:\n    pass\n"}
	derived := &codemodel.ClassDefinition{FilePath: "pkg/base.py", Name: "Derived", Bases: []string{"Base"}, Raw: "class Derived(Base):\n    pass\n"}
	file := &codemodel.CodeFile{FilePath: "pkg/base.py", Classes: []*codemodel.ClassDefinition{base, derived}}

	ResolveIntraFile(&codemodel.CodeBase{Root: []*codemodel.CodeFile{file}})

	require.Len(t, derived.BasesReferences, 1)
	require.Equal(t, "pkg.base.Base", derived.BasesReferences[0].UniqueID)
	require.Equal(t, codemodel.RefInheritance, derived.BasesReferences[0].Type)
}

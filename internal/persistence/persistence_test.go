package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cide/internal/codemodel"
	"github.com/standardbeagle/cide/internal/discovery"
	"github.com/standardbeagle/cide/internal/parser"
)

type fakeFS struct {
	files   []discovery.File
	sources map[string]string
}

func (f *fakeFS) Walk(opts discovery.Options) ([]discovery.File, error) { return f.files, nil }
func (f *fakeFS) ReadFile(path string) (string, error)                 { return f.sources[path], nil }

func TestSerializeDeserializeRoundTripPreservesCachedIDs(t *testing.T) {
	dir := t.TempDir()

	class := &codemodel.ClassDefinition{FilePath: "pkg/a.py", Name: "A", Raw: "class A:\n    pass\n"}
	base := &codemodel.CodeBase{Root: []*codemodel.CodeFile{
		{FilePath: "pkg/a.py", Classes: []*codemodel.ClassDefinition{class}},
	}}

	require.NoError(t, Serialize(base, dir, true))

	restored, err := Deserialize(dir)
	require.NoError(t, err)

	beforeIDs := codemodel.NewIndex(base).AllIDs()
	afterIDs := codemodel.NewIndex(restored).AllIDs()
	require.ElementsMatch(t, beforeIDs, afterIDs)
}

func TestCheckForUpdatesSkipsUnchangedFile(t *testing.T) {
	source := "class A:\n    def m(self): return 1\n"
	fingerprint := Fingerprint(source)

	existing := &codemodel.CodeFile{FilePath: "pkg/a.py", ContentHash: fingerprint, Raw: source}
	base := &codemodel.CodeBase{Root: []*codemodel.CodeFile{existing}}

	fs := &fakeFS{
		files:   []discovery.File{{Path: "pkg/a.py", AbsPath: "pkg/a.py", Language: discovery.LangPython}},
		sources: map[string]string{"pkg/a.py": source},
	}

	require.NoError(t, CheckForUpdates(base, fs, parser.NewRegistry(), ".", false, "", false))
	require.Same(t, existing, base.Root[0])
}

func TestCheckForUpdatesReparsesChangedFile(t *testing.T) {
	existing := &codemodel.CodeFile{FilePath: "pkg/a.py", ContentHash: 0, Raw: "class Old:\n    pass\n"}
	base := &codemodel.CodeBase{Root: []*codemodel.CodeFile{existing}}

	newSource := "class New:\n    pass\n"
	fs := &fakeFS{
		files:   []discovery.File{{Path: "pkg/a.py", AbsPath: "pkg/a.py", Language: discovery.LangPython}},
		sources: map[string]string{"pkg/a.py": newSource},
	}

	require.NoError(t, CheckForUpdates(base, fs, parser.NewRegistry(), ".", false, "", false))
	require.NotSame(t, existing, base.Root[0])
	require.Len(t, base.Root[0].Classes, 1)
	require.Equal(t, "New", base.Root[0].Classes[0].Name)
}

func TestCheckForUpdatesRemovesMissingFile(t *testing.T) {
	existing := &codemodel.CodeFile{FilePath: "pkg/gone.py", ContentHash: 1}
	base := &codemodel.CodeBase{Root: []*codemodel.CodeFile{existing}}

	fs := &fakeFS{}
	require.NoError(t, CheckForUpdates(base, fs, parser.NewRegistry(), ".", false, "", false))
	require.Empty(t, base.Root)
}

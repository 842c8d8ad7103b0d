package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cide/internal/discovery"
	"github.com/standardbeagle/cide/internal/parser"
)

// fakeFileSystem drives the orchestrator from an in-memory file map instead
// of real disk IO, per internal/interfaces' stated purpose.
type fakeFileSystem struct {
	files   []discovery.File
	sources map[string]string
}

func (f *fakeFileSystem) Walk(opts discovery.Options) ([]discovery.File, error) {
	return f.files, nil
}

func (f *fakeFileSystem) ReadFile(path string) (string, error) {
	return f.sources[path], nil
}

func TestIngestBuildsResolvedCodeBase(t *testing.T) {
	fs := &fakeFileSystem{
		files: []discovery.File{
			{Path: "pkg/a.py", AbsPath: "pkg/a.py", Language: discovery.LangPython},
			{Path: "pkg/b.py", AbsPath: "pkg/b.py", Language: discovery.LangPython},
		},
		sources: map[string]string{
			"pkg/a.py": "class A:\n    def m(self): return 1\n",
			"pkg/b.py": "from pkg.a import A\n\ndef f():\n    return A().m()\n",
		},
	}

	base, err := Ingest(context.Background(), fs, parser.NewRegistry(), Options{Root: "."})
	require.NoError(t, err)
	require.Len(t, base.Root, 2)

	for _, cf := range base.Root {
		if cf.FilePath == "pkg/b.py" {
			require.Len(t, cf.Functions, 1)
			require.NotEmpty(t, cf.Functions[0].References)
		}
	}
}

func TestIngestEmptyRootReturnsEmptyCodeBase(t *testing.T) {
	fs := &fakeFileSystem{}
	base, err := Ingest(context.Background(), fs, parser.NewRegistry(), Options{Root: "."})
	require.NoError(t, err)
	require.Empty(t, base.Root)
}

func TestIngestSkipsUnsupportedLanguageFile(t *testing.T) {
	fs := &fakeFileSystem{
		files: []discovery.File{
			{Path: "main.c", AbsPath: "main.c", Language: discovery.LangC},
		},
		sources: map[string]string{"main.c": "int main() { return 0; }"},
	}
	base, err := Ingest(context.Background(), fs, parser.NewRegistry(), Options{Root: "."})
	require.NoError(t, err)
	require.Empty(t, base.Root)
}

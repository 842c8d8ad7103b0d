package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLanguageFromExtension(t *testing.T) {
	require.Equal(t, LangPython, LanguageFromExtension(".py"))
	require.Equal(t, LangPython, LanguageFromExtension("py"))
	require.Equal(t, LangTypeScript, LanguageFromExtension(".tsx"))
	require.Equal(t, LangUnknown, LanguageFromExtension(".bogus"))
}

func TestShouldSkip(t *testing.T) {
	require.True(t, ShouldSkip("assets/logo.PNG"))
	require.False(t, ShouldSkip("main.go"))
}

func TestIgnoreSetDirectoryPattern(t *testing.T) {
	// No trailing slash: spec.md §4.1's translation does not special-case
	// or strip a directory-marker slash, matching original_source's
	// naive "*<pattern>" / "<pattern>/*" rule literally.
	set := NewIgnoreSet("")
	set.AddPattern("node_modules")

	require.True(t, set.Match("node_modules", true))
	require.True(t, set.Match("node_modules/lodash/index.js", false))
	require.False(t, set.Match("src/node_modules_helper.go", false))
}

func TestIgnoreSetHasNoNegationSupport(t *testing.T) {
	// original_source never special-cases a leading '!': the line becomes
	// a literal "*!important.log" pattern that doesn't exempt
	// "important.log" from the unrelated "*.log" rule, so both files stay
	// ignored. spec.md §4.1 preserves this rather than adding negation.
	set := NewIgnoreSet("")
	set.AddPattern("*.log")
	set.AddPattern("!important.log")

	require.True(t, set.Match("debug.log", false))
	require.True(t, set.Match("important.log", false))
}

func TestWalkSkipsIgnoredAndBinary(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "out.py"), []byte("x = 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("x = 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "logo.png"), []byte{0, 1, 2}, 0o644))

	files, err := Walk(Options{Root: root, RespectGitignore: true})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "main.py", files[0].Path)
	require.Equal(t, LangPython, files[0].Language)
}

func TestWalkIncludeLanguageFilter(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("x = 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package b"), 0o644))

	files, err := Walk(Options{Root: root, IncludeLangs: []Language{LangPython}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "a.py", files[0].Path)
}

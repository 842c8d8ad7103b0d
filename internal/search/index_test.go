package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDocs() map[string]string {
	return map[string]string{
		"pkg.a.A":   "class A defines a method m that returns one",
		"pkg.b.f":   "function f calls A and its method m",
		"pkg.c.g":   "function g is unrelated to anything here",
		"pkg.d.h":   "helper function h formats a config object",
	}
}

func TestBuildThenQueryRanksByRelevance(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Build(context.Background(), sampleDocs()))

	results, err := idx.Query(context.Background(), "method", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, r.Key)
	}
	require.Contains(t, keys, "pkg.a.A")
	require.Contains(t, keys, "pkg.b.f")
	require.NotContains(t, keys, "pkg.c.g")
}

func TestQueryBeforeBuildReturnsIndexNotReady(t *testing.T) {
	idx := NewIndex()
	_, err := idx.Query(context.Background(), "method", 10)
	require.Error(t, err)
}

func TestQueryWithNoTokensReturnsEmpty(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Build(context.Background(), sampleDocs()))
	results, err := idx.Query(context.Background(), "   ", 10)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestUpdateDocumentAddsNewDoc(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Build(context.Background(), sampleDocs()))

	idx.UpdateDocument("pkg.e.i", "brand new method appears here")
	results, err := idx.Query(context.Background(), "method", 10)
	require.NoError(t, err)
	found := false
	for _, r := range results {
		if r.Key == "pkg.e.i" {
			found = true
		}
	}
	require.True(t, found)
}

func TestRemoveDocumentDropsItFromQueries(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Build(context.Background(), sampleDocs()))

	idx.Remove("pkg.a.A")
	results, err := idx.Query(context.Background(), "method", 10)
	require.NoError(t, err)
	for _, r := range results {
		require.NotEqual(t, "pkg.a.A", r.Key)
	}
}

func TestRemoveNonExistentDocumentIsNoop(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Build(context.Background(), sampleDocs()))
	idx.Remove("does.not.exist")
	results, err := idx.Query(context.Background(), "method", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestExactSubstringSearch(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Build(context.Background(), sampleDocs()))
	results := idx.ExactSubstring(context.Background(), "config object", 10)
	require.Len(t, results, 1)
	require.Equal(t, "pkg.d.h", results[0].Key)
}

func TestIncrementalRebuildRecomputesIDF(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Build(context.Background(), sampleDocs()))
	idx.UpdateDocument("pkg.f.j", "method method method")
	idx.IncrementalRebuild()
	results, err := idx.Query(context.Background(), "method", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSmartSearchFindsSnakeCaseVariationMatch(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Build(context.Background(), map[string]string{
		"pkg.a.getUserConfig": "function get user config loads the user configuration",
		"pkg.b.unrelated":     "totally different content about nothing",
	}))

	results, err := idx.SmartSearch(context.Background(), "get_user_config", SmartSearchOptions{TopK: 5})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "pkg.a.getUserConfig", results[0].Key)
}

func TestSmartSearchStopWordsOnlyReturnsNil(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Build(context.Background(), sampleDocs()))
	results, err := idx.SmartSearch(context.Background(), "the and of", SmartSearchOptions{})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestQueryVariationsExpandsAbbreviations(t *testing.T) {
	variations := queryVariations("cfg")
	found := false
	for _, v := range variations {
		if v == "cfg config" {
			found = true
		}
	}
	require.True(t, found)
}

func TestQueryVariationsSplitsCamelCase(t *testing.T) {
	variations := queryVariations("getUserConfig")
	found := false
	for _, v := range variations {
		if v == "get User Config" {
			found = true
		}
	}
	require.True(t, found)
}

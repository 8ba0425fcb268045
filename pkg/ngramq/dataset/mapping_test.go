package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Search Term", "search term"},
		{"  CLICKS ", "clicks"},
		{"\ufeffQuery", "query"},
		{`"Cost"`, "cost"},
		{"Séarch term", "search term"},
		{"Impr.", "impr."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in), "header %q", tt.in)
	}
}

func TestResolveSynonyms(t *testing.T) {
	headers := []string{"Search Term", "Interactions", "Spend", "Conv.", "Impr."}
	idx, err := DefaultMapping().Resolve(headers)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		ColQuery:       0,
		ColClicks:      1,
		ColCost:        2,
		ColConversions: 3,
		ColImpressions: 4,
	}, idx)
}

func TestResolvePrefersFirstCandidate(t *testing.T) {
	// "search term" is listed before "query" so it wins when both exist.
	headers := []string{"query", "search term", "clicks", "cost", "conversions"}
	idx, err := DefaultMapping().Resolve(headers)
	require.NoError(t, err)
	assert.Equal(t, 1, idx[ColQuery])
}

func TestResolveImpressionsOptional(t *testing.T) {
	idx, err := DefaultMapping().Resolve([]string{"query", "clicks", "cost", "conversions"})
	require.NoError(t, err)
	_, ok := idx[ColImpressions]
	assert.False(t, ok)
}

func TestResolveReportsAllMissing(t *testing.T) {
	_, err := DefaultMapping().Resolve([]string{"Query", "Clicks", "Budget"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerr.ErrSchema))

	var schemaErr *internalerr.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{ColCost, ColConversions}, schemaErr.Missing)
	assert.Equal(t, []string{"query", "clicks", "budget"}, schemaErr.Available)
}

func TestMappingMerge(t *testing.T) {
	base := DefaultMapping()
	merged := base.Merge(Mapping{ColCost: {"ausgaben"}})

	assert.Equal(t, []string{"ausgaben"}, merged[ColCost])
	assert.Equal(t, base[ColQuery], merged[ColQuery])
	// base is untouched
	assert.Contains(t, base[ColCost], "spend")

	idx, err := merged.Resolve([]string{"query", "clicks", "Ausgaben", "conversions"})
	require.NoError(t, err)
	assert.Equal(t, 2, idx[ColCost])
}

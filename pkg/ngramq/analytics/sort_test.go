package analytics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
)

func grams(rows []NgramAggregate) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Ngram
	}
	return out
}

func TestSort(t *testing.T) {
	rows := []NgramAggregate{
		{Ngram: "b", TotalCost: 10, QueryCount: 1, CVR: 5},
		{Ngram: "a", TotalCost: 30, QueryCount: 2, CVR: 1},
		{Ngram: "c", TotalCost: 10, QueryCount: 3, CVR: 9},
	}

	sorted, err := Sort(rows, SortByCost, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, grams(sorted), "ties keep input order")

	sorted, err = Sort(rows, SortByCost, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, grams(sorted))

	sorted, err = Sort(rows, SortByNgram, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, grams(sorted))

	sorted, err = Sort(rows, "CVR", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, grams(sorted))

	// input untouched
	assert.Equal(t, []string{"b", "a", "c"}, grams(rows))
}

func TestSortUnknownField(t *testing.T) {
	_, err := Sort(nil, "revenue", true)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestSortFieldValue(t *testing.T) {
	r := NgramAggregate{
		QueryCount: 1, TotalClicks: 2, TotalCost: 3, TotalConversions: 4,
		TotalImpressions: 5, CPA: 6, CVR: 7, CTR: 8,
	}
	want := map[SortField]float64{
		SortByQueryCount: 1, SortByClicks: 2, SortByCost: 3, SortByConversions: 4,
		SortByImpressions: 5, SortByCPA: 6, SortByCVR: 7, SortByCTR: 8, SortByNgram: 0,
	}
	for f, v := range want {
		assert.Equal(t, v, f.Value(r), string(f))
	}
}

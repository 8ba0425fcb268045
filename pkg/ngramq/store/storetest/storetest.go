// Package storetest holds the behaviour every store.Store implementation
// shares, run from each implementation's tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/config"
	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/store"
)

// Sample returns an analysis with two n-gram sizes and queries lists set.
func Sample(name string, ts time.Time) store.Analysis {
	settings := config.DefaultSettings()
	settings.NgramSizes = []int{1, 2}
	return store.Analysis{
		Name:      name,
		Timestamp: store.Timestamp{Time: ts},
		Settings:  settings,
		Results: map[int][]analytics.NgramAggregate{
			1: {
				{Ngram: "remortgage", QueryCount: 3, TotalClicks: 450, TotalCost: 675, TotalConversions: 45,
					TotalImpressions: 4500, CTR: 10, CVR: 10, CPA: 15, Queries: []string{"cheap remortgage"}},
				{Ngram: "cheap", QueryCount: 1, TotalClicks: 100, TotalCost: 150.5, TotalConversions: 10,
					TotalImpressions: 1000, CTR: 10, CVR: 10, CPA: 15.05},
			},
			2: {
				{Ngram: "cheap remortgage", QueryCount: 1, TotalClicks: 100, TotalCost: 150.5, TotalConversions: 10,
					TotalImpressions: 1000, CTR: 10, CVR: 10, CPA: 15.05},
			},
		},
	}
}

// Run exercises save, load, list and delete against a fresh store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("SaveLoad", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
		saved, err := st.SaveAnalysis(ctx, Sample("q1 review", ts))
		require.NoError(t, err)
		require.NotEmpty(t, saved.ID)
		assert.Nil(t, saved.Results[1][0].Queries, "queries are not persisted")

		loaded, err := st.LoadAnalysis(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, loaded.ID)
		assert.Equal(t, "q1 review", loaded.Name)
		assert.True(t, ts.Equal(loaded.Timestamp.Time))
		assert.Equal(t, saved.Settings, loaded.Settings)
		assert.Equal(t, []int{1, 2}, loaded.Sizes())
		assert.Equal(t, saved.Results[1], loaded.Results[1])
		assert.Equal(t, saved.Results[2], loaded.Results[2])
	})

	t.Run("NotFound", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		_, err := st.LoadAnalysis(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ")
		assert.ErrorIs(t, err, internalerr.ErrNotFound)
		assert.ErrorIs(t, st.DeleteAnalysis(ctx, "missing"), internalerr.ErrNotFound)
	})

	t.Run("ListMostRecentFirst", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		for i, name := range []string{"old", "newest", "middle"} {
			offset := []time.Duration{0, 2 * time.Hour, time.Hour}[i]
			_, err := st.SaveAnalysis(ctx, Sample(name, base.Add(offset)))
			require.NoError(t, err)
		}

		list, err := st.ListAnalyses(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "newest", list[0].Name)
		assert.Equal(t, "middle", list[1].Name)
		assert.Equal(t, "old", list[2].Name)
		assert.Equal(t, []int{1, 2}, list[0].Sizes)
		assert.Equal(t, 3, list[0].Rows)
	})

	t.Run("EmptySizeIsKept", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		a := Sample("sparse", time.Now())
		a.Results[3] = []analytics.NgramAggregate{}
		saved, err := st.SaveAnalysis(ctx, a)
		require.NoError(t, err)

		list, err := st.ListAnalyses(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, []int{1, 2, 3}, list[0].Sizes)
		assert.Equal(t, 3, list[0].Rows)

		loaded, err := st.LoadAnalysis(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, loaded.Sizes())
		assert.Empty(t, loaded.Results[3])
	})

	t.Run("SaveTwiceReplaces", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		saved, err := st.SaveAnalysis(ctx, Sample("rerun", time.Now()))
		require.NoError(t, err)
		saved.Results[1] = saved.Results[1][:1]
		_, err = st.SaveAnalysis(ctx, saved)
		require.NoError(t, err)

		loaded, err := st.LoadAnalysis(ctx, saved.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.Results[1], 1)

		list, err := st.ListAnalyses(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		saved, err := st.SaveAnalysis(ctx, Sample("tmp", time.Now()))
		require.NoError(t, err)
		require.NoError(t, st.DeleteAnalysis(ctx, saved.ID))

		_, err = st.LoadAnalysis(ctx, saved.ID)
		assert.ErrorIs(t, err, internalerr.ErrNotFound)
	})
}

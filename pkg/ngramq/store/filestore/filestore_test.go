package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/store"
	"github.com/cognicore/ngramq/pkg/ngramq/store/storetest"
)

func TestFileStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		st, err := Open(t.TempDir())
		require.NoError(t, err)
		return st
	})
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 5, 0, time.Local)
	a := store.Analysis{Name: "Q1 review/final", Timestamp: store.Timestamp{Time: ts}}
	assert.Equal(t, "analysis_20240301_093005_Q1_review_final.json", FileName(a))
}

func TestFileStoreWritesDocument(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 9, 30, 5, 0, time.Local)
	saved, err := st.SaveAnalysis(context.Background(), storetest.Sample("weekly", ts))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "analysis_20240301_093005_weekly.json"))
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `"id": "`+saved.ID+`"`)
	assert.Contains(t, body, `"results": {`)
	assert.Contains(t, body, `"1": [`)
	assert.Contains(t, body, `"query_count": 3`)
	assert.NotContains(t, body, `"queries"`)
}

func TestFileStoreSameSecondDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 9, 30, 5, 0, time.Local)
	a, err := st.SaveAnalysis(context.Background(), storetest.Sample("dup", ts))
	require.NoError(t, err)
	b, err := st.SaveAnalysis(context.Background(), storetest.Sample("dup", ts))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	matches, err := filepath.Glob(filepath.Join(dir, "analysis_*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFileStoreLoadsLegacyDocument(t *testing.T) {
	dir := t.TempDir()
	legacy := `{
  "timestamp": "2024-02-10T14:22:31.123456",
  "name": "legacy",
  "settings": {"ngram_sizes": [1], "min_occurrences": 2},
  "results": {
    "1": [{"ngram": "remortgage", "query_count": 3, "total_clicks": 450, "total_cost": 675.0,
           "total_conversions": 45, "total_impressions": 4500, "ctr": 10.0, "cvr": 10.0, "cpa": 15.0}]
  }
}`
	name := "analysis_20240210_142231_legacy.json"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(legacy), 0o644))

	st, err := Open(dir)
	require.NoError(t, err)

	a, err := st.LoadAnalysis(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, "analysis_20240210_142231_legacy", a.ID)
	assert.Equal(t, 2024, a.Timestamp.Year())
	require.Len(t, a.Results[1], 1)
	assert.Equal(t, int64(450), a.Results[1][0].TotalClicks)
}

func TestFileStoreDeleteByFileName(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	ts := time.Date(2024, 3, 1, 9, 30, 5, 0, time.Local)
	a, err := st.SaveAnalysis(ctx, storetest.Sample("weekly", ts))
	require.NoError(t, err)
	b, err := st.SaveAnalysis(ctx, storetest.Sample("monthly", ts))
	require.NoError(t, err)

	require.NoError(t, st.DeleteAnalysis(ctx, FileName(a)))
	_, err = st.LoadAnalysis(ctx, a.ID)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	require.NoError(t, st.DeleteAnalysis(ctx, strings.TrimSuffix(FileName(b), ".json")))
	_, err = st.LoadAnalysis(ctx, b.ID)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	assert.ErrorIs(t, st.DeleteAnalysis(ctx, FileName(a)), internalerr.ErrNotFound)
}

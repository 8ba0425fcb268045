package stoplist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	stats := []Stats{
		{Token: "remortgage", DF: 90, DFPercent: 90, CVRDeviation: 0.05},
		{Token: "free", DF: 40, DFPercent: 40, CVRDeviation: 0.9},
		{Token: "uk", DF: 60, DFPercent: 60, CVRDeviation: 0.1},
		{Token: "rates", DF: 10, DFPercent: 10, CVRDeviation: 0},
		{Token: "the", DF: 70, DFPercent: 70, CVRDeviation: 0},
	}

	got := New("the").Suggest(stats, Thresholds{})
	require.Len(t, got, 2)
	assert.Equal(t, "remortgage", got[0].Token)
	assert.InDelta(t, (0.9+0.95)/2, got[0].Score, 1e-9)
	assert.True(t, got[0].Reason.HighDF)
	assert.True(t, got[0].Reason.FlatCVR)
	assert.Equal(t, "uk", got[1].Token)
}

func TestSuggestThresholds(t *testing.T) {
	stats := []Stats{{Token: "free", DFPercent: 40, CVRDeviation: 0.9}}
	assert.Empty(t, Set(nil).Suggest(stats, Thresholds{}))

	got := Set(nil).Suggest(stats, Thresholds{DFPercent: 20, MaxCVRDeviation: 1})
	require.Len(t, got, 1)
	assert.InDelta(t, (0.4+0.1)/2, got[0].Score, 1e-9)
}

func TestSuggestTiesByToken(t *testing.T) {
	stats := []Stats{
		{Token: "b", DFPercent: 50},
		{Token: "a", DFPercent: 50},
	}
	got := Set(nil).Suggest(stats, Thresholds{})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Token)
}

func TestSuggestDefaultsEachThreshold(t *testing.T) {
	stats := []Stats{
		{Token: "rare", DFPercent: 5, CVRDeviation: 0.1},
		{Token: "common", DFPercent: 60, CVRDeviation: 0.4},
	}

	got := Set(nil).Suggest(stats, Thresholds{MaxCVRDeviation: 0.5})
	require.Len(t, got, 1, "frequency threshold falls back to its default")
	assert.Equal(t, "common", got[0].Token)

	got = Set(nil).Suggest(stats, Thresholds{DFPercent: 1})
	require.Len(t, got, 1, "deviation threshold falls back to its default")
	assert.Equal(t, "rare", got[0].Token)
}

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuality(t *testing.T) {
	table := FromRecords([]QueryRecord{
		{Query: "a", Clicks: 10, Cost: 20, Conversions: 2, Impressions: 100, HasImpressions: true},
		{Query: "b", Clicks: 0, Cost: 0, Conversions: 0, Impressions: 50, HasImpressions: true},
		{Query: "c", Clicks: 5, Cost: 30, Conversions: 0},
	})

	q := Quality(table)
	assert.Equal(t, 3, q.TotalRows)
	assert.Equal(t, 1, q.RowsWithConversions)
	assert.InDelta(t, 33.333, q.ConversionRatePct, 0.001)
	assert.Equal(t, int64(15), q.TotalClicks)
	assert.Equal(t, 50.0, q.TotalCost)
	assert.Equal(t, int64(2), q.TotalConversions)
	assert.Equal(t, int64(155), q.TotalImpressions)
	assert.Equal(t, 25.0, q.AvgCPA)
	assert.Equal(t, 1, q.ZeroClickRows)
	assert.Equal(t, 1, q.ZeroCostRows)
}

func TestQualityEmpty(t *testing.T) {
	q := Quality(Table{})
	assert.Zero(t, q.ConversionRatePct)
	assert.Zero(t, q.AvgCPA)
}

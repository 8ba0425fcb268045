package analytics

import (
	"math"

	"github.com/cognicore/ngramq/pkg/ngramq/dataset"
	"github.com/cognicore/ngramq/pkg/ngramq/stoplist"
)

// TokenStats measures every token of t for stop-word suggestion: the share
// of queries it appears in and how far its conversion rate sits from the
// rate of the whole table. Tokens in stop are ignored.
func TokenStats(t dataset.Table, stop stoplist.Set) ([]stoplist.Stats, error) {
	rows, err := Aggregate(t, Options{N: 1, MinOccurrences: 1, StopWords: stop, CountMode: CountDistinctQueries})
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, nil
	}

	var clicks, conv int64
	for _, rec := range t.Records {
		clicks += rec.Clicks
		conv += rec.Conversions
	}
	overall := percent(conv, clicks)

	out := make([]stoplist.Stats, len(rows))
	for i, r := range rows {
		dev := math.Abs(r.CVR - overall)
		if overall > 0 {
			dev /= overall
		}
		out[i] = stoplist.Stats{
			Token:        r.Ngram,
			DF:           r.QueryCount,
			DFPercent:    float64(r.QueryCount) * 100 / float64(t.Len()),
			CVRDeviation: dev,
		}
	}
	return out, nil
}

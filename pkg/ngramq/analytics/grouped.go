package analytics

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/ngramq/pkg/ngramq/dataset"
	"github.com/cognicore/ngramq/pkg/ngramq/ingest"
)

type explodedRow struct {
	gram string
	row  int
}

// AggregateGrouped explodes every record into (n-gram, row) pairs, orders
// the pairs by n-gram and reduces each run. It yields the same rows, in the
// same order and with the same sums, as Aggregate.
func AggregateGrouped(t dataset.Table, opts Options) ([]NgramAggregate, error) {
	if err := t.CheckSchema(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rank := make(map[string]int)
	var pairs []explodedRow
	for i, rec := range t.Records {
		grams := ingest.Ngrams(ingest.Tokenize(rec.Query, opts.StopWords), opts.N)
		if opts.CountMode == CountDistinctQueries {
			grams = distinct(grams)
		}
		for _, g := range grams {
			if _, ok := rank[g]; !ok {
				rank[g] = len(rank)
			}
			pairs = append(pairs, explodedRow{gram: g, row: i})
		}
	}

	// Stable so that rows within a run stay in input order and float sums
	// accumulate in the same sequence as the row-wise pass.
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].gram < pairs[j].gram })

	groups := make([]NgramAggregate, len(rank))
	for start := 0; start < len(pairs); {
		end := start
		for end < len(pairs) && pairs[end].gram == pairs[start].gram {
			end++
		}
		g := NgramAggregate{Ngram: pairs[start].gram, QueryCount: int64(end - start)}
		g.Queries = make([]string, 0, end-start)
		for _, p := range pairs[start:end] {
			rec := t.Records[p.row]
			g.TotalClicks += rec.Clicks
			g.TotalCost += rec.Cost
			g.TotalConversions += rec.Conversions
			g.TotalImpressions += rec.EffectiveImpressions()
			g.Queries = append(g.Queries, rec.Query)
		}
		groups[rank[g.Ngram]] = g
		start = end
	}

	out := make([]NgramAggregate, 0, len(groups))
	for _, g := range groups {
		if g.QueryCount < int64(opts.MinOccurrences) {
			continue
		}
		derive(&g)
		out = append(out, g)
	}

	log.Debug().Int("n", opts.N).Int("pairs", len(pairs)).Int("retained", len(out)).Msg("grouped aggregation complete")
	return out, nil
}

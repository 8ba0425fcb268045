package analytics

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/ngramq/pkg/ngramq/dataset"
	"github.com/cognicore/ngramq/pkg/ngramq/ingest"
	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/stoplist"
)

// CountMode selects how repeated n-grams within one query are counted.
type CountMode int

const (
	// CountOccurrences counts every extraction: a query containing the same
	// n-gram twice contributes its metrics twice.
	CountOccurrences CountMode = iota
	// CountDistinctQueries counts each query at most once per n-gram.
	CountDistinctQueries
)

func (m CountMode) String() string {
	switch m {
	case CountOccurrences:
		return "occurrences"
	case CountDistinctQueries:
		return "distinct"
	default:
		return fmt.Sprintf("CountMode(%d)", int(m))
	}
}

// ParseCountMode accepts "occurrences" (or "") and "distinct".
func ParseCountMode(s string) (CountMode, error) {
	switch s {
	case "", "occurrences":
		return CountOccurrences, nil
	case "distinct":
		return CountDistinctQueries, nil
	}
	return 0, internalerr.NewInputValueError("count mode", s, `must be "occurrences" or "distinct"`)
}

// NgramAggregate is the per n-gram metric row.
type NgramAggregate struct {
	Ngram            string   `json:"ngram"`
	QueryCount       int64    `json:"query_count"`
	TotalClicks      int64    `json:"total_clicks"`
	TotalCost        float64  `json:"total_cost"`
	TotalConversions int64    `json:"total_conversions"`
	TotalImpressions int64    `json:"total_impressions"`
	CTR              float64  `json:"ctr"`
	CVR              float64  `json:"cvr"`
	CPA              float64  `json:"cpa"`
	Queries          []string `json:"queries,omitempty"`
}

// Options configures one aggregation run.
type Options struct {
	N              int
	MinOccurrences int
	StopWords      stoplist.Set
	CountMode      CountMode
}

// Validate rejects sizes and thresholds below 1.
func (o Options) Validate() error {
	if o.N < 1 {
		return internalerr.NewInputValueError("n-gram size", o.N, "must be >= 1")
	}
	if o.MinOccurrences < 1 {
		return internalerr.NewInputValueError("min occurrences", o.MinOccurrences, "must be >= 1")
	}
	if o.CountMode != CountOccurrences && o.CountMode != CountDistinctQueries {
		return internalerr.NewInputValueError("count mode", int(o.CountMode), "unknown")
	}
	return nil
}

// Accumulator sums record metrics per n-gram, remembering first-seen order.
type Accumulator struct {
	opts  Options
	index map[string]int
	rows  []*NgramAggregate
}

// NewAccumulator returns an empty accumulator for opts.
func NewAccumulator(opts Options) *Accumulator {
	return &Accumulator{opts: opts, index: make(map[string]int)}
}

// Add extracts the n-grams of one record and accumulates its metrics.
func (a *Accumulator) Add(rec dataset.QueryRecord) {
	grams := ingest.Ngrams(ingest.Tokenize(rec.Query, a.opts.StopWords), a.opts.N)
	if a.opts.CountMode == CountDistinctQueries {
		grams = distinct(grams)
	}
	impressions := rec.EffectiveImpressions()
	for _, g := range grams {
		i, ok := a.index[g]
		if !ok {
			i = len(a.rows)
			a.index[g] = i
			a.rows = append(a.rows, &NgramAggregate{Ngram: g})
		}
		row := a.rows[i]
		row.QueryCount++
		row.TotalClicks += rec.Clicks
		row.TotalCost += rec.Cost
		row.TotalConversions += rec.Conversions
		row.TotalImpressions += impressions
		row.Queries = append(row.Queries, rec.Query)
	}
}

// Results filters by minimum occurrence count and derives ratio metrics.
// Rows keep first-seen order.
func (a *Accumulator) Results() []NgramAggregate {
	out := make([]NgramAggregate, 0, len(a.rows))
	for _, row := range a.rows {
		if row.QueryCount < int64(a.opts.MinOccurrences) {
			continue
		}
		r := *row
		r.Queries = append([]string(nil), row.Queries...)
		derive(&r)
		out = append(out, r)
	}
	return out
}

// Aggregate groups every record of t by its n-grams in a single pass.
func Aggregate(t dataset.Table, opts Options) ([]NgramAggregate, error) {
	if err := t.CheckSchema(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	log.Info().Int("n", opts.N).Int("rows", t.Len()).Msg("extracting n-grams")

	acc := NewAccumulator(opts)
	for _, rec := range t.Records {
		acc.Add(rec)
	}
	out := acc.Results()

	log.Info().
		Int("n", opts.N).
		Int("distinct", len(acc.rows)).
		Int("retained", len(out)).
		Msg("n-gram aggregation complete")
	return out, nil
}

// Clone returns a copy of r that shares no memory with it.
func (r NgramAggregate) Clone() NgramAggregate {
	if r.Queries != nil {
		r.Queries = append([]string(nil), r.Queries...)
	}
	return r
}

// CloneRows deep-copies rows.
func CloneRows(rows []NgramAggregate) []NgramAggregate {
	if rows == nil {
		return nil
	}
	out := make([]NgramAggregate, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

func derive(r *NgramAggregate) {
	r.CTR = percent(r.TotalClicks, r.TotalImpressions)
	r.CVR = percent(r.TotalConversions, r.TotalClicks)
	if r.TotalConversions > 0 {
		r.CPA = r.TotalCost / float64(r.TotalConversions)
	} else {
		r.CPA = 0
	}
}

func percent(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) * 100 / float64(den)
}

func distinct(grams []string) []string {
	if len(grams) < 2 {
		return grams
	}
	seen := make(map[string]struct{}, len(grams))
	out := grams[:0:0]
	for _, g := range grams {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

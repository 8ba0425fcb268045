// Package ngramq analyses search-query performance by n-gram: it breaks
// every query into word sequences, aggregates clicks, cost and conversions
// per sequence and flags the ones that spend without converting.
package ngramq

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/cache"
	"github.com/cognicore/ngramq/pkg/ngramq/config"
	"github.com/cognicore/ngramq/pkg/ngramq/dataset"
	"github.com/cognicore/ngramq/pkg/ngramq/store"
	"github.com/cognicore/ngramq/pkg/ngramq/waste"
)

// Strategy selects the aggregation implementation. Both produce identical
// results.
type Strategy int

const (
	RowWise Strategy = iota
	Grouped
)

// Engine runs analyses over validated tables.
type Engine struct {
	cache    *cache.Cache[[]analytics.NgramAggregate]
	workers  int
	strategy Strategy
}

// Options configures an Engine.
type Options struct {
	// Cache reuses sorted aggregates across requests. Nil disables caching.
	Cache    *cache.Cache[[]analytics.NgramAggregate]
	Workers  int
	Strategy Strategy
}

// New creates an Engine.
func New(opts Options) *Engine {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{cache: opts.Cache, workers: workers, strategy: opts.Strategy}
}

// SizeResult is the outcome of one n-gram size.
type SizeResult struct {
	N int `json:"n"`

	// All is every aggregate, sorted by the requested metric.
	All []analytics.NgramAggregate `json:"-"`

	// Rows is All after the display filters.
	Rows []analytics.NgramAggregate `json:"rows"`

	Waste     waste.Detection `json:"waste"`
	Negatives []string        `json:"negative_keywords"`
	Savings   waste.Savings   `json:"savings"`
	Cached    bool            `json:"cached"`
}

// Report is the outcome of Analyze.
type Report struct {
	Fingerprint string                `json:"fingerprint"`
	Quality     dataset.QualityReport `json:"quality"`
	Settings    config.Settings       `json:"settings"`
	Sizes       []SizeResult          `json:"sizes"`
	Elapsed     time.Duration         `json:"elapsed"`
}

// Size returns the result for n.
func (r *Report) Size(n int) (SizeResult, bool) {
	for _, s := range r.Sizes {
		if s.N == n {
			return s, true
		}
	}
	return SizeResult{}, false
}

// Analysis converts the report into a record for the history store. Stored
// rows are the full sorted aggregates.
func (r *Report) Analysis(name string) store.Analysis {
	results := make(map[int][]analytics.NgramAggregate, len(r.Sizes))
	for _, s := range r.Sizes {
		results[s.N] = s.All
	}
	return store.Analysis{Name: name, Settings: r.Settings, Results: results}
}

// Analyze runs every configured n-gram size over t. Sizes run concurrently,
// bounded by the engine's worker count, and the report lists them in
// ascending order of n.
func (e *Engine) Analyze(ctx context.Context, t dataset.Table, s config.Settings) (*Report, error) {
	start := time.Now()
	if err := t.CheckSchema(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	field, err := analytics.ParseSortField(s.SortMetric)
	if err != nil {
		return nil, err
	}
	mode, err := analytics.ParseCountMode(s.CountMode)
	if err != nil {
		return nil, err
	}

	sizes := uniqueSizes(s.NgramSizes)
	quality := dataset.Quality(t)
	fingerprint := dataset.Fingerprint(t)
	stop := s.StopSet()

	results := make([]SizeResult, len(sizes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, n := range sizes {
		i, n := i, n
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			opts := analytics.Options{N: n, MinOccurrences: s.MinOccurrences, StopWords: stop, CountMode: mode}
			key := cache.Key{
				Fingerprint:    fingerprint,
				N:              n,
				MinOccurrences: s.MinOccurrences,
				StopWords:      stop.Key(),
				SortField:      string(field),
				Descending:     !s.SortAscending,
				CountMode:      mode.String(),
			}
			res, err := e.runSize(t, opts, key, field, s, quality.TotalCost)
			if err != nil {
				return fmt.Errorf("%d-grams: %w", n, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Fingerprint: fingerprint,
		Quality:     quality,
		Settings:    s,
		Sizes:       results,
		Elapsed:     time.Since(start),
	}
	log.Info().
		Int("rows", t.Len()).
		Ints("sizes", sizes).
		Str("fingerprint", fingerprint).
		Dur("elapsed", report.Elapsed).
		Msg("analysis complete")
	return report, nil
}

func (e *Engine) runSize(t dataset.Table, opts analytics.Options, key cache.Key, field analytics.SortField, s config.Settings, datasetCost float64) (SizeResult, error) {
	res := SizeResult{N: opts.N}
	compute := func() ([]analytics.NgramAggregate, error) {
		return e.aggregate(t, opts, field, !s.SortAscending)
	}

	var (
		all []analytics.NgramAggregate
		err error
	)
	if e.cache != nil {
		var computed bool
		all, computed, err = e.cache.GetOrCompute(key, compute)
		res.Cached = !computed
		// the cached slice is shared by every later request
		all = analytics.CloneRows(all)
	} else {
		all, err = compute()
	}
	if err != nil {
		return res, err
	}
	res.All = all
	res.Rows = s.Filters.Apply(all)

	res.Waste, err = waste.Detect(all, s.CostPercentile, s.CVRPercentile)
	if err != nil {
		return res, err
	}
	res.Negatives, err = waste.GenerateNegativeKeywords(res.Waste.Wasters, s.MinWasteScore, s.MaxNegatives)
	if err != nil {
		return res, err
	}
	res.Savings = waste.PotentialSavings(res.Waste.Wasters, datasetCost)
	return res, nil
}

func (e *Engine) aggregate(t dataset.Table, opts analytics.Options, field analytics.SortField, descending bool) ([]analytics.NgramAggregate, error) {
	var (
		rows []analytics.NgramAggregate
		err  error
	)
	if e.strategy == Grouped {
		rows, err = analytics.AggregateGrouped(t, opts)
	} else {
		rows, err = analytics.Aggregate(t, opts)
	}
	if err != nil {
		return nil, err
	}
	return analytics.Sort(rows, field, descending)
}

func uniqueSizes(sizes []int) []int {
	seen := make(map[int]bool, len(sizes))
	out := make([]int, 0, len(sizes))
	for _, n := range sizes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

package store

import (
	"context"
	"crypto/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/config"
)

// Store persists analysis runs.
type Store interface {
	Close() error

	// SaveAnalysis stores a, assigning an ID and timestamp when they are
	// empty, and returns the stored document. The queries lists are dropped.
	SaveAnalysis(ctx context.Context, a Analysis) (Analysis, error)
	// LoadAnalysis returns internalerr.ErrNotFound for unknown ids.
	LoadAnalysis(ctx context.Context, id string) (Analysis, error)
	// ListAnalyses returns summaries, most recent first.
	ListAnalyses(ctx context.Context) ([]Summary, error)
	DeleteAnalysis(ctx context.Context, id string) error
}

// Analysis is one saved run: the settings used and the aggregated rows per
// n-gram size.
type Analysis struct {
	ID        string                             `json:"id"`
	Timestamp Timestamp                          `json:"timestamp"`
	Name      string                             `json:"name"`
	Settings  config.Settings                    `json:"settings"`
	Results   map[int][]analytics.NgramAggregate `json:"results"`
}

// Summary describes a saved analysis without its rows.
type Summary struct {
	ID        string
	Name      string
	Timestamp time.Time
	Sizes     []int
	Rows      int
}

// Sizes returns the n-gram sizes present in a, ascending.
func (a Analysis) Sizes() []int {
	sizes := make([]int, 0, len(a.Results))
	for n := range a.Results {
		sizes = append(sizes, n)
	}
	sort.Ints(sizes)
	return sizes
}

// Summary condenses a.
func (a Analysis) Summary() Summary {
	rows := 0
	for _, r := range a.Results {
		rows += len(r)
	}
	return Summary{ID: a.ID, Name: a.Name, Timestamp: a.Timestamp.Time, Sizes: a.Sizes(), Rows: rows}
}

// Prepare fills in a missing ID and timestamp and strips queries lists,
// returning a copy that is safe to persist.
func Prepare(a Analysis, now time.Time) Analysis {
	if a.Timestamp.IsZero() {
		a.Timestamp = Timestamp{now}
	}
	if a.ID == "" {
		a.ID = NewID(a.Timestamp.Time)
	}
	results := make(map[int][]analytics.NgramAggregate, len(a.Results))
	for n, rows := range a.Results {
		stripped := make([]analytics.NgramAggregate, len(rows))
		for i, r := range rows {
			r.Queries = nil
			stripped[i] = r
		}
		results[n] = stripped
	}
	a.Results = results
	return a
}

// SortSummaries orders summaries most recent first, then by ID descending.
func SortSummaries(s []Summary) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].Timestamp.Equal(s[j].Timestamp) {
			return s[i].Timestamp.After(s[j].Timestamp)
		}
		return s[i].ID > s[j].ID
	})
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a lexically sortable identifier for t.
func NewID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Timestamp accepts RFC 3339 as well as the zone-less ISO layout written by
// older tools, and always writes RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	for _, layout := range timestampLayouts {
		var parsed time.Time
		if parsed, err = time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return err
}

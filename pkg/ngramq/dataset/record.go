package dataset

import (
	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
)

// Standard column names every table is normalized to.
const (
	ColQuery       = "query"
	ColClicks      = "clicks"
	ColCost        = "cost"
	ColConversions = "conversions"
	ColImpressions = "impressions"
)

// RequiredColumns must all be present before aggregation starts.
var RequiredColumns = []string{ColQuery, ColClicks, ColCost, ColConversions}

// QueryRecord is one validated search-term row.
type QueryRecord struct {
	Query       string  `json:"query"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	Conversions int64   `json:"conversions"`
	Impressions int64   `json:"impressions"`
	// HasImpressions is false when the row carried no impressions value.
	HasImpressions bool `json:"-"`
}

// EffectiveImpressions returns Impressions, or Clicks when the row has none.
// CTR can exceed 100% because impressions >= clicks is not enforced.
func (r QueryRecord) EffectiveImpressions() int64 {
	if !r.HasImpressions {
		return r.Clicks
	}
	return r.Impressions
}

// Table is a normalized, in-memory query dataset.
// Columns lists the standard column names the source actually provided.
type Table struct {
	Columns []string
	Records []QueryRecord
}

// FromRecords builds a table over records. The impressions column is
// declared only when at least one record carries impressions.
func FromRecords(records []QueryRecord) Table {
	cols := append([]string(nil), RequiredColumns...)
	for _, r := range records {
		if r.HasImpressions {
			cols = append(cols, ColImpressions)
			break
		}
	}
	return Table{Columns: cols, Records: records}
}

// HasColumn reports whether the table declares the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// CheckSchema returns a SchemaError naming every required column that is
// absent, in RequiredColumns order.
func (t Table) CheckSchema() error {
	var missing []string
	for _, col := range RequiredColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &internalerr.SchemaError{Missing: missing, Available: append([]string(nil), t.Columns...)}
	}
	return nil
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Records) }

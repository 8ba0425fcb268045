package analytics

import (
	"sort"
	"strings"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
)

// SortField names a sortable NgramAggregate column.
type SortField string

const (
	SortByCost        SortField = "total_cost"
	SortByClicks      SortField = "total_clicks"
	SortByConversions SortField = "total_conversions"
	SortByImpressions SortField = "total_impressions"
	SortByQueryCount  SortField = "query_count"
	SortByCPA         SortField = "cpa"
	SortByCVR         SortField = "cvr"
	SortByCTR         SortField = "ctr"
	SortByNgram       SortField = "ngram"
)

// SortFields lists every accepted field in display order.
var SortFields = []SortField{
	SortByCost, SortByClicks, SortByConversions, SortByImpressions,
	SortByQueryCount, SortByCPA, SortByCVR, SortByCTR, SortByNgram,
}

// ParseSortField resolves a field name, case-insensitively.
func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SortFields {
		if f == known {
			return f, nil
		}
	}
	return "", internalerr.NewInputValueError("sort field", s, "unknown column")
}

// Value returns the numeric value of field for r. The ngram field has no
// numeric value and reports 0.
func (f SortField) Value(r NgramAggregate) float64 {
	switch f {
	case SortByCost:
		return r.TotalCost
	case SortByClicks:
		return float64(r.TotalClicks)
	case SortByConversions:
		return float64(r.TotalConversions)
	case SortByImpressions:
		return float64(r.TotalImpressions)
	case SortByQueryCount:
		return float64(r.QueryCount)
	case SortByCPA:
		return r.CPA
	case SortByCVR:
		return r.CVR
	case SortByCTR:
		return r.CTR
	}
	return 0
}

// Sort returns a sorted copy of rows. Equal keys keep their input order.
func Sort(rows []NgramAggregate, field SortField, descending bool) ([]NgramAggregate, error) {
	field, err := ParseSortField(string(field))
	if err != nil {
		return nil, err
	}
	out := append([]NgramAggregate(nil), rows...)

	less := func(i, j int) bool {
		if field == SortByNgram {
			return out[i].Ngram < out[j].Ngram
		}
		return field.Value(out[i]) < field.Value(out[j])
	}
	if descending {
		sort.SliceStable(out, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(out, less)
	}
	return out, nil
}

package dataset

import (
	"strings"

	"github.com/mozillazg/go-unidecode"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
)

// Mapping lists, per standard column, the header names accepted for it in
// priority order. Candidates are compared after NormalizeHeader.
type Mapping map[string][]string

// mappingOrder fixes the resolution and reporting order of targets.
var mappingOrder = []string{ColQuery, ColClicks, ColCost, ColConversions, ColImpressions}

// DefaultMapping covers the header names used by the common ad-platform
// search-term exports.
func DefaultMapping() Mapping {
	return Mapping{
		ColQuery:       {"search term", "search_term", "query", "search terms", "searchterm"},
		ColClicks:      {"interactions", "clicks", "click", "interaction", "total clicks"},
		ColCost:        {"cost", "spend", "cost_gbp", "total cost", "totalcost"},
		ColConversions: {"conversions", "conv.", "conv", "converted", "total conversions"},
		ColImpressions: {"impr.", "impressions", "impr", "impression"},
	}
}

// Merge returns a copy of m where every target present in override replaces
// the default candidate list.
func (m Mapping) Merge(override Mapping) Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range override {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// NormalizeHeader lowercases, trims and transliterates a raw header so that
// "Search Term", " search term " and "Séarch term" compare equal.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ReplaceAll(h, `"`, "")
	h = unidecode.Unidecode(strings.TrimSpace(h))
	return strings.ToLower(strings.TrimSpace(h))
}

// FindColumn returns the index of the first candidate present in headers.
// headers must already be normalized.
func FindColumn(headers []string, candidates []string) (int, bool) {
	for _, cand := range candidates {
		cand = NormalizeHeader(cand)
		for i, h := range headers {
			if h == cand {
				return i, true
			}
		}
	}
	return -1, false
}

// Resolve maps standard column names to header indexes. Every required
// column that cannot be found is reported in a single SchemaError.
func (m Mapping) Resolve(headers []string) (map[string]int, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	resolved := make(map[string]int, len(mappingOrder))
	var missing []string
	for _, target := range mappingOrder {
		idx, ok := FindColumn(normalized, m[target])
		if ok {
			resolved[target] = idx
			continue
		}
		if target != ColImpressions {
			missing = append(missing, target)
		}
	}

	if len(missing) > 0 {
		return nil, &internalerr.SchemaError{Missing: missing, Available: normalized}
	}
	return resolved, nil
}

package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/ngramq/pkg/ngramq/ingest"
)

// RawTable is an untyped table as read from a file or paste: headers as
// written by the source and one cell per header per row.
type RawTable struct {
	Headers []string
	Rows    [][]any
}

// ValidationSummary describes what Validate did to a raw table.
type ValidationSummary struct {
	InputRows          int
	KeptRows           int
	DroppedEmptyQuery  int
	CoercedValues      int
	ImpressionsProxied bool
	// Columns maps each standard column to the source header it was read from.
	Columns map[string]string
}

// Validate resolves the raw headers through m, coerces numeric cells and
// drops rows whose query is empty. Unparseable or negative numbers become 0.
// When no impressions column exists, every record uses its clicks instead.
func Validate(raw RawTable, m Mapping) (Table, ValidationSummary, error) {
	summary := ValidationSummary{InputRows: len(raw.Rows), Columns: map[string]string{}}

	idx, err := m.Resolve(raw.Headers)
	if err != nil {
		log.Error().Err(err).Strs("headers", raw.Headers).Msg("column validation failed")
		return Table{}, summary, err
	}

	columns := append([]string(nil), RequiredColumns...)
	impIdx, hasImpressions := idx[ColImpressions]
	if hasImpressions {
		columns = append(columns, ColImpressions)
	} else {
		summary.ImpressionsProxied = true
		log.Info().Msg("impressions column not found - using clicks as proxy")
	}
	for target, i := range idx {
		summary.Columns[target] = raw.Headers[i]
	}

	records := make([]QueryRecord, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		query := ingest.Text(cell(row, idx[ColQuery]))
		if strings.TrimSpace(query) == "" {
			summary.DroppedEmptyQuery++
			continue
		}

		rec := QueryRecord{Query: query}
		rec.Clicks = summary.integer(cell(row, idx[ColClicks]))
		rec.Cost = summary.decimal(cell(row, idx[ColCost]))
		rec.Conversions = summary.integer(cell(row, idx[ColConversions]))
		if hasImpressions {
			rec.Impressions = summary.integer(cell(row, impIdx))
			rec.HasImpressions = true
		} else {
			rec.Impressions = rec.Clicks
		}
		records = append(records, rec)
	}
	summary.KeptRows = len(records)

	log.Info().
		Int("rows", summary.KeptRows).
		Int("dropped", summary.DroppedEmptyQuery).
		Int("coerced", summary.CoercedValues).
		Strs("columns", columns).
		Msg("validation complete")

	return Table{Columns: columns, Records: records}, summary, nil
}

func cell(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func (s *ValidationSummary) decimal(v any) float64 {
	f, ok := ParseNumber(v)
	if !ok || f < 0 {
		if v != nil && v != "" {
			s.CoercedValues++
		}
		return 0
	}
	return f
}

func (s *ValidationSummary) integer(v any) int64 {
	return int64(math.Round(s.decimal(v)))
}

// ParseNumber converts a cell to a float. Strings may carry currency
// symbols, percent signs, spaces and thousands separators; the decimal
// separator is whichever of ',' and '.' comes last.
func ParseNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		return 0, false
	case string:
		return parseNumericString(x)
	default:
		return parseNumericString(ingest.Text(x))
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumericString(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.NewReplacer(
		" ", "", "\u00a0", "", "%", "", "£", "", "$", "", "€", "",
	).Replace(raw)
	if raw == "" {
		return 0, false
	}

	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0 && cpos > dpos:
		dec = ','
	case cpos >= 0 && dpos < 0 && !looksLikeThousands(raw, cpos):
		dec = ','
	}

	thou := ","
	if dec == ',' {
		thou = "."
	}
	raw = strings.ReplaceAll(raw, thou, "")
	if dec == ',' {
		raw = strings.ReplaceAll(raw, ",", ".")
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

// looksLikeThousands treats "1,234" as a grouped integer rather than 1.234.
func looksLikeThousands(raw string, lastComma int) bool {
	return len(raw)-lastComma-1 == 3
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
)

// SummaryColumns are the columns of the summary export.
var SummaryColumns = []string{
	"ngram", "query_count", "total_clicks", "total_cost", "total_conversions", "ctr", "cvr", "cpa",
}

// DetailedColumns add the contributing queries to SummaryColumns.
var DetailedColumns = append(append([]string(nil), SummaryColumns...), "queries")

// QuerySeparator joins the queries list in detailed exports.
const QuerySeparator = "; "

// SummaryFileName is the conventional file name of the summary export.
func SummaryFileName(n int) string { return fmt.Sprintf("ngram_%d_summary.csv", n) }

// DetailedFileName is the conventional file name of the detailed export.
func DetailedFileName(n int) string { return fmt.Sprintf("ngram_%d_detailed.csv", n) }

// WriteSummaryCSV writes rows with SummaryColumns.
func WriteSummaryCSV(w io.Writer, rows []analytics.NgramAggregate) error {
	return writeCSV(w, rows, false)
}

// WriteDetailedCSV writes rows with DetailedColumns.
func WriteDetailedCSV(w io.Writer, rows []analytics.NgramAggregate) error {
	return writeCSV(w, rows, true)
}

func writeCSV(w io.Writer, rows []analytics.NgramAggregate, detailed bool) error {
	cw := csv.NewWriter(w)
	header := SummaryColumns
	if detailed {
		header = DetailedColumns
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Ngram,
			strconv.FormatInt(r.QueryCount, 10),
			strconv.FormatInt(r.TotalClicks, 10),
			num(r.TotalCost),
			strconv.FormatInt(r.TotalConversions, 10),
			num(r.CTR),
			num(r.CVR),
			num(r.CPA),
		}
		if detailed {
			record = append(record, strings.Join(r.Queries, QuerySeparator))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

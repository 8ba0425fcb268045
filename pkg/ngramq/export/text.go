package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/waste"
)

// TextReport renders rows as the plain-text block report.
func TextReport(n int, rows []analytics.NgramAggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-GRAM ANALYSIS RESULTS\n", n)
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "N-gram: %s\n", r.Ngram)
		fmt.Fprintf(&b, "  Queries: %d\n", r.QueryCount)
		fmt.Fprintf(&b, "  Clicks: %d\n", r.TotalClicks)
		fmt.Fprintf(&b, "  Cost: %s%.2f\n", CurrencySymbol, r.TotalCost)
		fmt.Fprintf(&b, "  Conversions: %d\n", r.TotalConversions)
		fmt.Fprintf(&b, "  CVR: %.2f%%\n", r.CVR)
		fmt.Fprintf(&b, "  CPA: %s%.2f\n", CurrencySymbol, r.CPA)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// WriteTextReport writes TextReport to w.
func WriteTextReport(w io.Writer, n int, rows []analytics.NgramAggregate) error {
	_, err := io.WriteString(w, TextReport(n, rows))
	return err
}

var rightAligned = []table.ColumnConfig{
	{Number: 2, Align: text.AlignRight},
	{Number: 3, Align: text.AlignRight},
	{Number: 4, Align: text.AlignRight},
	{Number: 5, Align: text.AlignRight},
	{Number: 6, Align: text.AlignRight},
	{Number: 7, Align: text.AlignRight},
	{Number: 8, Align: text.AlignRight},
	{Number: 9, Align: text.AlignRight},
}

// Table renders rows as a boxed console table with formatted metrics.
// limit <= 0 renders every row.
func Table(title string, rows []analytics.NgramAggregate, limit int) string {
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"N-gram", "Queries", "Clicks", "Cost", "Conversions", "CTR", "CVR", "CPA"})
	for i, r := range rows {
		if limit > 0 && i == limit {
			break
		}
		t.AppendRow(table.Row{
			r.Ngram,
			FormatMetric(float64(r.QueryCount), "query_count"),
			FormatMetric(float64(r.TotalClicks), "total_clicks"),
			FormatMetric(r.TotalCost, "total_cost"),
			FormatMetric(float64(r.TotalConversions), "total_conversions"),
			FormatMetric(r.CTR, "ctr"),
			FormatMetric(r.CVR, "cvr"),
			FormatMetric(r.CPA, "cpa"),
		})
	}
	if limit > 0 && len(rows) > limit {
		t.AppendFooter(table.Row{fmt.Sprintf("%d more", len(rows)-limit)})
	}
	t.SetColumnConfigs(rightAligned)
	t.SetStyle(table.StyleLight)
	return t.Render()
}

// WasteTable renders money wasters with their waste score.
func WasteTable(title string, wasters []waste.WasteResult) string {
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"N-gram", "Waste score", "Cost", "Clicks", "Conversions", "CVR", "CPA"})
	for _, w := range wasters {
		t.AppendRow(table.Row{
			w.Ngram,
			FormatMetric(w.WasteScore, "waste_score"),
			FormatMetric(w.TotalCost, "total_cost"),
			FormatMetric(float64(w.TotalClicks), "total_clicks"),
			FormatMetric(float64(w.TotalConversions), "total_conversions"),
			FormatMetric(w.CVR, "cvr"),
			FormatMetric(w.CPA, "cpa"),
		})
	}
	t.SetColumnConfigs(rightAligned[:6])
	t.SetStyle(table.StyleLight)
	return t.Render()
}

// SavingsSummary renders potential savings as a two-column table.
func SavingsSummary(s waste.Savings) string {
	t := table.NewWriter()
	t.SetTitle("Potential savings")
	t.AppendRows([]table.Row{
		{"Wasted cost", FormatMetric(s.WastedCost, "total_cost")},
		{"Wasted clicks", FormatMetric(float64(s.WastedClicks), "total_clicks")},
		{"Conversions at risk", FormatMetric(float64(s.WastedConversions), "total_conversions")},
		{"Average waster CPA", FormatMetric(s.AvgWasteCPA, "cpa")},
		{"Share of total cost", fmt.Sprintf("%.2f%%", s.SavingsPct)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.SetStyle(table.StyleLight)
	return t.Render()
}

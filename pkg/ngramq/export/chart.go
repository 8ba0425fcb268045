package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
)

// DefaultChartTop is how many n-grams a chart shows when top <= 0.
const DefaultChartTop = 20

// WriteBarChart renders an HTML bar chart of the top n-grams by metric.
func WriteBarChart(w io.Writer, n int, rows []analytics.NgramAggregate, metric analytics.SortField, top int) error {
	sorted, err := analytics.Sort(rows, metric, true)
	if err != nil {
		return err
	}
	if top <= 0 {
		top = DefaultChartTop
	}
	if len(sorted) > top {
		sorted = sorted[:top]
	}

	labels := make([]string, len(sorted))
	values := make([]opts.BarData, len(sorted))
	for i, r := range sorted {
		labels[i] = r.Ngram
		values[i] = opts.BarData{Name: r.Ngram, Value: metric.Value(r)}
	}

	title := fmt.Sprintf("Top %d %d-grams by %s", len(sorted), n, metric)
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithYAxisOpts(opts.YAxis{Name: string(metric)}),
	)
	bar.SetXAxis(labels).AddSeries(string(metric), values)
	return bar.Render(w)
}

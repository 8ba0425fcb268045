package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/cognicore/ngramq/pkg/ngramq"
	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/config"
	"github.com/cognicore/ngramq/pkg/ngramq/dataset"
	"github.com/cognicore/ngramq/pkg/ngramq/export"
	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
)

var formats = []string{"table", "text", "csv", "html", "chart"}

func analyzeCommand(rt *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "aggregate a search query report by n-gram and list money wasters",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "CSV, TSV or JSON report"},
			&cli.StringFlag{Name: "config", Usage: "settings YAML"},
			&cli.StringFlag{Name: "stoplist", Usage: "stop word YAML (terms: [...])"},
			&cli.StringFlag{Name: "columns", Usage: "column mapping YAML (target: [header, ...])"},
			&cli.StringFlag{Name: "n", Usage: "comma separated n-gram sizes, e.g. 1,2,3"},
			&cli.IntFlag{Name: "min-occurrences", Usage: "drop n-grams seen fewer times"},
			&cli.StringFlag{Name: "sort", Usage: "sort metric: " + strings.Join(sortFieldNames(), ", ")},
			&cli.BoolFlag{Name: "asc", Usage: "sort ascending"},
			&cli.StringFlag{Name: "count-mode", Usage: "occurrences or distinct"},
			&cli.Float64Flag{Name: "cost-percentile", Usage: "cost percentile a waster must reach"},
			&cli.Float64Flag{Name: "cvr-percentile", Usage: "conversion rate percentile a waster must not exceed"},
			&cli.Float64Flag{Name: "min-waste", Usage: "minimum waste score for a negative keyword"},
			&cli.IntFlag{Name: "max-negatives", Usage: "maximum negative keywords per size"},
			&cli.BoolFlag{Name: "no-stop-words", Usage: "keep stop words"},
			&cli.Float64Flag{Name: "min-cost", Usage: "display filter: minimum total cost"},
			&cli.Int64Flag{Name: "min-clicks", Usage: "display filter: minimum clicks"},
			&cli.Float64Flag{Name: "max-cpa", Usage: "display filter: maximum CPA"},
			&cli.Float64Flag{Name: "min-cvr", Usage: "display filter: minimum CVR"},
			&cli.BoolFlag{Name: "grouped", Usage: "use the grouped aggregation strategy"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: strings.Join(formats, "|")},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "directory for file formats"},
			&cli.IntFlag{Name: "top", Value: 25, Usage: "rows shown by table and chart output"},
			&cli.StringFlag{Name: "chart-metric", Value: string(analytics.SortByCost), Usage: "metric plotted by chart output"},
			&cli.StringFlag{Name: "save", Usage: "save the analysis to history under this name"},
		},
		Action: func(c *cli.Context) error {
			settings, err := settingsFromFlags(c)
			if err != nil {
				return err
			}
			mapping := dataset.DefaultMapping()
			if path := c.String("columns"); path != "" {
				cm, err := config.LoadColumnMappings(path)
				if err != nil {
					return err
				}
				mapping = cm.Mapping()
			}

			table, summary, err := dataset.Load(c.String("input"), mapping)
			if err != nil {
				return err
			}
			log.Info().
				Int("rows", summary.KeptRows).
				Int("dropped", summary.DroppedEmptyQuery).
				Bool("impressions_proxied", summary.ImpressionsProxied).
				Msg("dataset loaded")

			strategy := ngramq.RowWise
			if c.Bool("grouped") {
				strategy = ngramq.Grouped
			}
			engine := ngramq.New(ngramq.Options{Cache: rt.cache, Workers: rt.env.Workers, Strategy: strategy})
			report, err := engine.Analyze(c.Context, table, settings)
			if err != nil {
				return err
			}

			chartMetric, err := analytics.ParseSortField(c.String("chart-metric"))
			if err != nil {
				return err
			}
			out := output{
				w:           c.App.Writer,
				dir:         c.String("out"),
				top:         c.Int("top"),
				chartMetric: chartMetric,
			}
			if err := out.write(c.String("format"), report); err != nil {
				return err
			}

			if name := c.String("save"); name != "" {
				st, err := openStore(c.Context, rt.env)
				if err != nil {
					return err
				}
				defer st.Close()
				saved, err := st.SaveAnalysis(c.Context, report.Analysis(name))
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "saved analysis %s\n", saved.ID)
			}
			return nil
		},
	}
}

func sortFieldNames() []string {
	out := make([]string, len(analytics.SortFields))
	for i, f := range analytics.SortFields {
		out[i] = string(f)
	}
	return out
}

// settingsFromFlags starts from the defaults or --config and applies every
// flag the user set explicitly.
func settingsFromFlags(c *cli.Context) (config.Settings, error) {
	s := config.DefaultSettings()
	if path := c.String("config"); path != "" {
		var err error
		if s, err = config.LoadSettings(path); err != nil {
			return s, err
		}
	}
	if c.IsSet("n") {
		sizes, err := parseSizes(c.String("n"))
		if err != nil {
			return s, err
		}
		s.NgramSizes = sizes
	}
	if c.IsSet("min-occurrences") {
		s.MinOccurrences = c.Int("min-occurrences")
	}
	if c.IsSet("sort") {
		s.SortMetric = strings.ToLower(c.String("sort"))
	}
	if c.IsSet("asc") {
		s.SortAscending = c.Bool("asc")
	}
	if c.IsSet("count-mode") {
		s.CountMode = c.String("count-mode")
	}
	if c.IsSet("cost-percentile") {
		s.CostPercentile = c.Float64("cost-percentile")
	}
	if c.IsSet("cvr-percentile") {
		s.CVRPercentile = c.Float64("cvr-percentile")
	}
	if c.IsSet("min-waste") {
		s.MinWasteScore = c.Float64("min-waste")
	}
	if c.IsSet("max-negatives") {
		s.MaxNegatives = c.Int("max-negatives")
	}
	if path := c.String("stoplist"); path != "" {
		sl, err := config.LoadStoplist(path)
		if err != nil {
			return s, err
		}
		s.UseStopWords = true
		s.StopWords = sl.Set().Terms()
	}
	// --no-stop-words wins over --stoplist
	if c.Bool("no-stop-words") {
		s.UseStopWords = false
	}
	if c.IsSet("min-cost") {
		s.Filters.MinCost = c.Float64("min-cost")
	}
	if c.IsSet("min-clicks") {
		s.Filters.MinClicks = c.Int64("min-clicks")
	}
	if c.IsSet("max-cpa") {
		s.Filters.MaxCPA = c.Float64("max-cpa")
	}
	if c.IsSet("min-cvr") {
		s.Filters.MinCVR = c.Float64("min-cvr")
	}
	return s, s.Validate()
}

// parseSizes reads "1,2,3" into sizes.
func parseSizes(raw string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, internalerr.NewInputValueError("n", part, "must be a positive integer")
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, internalerr.NewInputValueError("n", raw, "no sizes given")
	}
	return sizes, nil
}

type output struct {
	w           io.Writer
	dir         string
	top         int
	chartMetric analytics.SortField
}

func (o output) write(format string, report *ngramq.Report) error {
	switch format {
	case "table":
		return o.table(report)
	case "text":
		for _, s := range report.Sizes {
			if err := export.WriteTextReport(o.w, s.N, s.Rows); err != nil {
				return err
			}
			fmt.Fprintln(o.w)
		}
		return nil
	case "csv", "html", "chart":
		return o.files(format, report)
	}
	return internalerr.NewInputValueError("format", format, "must be one of "+strings.Join(formats, ", "))
}

func (o output) table(report *ngramq.Report) error {
	q := report.Quality
	fmt.Fprintf(o.w, "%d rows, %s cost, %s conversions (%.2f%% of rows convert)\n\n",
		q.TotalRows,
		export.FormatMetric(q.TotalCost, "total_cost"),
		export.FormatMetric(float64(q.TotalConversions), "total_conversions"),
		q.ConversionRatePct,
	)
	for _, s := range report.Sizes {
		fmt.Fprintln(o.w, export.Table(fmt.Sprintf("%d-grams", s.N), s.Rows, o.top))
		if len(s.Waste.Wasters) == 0 {
			fmt.Fprintf(o.w, "no money wasters among %d-grams\n\n", s.N)
			continue
		}
		fmt.Fprintln(o.w, export.WasteTable(fmt.Sprintf("%d-gram money wasters", s.N), s.Waste.Wasters))
		fmt.Fprintln(o.w, export.SavingsSummary(s.Savings))
		fmt.Fprintf(o.w, "negative keywords: %s\n\n", strings.Join(s.Negatives, ", "))
	}
	return nil
}

func (o output) files(format string, report *ngramq.Report) error {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", o.dir)
	}
	for _, s := range report.Sizes {
		var written []string
		write := func(name string, fn func(io.Writer) error) error {
			path := filepath.Join(o.dir, name)
			f, err := os.Create(path)
			if err != nil {
				return errors.Wrapf(err, "create %s", path)
			}
			if err := fn(f); err != nil {
				f.Close()
				return errors.Wrapf(err, "write %s", path)
			}
			written = append(written, path)
			return f.Close()
		}

		var err error
		switch format {
		case "csv":
			if err = write(export.SummaryFileName(s.N), func(w io.Writer) error { return export.WriteSummaryCSV(w, s.Rows) }); err != nil {
				break
			}
			if err = write(export.DetailedFileName(s.N), func(w io.Writer) error { return export.WriteDetailedCSV(w, s.Rows) }); err != nil {
				break
			}
			err = write(export.NegativesFileName(s.N), func(w io.Writer) error { return export.WriteNegatives(w, s.Negatives) })
		case "html":
			title := fmt.Sprintf("%d-gram analysis results", s.N)
			err = write(htmlFileName(s.N), func(w io.Writer) error { return export.WriteHTMLTable(w, title, s.Rows) })
		case "chart":
			err = write(chartFileName(s.N), func(w io.Writer) error {
				return export.WriteBarChart(w, s.N, s.Rows, o.chartMetric, o.top)
			})
		}
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintln(o.w, path)
		}
	}
	return nil
}

func htmlFileName(n int) string  { return fmt.Sprintf("ngram_%d_results.html", n) }
func chartFileName(n int) string { return fmt.Sprintf("ngram_%d_chart.html", n) }

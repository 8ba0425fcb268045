package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/cognicore/ngramq/pkg/ngramq/export"
	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/store"
)

func historyCommand(rt *appDeps) *cli.Command {
	withStore := func(fn func(c *cli.Context, st store.Store) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			st, err := openStore(c.Context, rt.env)
			if err != nil {
				return err
			}
			defer st.Close()
			return fn(c, st)
		}
	}

	return &cli.Command{
		Name:  "history",
		Usage: "saved analyses",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list saved analyses, most recent first",
				Action: withStore(func(c *cli.Context, st store.Store) error {
					summaries, err := st.ListAnalyses(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, summaryTable(summaries))
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "print a saved analysis",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "top", Value: 25, Usage: "rows per size"},
				},
				Action: withStore(func(c *cli.Context, st store.Store) error {
					id, err := requireArg(c)
					if err != nil {
						return err
					}
					a, err := st.LoadAnalysis(c.Context, id)
					if err != nil {
						return fmt.Errorf("analysis %s: %w", id, err)
					}
					printAnalysis(c.App.Writer, a, c.Int("top"))
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "delete a saved analysis",
				ArgsUsage: "<id>",
				Action: withStore(func(c *cli.Context, st store.Store) error {
					id, err := requireArg(c)
					if err != nil {
						return err
					}
					if err := st.DeleteAnalysis(c.Context, id); err != nil {
						return fmt.Errorf("analysis %s: %w", id, err)
					}
					fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
					return nil
				}),
			},
		},
	}
}

func requireArg(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", internalerr.NewInputValueError("id", id, "missing analysis id")
	}
	return id, nil
}

func summaryTable(summaries []store.Summary) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Name", "Saved", "Sizes", "Rows"})
	for _, s := range summaries {
		sizes := make([]string, len(s.Sizes))
		for i, n := range s.Sizes {
			sizes[i] = fmt.Sprint(n)
		}
		t.AppendRow(table.Row{s.ID, s.Name, s.Timestamp.Local().Format("2006-01-02 15:04:05"), strings.Join(sizes, ","), s.Rows})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}

func printAnalysis(w io.Writer, a store.Analysis, top int) {
	fmt.Fprintf(w, "%s (%s) saved %s\n", a.Name, a.ID, a.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "sort %s, min occurrences %d\n\n", a.Settings.SortMetric, a.Settings.MinOccurrences)
	for _, n := range a.Sizes() {
		fmt.Fprintln(w, export.Table(fmt.Sprintf("%d-grams", n), a.Results[n], top))
	}
}

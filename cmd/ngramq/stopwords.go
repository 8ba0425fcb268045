package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/config"
	"github.com/cognicore/ngramq/pkg/ngramq/dataset"
	"github.com/cognicore/ngramq/pkg/ngramq/stoplist"
)

func stopwordsCommand() *cli.Command {
	defaults := stoplist.DefaultThresholds()
	return &cli.Command{
		Name:  "stopwords",
		Usage: "suggest stop words: tokens in many queries that do not move conversion rate",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true},
			&cli.StringFlag{Name: "columns", Usage: "column mapping YAML"},
			&cli.StringFlag{Name: "stoplist", Usage: "existing stoplist YAML; its terms are not suggested again"},
			&cli.Float64Flag{Name: "min-df", Value: defaults.DFPercent, Usage: "percent of queries a token must exceed"},
			&cli.Float64Flag{Name: "max-cvr-deviation", Value: defaults.MaxCVRDeviation, Usage: "largest relative CVR difference"},
			&cli.StringFlag{Name: "write", Usage: "write existing plus suggested terms to this stoplist YAML"},
		},
		Action: func(c *cli.Context) error {
			mapping := dataset.DefaultMapping()
			if path := c.String("columns"); path != "" {
				cm, err := config.LoadColumnMappings(path)
				if err != nil {
					return err
				}
				mapping = cm.Mapping()
			}
			existing := stoplist.Default()
			if path := c.String("stoplist"); path != "" {
				sl, err := config.LoadStoplist(path)
				if err != nil {
					return err
				}
				existing = sl.Set()
			}

			tbl, _, err := dataset.Load(c.String("input"), mapping)
			if err != nil {
				return err
			}
			stats, err := analytics.TokenStats(tbl, existing)
			if err != nil {
				return err
			}
			candidates := existing.Suggest(stats, stoplist.Thresholds{
				DFPercent:       c.Float64("min-df"),
				MaxCVRDeviation: c.Float64("max-cvr-deviation"),
			})

			fmt.Fprintln(c.App.Writer, candidateTable(candidates))
			if path := c.String("write"); path != "" {
				terms := existing.Terms()
				for _, cand := range candidates {
					terms = append(terms, cand.Token)
				}
				if err := config.SaveStoplist(path, terms); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "wrote %d terms to %s\n", len(stoplist.Normalize(terms)), path)
			}
			return nil
		},
	}
}

func candidateTable(candidates []stoplist.Candidate) string {
	t := table.NewWriter()
	t.SetTitle("Stop word candidates")
	t.AppendHeader(table.Row{"Token", "Queries %", "CVR deviation", "Score"})
	for _, c := range candidates {
		t.AppendRow(table.Row{
			c.Token,
			fmt.Sprintf("%.1f", c.Reason.DFPercent),
			fmt.Sprintf("%.2f", c.Reason.CVRDeviation),
			fmt.Sprintf("%.3f", c.Score),
		})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}

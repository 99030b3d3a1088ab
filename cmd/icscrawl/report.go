package main

import (
	"fmt"

	"github.com/fwojciec/icscrawl"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Run executes the report command.
func (c *ReportCmd) Run(deps *Dependencies) error {
	cp, err := deps.Checkpoints.Load(deps.Ctx)
	if err != nil {
		if icscrawl.ErrorCode(err) == icscrawl.ENOTFOUND {
			fmt.Fprintln(deps.Stderr, "No checkpoint found. Use 'icscrawl crawl' to create one.")
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", icscrawl.ErrorMessage(err))
		}
		return err
	}

	report := icscrawl.BuildReport(cp, c.Top)

	summary := newTable(deps)
	summary.AppendHeader(table.Row{"Metric", "Value"})
	summary.AppendRow(table.Row{"Unique pages", report.UniquePages})
	longest := report.LongestPage.URL
	if longest == "" {
		longest = "-"
	}
	summary.AppendRow(table.Row{"Longest page", longest})
	summary.AppendRow(table.Row{"Longest page words", report.LongestPage.Words})
	summary.Render()

	subdomains := newTable(deps)
	subdomains.SetTitle("Subdomains of %s", icscrawl.ReportDomain)
	subdomains.AppendHeader(table.Row{"Host", "Pages"})
	for _, s := range report.Subdomains {
		subdomains.AppendRow(table.Row{s.Host, s.Pages})
	}
	subdomains.Render()

	words := newTable(deps)
	words.SetTitle("Top %d words", c.Top)
	words.AppendHeader(table.Row{"#", "Word", "Count"})
	for i, w := range report.TopWords {
		words.AppendRow(table.Row{i + 1, w.Word, w.Count})
	}
	words.Render()

	return nil
}

func newTable(deps *Dependencies) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

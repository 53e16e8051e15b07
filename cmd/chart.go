package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/renderer"
)

// chartCmd holds the flags for the 'chart' subcommand.
type chartCmd struct {
	output string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render the interactive HTML chart from the history files" }
func (*chartCmd) Usage() string {
	return `folio chart [-o <file>]

  Renders the standalone interactive chart page from the recorded history:
  sector and risk doughnuts, a date slider, and the positions list with
  earnings and news badges. Writes to the configured output directory unless
  -o says otherwise.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, the configured chart path when omitted")
}

func (c *chartCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	rows, err := folio.LoadHistory(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No snapshot recorded yet, run 'folio refresh' first.")
		return subcommands.ExitFailure
	}

	// The chart survives without news, badges just stay off.
	news, err := folio.LoadNewsHistory(cfg.NewsPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load news history: %v\n", err)
	}

	page, err := renderer.Chart(rows, news, cfg.BaseCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering chart: %v\n", err)
		return subcommands.ExitFailure
	}

	output := c.output
	if output == "" {
		output = cfg.ChartPath()
	}
	if err := os.WriteFile(output, page, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Chart written to %s\n", output)
	return subcommands.ExitSuccess
}

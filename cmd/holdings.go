package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/date"
	"github.com/nkhyl/folio/renderer"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	date string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the holdings of a recorded snapshot" }
func (*holdingsCmd) Usage() string {
	return `folio holdings [-d <date>]

  Displays the positions recorded in the history file: shares, prices,
  market value, unrealized P&L and dividends, in both the trade and the
  reporting currency. Defaults to the latest snapshot; reads the files
  only, run 'folio refresh' first for fresh figures.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "snapshot date to display, latest when omitted")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if c.date != "" {
		on, err := date.Parse(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		var day []folio.Row
		for _, r := range rows {
			if r.Date == on {
				day = append(day, r)
			}
		}
		rows = day
	} else {
		rows = folio.LatestRows(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No snapshot recorded for that date, run 'folio refresh' first.")
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.Holdings(rows, cfg.BaseCurrency))
	return subcommands.ExitSuccess
}

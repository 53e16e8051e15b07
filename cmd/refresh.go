package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/bridge"
	"github.com/nkhyl/folio/date"
	"github.com/nkhyl/folio/yahoo"
)

// refreshCmd holds the flags for the 'refresh' subcommand.
type refreshCmd struct {
	date string
}

func (*refreshCmd) Name() string { return "refresh" }
func (*refreshCmd) Synopsis() string {
	return "import the trade journal and refresh the history files with live market data"
}
func (*refreshCmd) Usage() string {
	return `folio refresh [-d <date>]

  Imports the trade journal from the SiYuan attribute view, fetches current
  prices, metadata and news for the open positions, and upserts the snapshot
  into the history files. Re-running for the same date replaces that date's
  rows.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "snapshot date for the history rows (YYYY-MM-DD)")
}

func (c *refreshCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	journal, err := loadJournal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	src := yahoo.New(newLogger(cfg))
	result, err := folio.Refresh(on, journal, src, folio.RefreshConfig{
		BaseCurrency: cfg.BaseCurrency,
		HistoryPath:  cfg.HistoryPath(),
		NewsPath:     cfg.NewsPath(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing: %v\n", err)
		return subcommands.ExitFailure
	}
	printWarnings(result.Warnings)

	sum := bridge.Summarize(result.Rows, cfg.BaseCurrency)
	fmt.Printf("Refreshed %d positions on %s\n", sum.PositionCount, result.Date)
	fmt.Printf("  total value:     %s\n", sum.TotalValue)
	fmt.Printf("  unrealized P&L:  %s\n", sum.UnrealizedPL)
	fmt.Printf("  dividends:       %s\n", sum.TotalDividends)
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/bridge"
	"github.com/nkhyl/folio/date"
	"github.com/nkhyl/folio/renderer"
	"github.com/nkhyl/folio/yahoo"
)

// newsCmd holds the flags for the 'news' subcommand.
type newsCmd struct {
	fetch bool
}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "show recent headlines per instrument" }
func (*newsCmd) Usage() string {
	return `folio news [-f] [ticker...]

  Shows the stored headlines from the latest refresh, optionally filtered
  to the given tickers. With -f the headlines are fetched live instead of
  read from the news history file.
`
}

func (c *newsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.fetch, "f", false, "fetch live headlines instead of reading the news history")
}

func (c *newsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var rows []folio.NewsRow
	if c.fetch {
		rows, err = c.fetchNews(cfg, f.Args())
	} else {
		rows, err = c.storedNews(cfg, f.Args())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No news recorded yet, run 'folio refresh' or 'folio news -f'.")
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.News(rows))
	return subcommands.ExitSuccess
}

// storedNews reads the latest refresh's headlines from the news history.
func (c *newsCmd) storedNews(cfg bridge.Config, tickers []string) ([]folio.NewsRow, error) {
	rows, err := folio.LoadNewsHistory(cfg.NewsPath())
	if err != nil {
		return nil, fmt.Errorf("could not load news history: %w", err)
	}
	return filterNews(folio.LatestNewsRows(rows), tickers), nil
}

// fetchNews hits the news feeds directly. Without tickers it covers every
// open position of the journal.
func (c *newsCmd) fetchNews(cfg bridge.Config, tickers []string) ([]folio.NewsRow, error) {
	positions := map[string]folio.Position{}
	if len(tickers) == 0 {
		journal, err := loadJournal(cfg)
		if err != nil {
			return nil, err
		}
		all, warnings := folio.BuildPositions(journal)
		printWarnings(warnings)
		for t, pos := range all {
			if pos.IsOpen() {
				positions[t] = pos
				tickers = append(tickers, t)
			}
		}
	}

	src := yahoo.New(newLogger(cfg))
	var rows []folio.NewsRow
	for _, ticker := range tickers {
		row := folio.NewsRow{Ticker: ticker, Thesis: positions[ticker].Thesis, Date: date.Today()}
		items, err := src.News(ticker)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: news fetch failed for %s: %v\n", ticker, err)
			continue
		}
		row.Items = items
		rows = append(rows, row)
	}
	return rows, nil
}

func filterNews(rows []folio.NewsRow, tickers []string) []folio.NewsRow {
	if len(tickers) == 0 {
		return rows
	}
	var filtered []folio.NewsRow
	for _, r := range rows {
		for _, t := range tickers {
			if strings.EqualFold(r.Ticker, t) {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered
}

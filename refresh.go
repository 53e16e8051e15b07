package folio

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nkhyl/folio/date"
	"golang.org/x/sync/errgroup"
)

// RefreshConfig tells a refresh run where the history files go and how to
// report.
type RefreshConfig struct {
	BaseCurrency string // reporting currency, e.g. "CAD"
	HistoryPath  string // unified history file
	NewsPath     string // news history file
	Workers      int    // parallel market fetches, 4 when zero
}

func (c RefreshConfig) workers() int {
	if c.Workers <= 0 {
		return 4
	}
	return c.Workers
}

// RefreshResult is what one refresh run produced and persisted.
type RefreshResult struct {
	Date     date.Date
	Rows     []Row
	News     []NewsRow
	Warnings []Warning
}

// Refresh runs the pipeline for one snapshot date: fold the journal into
// positions, fetch market data and news for the open ones, value and explode
// them, and upsert both history files. Per-instrument trouble degrades to a
// warning; only I/O on the history files is fatal.
func Refresh(on date.Date, journal *Journal, src MarketSource, cfg RefreshConfig) (*RefreshResult, error) {
	positions, warnings := BuildPositions(journal)

	var open []string
	for t, pos := range positions {
		if pos.IsOpen() {
			open = append(open, t)
		}
	}
	sort.Strings(open)

	market := NewMarket(cfg.BaseCurrency)
	warnings = append(warnings, fetchMarket(market, open, positions, src, cfg.workers())...)

	rows, snapWarnings := Snapshot(on, positions, market)
	warnings = append(warnings, snapWarnings...)

	news, newsWarnings := fetchNews(on, open, positions, src, cfg.workers())
	warnings = append(warnings, newsWarnings...)

	if err := UpsertNewsHistory(cfg.NewsPath, news, on); err != nil {
		return nil, fmt.Errorf("could not save news history: %w", err)
	}
	if err := UpsertHistory(cfg.HistoryPath, rows, on); err != nil {
		return nil, fmt.Errorf("could not save history: %w", err)
	}

	return &RefreshResult{Date: on, Rows: rows, News: news, Warnings: warnings}, nil
}

// fetchMarket fills the market with quotes, profiles, funds data and FX
// rates for the open instruments. A failed quote leaves the instrument out
// of the market, the snapshot omits it; a failed profile degrades to
// "Unknown" metadata, the quote is still worth a row.
func fetchMarket(market *Market, open []string, positions map[string]Position, src MarketSource, workers int) []Warning {
	var (
		mu       sync.Mutex
		warnings []Warning
		g        errgroup.Group
	)
	g.SetLimit(workers)

	for _, ticker := range open {
		g.Go(func() error {
			price, err := src.Quote(ticker)
			if err != nil {
				verr := &ValuationUnavailableError{Ticker: ticker, Cause: err}
				mu.Lock()
				warnings = append(warnings, Warning{Ticker: ticker, Message: verr.Error()})
				mu.Unlock()
				return nil
			}

			profile, err := src.Profile(ticker)
			if err != nil {
				profile = Profile{Ticker: ticker, QuoteType: "Unknown", Sector: "Unknown", Industry: "Unknown"}
				mu.Lock()
				warnings = append(warnings, Warning{Ticker: ticker, Message: fmt.Sprintf("profile fetch failed: %v", err)})
				mu.Unlock()
			}

			info := MarketInfo{Profile: profile, Price: price}
			if profile.IsETF() {
				funds, err := src.FundsData(ticker)
				if err != nil {
					mu.Lock()
					warnings = append(warnings, Warning{Ticker: ticker, Message: fmt.Sprintf("funds data fetch failed: %v", err)})
					mu.Unlock()
				} else {
					info.Funds = &funds
				}
			}

			mu.Lock()
			market.Add(ticker, info)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		warnings = append(warnings, Warning{Message: err.Error()})
	}

	// One rate per distinct trade currency; instruments in a currency the
	// provider cannot rate drop out of the snapshot later.
	currencies := make(map[string]bool)
	for _, t := range open {
		if ccy := positions[t].Currency; ccy != "" && ccy != market.Base() {
			currencies[ccy] = true
		}
	}
	ccys := make([]string, 0, len(currencies))
	for ccy := range currencies {
		ccys = append(ccys, ccy)
	}
	sort.Strings(ccys)
	for _, ccy := range ccys {
		rate, err := src.FXRate(ccy, market.Base())
		if err != nil {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("no %s/%s rate: %v", ccy, market.Base(), err)})
			continue
		}
		market.SetRate(ccy, rate)
	}
	return warnings
}

// fetchNews collects headlines for the open instruments. A failed fetch
// still yields a row, the news file keeps one line per open instrument so
// the widget can show the thesis even without headlines.
func fetchNews(on date.Date, open []string, positions map[string]Position, src MarketSource, workers int) ([]NewsRow, []Warning) {
	var (
		mu       sync.Mutex
		warnings []Warning
		g        errgroup.Group
	)
	g.SetLimit(workers)

	rows := make([]NewsRow, len(open))
	for i, ticker := range open {
		g.Go(func() error {
			row := NewsRow{Ticker: ticker, Thesis: positions[ticker].Thesis, Date: on}
			items, err := src.News(ticker)
			if err != nil {
				mu.Lock()
				warnings = append(warnings, Warning{Ticker: ticker, Message: fmt.Sprintf("news fetch failed: %v", err)})
				mu.Unlock()
			} else {
				row.Items = items
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		warnings = append(warnings, Warning{Message: err.Error()})
	}
	return rows, warnings
}

// Package yahoo answers market data questions from Yahoo Finance: current
// quotes, instrument profiles, fund compositions, FX rates and recent news
// headlines. It implements the refresh pipeline's MarketSource.
//
// The quoteSummary and RSS fetches go through a disk cache keyed by day,
// so rerunning a refresh within one day replays them offline. Quotes and
// FX rates ride go-yfinance's own HTTP stack instead; the client memoizes
// them per day in memory, and a long-lived process falls back to the most
// recent memoized price when Yahoo reports nothing fresh, as on a market
// holiday.
package yahoo

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/date"
)

// Client fetches market data and news for instruments known to Yahoo.
type Client struct {
	api   string // quoteSummary host, swapped out in tests
	http  *http.Client
	log   zerolog.Logger
	today func() date.Date // quote memo day, tests pin this

	mu     sync.Mutex // guards quotes; the refresh fan-out quotes concurrently
	quotes map[string]*date.History[float64]

	quoteFn func(symbol string) (float64, error) // live path, stubbed in tests
}

var _ folio.MarketSource = (*Client)(nil)

// New returns a client whose fetches are cached for the current day.
func New(log zerolog.Logger) *Client {
	c := &Client{
		api:    "https://query2.finance.yahoo.com",
		http:   daily(log),
		log:    log.With().Str("client", "yahoo").Logger(),
		today:  date.Today,
		quotes: make(map[string]*date.History[float64]),
	}
	c.quoteFn = c.liveQuote
	return c
}

// memoQuote returns the price already recorded for the exact day.
func (c *Client) memoQuote(symbol string, day date.Date) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.quotes[symbol]
	if !ok {
		return 0, false
	}
	return h.Get(day)
}

// recordQuote remembers the day's price; re-recording a day overwrites.
func (c *Client) recordQuote(symbol string, day date.Date, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quotes == nil {
		c.quotes = make(map[string]*date.History[float64])
	}
	h, ok := c.quotes[symbol]
	if !ok {
		h = &date.History[float64]{}
		c.quotes[symbol] = h
	}
	h.Append(day, price)
}

// lastQuote returns the most recent price memoized on or before the day.
func (c *Client) lastQuote(symbol string, day date.Date) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.quotes[symbol]
	if !ok {
		return 0, false
	}
	return h.ValueAsOf(day)
}

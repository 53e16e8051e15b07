package yahoo

import (
	"fmt"

	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// Quote returns the current price of a symbol in its trade currency. The
// first quote of a day hits Yahoo and is memoized; repeats within the day
// read the memo. When Yahoo has nothing fresh, the most recent memoized
// price stands in so a holiday does not blank the snapshot.
func (c *Client) Quote(symbol string) (float64, error) {
	day := c.today()
	if price, ok := c.memoQuote(symbol, day); ok {
		return price, nil
	}

	price, err := c.quoteFn(symbol)
	if err != nil {
		if price, ok := c.lastQuote(symbol, day); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Float64("price", price).
				Msg("no fresh quote, using the last recorded price")
			return price, nil
		}
		return 0, err
	}

	c.recordQuote(symbol, day, price)
	return price, nil
}

// liveQuote asks Yahoo for the price. Regular market price when the
// exchange is open, pre or post market around the session, previous close
// as the last resort.
func (c *Client) liveQuote(symbol string) (float64, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return 0, fmt.Errorf("cannot open ticker %s: %w", symbol, err)
	}
	defer t.Close()

	// The quote endpoint is the fast path.
	quote, _ := t.Quote()
	if price, ok := livePrice(quote); ok {
		c.log.Debug().Str("symbol", symbol).Float64("price", price).Msg("quote")
		return price, nil
	}

	// Some instruments only report through the info endpoint.
	info, err := t.Info()
	if err != nil {
		return 0, fmt.Errorf("no price for %s: %w", symbol, err)
	}
	if price, ok := closingPrice(info); ok {
		c.log.Debug().Str("symbol", symbol).Float64("price", price).Msg("quote")
		return price, nil
	}
	return 0, fmt.Errorf("no price for %s", symbol)
}

// FXRate returns the ccy to base conversion rate. Pairs quote under their
// own symbol, CADUSD=X style, and share the quote memo; identical or
// missing currencies rate 1.
func (c *Client) FXRate(ccy, base string) (float64, error) {
	if ccy == "" || base == "" || ccy == base {
		return 1, nil
	}
	return c.Quote(ccy + base + "=X")
}

// livePrice picks the first positive price the quote endpoint reports.
func livePrice(q *models.Quote) (float64, bool) {
	if q == nil {
		return 0, false
	}
	for _, p := range []float64{q.RegularMarketPrice, q.PreMarketPrice, q.PostMarketPrice} {
		if p > 0 {
			return p, true
		}
	}
	return 0, false
}

// closingPrice falls back to the info endpoint's idea of the price.
func closingPrice(i *models.Info) (float64, bool) {
	if i == nil {
		return 0, false
	}
	for _, p := range []float64{i.CurrentPrice, i.RegularMarketPreviousClose} {
		if p > 0 {
			return p, true
		}
	}
	return 0, false
}

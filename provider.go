package folio

import "github.com/nkhyl/folio/date"

// Profile describes an instrument the way the market data provider reports
// it. Fallbacks are the provider's concern: a stock without a sector says
// "Unknown", a fund says "ETF".
type Profile struct {
	Ticker       string
	Currency     string     // quote currency
	QuoteType    string     // "EQUITY", "ETF", ..., "Unknown" when unreported
	Sector       string
	Industry     string
	Country      string     // stocks only, funds stay "Unknown"
	EarningsDate *date.Date // next scheduled earnings, stocks only
}

// IsETF reports whether the instrument is an exchange-traded fund.
func (p Profile) IsETF() bool { return p.QuoteType == "ETF" }

// FundsData is the look-through composition of a fund.
type FundsData struct {
	Sectors map[string]float64 // sector name → weight
	Assets  map[string]float64 // asset class → weight, for risk dominance
}

// NewsItem is one headline kept for the news report.
type NewsItem struct {
	Title string
	Link  string
	Date  date.Date
}

// MarketSource supplies everything a refresh run fetches. The yahoo package
// implements it; tests hand the pipeline canned values instead.
type MarketSource interface {
	// Quote returns the current price in the instrument's trade currency.
	Quote(ticker string) (float64, error)
	// Profile returns the instrument's descriptive metadata.
	Profile(ticker string) (Profile, error)
	// FundsData returns the look-through composition of a fund.
	FundsData(ticker string) (FundsData, error)
	// FXRate returns the ccy→base conversion rate, 1 when they are equal.
	FXRate(ccy, base string) (float64, error)
	// News returns recent headlines, newest first.
	News(ticker string) ([]NewsItem, error)
}

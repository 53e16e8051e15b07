package folio

// MarketInfo is the market's view of one instrument at snapshot time.
type MarketInfo struct {
	Profile Profile
	Price   float64    // current quote in the trade currency
	Funds   *FundsData // nil when the funds-data fetch failed; stocks ignore it
}

// Market holds the data of one snapshot run: a record per instrument and the
// FX table, fetched upfront so the snapshot assembly itself stays offline.
type Market struct {
	base  string // base currency code
	infos map[string]MarketInfo
	fx    map[string]float64
}

// NewMarket returns an empty market reporting in the given base currency.
func NewMarket(base string) *Market {
	return &Market{
		base:  base,
		infos: make(map[string]MarketInfo),
		fx:    make(map[string]float64),
	}
}

// Base returns the reporting currency code.
func (m *Market) Base() string { return m.base }

// Add records the market view of one instrument.
func (m *Market) Add(ticker string, info MarketInfo) { m.infos[ticker] = info }

// SetRate records the ccy→base conversion rate.
func (m *Market) SetRate(ccy string, rate float64) { m.fx[ccy] = rate }

// Has reports whether the market knows the instrument.
func (m *Market) Has(ticker string) bool {
	_, ok := m.infos[ticker]
	return ok
}

// Info returns the market view of an instrument.
func (m *Market) Info(ticker string) (MarketInfo, bool) {
	info, ok := m.infos[ticker]
	return info, ok
}

// Rate returns the conversion rate into the base currency. The base itself,
// and instruments that never named a currency, convert at 1.
func (m *Market) Rate(ccy string) (float64, bool) {
	if ccy == "" || ccy == m.base {
		return 1.0, true
	}
	rate, ok := m.fx[ccy]
	return rate, ok
}

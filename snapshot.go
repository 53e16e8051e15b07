package folio

import (
	"fmt"
	"sort"

	"github.com/nkhyl/folio/date"
)

// Row is one line of the unified history: an open position valued on the
// snapshot date, or one sector slice of it when the instrument is a fund.
// Amounts are plain floats, precision is an engine concern, not a report
// concern.
type Row struct {
	Date          date.Date
	Symbol        string
	Sector        string
	RiskCategory  string
	Currency      string
	Shares        float64
	Price         float64
	BookCost      float64 // weighted-average cost per share, trade currency
	BookCostBase  float64
	Value         float64
	ValueBase     float64
	CostBasis     float64 // total cost of the open cycle
	CostBasisBase float64
	PL            float64
	PLBase        float64
	PLPct         float64
	Dividends     float64
	DividendsBase float64
	CurrentFX     float64
	AvgFX         float64
	FXPnL         float64
	Source        string     // "Stock", "ETF" or "ETF_Lookthrough_<ticker>"
	EarningsDate  *date.Date // stocks only
	Thesis        string
}

// Snapshot values every open position on the given date and explodes funds
// into their sector allocations. Instruments without a usable quote or FX
// rate are omitted with a warning; a missing quote never becomes a zero
// valuation.
func Snapshot(on date.Date, positions map[string]Position, market *Market) ([]Row, []Warning) {
	tickers := make([]string, 0, len(positions))
	for t := range positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var rows []Row
	var warnings []Warning
	for _, t := range tickers {
		pos := positions[t]
		if !pos.IsOpen() {
			continue
		}

		info, ok := market.Info(t)
		if !ok || info.Price <= 0 {
			warnings = append(warnings, Warning{Ticker: t, Message: "no quote, omitted from snapshot"})
			continue
		}
		fx, ok := market.Rate(pos.Currency)
		if !ok {
			warnings = append(warnings, Warning{Ticker: t,
				Message: fmt.Sprintf("no %s/%s rate, omitted from snapshot", pos.Currency, market.Base())})
			continue
		}

		rows = append(rows, Explode(on, pos, Value(pos, info.Price, fx), info)...)
	}
	return rows, warnings
}

package folio

import (
	"errors"
	"fmt"
)

// Position is one instrument's state after folding its journal events and
// attributing dividends: the open lot, the trade currency, and the dividend
// totals of the current holding cycle.
type Position struct {
	Lot
	Currency  string
	Dividends Dividends
}

// Warning is a recoverable anomaly met while building positions. The
// pipeline reports warnings and carries on, they never abort the batch.
type Warning struct {
	Ticker  string
	Message string
}

func (w Warning) String() string {
	if w.Ticker == "" {
		return w.Message
	}
	return w.Ticker + ": " + w.Message
}

// BuildPositions folds every instrument of the journal and attributes its
// dividends. An instrument with invalid events is skipped with a warning;
// the others proceed. Instruments whose fold ended flat stay in the result
// with their closed intervals, reports filter on IsOpen.
func BuildPositions(j *Journal) (map[string]Position, []Warning) {
	positions := make(map[string]Position)
	var warnings []Warning

	groups := j.ByTicker()
	for _, ticker := range j.Tickers() {
		events := groups[ticker]
		if len(events) == 0 {
			// Every event of this instrument is excluded.
			continue
		}
		if err := validateEvents(events); err != nil {
			warnings = append(warnings, Warning{Ticker: ticker, Message: fmt.Sprintf("instrument skipped: %v", err)})
			continue
		}

		lot := BuildLot(ticker, events)
		for _, msg := range lot.Warnings {
			warnings = append(warnings, Warning{Ticker: ticker, Message: msg})
		}

		positions[ticker] = Position{
			Lot:       lot,
			Currency:  lastCurrency(events),
			Dividends: AttributeDividends(lot, events),
		}
	}
	return positions, warnings
}

// validateEvents reports every invalid event of the group at once.
func validateEvents(events []TradeEvent) error {
	var errs []error
	for _, e := range events {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// lastCurrency returns the latest trade currency the group names, "" when no
// event carries one.
func lastCurrency(events []TradeEvent) string {
	var ccy string
	for _, e := range events {
		if c := e.Currency(); c != "" {
			ccy = c
		}
	}
	return ccy
}

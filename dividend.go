package folio

// Dividends totals the dividend payments attributed to the current holding
// cycle, in the trade currency and in the base currency.
type Dividends struct {
	Raw  Money // Σ quantity×price
	Base Money // Σ quantity×price×fx, each event at its own rate
}

// AttributeDividends scopes an instrument's dividend events to the lot's
// open cycle: payments dated before the cycle opened belong to earlier,
// closed cycles and are not tracked. A closed lot collects nothing.
func AttributeDividends(lot Lot, events []TradeEvent) Dividends {
	var d Dividends
	if !lot.IsOpen() {
		return d
	}
	for _, e := range events {
		if e.Excluded || e.Type != Dividend || e.Ticker != lot.Ticker {
			continue
		}
		if e.Date.Before(lot.OpenDate) {
			continue
		}
		d.Raw = d.Raw.Add(M(e.GrossRaw().value, ""))
		d.Base = d.Base.Add(e.GrossBase())
	}
	return d
}

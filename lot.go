package folio

import (
	"fmt"

	"github.com/nkhyl/folio/date"
)

// sharesEpsilon bounds the dust a decimal division can leave on a position.
// Selling a third of a share three times leaves 1e-16 shares behind, and the
// holder means zero.
var sharesEpsilon = Q(1e-9)

// Lot is the open-lot state of one instrument after folding its buys and
// sells: weighted-average cost basis in trade and base currency, the date and
// thesis of the current holding cycle, and the record of completed cycles.
//
// Cost buckets are currency-agnostic sums; the instrument's trade currency
// travels on the Position.
type Lot struct {
	Ticker   string
	Shares   Quantity
	CostRaw  Money // Σ quantity×price of the open cycle, minus sold averages
	CostBase Money // same, with each event converted at its own FX rate
	OpenDate date.Date
	Thesis   string
	Closed   []date.Range // completed holding intervals, chronological
	Warnings []string     // recoverable anomalies, e.g. clamped over-sells
}

// IsOpen reports whether the lot currently holds shares beyond dust.
func (l *Lot) IsOpen() bool { return l.Shares.GreaterThan(sharesEpsilon) }

// AvgCostRaw returns the weighted-average cost per share in the trade
// currency, or zero when the lot is flat.
func (l *Lot) AvgCostRaw() Money {
	if !l.IsOpen() {
		return Money{}
	}
	return l.CostRaw.Div(l.Shares)
}

// AvgCostBase is AvgCostRaw converted at the cycle's own FX rates.
func (l *Lot) AvgCostBase() Money {
	if !l.IsOpen() {
		return Money{}
	}
	return l.CostBase.Div(l.Shares)
}

// AvgFX returns the weighted-average FX rate of the open cost basis,
// CostBase/CostRaw. Closed or costless lots report 1, so FX P&L on them is
// zero by construction.
func (l *Lot) AvgFX() float64 {
	if !l.IsOpen() || !l.CostRaw.IsPositive() {
		return 1.0
	}
	return l.CostBase.DivMoney(l.CostRaw).Float64()
}

// BuildLot folds one instrument's events in order. Dividends and excluded
// events do not move the lot; the journal hands them to AttributeDividends.
func BuildLot(ticker string, events []TradeEvent) Lot {
	l := Lot{Ticker: ticker}
	for _, e := range events {
		if e.Excluded || e.Ticker != ticker {
			continue
		}
		switch e.Type {
		case Buy:
			l.buy(e)
		case Sell:
			l.sell(e)
		}
	}
	return l
}

func (l *Lot) buy(e TradeEvent) {
	if !l.IsOpen() {
		// First shares of a new cycle.
		l.OpenDate = e.Date
	}
	if e.Thesis != "" {
		l.Thesis = e.Thesis
	}
	l.CostRaw = l.CostRaw.Add(M(e.GrossRaw().value, ""))
	l.CostBase = l.CostBase.Add(e.GrossBase())
	l.Shares = l.Shares.Add(e.Quantity)
}

func (l *Lot) sell(e TradeEvent) {
	// A lot is reset to exactly zero on close, so between events the shares
	// are either exactly zero or a real holding, never dust.
	if !l.Shares.IsPositive() {
		l.Warnings = append(l.Warnings,
			fmt.Sprintf("sell of %s on %s with no open shares, skipped", e.Quantity, e.Date))
		return
	}

	sold := e.Quantity.Min(l.Shares)
	if e.Quantity.GreaterThan(l.Shares) {
		l.Warnings = append(l.Warnings,
			fmt.Sprintf("sell of %s on %s exceeds %s held, clamped", e.Quantity, e.Date, l.Shares))
	}

	// Average costs must be taken before any bucket mutates.
	avgRaw := l.CostRaw.Div(l.Shares)
	avgBase := l.CostBase.Div(l.Shares)

	l.CostRaw = l.CostRaw.Sub(avgRaw.Mul(sold))
	l.CostBase = l.CostBase.Sub(avgBase.Mul(sold))
	l.Shares = l.Shares.Sub(sold)

	if !l.IsOpen() {
		// The cycle is complete: record the interval and reset for a fresh one.
		l.Closed = append(l.Closed, date.NewRange(l.OpenDate, e.Date))
		l.Shares = Quantity{}
		l.CostRaw = Money{}
		l.CostBase = Money{}
		l.OpenDate = date.Date{}
		l.Thesis = ""
	}
}

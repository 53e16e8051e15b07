package folio

import "fmt"

// ValuationUnavailableError reports an instrument whose quote or FX rate
// could not be obtained. The instrument is omitted from the snapshot and the
// batch continues; a missing quote never turns into a zero value.
type ValuationUnavailableError struct {
	Ticker string
	Cause  error
}

// Error reports the cause alone; callers add instrument context when they
// wrap.
func (e *ValuationUnavailableError) Error() string {
	return fmt.Sprintf("valuation unavailable: %v", e.Cause)
}

func (e *ValuationUnavailableError) Unwrap() error { return e.Cause }

// Valuation is the market view of one open position: value and unrealized
// P&L in both currencies, and the share of the base-currency P&L owed to
// exchange-rate movement rather than price movement.
type Valuation struct {
	Price     float64 // current quote, trade currency
	CurrentFX float64 // trade→base rate now, 1 when currencies match
	ValueRaw  float64 // Shares × Price
	ValueBase float64 // ValueRaw × CurrentFX
	PLRaw     float64
	PLBase    float64
	PLPct     float64 // of the raw cost basis, 0 when there is none
	FXPnL     float64 // Shares × AvgCostRaw × (CurrentFX − AvgFX)
}

// Value composes a position with its current quote and FX rate. The caller
// supplies both; positions without market data never reach here.
func Value(p Position, price, fx float64) Valuation {
	shares := p.Shares.Float64()
	costRaw := p.CostRaw.Float64()
	costBase := p.CostBase.Float64()

	v := Valuation{Price: price, CurrentFX: fx}
	v.ValueRaw = shares * price
	v.ValueBase = v.ValueRaw * fx
	v.PLRaw = v.ValueRaw - costRaw
	v.PLBase = v.ValueBase - costBase
	if costRaw > 0 {
		v.PLPct = v.PLRaw / costRaw * 100
	}
	if shares > 0 {
		v.FXPnL = shares * (costRaw / shares) * (fx - p.AvgFX())
	}
	return v
}

package folio

import (
	"sort"

	"github.com/nkhyl/folio/date"
)

// Explode turns one valued position into its report rows. Stocks stay a
// single row; funds spread across their sector weightings so the report
// shows the exposure behind the ticker rather than one opaque line.
func Explode(on date.Date, pos Position, v Valuation, info MarketInfo) []Row {
	row := Row{
		Date:          on,
		Symbol:        pos.Ticker,
		Currency:      pos.Currency,
		Shares:        pos.Shares.Float64(),
		Price:         v.Price,
		BookCost:      pos.AvgCostRaw().Float64(),
		BookCostBase:  pos.AvgCostBase().Float64(),
		Value:         v.ValueRaw,
		ValueBase:     v.ValueBase,
		CostBasis:     pos.CostRaw.Float64(),
		CostBasisBase: pos.CostBase.Float64(),
		PL:            v.PLRaw,
		PLBase:        v.PLBase,
		PLPct:         v.PLPct,
		Dividends:     pos.Dividends.Raw.Float64(),
		DividendsBase: pos.Dividends.Base.Float64(),
		CurrentFX:     v.CurrentFX,
		AvgFX:         pos.AvgFX(),
		FXPnL:         v.FXPnL,
		Thesis:        pos.Thesis,
	}

	p := info.Profile
	if !p.IsETF() {
		row.Sector = p.Sector
		row.RiskCategory = StockRisk(p.QuoteType)
		row.Source = "Stock"
		row.EarningsDate = p.EarningsDate
		return []Row{row}
	}

	// Funds never carry an earnings date.
	if info.Funds == nil {
		row.Sector = "ETF - Unknown"
		row.RiskCategory = "Equity"
		row.Source = "ETF"
		return []Row{row}
	}

	risk := ETFRisk(info.Funds.Assets)
	if len(info.Funds.Sectors) == 0 {
		row.Sector = "ETF - Diversified"
		row.RiskCategory = risk
		row.Source = "ETF"
		return []Row{row}
	}

	var total float64
	for _, w := range info.Funds.Sectors {
		total += w
	}
	sectors := make([]string, 0, len(info.Funds.Sectors))
	for sector := range info.Funds.Sectors {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	rows := make([]Row, 0, len(sectors))
	for _, sector := range sectors {
		var alloc float64
		if total > 0 {
			alloc = info.Funds.Sectors[sector] / total
		}

		r := row
		r.Sector = sector
		r.RiskCategory = risk
		r.Source = "ETF_Lookthrough_" + pos.Ticker
		// Shares, price and book cost stay whole, they describe the
		// instrument, not the slice.
		r.Value *= alloc
		r.ValueBase *= alloc
		r.CostBasis *= alloc
		r.CostBasisBase *= alloc
		r.PL *= alloc
		r.PLBase *= alloc
		r.Dividends *= alloc
		r.DividendsBase *= alloc
		r.FXPnL *= alloc
		if r.CostBasis > 0 {
			r.PLPct = r.PL / r.CostBasis * 100
		} else {
			r.PLPct = 0
		}
		rows = append(rows, r)
	}
	return rows
}

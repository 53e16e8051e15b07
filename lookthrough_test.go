package folio

import (
	"testing"
	"time"

	"github.com/nkhyl/folio/date"
)

func stockInfo(quoteType, sector string) MarketInfo {
	return MarketInfo{Profile: Profile{QuoteType: quoteType, Sector: sector}}
}

func TestExplode_StockIsOneRow(t *testing.T) {
	jan10 := date.New(2025, time.January, 10)
	mar1 := date.New(2025, time.March, 1)
	earnings := date.New(2025, time.April, 24)

	positions, _ := BuildPositions(NewJournal(buyEvent("AAPL", jan10, 10, 100, 1.35)))
	pos := positions["AAPL"]
	v := Value(pos, 120, 1.40)

	info := stockInfo("EQUITY", "Technology")
	info.Profile.EarningsDate = &earnings

	rows := Explode(mar1, pos, v, info)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.Sector != "Technology" || r.RiskCategory != "Equity" || r.Source != "Stock" {
		t.Errorf("row = %q/%q/%q, want Technology/Equity/Stock", r.Sector, r.RiskCategory, r.Source)
	}
	if r.EarningsDate == nil || *r.EarningsDate != earnings {
		t.Errorf("EarningsDate = %v, want %s", r.EarningsDate, earnings)
	}
	if got, want := r.BookCost, 100.0; !approx(got, want) {
		t.Errorf("BookCost = %v, want %v per share", got, want)
	}
	if got, want := r.CostBasis, 1000.0; !approx(got, want) {
		t.Errorf("CostBasis = %v, want the whole %v", got, want)
	}
	if got, want := r.AvgFX, 1.35; !approx(got, want) {
		t.Errorf("AvgFX = %v, want %v", got, want)
	}
}

func TestExplode_FundSpreadsAcrossSectors(t *testing.T) {
	jan10 := date.New(2025, time.January, 10)
	mar1 := date.New(2025, time.March, 1)

	positions, _ := BuildPositions(NewJournal(
		buyEvent("VT", jan10, 10, 100, 1.35),
		divEvent("VT", date.New(2025, time.February, 1), 10, 2, 1.35),
	))
	pos := positions["VT"]
	v := Value(pos, 120, 1.40)

	info := MarketInfo{
		Profile: Profile{QuoteType: "ETF"},
		Funds: &FundsData{
			Sectors: map[string]float64{"Technology": 0.60, "Healthcare": 0.25, "Energy": 0.15},
			Assets:  map[string]float64{"stockPosition": 0.98, "cashPosition": 0.02},
		},
	}

	rows := Explode(mar1, pos, v, info)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	// Sector rows come out alphabetically.
	wantSectors := []string{"Energy", "Healthcare", "Technology"}
	var sumValue, sumCost, sumPL, sumDiv, sumFX float64
	for i, r := range rows {
		if r.Sector != wantSectors[i] {
			t.Errorf("rows[%d].Sector = %q, want %q", i, r.Sector, wantSectors[i])
		}
		if r.Source != "ETF_Lookthrough_VT" {
			t.Errorf("rows[%d].Source = %q, want %q", i, r.Source, "ETF_Lookthrough_VT")
		}
		if r.RiskCategory != "Equity" {
			t.Errorf("rows[%d].RiskCategory = %q, want %q", i, r.RiskCategory, "Equity")
		}
		if r.EarningsDate != nil {
			t.Errorf("rows[%d].EarningsDate = %v, want nil on a fund", i, r.EarningsDate)
		}
		// Whole-instrument columns repeat on every slice.
		if !approx(r.Shares, 10) || !approx(r.Price, 120) || !approx(r.BookCost, 100) {
			t.Errorf("rows[%d] shares/price/book = %v/%v/%v, want 10/120/100", i, r.Shares, r.Price, r.BookCost)
		}
		sumValue += r.Value
		sumCost += r.CostBasis
		sumPL += r.PL
		sumDiv += r.Dividends
		sumFX += r.FXPnL
	}

	// The slices conserve the whole.
	if !approx(sumValue, v.ValueRaw) {
		t.Errorf("Σ Value = %v, want %v", sumValue, v.ValueRaw)
	}
	if !approx(sumCost, 1000) {
		t.Errorf("Σ CostBasis = %v, want 1000", sumCost)
	}
	if !approx(sumPL, v.PLRaw) {
		t.Errorf("Σ PL = %v, want %v", sumPL, v.PLRaw)
	}
	if !approx(sumDiv, 20) {
		t.Errorf("Σ Dividends = %v, want 20", sumDiv)
	}
	if !approx(sumFX, v.FXPnL) {
		t.Errorf("Σ FXPnL = %v, want %v", sumFX, v.FXPnL)
	}

	// Each slice keeps the instrument's return percentage.
	for i, r := range rows {
		if !approx(r.PLPct, v.PLPct) {
			t.Errorf("rows[%d].PLPct = %v, want %v", i, r.PLPct, v.PLPct)
		}
	}
}

func TestExplode_FundWithoutHoldingsDataIsUnknown(t *testing.T) {
	jan10 := date.New(2025, time.January, 10)
	mar1 := date.New(2025, time.March, 1)

	positions, _ := BuildPositions(NewJournal(buyEvent("XEQT.TO", jan10, 10, 30, 1)))
	pos := positions["XEQT.TO"]

	rows := Explode(mar1, pos, Value(pos, 32, 1), MarketInfo{Profile: Profile{QuoteType: "ETF"}})
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.Sector != "ETF - Unknown" || r.RiskCategory != "Equity" || r.Source != "ETF" {
		t.Errorf("row = %q/%q/%q, want ETF - Unknown/Equity/ETF", r.Sector, r.RiskCategory, r.Source)
	}
	if got, want := r.Value, 320.0; !approx(got, want) {
		t.Errorf("Value = %v, want the unsplit %v", got, want)
	}
}

func TestExplode_FundWithoutSectorWeightsIsDiversified(t *testing.T) {
	jan10 := date.New(2025, time.January, 10)
	mar1 := date.New(2025, time.March, 1)

	positions, _ := BuildPositions(NewJournal(buyEvent("AGG", jan10, 10, 30, 1)))
	pos := positions["AGG"]

	info := MarketInfo{
		Profile: Profile{QuoteType: "ETF"},
		Funds:   &FundsData{Assets: map[string]float64{"bondPosition": 0.97, "cashPosition": 0.03}},
	}
	rows := Explode(mar1, pos, Value(pos, 32, 1), info)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.Sector != "ETF - Diversified" || r.RiskCategory != "Fixed Income" || r.Source != "ETF" {
		t.Errorf("row = %q/%q/%q, want ETF - Diversified/Fixed Income/ETF", r.Sector, r.RiskCategory, r.Source)
	}
}

func TestExplode_ZeroWeightTotalAllocatesNothing(t *testing.T) {
	jan10 := date.New(2025, time.January, 10)
	mar1 := date.New(2025, time.March, 1)

	positions, _ := BuildPositions(NewJournal(buyEvent("ZW", jan10, 10, 30, 1)))
	pos := positions["ZW"]

	info := MarketInfo{
		Profile: Profile{QuoteType: "ETF"},
		Funds:   &FundsData{Sectors: map[string]float64{"Technology": 0}},
	}
	rows := Explode(mar1, pos, Value(pos, 32, 1), info)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if got, want := rows[0].Value, 0.0; got != want {
		t.Errorf("Value = %v, want %v when the weights sum to zero", got, want)
	}
	if got, want := rows[0].PLPct, 0.0; got != want {
		t.Errorf("PLPct = %v, want %v", got, want)
	}
}

package renderer

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	folio "github.com/nkhyl/folio"
	"github.com/nkhyl/folio/date"
)

var (
	day1 = date.New(2025, time.August, 19)
	day2 = date.New(2025, time.August, 20)
)

// fixtureRows is one snapshot date: a US stock, a Canadian stock and a fund
// exploded across two sectors.
func fixtureRows(on date.Date) []folio.Row {
	earnings := date.New(2025, time.October, 30)
	return []folio.Row{
		{
			Date: on, Symbol: "AAPL", Sector: "Technology", RiskCategory: "Equity",
			Currency: "USD", Shares: 10, Price: 100,
			Value: 1000, ValueBase: 1350, CostBasis: 900, CostBasisBase: 1200,
			PL: 100, PLBase: 150, PLPct: 11.1,
			Dividends: 10, DividendsBase: 13.5,
			CurrentFX: 1.35, AvgFX: 1.33, FXPnL: 18,
			Source: "Stock", EarningsDate: &earnings,
		},
		{
			Date: on, Symbol: "RY.TO", Sector: "Financial Services", RiskCategory: "Equity",
			Currency: "CAD", Shares: 12, Price: 150,
			Value: 1800, ValueBase: 1800, CostBasis: 1500, CostBasisBase: 1500,
			PL: 300, PLBase: 300, PLPct: 20,
			CurrentFX: 1, AvgFX: 1,
			Source: "Stock",
		},
		{
			Date: on, Symbol: "VT", Sector: "Technology", RiskCategory: "Equity",
			Currency: "USD", Shares: 20, Price: 50,
			Value: 600, ValueBase: 810, CostBasis: 540, CostBasisBase: 700,
			PL: 60, PLBase: 110, PLPct: 11.1,
			Dividends: 6, DividendsBase: 8.1,
			CurrentFX: 1.35, AvgFX: 1.3, FXPnL: 24,
			Source: "ETF_Lookthrough_VT",
		},
		{
			Date: on, Symbol: "VT", Sector: "Healthcare", RiskCategory: "Equity",
			Currency: "USD", Shares: 20, Price: 50,
			Value: 400, ValueBase: 540, CostBasis: 360, CostBasisBase: 470,
			PL: 40, PLBase: 70, PLPct: 11.1,
			Dividends: 4, DividendsBase: 5.4,
			CurrentFX: 1.35, AvgFX: 1.3, FXPnL: 16,
			Source: "ETF_Lookthrough_VT",
		},
	}
}

func TestBuildChartData_OneDatumPerDateOldestFirst(t *testing.T) {
	rows := append(fixtureRows(day2), fixtureRows(day1)...)

	data := buildChartData(rows, nil)

	if len(data) != 2 {
		t.Fatalf("len(data) = %d, want 2", len(data))
	}
	if data[0].Date != "2025-08-19" || data[1].Date != "2025-08-20" {
		t.Errorf("dates = %s, %s, want 2025-08-19, 2025-08-20", data[0].Date, data[1].Date)
	}
}

func TestBuildDatum_SectorTotalsSortedByValueDescending(t *testing.T) {
	d := buildDatum(day2, fixtureRows(day2), nil)

	wantSectors := []string{"Technology", "Financial Services", "Healthcare"}
	wantValues := []float64{2160, 1800, 540}
	if !reflect.DeepEqual(d.SectorsBase, wantSectors) {
		t.Errorf("SectorsBase = %v, want %v", d.SectorsBase, wantSectors)
	}
	if !reflect.DeepEqual(d.ValuesBase, wantValues) {
		t.Errorf("ValuesBase = %v, want %v", d.ValuesBase, wantValues)
	}

	// The original-currency view sorts by its own values.
	wantOrig := []string{"Financial Services", "Technology", "Healthcare"}
	if !reflect.DeepEqual(d.SectorsOrig, wantOrig) {
		t.Errorf("SectorsOrig = %v, want %v", d.SectorsOrig, wantOrig)
	}
}

func TestBuildDatum_ValueIsConserved(t *testing.T) {
	rows := fixtureRows(day2)
	d := buildDatum(day2, rows, nil)

	var want float64
	for _, r := range rows {
		want += r.ValueBase
	}

	var sectors, risks, currencies, positions float64
	for _, v := range d.ValuesBase {
		sectors += v
	}
	for _, v := range d.RiskValuesBase {
		risks += v
	}
	for _, v := range d.CurrencyValuesBase {
		currencies += v
	}
	for _, p := range d.Positions {
		positions += p.ValueBase
	}

	for name, got := range map[string]float64{
		"sectors": sectors, "risks": risks, "currencies": currencies, "positions": positions,
	} {
		if got != want {
			t.Errorf("%s total = %v, want %v", name, got, want)
		}
	}
}

func TestSumBy_TiesBreakAlphabetically(t *testing.T) {
	rows := []folio.Row{
		{Symbol: "B", Sector: "Beta", ValueBase: 100},
		{Symbol: "A", Sector: "Alpha", ValueBase: 100},
		{Symbol: "C", Sector: "Gamma", ValueBase: 200},
	}

	names, values := sumBy(rows, func(r folio.Row) string { return r.Sector }, func(r folio.Row) float64 { return r.ValueBase })

	wantNames := []string{"Gamma", "Alpha", "Beta"}
	wantValues := []float64{200, 100, 100}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("names = %v, want %v", names, wantNames)
	}
	if !reflect.DeepEqual(values, wantValues) {
		t.Errorf("values = %v, want %v", values, wantValues)
	}
}

func TestCurrencyTotals_Alphabetical(t *testing.T) {
	currencies, orig, base := currencyTotals(fixtureRows(day2))

	if want := []string{"CAD", "USD"}; !reflect.DeepEqual(currencies, want) {
		t.Fatalf("currencies = %v, want %v", currencies, want)
	}
	if want := []float64{1800, 2000}; !reflect.DeepEqual(orig, want) {
		t.Errorf("orig = %v, want %v", orig, want)
	}
	if want := []float64{1800, 2700}; !reflect.DeepEqual(base, want) {
		t.Errorf("base = %v, want %v", base, want)
	}
}

func TestAggregatePositions_FoldsLookthroughRows(t *testing.T) {
	positions := aggregatePositions(fixtureRows(day2))

	if len(positions) != 3 {
		t.Fatalf("len(positions) = %d, want 3", len(positions))
	}
	// Sorted by base value descending: RY.TO 1800, AAPL 1350, VT 1350...
	// AAPL and VT tie at 1350 and come back alphabetically.
	order := []string{positions[0].Symbol, positions[1].Symbol, positions[2].Symbol}
	if want := []string{"RY.TO", "AAPL", "VT"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	var vt chartPosition
	for _, p := range positions {
		if p.Symbol == "VT" {
			vt = p
		}
	}
	if vt.Value != 1000 || vt.ValueBase != 1350 {
		t.Errorf("VT value = %v/%v, want 1000/1350", vt.Value, vt.ValueBase)
	}
	if vt.UnrealizedPL != 100 || vt.UnrealizedPLBase != 180 {
		t.Errorf("VT P&L = %v/%v, want 100/180", vt.UnrealizedPL, vt.UnrealizedPLBase)
	}
	if vt.FXPnL != 40 {
		t.Errorf("VT FXPnL = %v, want 40", vt.FXPnL)
	}
	// Shares, price and book cost describe the instrument, not the slices.
	if vt.Shares != 20 || vt.Price != 50 {
		t.Errorf("VT shares/price = %v/%v, want 20/50", vt.Shares, vt.Price)
	}
	if vt.EarningsDate != nil {
		t.Errorf("VT earnings date = %v, want nil", *vt.EarningsDate)
	}
}

func TestAggregatePositions_KeepsEarningsDate(t *testing.T) {
	positions := aggregatePositions(fixtureRows(day2))

	for _, p := range positions {
		if p.Symbol != "AAPL" {
			continue
		}
		if p.EarningsDate == nil || *p.EarningsDate != "2025-10-30" {
			t.Errorf("AAPL earnings date = %v, want 2025-10-30", p.EarningsDate)
		}
		return
	}
	t.Fatal("AAPL not found")
}

func TestBreakdowns_SharedOrderAndPercentages(t *testing.T) {
	base, orig := breakdowns(fixtureRows(day2), func(r folio.Row) string { return r.Sector })

	tech := base["Technology"]
	if len(tech) != 2 {
		t.Fatalf("len(base[Technology]) = %d, want 2", len(tech))
	}
	if tech[0].Symbol != "AAPL" || tech[1].Symbol != "VT" {
		t.Errorf("base order = %s, %s, want AAPL, VT", tech[0].Symbol, tech[1].Symbol)
	}
	if tech[0].Value != 1350 || tech[1].Value != 810 {
		t.Errorf("base values = %v, %v, want 1350, 810", tech[0].Value, tech[1].Value)
	}
	if got, want := tech[0].Contribution, 1350.0/2160*100; got != want {
		t.Errorf("AAPL contribution = %v, want %v", got, want)
	}
	if tech[0].Source != "Stock" || tech[1].Source != "ETF" {
		t.Errorf("sources = %s, %s, want Stock, ETF", tech[0].Source, tech[1].Source)
	}

	// Both currency views keep the base ordering so toggling never
	// reshuffles the drill-down list.
	techOrig := orig["Technology"]
	if techOrig[0].Symbol != "AAPL" || techOrig[1].Symbol != "VT" {
		t.Errorf("orig order = %s, %s, want AAPL, VT", techOrig[0].Symbol, techOrig[1].Symbol)
	}
	if techOrig[0].Value != 1000 || techOrig[1].Value != 600 {
		t.Errorf("orig values = %v, %v, want 1000, 600", techOrig[0].Value, techOrig[1].Value)
	}
}

func TestBreakdowns_ZeroGroupHasZeroContributions(t *testing.T) {
	rows := []folio.Row{
		{Symbol: "ZAG.TO", Sector: "ETF - Diversified", ValueBase: 0, Source: "ETF"},
		{Symbol: "XBB.TO", Sector: "ETF - Diversified", ValueBase: 0, Source: "ETF"},
	}

	base, _ := breakdowns(rows, func(r folio.Row) string { return r.Sector })

	for _, c := range base["ETF - Diversified"] {
		if c.Contribution != 0 {
			t.Errorf("%s contribution = %v, want 0", c.Symbol, c.Contribution)
		}
	}
}

func TestAttachNews_JoinsByTicker(t *testing.T) {
	positions := aggregatePositions(fixtureRows(day2))
	news := []folio.NewsRow{
		{
			Ticker: "AAPL", Thesis: "Ecosystem moat", Date: day2,
			Items: []folio.NewsItem{{Title: "Apple ships a thing", Link: "https://example.com/a", Date: day2}},
		},
		{Ticker: "VT", Thesis: "World in one line", Date: day2},
	}

	attachNews(positions, news)

	for _, p := range positions {
		switch p.Symbol {
		case "AAPL":
			if !p.HasNews || p.NewsLink != "https://example.com/a" {
				t.Errorf("AAPL news = %v %q, want true https://example.com/a", p.HasNews, p.NewsLink)
			}
			if p.Thesis != "Ecosystem moat" {
				t.Errorf("AAPL thesis = %q", p.Thesis)
			}
		case "VT":
			// A news row with no headlines still carries the thesis.
			if p.HasNews || p.NewsLink != "" {
				t.Errorf("VT news = %v %q, want false \"\"", p.HasNews, p.NewsLink)
			}
			if p.Thesis != "World in one line" {
				t.Errorf("VT thesis = %q", p.Thesis)
			}
		case "RY.TO":
			if p.HasNews || p.Thesis != "" {
				t.Errorf("RY.TO without news row = %v %q, want false \"\"", p.HasNews, p.Thesis)
			}
		}
	}
}

// The JSON keys are the contract with the page's script, so they are pinned
// here rather than left to reflection.
func TestChartDatum_JSONKeys(t *testing.T) {
	d := buildDatum(day2, fixtureRows(day2), nil)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{
		`"date"`, `"sectors_base"`, `"values_base"`, `"risk_categories_base"`,
		`"risk_values_base"`, `"sector_breakdown_base"`, `"risk_breakdown_base"`,
		`"sectors_orig"`, `"values_orig"`, `"currencies"`, `"currency_values_orig"`,
		`"currency_values_base"`, `"positions"`, `"unrealizedPL_Pct"`, `"fx_pnl"`,
		`"bookCost_base"`, `"current_fx"`, `"avg_fx"`, `"earningsDate"`,
		`"hasNews"`, `"newsLink"`, `"thesis"`, `"contribution"`,
	} {
		if !strings.Contains(string(b), key) {
			t.Errorf("datum JSON is missing %s", key)
		}
	}
}

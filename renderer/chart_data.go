package renderer

import (
	"sort"

	folio "github.com/nkhyl/folio"
	"github.com/nkhyl/folio/date"
)

// chartDatum is one slider stop of the sector page: everything the script
// needs to draw one snapshot date in both currency views. The field names
// are the contract with the embedded JavaScript.
type chartDatum struct {
	Date                string                    `json:"date"`
	SectorsBase         []string                  `json:"sectors_base"`
	ValuesBase          []float64                 `json:"values_base"`
	RiskCategoriesBase  []string                  `json:"risk_categories_base"`
	RiskValuesBase      []float64                 `json:"risk_values_base"`
	SectorBreakdownBase map[string][]contribution `json:"sector_breakdown_base"`
	RiskBreakdownBase   map[string][]contribution `json:"risk_breakdown_base"`
	SectorsOrig         []string                  `json:"sectors_orig"`
	ValuesOrig          []float64                 `json:"values_orig"`
	RiskCategoriesOrig  []string                  `json:"risk_categories_orig"`
	RiskValuesOrig      []float64                 `json:"risk_values_orig"`
	SectorBreakdownOrig map[string][]contribution `json:"sector_breakdown_orig"`
	RiskBreakdownOrig   map[string][]contribution `json:"risk_breakdown_orig"`
	Currencies          []string                  `json:"currencies"`
	CurrencyValuesOrig  []float64                 `json:"currency_values_orig"`
	CurrencyValuesBase  []float64                 `json:"currency_values_base"`
	Positions           []chartPosition           `json:"positions"`
}

// contribution is one symbol's share of a sector or risk group.
type contribution struct {
	Symbol       string  `json:"symbol"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"` // percent of the group, 0 when the group sums to nothing
	Source       string  `json:"source"`       // "ETF" or "Stock"
}

// chartPosition is one holding in the page's position list, fund slices
// folded back into a single line. Totals are summed across slices; shares,
// price and book cost describe the instrument and are taken once.
type chartPosition struct {
	Symbol             string  `json:"symbol"`
	Value              float64 `json:"value"`
	ValueBase          float64 `json:"value_base"`
	Shares             float64 `json:"shares"`
	Price              float64 `json:"price"`
	BookCost           float64 `json:"bookCost"`
	BookCostBase       float64 `json:"bookCost_base"`
	CostBasis          float64 `json:"costBasis"`
	CostBasisBase      float64 `json:"costBasis_base"`
	UnrealizedPL       float64 `json:"unrealizedPL"`
	UnrealizedPLBase   float64 `json:"unrealizedPL_base"`
	UnrealizedPLPct    float64 `json:"unrealizedPL_Pct"`
	TotalDividends     float64 `json:"totalDividends"`
	TotalDividendsBase float64 `json:"totalDividends_base"`
	FXPnL              float64 `json:"fx_pnl"`
	Currency           string  `json:"currency"`
	CurrentFX          float64 `json:"current_fx"`
	AvgFX              float64 `json:"avg_fx"`
	Source             string  `json:"source"`
	EarningsDate       *string `json:"earningsDate"`
	HasNews            bool    `json:"hasNews"`
	NewsLink           string  `json:"newsLink"`
	Thesis             string  `json:"thesis"`
}

// buildChartData groups history rows by snapshot date, oldest first, and
// aggregates each date into a chartDatum. News rows join by (date, ticker).
func buildChartData(rows []folio.Row, news []folio.NewsRow) []chartDatum {
	byDate := make(map[date.Date][]folio.Row)
	var days []date.Date
	for _, r := range rows {
		if _, ok := byDate[r.Date]; !ok {
			days = append(days, r.Date)
		}
		byDate[r.Date] = append(byDate[r.Date], r)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	newsByDate := make(map[date.Date][]folio.NewsRow)
	for _, n := range news {
		newsByDate[n.Date] = append(newsByDate[n.Date], n)
	}

	data := make([]chartDatum, 0, len(days))
	for _, day := range days {
		data = append(data, buildDatum(day, byDate[day], newsByDate[day]))
	}
	return data
}

func buildDatum(day date.Date, rows []folio.Row, news []folio.NewsRow) chartDatum {
	bySector := func(r folio.Row) string { return r.Sector }
	byRisk := func(r folio.Row) string { return r.RiskCategory }
	baseValue := func(r folio.Row) float64 { return r.ValueBase }
	origValue := func(r folio.Row) float64 { return r.Value }

	d := chartDatum{Date: day.String()}
	d.SectorsBase, d.ValuesBase = sumBy(rows, bySector, baseValue)
	d.RiskCategoriesBase, d.RiskValuesBase = sumBy(rows, byRisk, baseValue)
	d.SectorsOrig, d.ValuesOrig = sumBy(rows, bySector, origValue)
	d.RiskCategoriesOrig, d.RiskValuesOrig = sumBy(rows, byRisk, origValue)
	d.SectorBreakdownBase, d.SectorBreakdownOrig = breakdowns(rows, bySector)
	d.RiskBreakdownBase, d.RiskBreakdownOrig = breakdowns(rows, byRisk)
	d.Currencies, d.CurrencyValuesOrig, d.CurrencyValuesBase = currencyTotals(rows)
	d.Positions = aggregatePositions(rows)
	attachNews(d.Positions, news)
	return d
}

// sumBy folds rows into per-key totals. Keys come back sorted by total
// descending, alphabetical on ties, which is the legend order of the page.
func sumBy(rows []folio.Row, key func(folio.Row) string, value func(folio.Row) float64) ([]string, []float64) {
	totals := make(map[string]float64)
	for _, r := range rows {
		totals[key(r)] += value(r)
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	sort.SliceStable(names, func(i, j int) bool { return totals[names[i]] > totals[names[j]] })

	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = totals[name]
	}
	return names, values
}

// currencyTotals sums per-currency values in both views, currencies sorted
// alphabetically.
func currencyTotals(rows []folio.Row) (currencies []string, orig, base []float64) {
	type total struct{ orig, base float64 }
	totals := make(map[string]*total)
	for _, r := range rows {
		t := totals[r.Currency]
		if t == nil {
			t = &total{}
			totals[r.Currency] = t
		}
		t.orig += r.Value
		t.base += r.ValueBase
	}

	currencies = make([]string, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	orig = make([]float64, len(currencies))
	base = make([]float64, len(currencies))
	for i, c := range currencies {
		orig[i] = totals[c].orig
		base[i] = totals[c].base
	}
	return currencies, orig, base
}

// breakdowns builds the drill-down lists behind each doughnut segment. Both
// currency views share one symbol order, by base value descending, so
// toggling the currency never reshuffles the list.
func breakdowns(rows []folio.Row, key func(folio.Row) string) (base, orig map[string][]contribution) {
	type part struct {
		base, orig float64
		source     string
	}
	groups := make(map[string]map[string]*part)
	for _, r := range rows {
		g := groups[key(r)]
		if g == nil {
			g = make(map[string]*part)
			groups[key(r)] = g
		}
		p := g[r.Symbol]
		if p == nil {
			p = &part{source: sourceLabel(r.Source)}
			g[r.Symbol] = p
		}
		p.base += r.ValueBase
		p.orig += r.Value
	}

	base = make(map[string][]contribution, len(groups))
	orig = make(map[string][]contribution, len(groups))
	for name, g := range groups {
		symbols := make([]string, 0, len(g))
		var totalBase, totalOrig float64
		for symbol, p := range g {
			symbols = append(symbols, symbol)
			totalBase += p.base
			totalOrig += p.orig
		}
		sort.Strings(symbols)
		sort.SliceStable(symbols, func(i, j int) bool { return g[symbols[i]].base > g[symbols[j]].base })

		listBase := make([]contribution, 0, len(symbols))
		listOrig := make([]contribution, 0, len(symbols))
		for _, symbol := range symbols {
			p := g[symbol]
			listBase = append(listBase, contribution{
				Symbol:       symbol,
				Value:        p.base,
				Contribution: percentOf(p.base, totalBase),
				Source:       p.source,
			})
			listOrig = append(listOrig, contribution{
				Symbol:       symbol,
				Value:        p.orig,
				Contribution: percentOf(p.orig, totalOrig),
				Source:       p.source,
			})
		}
		base[name] = listBase
		orig[name] = listOrig
	}
	return base, orig
}

func percentOf(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return value / total * 100
}

// aggregatePositions folds look-through rows back into one entry per symbol,
// sorted by base value descending, alphabetical on ties.
func aggregatePositions(rows []folio.Row) []chartPosition {
	byTicker := make(map[string]*chartPosition)
	var symbols []string
	for _, r := range rows {
		p := byTicker[r.Symbol]
		if p == nil {
			p = &chartPosition{
				Symbol:          r.Symbol,
				Shares:          r.Shares,
				Price:           r.Price,
				BookCost:        r.BookCost,
				BookCostBase:    r.BookCostBase,
				UnrealizedPLPct: r.PLPct,
				Currency:        r.Currency,
				CurrentFX:       r.CurrentFX,
				AvgFX:           r.AvgFX,
				Source:          r.Source,
			}
			if r.EarningsDate != nil {
				s := r.EarningsDate.String()
				p.EarningsDate = &s
			}
			byTicker[r.Symbol] = p
			symbols = append(symbols, r.Symbol)
		}
		p.Value += r.Value
		p.ValueBase += r.ValueBase
		p.CostBasis += r.CostBasis
		p.CostBasisBase += r.CostBasisBase
		p.UnrealizedPL += r.PL
		p.UnrealizedPLBase += r.PLBase
		p.TotalDividends += r.Dividends
		p.TotalDividendsBase += r.DividendsBase
		p.FXPnL += r.FXPnL
	}

	sort.Strings(symbols)
	positions := make([]chartPosition, 0, len(symbols))
	for _, symbol := range symbols {
		positions = append(positions, *byTicker[symbol])
	}
	sort.SliceStable(positions, func(i, j int) bool { return positions[i].ValueBase > positions[j].ValueBase })
	return positions
}

// attachNews joins the date's news rows onto the positions. The thesis shown
// on the page travels with the news file, positions without a news row keep
// an empty one.
func attachNews(positions []chartPosition, news []folio.NewsRow) {
	byTicker := make(map[string]folio.NewsRow, len(news))
	for _, n := range news {
		byTicker[n.Ticker] = n
	}
	for i := range positions {
		n, ok := byTicker[positions[i].Symbol]
		if !ok {
			continue
		}
		positions[i].Thesis = n.Thesis
		if len(n.Items) > 0 {
			positions[i].HasNews = n.Items[0].Title != ""
			positions[i].NewsLink = n.Items[0].Link
		}
	}
}

package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	folio "github.com/nkhyl/folio"
)

// Holdings renders one snapshot date as a markdown report, one line per
// symbol. Rows are expected to share a date, folio.LatestRows gives that.
func Holdings(rows []folio.Row, baseCurrency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if len(rows) == 0 {
		doc.H1("Holdings")
		doc.PlainText("No positions recorded. Run `folio refresh` first.")
		return doc.String()
	}

	doc.H1(fmt.Sprintf("Holdings on %s", rows[0].Date))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{
			"Symbol", "Type", "Shares", "Price", "Value",
			"Value (" + baseCurrency + ")", "P&L (" + baseCurrency + ")", "P&L %",
		},
		Rows: [][]string{},
	}

	var value, pl, dividends, fx float64
	for _, p := range aggregatePositions(rows) {
		table.Rows = append(table.Rows, []string{
			p.Symbol,
			sourceLabel(p.Source),
			fmt.Sprintf("%.2f", p.Shares),
			money(p.Price, p.Currency),
			money(p.Value, p.Currency),
			money(p.ValueBase, baseCurrency),
			signedMoney(p.UnrealizedPLBase, baseCurrency),
			fmt.Sprintf("%+.1f%%", p.UnrealizedPLPct),
		})
		value += p.ValueBase
		pl += p.UnrealizedPLBase
		dividends += p.TotalDividendsBase
		fx += p.FXPnL
	}
	doc.Table(table)

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{md.Bold("Total Value"), md.Bold(money(value, baseCurrency))},
		Rows: [][]string{
			{"Unrealized P&L", signedMoney(pl, baseCurrency)},
			{"Dividends Received", money(dividends, baseCurrency)},
			{"FX Gain/Loss", signedMoney(fx, baseCurrency)},
		},
	})

	return doc.String()
}

// News renders the stored headlines, a section per ticker with its thesis
// and dated headline links.
func News(rows []folio.NewsRow) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if len(rows) == 0 {
		doc.H1("News")
		doc.PlainText("No stored headlines. Run `folio refresh` first.")
		return doc.String()
	}

	doc.H1(fmt.Sprintf("News on %s", rows[0].Date))
	for _, row := range rows {
		doc.H2(row.Ticker)
		if row.Thesis != "" {
			doc.PlainText(md.Italic(row.Thesis))
		}
		if len(row.Items) == 0 {
			doc.PlainText("No recent headlines.")
			continue
		}

		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignLeft,
			},
			Header: []string{"Date", "Headline"},
			Rows:   [][]string{},
		}
		for _, item := range row.Items {
			headline := item.Title
			if item.Link != "" {
				headline = md.Link(item.Title, item.Link)
			}
			table.Rows = append(table.Rows, []string{item.Date.String(), headline})
		}
		doc.Table(table)
	}
	return doc.String()
}

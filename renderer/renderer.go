// Package renderer turns snapshot history rows into the delivered reports:
// markdown tables for the terminal and the interactive sector page the
// SiYuan widget embeds.
//
// Both consume the same aggregation: look-through rows are folded back into
// one line per symbol, so a fund exploded across eleven sectors still reads
// as a single holding.
package renderer

import (
	"strings"

	folio "github.com/nkhyl/folio"
)

// money formats an amount the way the terminal reports show it
// ("$1,234.56", "1.234,56 €", ...).
func money(v float64, currency string) string {
	return folio.M(v, currency).String()
}

// signedMoney is money with an explicit sign, "-" when zero.
func signedMoney(v float64, currency string) string {
	return folio.M(v, currency).SignedString()
}

// sourceLabel collapses the history's source tags to the two the reports
// distinguish: look-through slices are still "ETF".
func sourceLabel(source string) string {
	if strings.HasPrefix(source, "ETF") {
		return "ETF"
	}
	return "Stock"
}

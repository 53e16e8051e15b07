package renderer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"

	folio "github.com/nkhyl/folio"
)

//go:embed templates/chart.html
var chartHTML string

var chartTemplate = template.Must(template.New("chart").Parse(chartHTML))

// chartColors is the doughnut palette, segments wrap around when a date has
// more sectors than colors.
var chartColors = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#E7E9ED", "#8E5EA2", "#3CBA9F", "#C9CBCF",
}

// riskColors pins each risk category to a fixed color so the risk doughnut
// stays recognizable across dates. Categories without an entry fall back to
// grey in the script.
var riskColors = map[string]string{
	"Equity":       "#FF6384",
	"Fixed Income": "#36A2EB",
	"Cash":         "#FFCE56",
	"Alternative":  "#4BC0C0",
	"Hybrid":       "#9966FF",
	"Real Estate":  "#FF9F40",
}

// currencySymbols maps ISO codes to the symbols the position list shows.
// Codes without an entry display as "XXX 123".
var currencySymbols = map[string]string{
	"CAD": "C$",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"CHF": "Fr",
}

type chartPage struct {
	BaseCurrency    string
	LastIndex       int
	Data            string
	Colors          string
	RiskColors      string
	CurrencySymbols string
}

// Chart renders the interactive sector page for the whole history as a
// standalone HTML document, Chart.js comes from a CDN. News rows fill the
// headline badges and theses; pass nil when there is no news history.
func Chart(rows []folio.Row, news []folio.NewsRow, baseCurrency string) ([]byte, error) {
	data := buildChartData(rows, news)
	if len(data) == 0 {
		return nil, fmt.Errorf("no history rows to chart")
	}

	page := chartPage{
		BaseCurrency: baseCurrency,
		LastIndex:    len(data) - 1,
	}
	var err error
	if page.Data, err = asJS(data); err != nil {
		return nil, fmt.Errorf("cannot encode chart data: %w", err)
	}
	if page.Colors, err = asJS(chartColors); err != nil {
		return nil, err
	}
	if page.RiskColors, err = asJS(riskColors); err != nil {
		return nil, err
	}
	if page.CurrencySymbols, err = asJS(currencySymbols); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := chartTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("cannot render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// asJS embeds a value as a JSON literal inside the page's script block.
// encoding/json escapes <, > and & so a headline cannot break out of it.
func asJS(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package yahoo

import (
	"fmt"
	"net/url"

	"github.com/PaesslerAG/jsonpath"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/date"
)

// quoteSummary is Yahoo's grab bag endpoint. Each module is a top level
// object in the result; numbers and dates come wrapped as {raw, fmt}
// pairs.
//
//	{
//	  "quoteSummary": {
//	    "result": [
//	      {
//	        "assetProfile": {"sector": "Technology", "industry": "...", "country": "..."},
//	        "quoteType": {"quoteType": "EQUITY"},
//	        "price": {"currency": "USD"},
//	        "calendarEvents": {"earnings": {"earningsDate": [{"raw": 1767052800, "fmt": "2025-12-30"}]}},
//	        "topHoldings": {
//	          "sectorWeightings": [{"technology": {"raw": 0.33, "fmt": "33.00%"}}, ...],
//	          "stockPosition": {"raw": 0.99, "fmt": "99.00%"}
//	        }
//	      }
//	    ],
//	    "error": null
//	  }
//	}
func (c *Client) summary(symbol, modules string) (any, error) {
	addr := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.api, url.PathEscape(symbol), url.QueryEscape(modules))
	var jobj any
	if err := jwget(c.http, addr, &jobj); err != nil {
		return nil, err
	}
	result, err := jsonpath.Get("$.quoteSummary.result[0]", jobj)
	if err != nil {
		return nil, fmt.Errorf("empty summary for %s: %w", symbol, err)
	}
	return result, nil
}

// Profile returns the instrument's descriptive metadata. Sector and
// industry default to "Unknown" for stocks and "ETF" for funds, the way
// the downstream grouping expects them; country and the next earnings date
// only exist for stocks.
func (c *Client) Profile(symbol string) (folio.Profile, error) {
	result, err := c.summary(symbol, "assetProfile,quoteType,calendarEvents,price")
	if err != nil {
		return folio.Profile{}, err
	}

	p := folio.Profile{
		Ticker:    symbol,
		QuoteType: jstr(result, "$.quoteType.quoteType"),
		Currency:  jstr(result, "$.price.currency"),
		Sector:    jstr(result, "$.assetProfile.sector"),
		Industry:  jstr(result, "$.assetProfile.industry"),
	}
	if p.QuoteType == "" {
		p.QuoteType = "Unknown"
	}

	fallback := "Unknown"
	if p.IsETF() {
		fallback = "ETF"
	}
	if p.Sector == "" {
		p.Sector = fallback
	}
	if p.Industry == "" {
		p.Industry = fallback
	}
	if p.IsETF() {
		p.Country = "Unknown"
		return p, nil
	}

	p.Country = jstr(result, "$.assetProfile.country")
	if s := jstr(result, "$.calendarEvents.earnings.earningsDate[0].fmt"); s != "" {
		if d, err := date.Parse(s); err == nil {
			p.EarningsDate = &d
		}
	}
	return p, nil
}

// FundsData returns a fund's look-through composition: sector weights for
// the allocation split and asset class weights for the risk call. Both
// maps come back empty when Yahoo has no holdings breakdown, which the
// caller reads as a diversified fund.
func (c *Client) FundsData(symbol string) (folio.FundsData, error) {
	result, err := c.summary(symbol, "topHoldings")
	if err != nil {
		return folio.FundsData{}, err
	}
	return folio.FundsData{
		Sectors: sectorWeights(result),
		Assets:  assetWeights(result),
	}, nil
}

// sectorWeights flattens topHoldings.sectorWeightings, a list of one entry
// maps, renaming the wire keys to the display names stock profiles use.
func sectorWeights(result any) map[string]float64 {
	weights := make(map[string]float64)
	v, err := jsonpath.Get("$.topHoldings.sectorWeightings", result)
	if err != nil {
		return weights
	}
	list, ok := v.([]any)
	if !ok {
		return weights
	}
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		for key, val := range m {
			wrapped, ok := val.(map[string]any)
			if !ok {
				continue
			}
			if w, ok := wrapped["raw"].(float64); ok {
				weights[sectorName(key)] = w
			}
		}
	}
	return weights
}

// assetClassKeys are the topHoldings position buckets; the risk tables key
// on them verbatim.
var assetClassKeys = []string{
	"stockPosition",
	"bondPosition",
	"cashPosition",
	"otherPosition",
	"preferredPosition",
	"convertiblePosition",
}

// assetWeights collects the fund's asset class split from topHoldings.
func assetWeights(result any) map[string]float64 {
	weights := make(map[string]float64)
	for _, key := range assetClassKeys {
		v, err := jsonpath.Get("$.topHoldings."+key+".raw", result)
		if err != nil {
			continue
		}
		if w, ok := v.(float64); ok {
			weights[key] = w
		}
	}
	return weights
}

// sectorDisplayNames maps the lowercase keys of sectorWeightings to the
// names assetProfile reports for stocks, so fund slices and stock rows
// group under the same sector labels.
var sectorDisplayNames = map[string]string{
	"realestate":             "Real Estate",
	"consumer_cyclical":      "Consumer Cyclical",
	"basic_materials":        "Basic Materials",
	"consumer_defensive":     "Consumer Defensive",
	"technology":             "Technology",
	"communication_services": "Communication Services",
	"financial_services":     "Financial Services",
	"utilities":              "Utilities",
	"industrials":            "Industrials",
	"energy":                 "Energy",
	"healthcare":             "Healthcare",
}

// sectorName translates a wire key, keeping unknown keys as they came.
func sectorName(key string) string {
	if name, ok := sectorDisplayNames[key]; ok {
		return name
	}
	return key
}

// jstr extracts a string at path, empty when the path is absent.
func jstr(result any, path string) string {
	v, err := jsonpath.Get(path, result)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

package folio

import "sort"

// assetRiskMapping folds Yahoo quote types and fund asset classes into the
// report's risk categories. Both vocabularies land in the same table because
// quoteSummary uses one for instruments and the other for fund holdings.
var assetRiskMapping = map[string]string{
	"Stock":                   "Equity",
	"Equity":                  "Equity",
	"Bond":                    "Fixed Income",
	"Cash & Cash Equivalents": "Cash",
	"Other":                   "Alternative",
	"Preferred Stock":         "Hybrid",
	"Convertible":             "Hybrid",
	"Real Estate":             "Real Estate",
	"cashPosition":            "Cash",
	"stockPosition":           "Equity",
	"bondPosition":            "Fixed Income",
	"preferredPosition":       "Hybrid",
	"convertiblePosition":     "Hybrid",
	"otherPosition":           "Other",
}

// StockRisk classifies a single instrument by its quote type, Equity when
// the type is not in the table.
func StockRisk(quoteType string) string {
	if cat, ok := assetRiskMapping[quoteType]; ok {
		return cat
	}
	return "Equity"
}

// ETFRisk picks the dominant risk category of a fund from its asset-class
// weights. Classes outside the table count as Other; a fund with no weights
// at all is treated as an equity fund. Ties resolve to the alphabetically
// first category so repeated runs classify alike.
func ETFRisk(assetWeights map[string]float64) string {
	if len(assetWeights) == 0 {
		return "Equity"
	}

	totals := make(map[string]float64)
	for class, weight := range assetWeights {
		cat, ok := assetRiskMapping[class]
		if !ok {
			cat = "Other"
		}
		totals[cat] += weight
	}

	cats := make([]string, 0, len(totals))
	for cat := range totals {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	dominant := cats[0]
	for _, cat := range cats[1:] {
		if totals[cat] > totals[dominant] {
			dominant = cat
		}
	}
	return dominant
}

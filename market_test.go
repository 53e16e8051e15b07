package folio

import "testing"

func TestMarket_RateForBaseCurrencyIsOne(t *testing.T) {
	m := NewMarket("CAD")

	for _, ccy := range []string{"CAD", ""} {
		rate, ok := m.Rate(ccy)
		if !ok {
			t.Errorf("Rate(%q) ok = false, want true", ccy)
		}
		if rate != 1.0 {
			t.Errorf("Rate(%q) = %v, want 1", ccy, rate)
		}
	}
}

func TestMarket_RateUnknownCurrency(t *testing.T) {
	m := NewMarket("CAD")
	if _, ok := m.Rate("USD"); ok {
		t.Error("Rate(USD) ok = true, want false before SetRate")
	}

	m.SetRate("USD", 1.40)
	rate, ok := m.Rate("USD")
	if !ok || rate != 1.40 {
		t.Errorf("Rate(USD) = %v, %v, want 1.4, true", rate, ok)
	}
}

func TestMarket_InfoLookup(t *testing.T) {
	m := NewMarket("CAD")
	if m.Has("AAPL") {
		t.Error("Has(AAPL) = true on an empty market")
	}

	m.Add("AAPL", MarketInfo{Profile: Profile{Ticker: "AAPL"}, Price: 120})
	info, ok := m.Info("AAPL")
	if !ok {
		t.Fatal("Info(AAPL) ok = false, want true")
	}
	if info.Price != 120 {
		t.Errorf("Price = %v, want 120", info.Price)
	}
	if !m.Has("AAPL") {
		t.Error("Has(AAPL) = false after Add")
	}
	if got, want := m.Base(), "CAD"; got != want {
		t.Errorf("Base() = %q, want %q", got, want)
	}
}

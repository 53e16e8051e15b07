package folio

import (
	"math"

	"github.com/nkhyl/folio/date"
)

// Event constructors shared by the engine tests. Trades are in USD with an
// explicit rate into the base currency so multi-currency cases stay visible
// in the fixtures.

func buyEvent(ticker string, on date.Date, qty, price, fx float64) TradeEvent {
	return TradeEvent{Ticker: ticker, Type: Buy, Date: on, Quantity: Q(qty), Price: M(price, "USD"), FX: Q(fx)}
}

func sellEvent(ticker string, on date.Date, qty float64) TradeEvent {
	return TradeEvent{Ticker: ticker, Type: Sell, Date: on, Quantity: Q(qty)}
}

func divEvent(ticker string, on date.Date, qty, price, fx float64) TradeEvent {
	return TradeEvent{Ticker: ticker, Type: Dividend, Date: on, Quantity: Q(qty), Price: M(price, "USD"), FX: Q(fx)}
}

// approx absorbs the float drift the reports tolerate.
func approx(got, want float64) bool { return math.Abs(got-want) < 1e-6 }

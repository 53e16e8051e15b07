package folio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nkhyl/folio/date"
)

// EventType is a typed string identifying journal events.
type EventType string

// Event types recorded in the trade journal. The values match the "Event
// Type" select options of the SiYuan database, so imported rows and encoded
// journals read the same.
const (
	Buy      EventType = "Buy"
	Sell     EventType = "Sell"
	Dividend EventType = "Dividend"
)

// ErrUnknownEventType reports an event type outside the closed set.
var ErrUnknownEventType = errors.New("unknown event type")

// ParseEventType parses an event type, ignoring case and surrounding spaces.
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "dividend":
		return Dividend, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEventType, s)
}

// MissingFieldError reports a required event attribute that is still absent
// after import normalization. It aborts processing for that instrument only.
type MissingFieldError struct {
	Ticker string
	Field  string
}

// Error reports the field alone; callers add instrument context when they
// wrap, so messages never carry the ticker twice.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("event is missing required field %q", e.Field)
}

// TradeEvent is one normalized row of the trade journal: a buy, a sell, or a
// dividend payment on a single instrument.
//
// Quantity and Price are absolute values, the direction lives in Type. FX is
// the trade-to-base conversion rate observed on the event date (1 when the
// trade currency is the base currency or when the journal does not say).
type TradeEvent struct {
	Ticker   string
	Type     EventType
	Date     date.Date
	Quantity Quantity
	Price    Money    // per-share, in the trade currency
	FX       Quantity // trade→base rate on the event date
	Thesis   string   // SiYuan block ID of the thesis note, "" if none
	Excluded bool     // the whole pipeline ignores excluded events
}

// Currency returns the event's trade currency code ("" when unknown).
func (e TradeEvent) Currency() string { return e.Price.Currency() }

// Validate checks the attributes every pipeline stage relies on. Buys and
// sells need a quantity; dividends without one are worthless but harmless.
func (e TradeEvent) Validate() error {
	if e.Ticker == "" {
		return &MissingFieldError{Field: "ticker"}
	}
	if e.Type == "" {
		return &MissingFieldError{Ticker: e.Ticker, Field: "event type"}
	}
	if _, err := ParseEventType(string(e.Type)); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return &MissingFieldError{Ticker: e.Ticker, Field: "date"}
	}
	if e.Quantity.IsNegative() {
		return fmt.Errorf("negative quantity %s on %s", e.Quantity, e.Date)
	}
	if (e.Type == Buy || e.Type == Sell) && e.Quantity.IsZero() {
		return &MissingFieldError{Ticker: e.Ticker, Field: "quantity"}
	}
	if e.Price.IsNegative() {
		return fmt.Errorf("negative price %s on %s", e.Price, e.Date)
	}
	return nil
}

// Rate returns the event FX rate, defaulting to 1 when the journal carries none.
func (e TradeEvent) Rate() Quantity {
	if e.FX.IsZero() {
		return Q(1)
	}
	return e.FX
}

// GrossRaw returns quantity × price in the trade currency.
func (e TradeEvent) GrossRaw() Money { return e.Price.Mul(e.Quantity) }

// GrossBase returns quantity × price × fx in the base currency.
func (e TradeEvent) GrossBase() Money {
	return M(e.Price.Mul(e.Quantity).Mul(e.Rate()).value, "")
}

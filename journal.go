package folio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/nkhyl/folio/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Journal is the normalized trade journal: every Buy, Sell and Dividend
// event, chronologically sorted. It is the single input of the fold engine.
type Journal struct {
	events []TradeEvent
}

// NewJournal returns a journal holding the given events, sorted by date.
// Same-day events keep their input order, so an intraday buy-then-sell stays
// a buy-then-sell.
func NewJournal(events ...TradeEvent) *Journal {
	j := &Journal{events: append([]TradeEvent(nil), events...)}
	j.stableSort()
	return j
}

// Append adds events to the journal, keeping it sorted.
func (j *Journal) Append(events ...TradeEvent) {
	j.events = append(j.events, events...)
	j.stableSort()
}

func (j *Journal) stableSort() {
	sort.SliceStable(j.events, func(a, b int) bool {
		return j.events[a].Date.Before(j.events[b].Date)
	})
}

// Len returns the number of events, excluded ones included.
func (j *Journal) Len() int { return len(j.events) }

// Events returns a copy of all events in chronological order.
func (j *Journal) Events() []TradeEvent {
	return append([]TradeEvent(nil), j.events...)
}

// Tickers returns the distinct instrument tickers in the journal, sorted.
func (j *Journal) Tickers() []string {
	seen := make(map[string]bool)
	var tickers []string
	for _, e := range j.events {
		if !seen[e.Ticker] {
			seen[e.Ticker] = true
			tickers = append(tickers, e.Ticker)
		}
	}
	sort.Strings(tickers)
	return tickers
}

// ByTicker groups non-excluded events per instrument, each group in
// chronological order. The grouping map is rebuilt on every call, callers own
// the result.
func (j *Journal) ByTicker() map[string][]TradeEvent {
	groups := make(map[string][]TradeEvent)
	for _, e := range j.events {
		if e.Excluded {
			continue
		}
		groups[e.Ticker] = append(groups[e.Ticker], e)
	}
	return groups
}

// MarshalJSON implements the json.Marshaler interface for TradeEvent, with a
// fixed attribute order so journal files stay diffable.
func (e TradeEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.Type)
	w.Append("date", e.Date)
	w.Append("ticker", e.Ticker)
	w.Append("quantity", e.Quantity)
	w.Append("price", e.Price)
	w.Optional("currency", e.Currency())
	w.Optional("fx", e.FX)
	w.Optional("thesis", e.Thesis)
	w.Optional("excluded", e.Excluded)
	return w.MarshalJSON()
}

// eventLine mirrors a journal line for decoding; amounts arrive as bare
// decimals and the currency as its own attribute.
type eventLine struct {
	Type     string          `json:"type"`
	Date     date.Date       `json:"date"`
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	FX       decimal.Decimal `json:"fx"`
	Thesis   string          `json:"thesis"`
	Excluded bool            `json:"excluded"`
}

// DecodeJournal decodes events from a stream of JSONL data, one event per
// line, and returns a sorted Journal.
func DecodeJournal(r io.Reader) (*Journal, error) {
	var events []TradeEvent
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(bytes.TrimSpace(lineBytes)) == 0 {
			continue // Skip empty lines
		}

		var line eventLine
		dec := json.NewDecoder(bytes.NewReader(lineBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&line); err != nil {
			return nil, fmt.Errorf("could not decode journal line %q: %w", string(lineBytes), err)
		}

		typ, err := ParseEventType(line.Type)
		if err != nil {
			return nil, fmt.Errorf("journal line %q: %w", string(lineBytes), err)
		}

		events = append(events, TradeEvent{
			Ticker:   line.Ticker,
			Type:     typ,
			Date:     line.Date,
			Quantity: Q(line.Quantity),
			Price:    M(line.Price, line.Currency),
			FX:       Q(line.FX),
			Thesis:   line.Thesis,
			Excluded: line.Excluded,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}

	return NewJournal(events...), nil
}

// EncodeEvent marshals a single event to JSON and writes it to the writer,
// followed by a newline, in JSONL format.
func EncodeEvent(w io.Writer, e TradeEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// EncodeJournal persists the journal to an io.Writer in JSONL format, in
// chronological order.
func EncodeJournal(w io.Writer, j *Journal) error {
	for _, e := range j.events {
		if err := EncodeEvent(w, e); err != nil {
			return err
		}
	}
	return nil
}

// Package siyuan imports trade events from a SiYuan attribute-view database
// (the JSON files under <data>/storage/av/). The attribute view is the user's
// journal of record; this package only reads it.
package siyuan

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/date"
)

// Column names of the trade table. 日期 is SiYuan's stock name for a date
// column; the others are user-defined.
const (
	colEventType = "Event Type"
	colQuantity  = "Quantity"
	colTicker    = "ticker"
	colDate      = "日期"
	colPrice     = "price"
	colThesis    = "TradeThesis"
	colCurrency  = "CCY"
	colExclude   = "exclude"
	fxPrefix     = "FX_" // FX_CAD, FX_USD... whichever base the table tracks
)

// thesisRef matches a SiYuan block reference, which starts with a timestamp.
var thesisRef = regexp.MustCompile(`^\d{10}`)

// Load reads an attribute-view export and returns the trade journal. Rows
// with missing required attributes become warnings, not errors; the journal
// of the remaining rows is always usable.
func Load(path string) (*folio.Journal, []folio.Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read attribute view %q: %w", path, err)
	}
	j, warnings, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse attribute view %q: %w", path, err)
	}
	log.Println("imported", j.Len(), "events from", path)
	return j, warnings, nil
}

// cell mirrors one attribute-view cell. Only the member matching the column
// type is populated.
type cell struct {
	BlockID string `json:"blockID"`
	MSelect []struct {
		Content string `json:"content"`
	} `json:"mSelect"`
	Number *struct {
		Content    float64 `json:"content"`
		IsNotEmpty bool    `json:"isNotEmpty"`
	} `json:"number"`
	Date *struct {
		Content    int64 `json:"content"`
		IsNotEmpty bool  `json:"isNotEmpty"`
	} `json:"date"`
	Block *struct {
		Content string `json:"content"`
	} `json:"block"`
	Text *struct {
		Content string `json:"content"`
	} `json:"text"`
}

// content extracts a string cell. Block-typed columns fall back to the text
// member, SiYuan writes either depending on how the cell was filled.
func (c cell) content(colType string) (string, bool) {
	switch colType {
	case "select":
		if len(c.MSelect) > 0 && c.MSelect[0].Content != "" {
			return c.MSelect[0].Content, true
		}
	case "block", "text":
		if c.Block != nil && c.Block.Content != "" {
			return c.Block.Content, true
		}
		if c.Text != nil && c.Text.Content != "" {
			return c.Text.Content, true
		}
	}
	return "", false
}

func (c cell) number() (float64, bool) {
	if c.Number != nil && c.Number.IsNotEmpty {
		return c.Number.Content, true
	}
	return 0, false
}

func (c cell) day() (date.Date, bool) {
	if c.Date != nil && c.Date.IsNotEmpty {
		return date.FromUnixMilli(c.Date.Content), true
	}
	return date.Date{}, false
}

// isSet reports whether the cell holds any value at all. The exclude column
// works by presence, whatever its type.
func (c cell) isSet(colType string) bool {
	if _, ok := c.content(colType); ok {
		return true
	}
	if _, ok := c.number(); ok {
		return true
	}
	_, ok := c.day()
	return ok
}

// draft accumulates one block's cells until every column has been scanned.
type draft struct {
	eventType string
	ticker    string
	day       date.Date
	quantity  float64
	price     float64
	fx        float64
	currency  string
	thesis    string
	excluded  bool
}

func (d *draft) event() (folio.TradeEvent, error) {
	e := folio.TradeEvent{
		Ticker:   d.ticker,
		Date:     d.day,
		Quantity: folio.Q(d.quantity),
		Price:    folio.M(d.price, d.currency),
		Thesis:   d.thesis,
		Excluded: d.excluded,
	}
	if d.eventType != "" {
		typ, err := folio.ParseEventType(d.eventType)
		if err != nil {
			return folio.TradeEvent{}, err
		}
		e.Type = typ
	}
	if d.fx != 0 {
		e.FX = folio.Q(d.fx)
	}
	if !thesisRef.MatchString(e.Thesis) {
		// Anything that is not a block reference is stray text, drop it.
		e.Thesis = ""
	}
	if err := e.Validate(); err != nil {
		return folio.TradeEvent{}, err
	}
	return e, nil
}

// Parse decodes an attribute-view export. The view stores the table by
// column: keyValues carries one entry per column, each holding the cells of
// every row that filled it, keyed by block ID.
func Parse(data []byte) (*folio.Journal, []folio.Warning, error) {
	var payload struct {
		KeyValues []struct {
			Key struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"key"`
			Values []cell `json:"values"`
		} `json:"keyValues"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil, fmt.Errorf("could not decode attribute-view json: %w", err)
	}

	drafts := make(map[string]*draft)
	get := func(id string) *draft {
		d, ok := drafts[id]
		if !ok {
			d = &draft{}
			drafts[id] = d
		}
		return d
	}

	for _, kv := range payload.KeyValues {
		name, colType := kv.Key.Name, kv.Key.Type
		for _, c := range kv.Values {
			row := get(c.BlockID)
			switch {
			case name == colEventType:
				if s, ok := c.content(colType); ok {
					row.eventType = s
				}
			case name == colTicker:
				if s, ok := c.content(colType); ok {
					row.ticker = s
				}
			case name == colDate:
				if day, ok := c.day(); ok {
					row.day = day
				}
			case name == colQuantity:
				if n, ok := c.number(); ok {
					row.quantity = n
				}
			case name == colPrice:
				if n, ok := c.number(); ok {
					row.price = n
				}
			case name == colThesis:
				if s, ok := c.content(colType); ok {
					row.thesis = s
				}
			case name == colCurrency:
				if s, ok := c.content(colType); ok {
					row.currency = s
				}
			case name == colExclude:
				row.excluded = row.excluded || c.isSet(colType)
			case strings.HasPrefix(name, fxPrefix):
				if n, ok := c.number(); ok {
					row.fx = n
				}
			}
		}
	}

	// Block IDs start with the creation timestamp, so scanning them sorted
	// keeps same-day events in the order the user entered them.
	ids := make([]string, 0, len(drafts))
	for id := range drafts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var events []folio.TradeEvent
	var warnings []folio.Warning
	for _, id := range ids {
		e, err := drafts[id].event()
		if err != nil {
			warnings = append(warnings, folio.Warning{
				Ticker:  drafts[id].ticker,
				Message: fmt.Sprintf("row %s dropped: %v", id, err),
			})
			continue
		}
		events = append(events, e)
	}
	return folio.NewJournal(events...), warnings, nil
}

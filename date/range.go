package date

import "fmt"

// Range represents an inclusive range of dates. It records completed holding
// intervals on a lot and bounds sliding windows like the news cutoff.
type Range struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// NewRange returns the inclusive range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// LastDays returns the range covering the n days up to and including 'to'.
func LastDays(to Date, n int) Range { return Range{From: to.Add(1 - n), To: to} }

// Contains return true date is included in the range (boundaries included).
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// String formats the range as "2006-01-02..2006-01-02".
func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }

package folio

import (
	"testing"
	"time"

	"github.com/nkhyl/folio/date"
)

func TestAttributeDividends_ScopedToOpenCycle(t *testing.T) {
	jan5 := date.New(2025, time.January, 5)
	jan10 := date.New(2025, time.January, 10)
	feb15 := date.New(2025, time.February, 15)

	events := []TradeEvent{
		divEvent("AAPL", jan5, 10, 0.50, 1.35), // before the cycle opened
		buyEvent("AAPL", jan10, 10, 100, 1.35),
		divEvent("AAPL", feb15, 10, 0.50, 1.40),
	}
	lot := BuildLot("AAPL", events)

	div := AttributeDividends(lot, events)
	if got, want := div.Raw.Float64(), 5.0; !approx(got, want) {
		t.Errorf("Raw = %v, want %v", got, want)
	}
	if got, want := div.Base.Float64(), 7.0; !approx(got, want) {
		t.Errorf("Base = %v, want %v", got, want)
	}
}

func TestAttributeDividends_OpenDateItselfCounts(t *testing.T) {
	jan10 := date.New(2025, time.January, 10)

	events := []TradeEvent{
		buyEvent("AAPL", jan10, 10, 100, 1),
		divEvent("AAPL", jan10, 10, 1, 1),
	}
	lot := BuildLot("AAPL", events)

	div := AttributeDividends(lot, events)
	if got, want := div.Raw.Float64(), 10.0; !approx(got, want) {
		t.Errorf("Raw = %v, want %v", got, want)
	}
}

func TestAttributeDividends_ClosedLotCollectsNothing(t *testing.T) {
	jan10 := date.New(2025, time.January, 10)
	feb15 := date.New(2025, time.February, 15)
	mar20 := date.New(2025, time.March, 20)

	events := []TradeEvent{
		buyEvent("AAPL", jan10, 10, 100, 1),
		sellEvent("AAPL", feb15, 10),
		divEvent("AAPL", mar20, 10, 0.50, 1),
	}
	lot := BuildLot("AAPL", events)

	div := AttributeDividends(lot, events)
	if !div.Raw.IsZero() || !div.Base.IsZero() {
		t.Errorf("dividends = %s/%s, want zero on a closed lot", div.Raw, div.Base)
	}
}

func TestAttributeDividends_PriorCycleExcludedAfterReopen(t *testing.T) {
	jan10 := date.New(2025, time.January, 10)
	feb15 := date.New(2025, time.February, 15)
	mar1 := date.New(2025, time.March, 1)
	apr1 := date.New(2025, time.April, 1)
	may1 := date.New(2025, time.May, 1)

	events := []TradeEvent{
		buyEvent("AAPL", jan10, 10, 100, 1),
		divEvent("AAPL", feb15, 10, 1, 1), // first cycle, discarded with it
		sellEvent("AAPL", mar1, 10),
		buyEvent("AAPL", apr1, 5, 100, 1),
		divEvent("AAPL", may1, 5, 1, 1),
	}
	lot := BuildLot("AAPL", events)

	div := AttributeDividends(lot, events)
	if got, want := div.Raw.Float64(), 5.0; !approx(got, want) {
		t.Errorf("Raw = %v, want %v", got, want)
	}
}

func TestAttributeDividends_ExcludedEventsNeverCount(t *testing.T) {
	jan10 := date.New(2025, time.January, 10)
	feb15 := date.New(2025, time.February, 15)

	excluded := divEvent("AAPL", feb15, 10, 1, 1)
	excluded.Excluded = true

	events := []TradeEvent{
		buyEvent("AAPL", jan10, 10, 100, 1),
		excluded,
	}
	lot := BuildLot("AAPL", events)

	div := AttributeDividends(lot, events)
	if !div.Raw.IsZero() {
		t.Errorf("Raw = %s, want zero", div.Raw)
	}
}

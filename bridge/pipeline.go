package bridge

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/date"
	"github.com/nkhyl/folio/siyuan"
)

// Pipeline is the refresh run behind POST /run-task and the scheduler. The
// real one imports the journal and hits the market; tests substitute canned
// results.
type Pipeline interface {
	Refresh() (*folio.RefreshResult, error)
}

// RefreshPipeline imports the trade journal from the SiYuan attribute view
// and refreshes both history files with live market data.
type RefreshPipeline struct {
	Config Config
	Source folio.MarketSource
	Log    zerolog.Logger
}

// Refresh runs the pipeline for today's date. Every run gets its own id so
// concurrent and scheduled runs stay apart in the logs.
func (p RefreshPipeline) Refresh() (*folio.RefreshResult, error) {
	log := p.Log.With().Str("run_id", uuid.NewString()).Logger()

	journal, warnings, err := siyuan.Load(p.Config.AttributeViewPath())
	if err != nil {
		return nil, err
	}
	logWarnings(log, warnings)

	result, err := folio.Refresh(date.Today(), journal, p.Source, folio.RefreshConfig{
		BaseCurrency: p.Config.BaseCurrency,
		HistoryPath:  p.Config.HistoryPath(),
		NewsPath:     p.Config.NewsPath(),
	})
	if err != nil {
		return nil, err
	}
	logWarnings(log, result.Warnings)

	log.Info().
		Stringer("date", result.Date).
		Int("rows", len(result.Rows)).
		Int("warnings", len(warnings)+len(result.Warnings)).
		Msg("refresh completed")
	return result, nil
}

func logWarnings(log zerolog.Logger, warnings []folio.Warning) {
	for _, w := range warnings {
		log.Warn().Str("ticker", w.Ticker).Msg(w.Message)
	}
}

// Summary is the headline block the widget shows after a refresh, reduced
// over one snapshot date in the reporting currency.
type Summary struct {
	Date           string `json:"date"`
	TotalValue     string `json:"total_value"`
	UnrealizedPL   string `json:"unrealized_pl"`
	TotalDividends string `json:"total_dividends"`
	PositionCount  int    `json:"position_count"`
}

// Summarize reduces one date's rows to the summary. Look-through slices sum
// back into their fund, so the position count is distinct symbols.
func Summarize(rows []folio.Row, baseCurrency string) Summary {
	var day date.Date
	var value, pl, dividends float64
	symbols := make(map[string]bool)
	for _, r := range rows {
		value += r.ValueBase
		pl += r.PLBase
		dividends += r.DividendsBase
		symbols[r.Symbol] = true
		if r.Date.After(day) {
			day = r.Date
		}
	}
	return Summary{
		Date:           day.String(),
		TotalValue:     folio.M(value, baseCurrency).String(),
		UnrealizedPL:   folio.M(pl, baseCurrency).String(),
		TotalDividends: folio.M(dividends, baseCurrency).String(),
		PositionCount:  len(symbols),
	}
}

package folio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nkhyl/folio/date"
)

// this file persists the snapshot history files. Both are flat files the
// SiYuan widget and the chart read directly, so the column layout is a
// contract, not an implementation detail.

// unifiedHeader is the column order of the unified history file.
var unifiedHeader = []string{
	"Date", "Symbol", "Sector", "RiskCategory", "Currency",
	"Shares", "Price", "BookCost", "BookCost_BaseCcy",
	"Value", "Value_BaseCcy", "CostBasis", "CostBasis_BaseCcy",
	"UnrealizedPL", "UnrealizedPL_BaseCcy", "UnrealizedPL_Pct",
	"TotalDividends", "TotalDividends_BaseCcy",
	"CurrentFX", "AvgFX", "FX_PnL", "Source", "EarningsDate", "Thesis",
}

// fmtFloat renders a float with the shortest representation that survives a
// round-trip, so the files stay diffable across runs.
func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func (r Row) record() []string {
	var earnings string
	if r.EarningsDate != nil {
		earnings = r.EarningsDate.String()
	}
	return []string{
		r.Date.String(), r.Symbol, r.Sector, r.RiskCategory, r.Currency,
		fmtFloat(r.Shares), fmtFloat(r.Price), fmtFloat(r.BookCost), fmtFloat(r.BookCostBase),
		fmtFloat(r.Value), fmtFloat(r.ValueBase), fmtFloat(r.CostBasis), fmtFloat(r.CostBasisBase),
		fmtFloat(r.PL), fmtFloat(r.PLBase), fmtFloat(r.PLPct),
		fmtFloat(r.Dividends), fmtFloat(r.DividendsBase),
		fmtFloat(r.CurrentFX), fmtFloat(r.AvgFX), fmtFloat(r.FXPnL),
		r.Source, earnings, r.Thesis,
	}
}

func decodeRow(record []string) (Row, error) {
	if len(record) != len(unifiedHeader) {
		return Row{}, fmt.Errorf("got %d columns, want %d", len(record), len(unifiedHeader))
	}

	day, err := date.Parse(record[0])
	if err != nil {
		return Row{}, err
	}
	r := Row{
		Date:         day,
		Symbol:       record[1],
		Sector:       record[2],
		RiskCategory: record[3],
		Currency:     record[4],
		Source:       record[21],
		Thesis:       record[23],
	}
	if record[22] != "" {
		d, err := date.Parse(record[22])
		if err != nil {
			return Row{}, fmt.Errorf("earnings date: %w", err)
		}
		r.EarningsDate = &d
	}

	floats := []*float64{
		&r.Shares, &r.Price, &r.BookCost, &r.BookCostBase,
		&r.Value, &r.ValueBase, &r.CostBasis, &r.CostBasisBase,
		&r.PL, &r.PLBase, &r.PLPct,
		&r.Dividends, &r.DividendsBase,
		&r.CurrentFX, &r.AvgFX, &r.FXPnL,
	}
	for i, p := range floats {
		v, err := parseFloat(record[5+i])
		if err != nil {
			return Row{}, fmt.Errorf("column %s: %w", unifiedHeader[5+i], err)
		}
		*p = v
	}
	return r, nil
}

// EncodeHistory writes rows in the unified history format.
func EncodeHistory(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(unifiedHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeHistory reads rows in the unified history format.
func DecodeHistory(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(unifiedHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse history: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !equalRecord(records[0], unifiedHeader) {
		return nil, fmt.Errorf("unexpected history header %q", strings.Join(records[0], ","))
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := decodeRow(record)
		if err != nil {
			return nil, fmt.Errorf("history line %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func equalRecord(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LoadHistory reads the unified history file; a missing file is an empty
// history, not an error.
func LoadHistory(path string) ([]Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open history %q: %w", path, err)
	}
	defer f.Close()

	rows, err := DecodeHistory(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode history %q: %w", path, err)
	}
	return rows, nil
}

// LatestRows returns the rows of the most recent snapshot date.
func LatestRows(rows []Row) []Row {
	var last date.Date
	for _, r := range rows {
		if r.Date.After(last) {
			last = r.Date
		}
	}
	var latest []Row
	for _, r := range rows {
		if r.Date == last {
			latest = append(latest, r)
		}
	}
	return latest
}

// UpsertHistory replaces the snapshot date's rows with the given ones and
// rewrites the file sorted by (date, sector, symbol). Running the same
// snapshot twice leaves the file byte-identical.
func UpsertHistory(path string, snapshot []Row, on date.Date) error {
	existing, err := LoadHistory(path)
	if err != nil {
		return err
	}

	merged := make([]Row, 0, len(existing)+len(snapshot))
	for _, r := range existing {
		if r.Date != on {
			merged = append(merged, r)
		}
	}
	merged = append(merged, snapshot...)

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		if a.Sector != b.Sector {
			return a.Sector < b.Sector
		}
		return a.Symbol < b.Symbol
	})

	return writeAtomic(path, func(w io.Writer) error { return EncodeHistory(w, merged) })
}

// NewsRow is one instrument's news line: up to five headlines plus the
// thesis reference, stamped with the snapshot date.
type NewsRow struct {
	Ticker string
	Thesis string
	Items  []NewsItem // newest first, at most five make it to the file
	Date   date.Date
}

// newsHeader is the column order of the news history file. The file is
// pipe-separated because headlines are full of commas.
var newsHeader = func() []string {
	h := []string{"ticker", "thesis"}
	for i := 1; i <= maxNewsItems; i++ {
		n := strconv.Itoa(i)
		h = append(h, "news_"+n+"_title", "news_"+n+"_link", "news_"+n+"_date")
	}
	return append(h, "Date")
}()

const maxNewsItems = 5

// sanitizeHeadline keeps a title on one line and out of the delimiter's way.
func sanitizeHeadline(s string) string {
	s = strings.NewReplacer("|", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func (n NewsRow) record() []string {
	rec := []string{n.Ticker, n.Thesis}
	for i := 0; i < maxNewsItems; i++ {
		if i < len(n.Items) {
			item := n.Items[i]
			rec = append(rec, sanitizeHeadline(item.Title), item.Link, item.Date.String())
		} else {
			rec = append(rec, "", "", "")
		}
	}
	return append(rec, n.Date.String())
}

func decodeNewsRow(record []string) (NewsRow, error) {
	if len(record) != len(newsHeader) {
		return NewsRow{}, fmt.Errorf("got %d columns, want %d", len(record), len(newsHeader))
	}

	n := NewsRow{Ticker: record[0], Thesis: record[1]}
	for i := 0; i < maxNewsItems; i++ {
		title, link, dateStr := record[2+3*i], record[3+3*i], record[4+3*i]
		if title == "" && link == "" && dateStr == "" {
			continue
		}
		item := NewsItem{Title: title, Link: link}
		if dateStr != "" {
			d, err := date.Parse(dateStr)
			if err != nil {
				return NewsRow{}, fmt.Errorf("news_%d_date: %w", i+1, err)
			}
			item.Date = d
		}
		n.Items = append(n.Items, item)
	}

	day, err := date.Parse(record[len(record)-1])
	if err != nil {
		return NewsRow{}, err
	}
	n.Date = day
	return n, nil
}

// EncodeNewsHistory writes news rows in the pipe-separated history format.
func EncodeNewsHistory(w io.Writer, rows []NewsRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = '|'
	if err := cw.Write(newsHeader); err != nil {
		return err
	}
	for _, n := range rows {
		if err := cw.Write(n.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeNewsHistory reads news rows in the pipe-separated history format. A
// leading byte order mark is tolerated, earlier producers wrote one.
func DecodeNewsHistory(r io.Reader) ([]NewsRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = '|'
	cr.FieldsPerRecord = len(newsHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse news history: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !equalRecord(records[0], newsHeader) {
		return nil, fmt.Errorf("unexpected news history header %q", strings.Join(records[0], "|"))
	}

	rows := make([]NewsRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := decodeNewsRow(record)
		if err != nil {
			return nil, fmt.Errorf("news history line %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadNewsHistory reads the news history file; a missing file is an empty
// history, not an error.
func LoadNewsHistory(path string) ([]NewsRow, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open news history %q: %w", path, err)
	}
	defer f.Close()

	rows, err := DecodeNewsHistory(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode news history %q: %w", path, err)
	}
	return rows, nil
}

// LatestNewsRows returns the news rows of the most recent snapshot date.
func LatestNewsRows(rows []NewsRow) []NewsRow {
	var last date.Date
	for _, n := range rows {
		if n.Date.After(last) {
			last = n.Date
		}
	}
	var latest []NewsRow
	for _, n := range rows {
		if n.Date == last {
			latest = append(latest, n)
		}
	}
	return latest
}

// UpsertNewsHistory replaces the snapshot date's news rows and rewrites the
// file sorted by (date, ticker).
func UpsertNewsHistory(path string, rows []NewsRow, on date.Date) error {
	existing, err := LoadNewsHistory(path)
	if err != nil {
		return err
	}

	merged := make([]NewsRow, 0, len(existing)+len(rows))
	for _, n := range existing {
		if n.Date != on {
			merged = append(merged, n)
		}
	}
	merged = append(merged, rows...)

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		return a.Ticker < b.Ticker
	})

	return writeAtomic(path, func(w io.Writer) error { return EncodeNewsHistory(w, merged) })
}

// writeAtomic writes through a temp sibling and a rename, so a crashed run
// never leaves a half-written history behind.
func writeAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create directory for %q: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

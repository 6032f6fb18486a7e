package contracts

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical date format for all row keys and API fields
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC-midnight time
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// NormalizeTicker upper-cases and trims a ticker symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ReturnRow is one trading day of adjusted prices and derived daily returns.
// The first observation per ticker has nil returns.
type ReturnRow struct {
	Ticker   string     `json:"ticker"`
	Date     time.Time  `json:"date"`
	AdjClose float64    `json:"adj_close"`
	Ret1D    *float64   `json:"ret_1d"`
	LogRet1D *float64   `json:"log_ret_1d"`
	Volume   *float64   `json:"volume"`
}

// WideSnapshot is one filing date of fundamentals for a ticker, pivoted so
// each tracked concept maps to its reported value. A concept absent from the
// map was not reported at that filing date.
type WideSnapshot struct {
	Ticker   string             `json:"ticker"`
	Filed    time.Time          `json:"filed"`
	Concepts map[string]float64 `json:"concepts"`
}

// PanelRow is a ReturnRow with the most recent fundamentals filed on or
// before its trading date attached. Filed is nil when no filing precedes the
// row; every concept value is then nil as well.
type PanelRow struct {
	Ticker   string     `json:"ticker"`
	Date     time.Time  `json:"date"`
	AdjClose float64    `json:"adj_close"`
	Ret1D    *float64   `json:"ret_1d"`
	LogRet1D *float64   `json:"log_ret_1d"`
	Volume   *float64   `json:"volume"`
	Filed    *time.Time `json:"filed"`

	// Concepts holds the attached fundamental values keyed by concept name.
	// Absent key = null.
	Concepts map[string]float64 `json:"concepts"`
}

// Concept returns the attached value for a concept, if any
func (r *PanelRow) Concept(name string) (float64, bool) {
	v, ok := r.Concepts[name]
	return v, ok
}

// ScoredRow is a PanelRow with trailing features and the momentum score.
// ScoreMom is nil on degenerate windows (Ret20D nil, or Vol20D nil or zero);
// the decision path substitutes the documented fallbacks instead.
type ScoredRow struct {
	PanelRow

	Ret5D    *float64 `json:"ret_5d"`
	Ret20D   *float64 `json:"ret_20d"`
	Vol20D   *float64 `json:"vol_20d"`
	Vol60D   *float64 `json:"vol_60d"`
	ScoreMom *float64 `json:"score_mom"`
}

// Panel is the aligned daily panel: its rows sorted by (ticker, date) and
// the concept column order they were pivoted with.
type Panel struct {
	Concepts []string
	Rows     []ScoredRow
}

// Tickers returns the distinct tickers in the panel, sorted
func (p *Panel) Tickers() []string {
	seen := make(map[string]bool)
	var out []string
	for i := range p.Rows {
		t := p.Rows[i].Ticker
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// RowsFor returns the rows for one ticker in date order
func (p *Panel) RowsFor(ticker string) []ScoredRow {
	t := NormalizeTicker(ticker)
	var out []ScoredRow
	for i := range p.Rows {
		if p.Rows[i].Ticker == t {
			out = append(out, p.Rows[i])
		}
	}
	return out
}

// Row returns the row for a (ticker, date) pair, if present
func (p *Panel) Row(ticker string, date time.Time) (*ScoredRow, bool) {
	t := NormalizeTicker(ticker)
	for i := range p.Rows {
		if p.Rows[i].Ticker == t && p.Rows[i].Date.Equal(date) {
			return &p.Rows[i], true
		}
	}
	return nil, false
}

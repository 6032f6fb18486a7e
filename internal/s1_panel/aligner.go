package s1_panel

import (
	"sort"

	"github.com/jwlim/pitfolio/internal/contracts"
)

// Aligner merges wide fundamental snapshots onto the daily return calendar
// with a backward as-of join: each trading day sees the latest snapshot
// filed on or before it, never one filed after. Snapshots arrive with
// strictly increasing filed dates per ticker (the normalizer collapses
// same-day duplicates).
type Aligner struct{}

// NewAligner creates an aligner
func NewAligner() *Aligner {
	return &Aligner{}
}

// Align produces exactly one panel row per input return row. Tickers with
// no snapshots still produce complete rows with nil fundamentals; the join
// never drops or duplicates calendar rows.
func (a *Aligner) Align(returns []contracts.ReturnRow, snapshots []contracts.WideSnapshot) []contracts.PanelRow {
	returnsByTicker := make(map[string][]contracts.ReturnRow)
	var tickers []string
	for _, r := range returns {
		t := contracts.NormalizeTicker(r.Ticker)
		if _, ok := returnsByTicker[t]; !ok {
			tickers = append(tickers, t)
		}
		r.Ticker = t
		returnsByTicker[t] = append(returnsByTicker[t], r)
	}
	sort.Strings(tickers)

	snapsByTicker := make(map[string][]contracts.WideSnapshot)
	for _, s := range snapshots {
		t := contracts.NormalizeTicker(s.Ticker)
		snapsByTicker[t] = append(snapsByTicker[t], s)
	}

	out := make([]contracts.PanelRow, 0, len(returns))
	for _, t := range tickers {
		out = append(out, alignTicker(returnsByTicker[t], snapsByTicker[t])...)
	}
	return out
}

// alignTicker runs the monotonic merge for one ticker. Both streams are
// visited once in date order; matching on equality is allowed.
func alignTicker(returns []contracts.ReturnRow, snaps []contracts.WideSnapshot) []contracts.PanelRow {
	sort.SliceStable(returns, func(i, j int) bool {
		return returns[i].Date.Before(returns[j].Date)
	})
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Filed.Before(snaps[j].Filed)
	})

	out := make([]contracts.PanelRow, 0, len(returns))
	j := 0
	for _, r := range returns {
		// Advance to the last snapshot filed on or before this trading day
		for j < len(snaps) && !snaps[j].Filed.After(r.Date) {
			j++
		}

		row := contracts.PanelRow{
			Ticker:   r.Ticker,
			Date:     r.Date,
			AdjClose: r.AdjClose,
			Ret1D:    r.Ret1D,
			LogRet1D: r.LogRet1D,
			Volume:   r.Volume,
		}
		if j > 0 {
			filed := snaps[j-1].Filed
			row.Filed = &filed
			row.Concepts = snaps[j-1].Concepts
		}
		out = append(out, row)
	}
	return out
}

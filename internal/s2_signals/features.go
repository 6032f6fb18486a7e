package s2_signals

import (
	"math"

	"github.com/jwlim/pitfolio/internal/contracts"
)

// Rolling window lengths, in trading-day observations
const (
	WindowRetShort = 5
	WindowRetLong  = 20
	WindowVolShort = 20
	WindowVolLong  = 60
)

// FeatureEngine derives trailing features and the momentum score per panel
// row. Windows are computed independently per ticker over its own
// chronological sequence, never across tickers. Pure: no side effects.
type FeatureEngine struct{}

// NewFeatureEngine creates a feature engine
func NewFeatureEngine() *FeatureEngine {
	return &FeatureEngine{}
}

// Compute turns panel rows (sorted by ticker, date) into scored rows of
// equal length. A window is undefined until it holds its full count of
// observations, and any nil daily return inside the window keeps it
// undefined, so early history never leaks partial features.
func (e *FeatureEngine) Compute(rows []contracts.PanelRow) []contracts.ScoredRow {
	out := make([]contracts.ScoredRow, len(rows))

	start := 0
	for i := 1; i <= len(rows); i++ {
		if i == len(rows) || rows[i].Ticker != rows[start].Ticker {
			e.computeTicker(rows[start:i], out[start:i])
			start = i
		}
	}
	return out
}

// computeTicker fills scored rows for one ticker's chronological slice
func (e *FeatureEngine) computeTicker(rows []contracts.PanelRow, out []contracts.ScoredRow) {
	for i := range rows {
		sr := contracts.ScoredRow{PanelRow: rows[i]}

		sr.Ret5D = rollingSum(rows, i, WindowRetShort)
		sr.Ret20D = rollingSum(rows, i, WindowRetLong)
		sr.Vol20D = rollingStd(rows, i, WindowVolShort)
		sr.Vol60D = rollingStd(rows, i, WindowVolLong)
		sr.ScoreMom = momentumScore(sr.Ret20D, sr.Vol20D)

		out[i] = sr
	}
}

// window extracts the trailing daily returns ending at row i, or nil when
// the window is short of history or contains a null return
func window(rows []contracts.PanelRow, i, n int) []float64 {
	if i+1 < n {
		return nil
	}
	vals := make([]float64, 0, n)
	for j := i - n + 1; j <= i; j++ {
		if contracts.IsNull(rows[j].Ret1D) {
			return nil
		}
		vals = append(vals, *rows[j].Ret1D)
	}
	return vals
}

// rollingSum is the trailing sum of ret_1d over the last n observations,
// inclusive of the current day
func rollingSum(rows []contracts.PanelRow, i, n int) *float64 {
	vals := window(rows, i, n)
	if vals == nil {
		return nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return contracts.Float(sum)
}

// rollingStd is the trailing standard deviation of ret_1d over the last n
// observations. The divisor is n (population convention), not n-1.
func rollingStd(rows []contracts.PanelRow, i, n int) *float64 {
	vals := window(rows, i, n)
	if vals == nil {
		return nil
	}
	// A window of identical returns has zero deviation. Summing squared
	// differences against the computed mean leaves floating-point residue
	// (~1e-18), which would make the zero-volatility case unreachable, so
	// short-circuit to an exact 0.
	constant := true
	for _, v := range vals[1:] {
		if v != vals[0] {
			constant = false
			break
		}
	}
	if constant {
		return contracts.Float(0)
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	variance := 0.0
	for _, v := range vals {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(vals))

	return contracts.Float(math.Sqrt(variance))
}

// momentumScore is return_20d / volatility_20d, defined only when both
// components are defined and volatility is non-zero. The decision path
// substitutes fallbacks for the degenerate cases; this column stays null so
// the threshold resolver can exclude them.
func momentumScore(ret20, vol20 *float64) *float64 {
	if contracts.IsNull(ret20) || contracts.IsNull(vol20) || *vol20 == 0 {
		return nil
	}
	s := *ret20 / *vol20
	if math.IsInf(s, 0) || math.IsNaN(s) {
		return nil
	}
	return contracts.Float(s)
}

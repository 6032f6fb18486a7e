package s3_decision

import (
	"sort"
	"time"

	"github.com/jwlim/pitfolio/internal/contracts"
)

// Fallback thresholds when a fitting window has no usable observations.
// Callers see n_used == 0 and know the cut points are not empirically
// grounded.
const (
	FallbackBuyThreshold  = 0.25
	FallbackSellThreshold = -0.25
)

// Resolver computes empirical buy/sell cut points from historical momentum
// scores. Stateless per invocation; callers may cache results but the
// resolver itself never does.
type Resolver struct{}

// NewResolver creates a threshold resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the qBuy and qSell quantiles of the momentum score for
// one ticker over [start, end] (inclusive, either bound optional), plus the
// number of observations used. Null scores are excluded. Zero observations
// yield the documented fallback pair with a used-count of 0.
func (r *Resolver) Resolve(rows []contracts.ScoredRow, ticker string, qBuy, qSell float64, start, end *time.Time) (float64, float64, int) {
	t := contracts.NormalizeTicker(ticker)

	var scores []float64
	for i := range rows {
		row := &rows[i]
		if row.Ticker != t {
			continue
		}
		if start != nil && row.Date.Before(*start) {
			continue
		}
		if end != nil && row.Date.After(*end) {
			continue
		}
		if contracts.IsNull(row.ScoreMom) {
			continue
		}
		scores = append(scores, *row.ScoreMom)
	}

	if len(scores) == 0 {
		return FallbackBuyThreshold, FallbackSellThreshold, 0
	}

	sort.Float64s(scores)
	return Quantile(scores, qBuy), Quantile(scores, qSell), len(scores)
}

// Quantile returns the q quantile of sorted values using linear
// interpolation between order statistics: h = (n-1)q, interpolating between
// values[floor(h)] and values[floor(h)+1]. One convention, everywhere, so
// resolved thresholds are reproducible.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * q
	lo := int(h)
	frac := h - float64(lo)
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

package s2_signals

import "github.com/jwlim/pitfolio/internal/contracts"

// HeuristicScore computes the decision-time momentum score for a scored
// row, with the degenerate windows handled explicitly: a null 20-day return
// contributes 0 to the numerator, and a null or zero 20-day volatility
// makes the denominator 1.0, so the ratio is always defined. The returned
// components record which inputs were degenerate (nil) so callers can see
// when the score is not empirically grounded.
func HeuristicScore(row *contracts.ScoredRow) (float64, contracts.ScoreComponents) {
	components := contracts.ScoreComponents{}

	ret20 := 0.0
	if !contracts.IsNull(row.Ret20D) {
		ret20 = *row.Ret20D
		components.Ret20D = contracts.Float(ret20)
	}

	vol20 := 1.0
	if !contracts.IsNull(row.Vol20D) && *row.Vol20D != 0 {
		vol20 = *row.Vol20D
		components.Vol20D = contracts.Float(vol20)
	}

	score := ret20 / vol20
	components.Score = score
	return score, components
}

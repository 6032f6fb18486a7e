package s3_decision

import "github.com/jwlim/pitfolio/internal/contracts"

// Decide maps a score and thresholds to an action. Both boundaries are
// inclusive and the buy branch is evaluated first. The function does not
// validate buyThreshold > sellThreshold; an inverted pair is undefined
// input and passes through untouched.
func Decide(score, buyThreshold, sellThreshold float64) contracts.Action {
	if score >= buyThreshold {
		return contracts.ActionBuy
	}
	if score <= sellThreshold {
		return contracts.ActionSell
	}
	return contracts.ActionHold
}

// Confidence maps a score to [0, 1] as min(1, |score|)
func Confidence(score float64) float64 {
	if score < 0 {
		score = -score
	}
	if score > 1 {
		return 1
	}
	return score
}

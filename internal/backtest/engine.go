package backtest

import (
	"math"
	"time"

	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/internal/risk"
	"github.com/jwlim/pitfolio/internal/s2_signals"
	"github.com/jwlim/pitfolio/internal/s3_decision"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// Engine replays decisions over scored rows and measures the resulting
// strategy with the position-replication metric: the day's action maps
// directly to a position (BUY=+1, HOLD=0, SELL=-1) and equity is the
// cumulative product of (1 + position x ret_1d). This is a replication
// summary, distinct from the live Simulator's literal share accounting;
// the two are kept as separately named metrics on purpose.
type Engine struct {
	logger *logger.Logger
}

// EquityPoint is one day of the replication equity curve
type EquityPoint struct {
	Date     time.Time        `json:"date"`
	Action   contracts.Action `json:"action"`
	Position float64          `json:"position"`
	Return   float64          `json:"strategy_ret_1d"`
	Equity   float64          `json:"equity"`
}

// RunResult holds the replication backtest outcome
type RunResult struct {
	TotalReturn float64
	DailyMean   float64
	DailyVol    float64
	SharpeLike  float64
	VaR95       float64
	CVaR95      float64
	NDays       int
	Curve       []EquityPoint
}

// NewEngine creates a backtest engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Run replays one ticker's rows (already filtered to the run window, in
// date order) against fixed thresholds. Thresholds are resolved once for
// the whole run, never re-resolved daily. Nil input yields a zeroed
// result with NDays 0; the caller turns that into a structured failure.
func (e *Engine) Run(rows []contracts.ScoredRow, buyThreshold, sellThreshold float64) *RunResult {
	result := &RunResult{
		Curve: make([]EquityPoint, 0, len(rows)),
	}

	equity := 1.0
	returns := make([]float64, 0, len(rows))

	for i := range rows {
		row := &rows[i]

		score, _ := s2_signals.HeuristicScore(row)
		action := s3_decision.Decide(score, buyThreshold, sellThreshold)
		position := positionFor(action)

		ret := position * contracts.FloatOr(row.Ret1D, 0)
		equity *= 1.0 + ret
		returns = append(returns, ret)

		result.Curve = append(result.Curve, EquityPoint{
			Date:     row.Date,
			Action:   action,
			Position: position,
			Return:   ret,
			Equity:   equity,
		})
	}

	result.NDays = len(rows)
	if result.NDays == 0 {
		return result
	}

	result.TotalReturn = equity - 1.0
	result.DailyMean = mean(returns)
	result.DailyVol = populationStd(returns)
	if result.DailyVol > 0 {
		result.SharpeLike = result.DailyMean / result.DailyVol
	}
	tail := risk.HistoricalVaR(returns, 0.95)
	result.VaR95 = tail.VaR
	result.CVaR95 = tail.CVaR

	e.logger.WithFields(map[string]interface{}{
		"n_days":       result.NDays,
		"total_return": result.TotalReturn,
		"sharpe_like":  result.SharpeLike,
	}).Debug("Replication backtest completed")

	return result
}

// positionFor maps an action to the replication position
func positionFor(action contracts.Action) float64 {
	switch action {
	case contracts.ActionBuy:
		return 1.0
	case contracts.ActionSell:
		return -1.0
	default:
		return 0.0
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStd divides by n, matching the feature engine's volatility
// convention, and never returns NaN
func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

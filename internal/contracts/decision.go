package contracts

import "strings"

// Action is a discrete trading decision
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// NormalizeAction maps arbitrary input to a valid Action; anything unknown
// becomes HOLD so the simulator stays stable.
func NormalizeAction(s string) Action {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionBuy:
		return ActionBuy
	case ActionSell:
		return ActionSell
	case ActionHold:
		return ActionHold
	default:
		return ActionHold
	}
}

// Threshold methods
const (
	MethodFixed      = "fixed"
	MethodPercentile = "percentile"
)

// ScoreComponents records how a decision score was assembled. A nil
// component means the underlying window was degenerate (too little history,
// or zero volatility) and a fallback fed the ratio instead.
type ScoreComponents struct {
	Ret20D *float64 `json:"ret_20d"`
	Vol20D *float64 `json:"vol_20d"`
	Score  float64  `json:"score"`
}

// Thresholds carries the resolved buy/sell cut points. The quantile fields
// are nil in fixed mode.
type Thresholds struct {
	Buy       float64  `json:"buy"`
	Sell      float64  `json:"sell"`
	QBuy      *float64 `json:"q_buy"`
	QSell     *float64 `json:"q_sell"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
	NUsed     *int     `json:"n_used"`
}

// DecisionResult is the structured outcome of a decide call. OK is false
// (with Error set) when no panel row exists for the requested (ticker, date)
// or the date is unparsable; callers batch-running many pairs skip those.
type DecisionResult struct {
	OK              bool            `json:"ok"`
	Error           string          `json:"error,omitempty"`
	Ticker          string          `json:"ticker,omitempty"`
	Date            string          `json:"date,omitempty"`
	Action          Action          `json:"action,omitempty"`
	Score           float64         `json:"score"`
	Confidence      float64         `json:"confidence"`
	Details         ScoreComponents `json:"details"`
	ThresholdMethod string          `json:"threshold_method,omitempty"`
	Thresholds      Thresholds      `json:"thresholds"`
}

// BacktestResult is the structured outcome of a position-replication
// backtest. TotalReturn is final equity minus one, where equity is the
// cumulative product of (1 + position x ret_1d).
type BacktestResult struct {
	OK              bool       `json:"ok"`
	Error           string     `json:"error,omitempty"`
	Ticker          string     `json:"ticker,omitempty"`
	StartDate       string     `json:"start_date,omitempty"`
	EndDate         string     `json:"end_date,omitempty"`
	ThresholdMethod string     `json:"threshold_method,omitempty"`
	Thresholds      Thresholds `json:"thresholds"`
	TotalReturn     float64    `json:"total_return"`
	DailyMean       float64    `json:"daily_mean"`
	DailyVol        float64    `json:"daily_vol"`
	SharpeLike      float64    `json:"daily_sharpe_like"`
	VaR95           float64    `json:"var_95"`
	CVaR95          float64    `json:"cvar_95"`
	NDays           int        `json:"n_days"`
}

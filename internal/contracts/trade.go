package contracts

// Sizing policies for the live simulator
const (
	SizingOneShare = "one_share"
	SizingAllIn    = "all_in"
)

// NormalizeSizing maps unknown sizing policies to the default one_share
func NormalizeSizing(s string) string {
	switch s {
	case SizingAllIn:
		return SizingAllIn
	default:
		return SizingOneShare
	}
}

// TradeEvent is one simulated trading day: the action taken, the shares it
// moved (signed, positive buy), and the resulting portfolio state. Events
// are append-only, one per day in the run window.
type TradeEvent struct {
	Date            string  `json:"date"`
	Price           float64 `json:"price"`
	Action          Action  `json:"action"`
	SharesTraded    int64   `json:"shares_traded"`
	SharesHeld      int64   `json:"shares_held"`
	TransactionCost float64 `json:"transaction_cost"`
	Cash            float64 `json:"cash"`
	PortfolioValue  float64 `json:"portfolio_value"`
	Return1D        float64 `json:"portfolio_return_1d"`
}

// Trajectory is the persisted log of a live-simulator run
type Trajectory struct {
	RunID       string       `json:"run_id"`
	Ticker      string       `json:"ticker"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	InitialCash float64      `json:"initial_cash"`
	Sizing      string       `json:"sizing"`
	CostBps     float64      `json:"transaction_cost_bps"`
	Events      []TradeEvent `json:"trajectory"`
}

// SimulationResult summarizes a live cash/shares run. Unlike
// BacktestResult's replication metric, TotalReturn here is literal share
// accounting: final portfolio value over initial cash, minus one.
type SimulationResult struct {
	OK          bool    `json:"ok"`
	Error       string  `json:"error,omitempty"`
	Ticker      string  `json:"ticker,omitempty"`
	StartDate   string  `json:"start_date,omitempty"`
	EndDate     string  `json:"end_date,omitempty"`
	TotalReturn float64 `json:"total_return"`
	DailyMean   float64 `json:"daily_mean"`
	DailyVol    float64 `json:"daily_vol"`
	SharpeLike  float64 `json:"daily_sharpe_like"`
	VaR95       float64 `json:"var_95"`
	CVaR95      float64 `json:"cvar_95"`
	NDays       int     `json:"n_days"`
	FinalCash   float64 `json:"final_cash"`
	FinalShares int64   `json:"final_shares"`
	TotalCosts  float64 `json:"total_costs"`

	Trajectory *Trajectory `json:"-"`
}

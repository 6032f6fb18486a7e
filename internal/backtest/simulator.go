package backtest

import (
	"math"

	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/internal/risk"
	"github.com/jwlim/pitfolio/internal/s2_signals"
	"github.com/jwlim/pitfolio/internal/s3_decision"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// SimConfig configures one live-simulator run
type SimConfig struct {
	RunID         string
	Ticker        string
	StartDate     string
	EndDate       string
	InitialCash   float64
	Sizing        string // one_share, all_in
	CostBps       float64
	BuyThreshold  float64
	SellThreshold float64
}

// Simulator replays actions with literal cash and share bookkeeping: one
// portfolio state per (ticker, run), reset at the start of each run. Its
// total return is final portfolio value over initial cash minus one, which
// differs from the Engine's replication metric and is reported under a
// separate name.
type Simulator struct {
	logger *logger.Logger

	cash   float64
	shares int64
}

// NewSimulator creates a live trading simulator
func NewSimulator(log *logger.Logger) *Simulator {
	return &Simulator{logger: log}
}

// Initialize resets the portfolio state for a new run
func (s *Simulator) Initialize(cash float64) {
	s.cash = cash
	s.shares = 0
}

// State returns the current cash and shares held
func (s *Simulator) State() (float64, int64) {
	return s.cash, s.shares
}

// Run replays one ticker's rows (already filtered to the run window, in
// date order) and returns the summary plus the full trade trajectory.
// Thresholds are fixed for the whole run.
func (s *Simulator) Run(rows []contracts.ScoredRow, cfg SimConfig) *contracts.SimulationResult {
	cfg.Sizing = contracts.NormalizeSizing(cfg.Sizing)
	s.Initialize(cfg.InitialCash)

	trajectory := &contracts.Trajectory{
		RunID:       cfg.RunID,
		Ticker:      cfg.Ticker,
		StartDate:   cfg.StartDate,
		EndDate:     cfg.EndDate,
		InitialCash: cfg.InitialCash,
		Sizing:      cfg.Sizing,
		CostBps:     cfg.CostBps,
		Events:      make([]contracts.TradeEvent, 0, len(rows)),
	}

	totalCosts := 0.0
	var prevValue *float64
	returns := make([]float64, 0, len(rows))

	for i := range rows {
		row := &rows[i]
		price := row.AdjClose

		score, _ := s2_signals.HeuristicScore(row)
		action := s3_decision.Decide(score, cfg.BuyThreshold, cfg.SellThreshold)

		target := targetPosition(action, s.shares)
		cash, shares, cost, traded := applyTrade(s.cash, s.shares, price, target, cfg.Sizing, cfg.CostBps)
		s.cash, s.shares = cash, shares
		totalCosts += cost

		value := s.cash + float64(s.shares)*price

		dailyReturn := 0.0
		if prevValue != nil && *prevValue != 0 {
			dailyReturn = value / *prevValue - 1.0
		}
		prevValue = &value
		returns = append(returns, dailyReturn)

		trajectory.Events = append(trajectory.Events, contracts.TradeEvent{
			Date:            row.Date.Format(contracts.DateLayout),
			Price:           price,
			Action:          action,
			SharesTraded:    traded,
			SharesHeld:      s.shares,
			TransactionCost: cost,
			Cash:            s.cash,
			PortfolioValue:  value,
			Return1D:        dailyReturn,
		})
	}

	result := &contracts.SimulationResult{
		OK:          true,
		Ticker:      cfg.Ticker,
		StartDate:   cfg.StartDate,
		EndDate:     cfg.EndDate,
		NDays:       len(rows),
		FinalCash:   s.cash,
		FinalShares: s.shares,
		TotalCosts:  totalCosts,
		Trajectory:  trajectory,
	}

	if len(rows) > 0 && cfg.InitialCash > 0 {
		final := trajectory.Events[len(trajectory.Events)-1].PortfolioValue
		result.TotalReturn = final/cfg.InitialCash - 1.0
	}
	result.DailyMean = mean(returns)
	result.DailyVol = populationStd(returns)
	if result.DailyVol > 0 {
		result.SharpeLike = result.DailyMean / result.DailyVol
	}
	tail := risk.HistoricalVaR(returns, 0.95)
	result.VaR95 = tail.VaR
	result.CVaR95 = tail.CVaR

	s.logger.WithFields(map[string]interface{}{
		"ticker":       cfg.Ticker,
		"run_id":       cfg.RunID,
		"n_days":       result.NDays,
		"total_return": result.TotalReturn,
		"final_cash":   result.FinalCash,
		"final_shares": result.FinalShares,
	}).Info("Simulation run completed")

	return result
}

// targetPosition converts an action into a 0/1 exposure. HOLD keeps the
// previous day's position. Long-only: SELL exits to flat.
func targetPosition(action contracts.Action, sharesHeld int64) int {
	switch action {
	case contracts.ActionBuy:
		return 1
	case contracts.ActionSell:
		return 0
	default:
		if sharesHeld > 0 {
			return 1
		}
		return 0
	}
}

// transactionCost charges basis points on the notional traded
func transactionCost(price float64, sharesTraded int64, bps float64) float64 {
	notional := math.Abs(float64(sharesTraded)) * price
	return notional * (bps / 10_000.0)
}

// applyTrade moves the portfolio towards the target position under the
// sizing policy. A buy that would overdraw cash is rejected in full: no
// partial fill, no cost, shares_traded 0. A non-positive price makes the
// day a no-op.
func applyTrade(cash float64, sharesHeld int64, price float64, target int, sizing string, costBps float64) (float64, int64, float64, int64) {
	if price <= 0 {
		return cash, sharesHeld, 0, 0
	}

	var desired int64
	if sizing == contracts.SizingAllIn {
		if target == 1 {
			if sharesHeld > 0 {
				desired = sharesHeld
			} else {
				desired = int64(math.Floor(cash / price))
			}
		}
	} else {
		if target == 1 {
			desired = 1
		}
	}

	traded := desired - sharesHeld
	if traded == 0 {
		return cash, sharesHeld, 0, 0
	}

	cost := transactionCost(price, traded, costBps)

	if traded > 0 {
		spend := float64(traded)*price + cost
		if spend > cash {
			return cash, sharesHeld, 0, 0
		}
		return cash - spend, sharesHeld + traded, cost, traded
	}

	proceeds := float64(-traded)*price - cost
	return cash + proceeds, sharesHeld + traded, cost, traded
}

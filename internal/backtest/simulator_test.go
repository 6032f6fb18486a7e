package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/pkg/logger"
)

func simConfig(sizing string, cash, bps float64) SimConfig {
	return SimConfig{
		RunID:         "test-run",
		Ticker:        "TSLA",
		StartDate:     "2023-03-01",
		EndDate:       "2023-03-31",
		InitialCash:   cash,
		Sizing:        sizing,
		CostBps:       bps,
		BuyThreshold:  0.25,
		SellThreshold: -0.25,
	}
}

func TestSimulator_OneShareConservation(t *testing.T) {
	s := NewSimulator(logger.NewNop())

	days := tradingDays(4)
	rows := []contracts.ScoredRow{
		testRow("TSLA", days[0], 100, 0.5, 0),   // BUY 1 @ 100
		testRow("TSLA", days[1], 110, 0.0, 0.1), // HOLD, keep 1
		testRow("TSLA", days[2], 120, 0.0, 0.1), // HOLD, keep 1
		testRow("TSLA", days[3], 115, -0.5, 0),  // SELL 1 @ 115
	}

	result := s.Run(rows, simConfig(contracts.SizingOneShare, 1000, 0))
	require.True(t, result.OK)
	require.Equal(t, 4, result.NDays)

	// cash0 + sum of position x price change across held days:
	// bought at 100, sold at 115 -> +15, zero costs
	assert.InDelta(t, 1015.0, result.FinalCash, 1e-9)
	assert.Equal(t, int64(0), result.FinalShares)
	assert.Equal(t, 0.0, result.TotalCosts)
	assert.InDelta(t, 15.0/1000.0, result.TotalReturn, 1e-12)

	events := result.Trajectory.Events
	require.Len(t, events, 4)
	assert.Equal(t, int64(1), events[0].SharesTraded)
	assert.Equal(t, int64(0), events[1].SharesTraded)
	assert.Equal(t, int64(-1), events[3].SharesTraded)
	assert.Equal(t, 0.0, events[0].Return1D, "first day has no previous value")
}

func TestSimulator_AllInEntersWithFloor(t *testing.T) {
	s := NewSimulator(logger.NewNop())

	days := tradingDays(2)
	rows := []contracts.ScoredRow{
		testRow("TSLA", days[0], 30, 0.5, 0), // BUY floor(100/30)=3 shares
		testRow("TSLA", days[1], 30, 0.5, 0), // already holding: hold
	}

	result := s.Run(rows, simConfig(contracts.SizingAllIn, 100, 0))
	assert.Equal(t, int64(3), result.FinalShares)
	assert.InDelta(t, 10.0, result.FinalCash, 1e-9)
	assert.Equal(t, int64(0), result.Trajectory.Events[1].SharesTraded,
		"all_in must not pyramid while holding")
}

func TestSimulator_BuyRejectedWhenCashShort(t *testing.T) {
	s := NewSimulator(logger.NewNop())

	days := tradingDays(1)
	rows := []contracts.ScoredRow{
		testRow("TSLA", days[0], 150, 0.5, 0), // BUY 1 @ 150 with only 100 cash
	}

	result := s.Run(rows, simConfig(contracts.SizingOneShare, 100, 0))
	assert.Equal(t, int64(0), result.FinalShares, "no partial fill")
	assert.Equal(t, 100.0, result.FinalCash)
	assert.Equal(t, 0.0, result.TotalCosts)
	assert.Equal(t, int64(0), result.Trajectory.Events[0].SharesTraded)
}

func TestSimulator_TransactionCostCharged(t *testing.T) {
	s := NewSimulator(logger.NewNop())

	days := tradingDays(2)
	rows := []contracts.ScoredRow{
		testRow("TSLA", days[0], 100, 0.5, 0),  // BUY 1 @ 100
		testRow("TSLA", days[1], 100, -0.5, 0), // SELL 1 @ 100
	}

	// 10 bps on 100 notional = 0.10 per side
	result := s.Run(rows, simConfig(contracts.SizingOneShare, 1000, 10))
	assert.InDelta(t, 0.20, result.TotalCosts, 1e-9)
	assert.InDelta(t, 999.80, result.FinalCash, 1e-9)
}

func TestSimulator_CostRejectionIncludesCost(t *testing.T) {
	s := NewSimulator(logger.NewNop())

	days := tradingDays(1)
	rows := []contracts.ScoredRow{
		testRow("TSLA", days[0], 100, 0.5, 0),
	}

	// Exactly 100 cash cannot cover 100 price + cost
	result := s.Run(rows, simConfig(contracts.SizingOneShare, 100, 10))
	assert.Equal(t, int64(0), result.FinalShares)
	assert.Equal(t, 100.0, result.FinalCash)
}

func TestSimulator_NonPositivePriceIsNoOp(t *testing.T) {
	s := NewSimulator(logger.NewNop())

	days := tradingDays(2)
	rows := []contracts.ScoredRow{
		testRow("TSLA", days[0], 0, 0.5, 0), // bad price, no trade
		testRow("TSLA", days[1], 100, 0.5, 0),
	}

	result := s.Run(rows, simConfig(contracts.SizingOneShare, 1000, 0))
	assert.Equal(t, int64(0), result.Trajectory.Events[0].SharesTraded)
	assert.Equal(t, int64(1), result.Trajectory.Events[1].SharesTraded)
}

func TestSimulator_HoldKeepsPosition(t *testing.T) {
	s := NewSimulator(logger.NewNop())

	days := tradingDays(3)
	rows := []contracts.ScoredRow{
		testRow("TSLA", days[0], 100, 0.5, 0), // BUY
		testRow("TSLA", days[1], 105, 0.0, 0), // HOLD with shares -> stay long
		testRow("TSLA", days[2], 110, 0.0, 0), // HOLD -> still long
	}

	result := s.Run(rows, simConfig(contracts.SizingOneShare, 1000, 0))
	assert.Equal(t, int64(1), result.FinalShares)
}

func TestSimulator_UnknownSizingDefaultsToOneShare(t *testing.T) {
	s := NewSimulator(logger.NewNop())

	days := tradingDays(1)
	rows := []contracts.ScoredRow{
		testRow("TSLA", days[0], 10, 0.5, 0),
	}

	result := s.Run(rows, simConfig("martingale", 1000, 0))
	assert.Equal(t, int64(1), result.FinalShares)
	assert.Equal(t, contracts.SizingOneShare, result.Trajectory.Sizing)
}

func TestSimulator_DailyReturnSeries(t *testing.T) {
	s := NewSimulator(logger.NewNop())

	days := tradingDays(3)
	rows := []contracts.ScoredRow{
		testRow("TSLA", days[0], 100, 0.5, 0),
		testRow("TSLA", days[1], 110, 0.0, 0.1),
		testRow("TSLA", days[2], 99, 0.0, -0.1),
	}

	result := s.Run(rows, simConfig(contracts.SizingOneShare, 1000, 0))
	events := result.Trajectory.Events

	// Day 1: value 1010 vs 1000 -> +1.0%
	assert.InDelta(t, 0.01, events[1].Return1D, 1e-12)
	// Day 2: value 999 vs 1010
	assert.InDelta(t, 999.0/1010.0-1.0, events[2].Return1D, 1e-12)
}

func TestApplyTrade_SellProceedsNetOfCost(t *testing.T) {
	cash, shares, cost, traded := applyTrade(0, 2, 50, 0, contracts.SizingOneShare, 100)
	// one_share target 0 sells the full position to 0
	assert.Equal(t, int64(-2), traded)
	assert.Equal(t, int64(0), shares)
	// 100 bps on 100 notional = 1.0
	assert.InDelta(t, 1.0, cost, 1e-12)
	assert.InDelta(t, 99.0, cash, 1e-12)
}

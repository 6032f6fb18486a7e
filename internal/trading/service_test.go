package trading

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/internal/s0_data"
	"github.com/jwlim/pitfolio/pkg/config"
	"github.com/jwlim/pitfolio/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Trading: config.TradingConfig{
			BuyThreshold:  0.25,
			SellThreshold: -0.25,
			QBuy:          0.7,
			QSell:         0.3,
			InitialCash:   1_000_000,
			Sizing:        contracts.SizingOneShare,
		},
	}
}

// writeConstantPanel writes nDays of TSLA rows with a constant 1% daily
// return and a flat price, enough to fill the 20-day windows
func writeConstantPanel(t *testing.T, dir string, nDays int) string {
	t.Helper()
	path := filepath.Join(dir, "panel.csv")

	content := "ticker,date,adj_close,ret_1d,log_ret_1d,volume,filed,Revenues\n"
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < nDays; i++ {
		content += fmt.Sprintf("TSLA,%s,100,0.01,0.00995,1000,2023-10-23,500\n", day.Format(contracts.DateLayout))
		day = day.AddDate(0, 0, 1)
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestService(t *testing.T, panelPath string) *Service {
	t.Helper()
	log := logger.NewNop()
	cache := s0_data.NewPanelCache(panelPath, log)
	store := s0_data.NewTrajectoryStore(t.TempDir(), log)
	return NewService(testConfig(), cache, store, nil, nil, log)
}

func TestDecide_InvalidDate(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 5))

	res, err := svc.Decide(context.Background(), DecideParams{Ticker: "TSLA", Date: "01/02/2024"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "invalid date")
}

func TestDecide_UnknownPair(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 5))
	ctx := context.Background()

	res, err := svc.Decide(ctx, DecideParams{Ticker: "AAPL", Date: "2024-01-02"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "no panel row")

	res, err = svc.Decide(ctx, DecideParams{Ticker: "TSLA", Date: "2030-01-01"})
	require.NoError(t, err)
	assert.False(t, res.OK)
}

func TestDecide_MissingPanelFileIsAnError(t *testing.T) {
	svc := newTestService(t, filepath.Join(t.TempDir(), "absent.csv"))

	_, err := svc.Decide(context.Background(), DecideParams{Ticker: "TSLA", Date: "2024-01-02"})
	require.Error(t, err)
}

func TestDecide_FixedThresholds(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 30))
	ctx := context.Background()

	// Constant 1% daily return: ret_20d = 0.20 from the 20th row on, and a
	// zero 20-day volatility makes the score denominator fall back to 1.0,
	// so the score is exactly 0.20.
	res, err := svc.Decide(ctx, DecideParams{Ticker: "tsla", Date: "2024-01-31"})
	require.NoError(t, err)
	require.True(t, res.OK, res.Error)
	assert.Equal(t, "TSLA", res.Ticker)
	assert.InDelta(t, 0.20, res.Score, 1e-9)
	assert.Equal(t, contracts.ActionHold, res.Action)
	assert.Equal(t, contracts.MethodFixed, res.ThresholdMethod)
	assert.Equal(t, 0.25, res.Thresholds.Buy)
	assert.InDelta(t, 0.20, res.Confidence, 1e-9)
	require.NotNil(t, res.Details.Ret20D)
	assert.Nil(t, res.Details.Vol20D)

	// an inclusive buy boundary at the score flips the action
	buy := 0.20
	res, err = svc.Decide(ctx, DecideParams{
		Ticker:     "TSLA",
		Date:       "2024-01-31",
		Thresholds: ThresholdParams{Method: contracts.MethodFixed, Buy: &buy},
	})
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, contracts.ActionBuy, res.Action)
}

func TestDecide_EarlyRowScoresZero(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 30))

	// before 20 observations the return numerator falls back to 0
	res, err := svc.Decide(context.Background(), DecideParams{Ticker: "TSLA", Date: "2024-01-05"})
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, contracts.ActionHold, res.Action)
	assert.Nil(t, res.Details.Ret20D)
}

func TestResolveThresholds_PercentileFallsBackOnNoScores(t *testing.T) {
	// zero volatility everywhere means every score_mom is null, so the
	// percentile fit has nothing to use
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 30))

	th, method, err := svc.ResolveThresholds(context.Background(), "TSLA", ThresholdParams{
		Method: contracts.MethodPercentile,
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.MethodPercentile, method)
	assert.Equal(t, 0.25, th.Buy)
	assert.Equal(t, -0.25, th.Sell)
	require.NotNil(t, th.NUsed)
	assert.Equal(t, 0, *th.NUsed)
	require.NotNil(t, th.QBuy)
	assert.Equal(t, 0.7, *th.QBuy)
}

func TestResolveThresholds_InvalidWindow(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 5))

	bad := "not-a-date"
	_, _, err := svc.ResolveThresholds(context.Background(), "TSLA", ThresholdParams{
		Method:    contracts.MethodPercentile,
		StartDate: &bad,
	})
	require.Error(t, err)
}

func TestRunBacktest(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 30))
	ctx := context.Background()

	buy := 0.1
	res, err := svc.RunBacktest(ctx, BacktestParams{
		Ticker:     "TSLA",
		Thresholds: ThresholdParams{Method: contracts.MethodFixed, Buy: &buy},
	})
	require.NoError(t, err)
	require.True(t, res.OK, res.Error)
	assert.Equal(t, 30, res.NDays)
	assert.Equal(t, "2024-01-02", res.StartDate)
	assert.Equal(t, "2024-01-31", res.EndDate)

	// HOLD for the first 19 days (score 0), BUY from day 20 on: 11 days of
	// +1% compounding
	expected := math.Pow(1.01, 11) - 1
	assert.InDelta(t, expected, res.TotalReturn, 1e-9)
	assert.InDelta(t, 11*0.01/30, res.DailyMean, 1e-12)
}

func TestRunBacktest_WindowAndEmpty(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 30))
	ctx := context.Background()

	res, err := svc.RunBacktest(ctx, BacktestParams{
		Ticker:    "TSLA",
		StartDate: "2024-01-10",
		EndDate:   "2024-01-15",
	})
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 6, res.NDays)
	assert.Equal(t, "2024-01-10", res.StartDate)
	assert.Equal(t, "2024-01-15", res.EndDate)

	res, err = svc.RunBacktest(ctx, BacktestParams{Ticker: "TSLA", StartDate: "2031-01-01"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "no rows")
}

func TestSimulate_PersistsTrajectory(t *testing.T) {
	trajDir := t.TempDir()
	log := logger.NewNop()
	cache := s0_data.NewPanelCache(writeConstantPanel(t, t.TempDir(), 30), log)
	svc := NewService(testConfig(), cache, s0_data.NewTrajectoryStore(trajDir, log), nil, nil, log)

	buy := 0.1
	res, err := svc.Simulate(context.Background(), SimulateParams{
		Ticker:      "TSLA",
		InitialCash: 1000,
		Thresholds:  ThresholdParams{Method: contracts.MethodFixed, Buy: &buy},
	})
	require.NoError(t, err)
	require.True(t, res.OK, res.Error)
	assert.Equal(t, 30, res.NDays)

	// one share bought at 100 on the first BUY day, held to the end
	assert.Equal(t, int64(1), res.FinalShares)
	assert.Equal(t, 900.0, res.FinalCash)

	files, err := filepath.Glob(filepath.Join(trajDir, "TSLA", "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	loaded, err := s0_data.NewTrajectoryStore(trajDir, log).Load("TSLA", res.Trajectory.RunID)
	require.NoError(t, err)
	assert.Len(t, loaded.Events, 30)
	assert.Equal(t, contracts.SizingOneShare, loaded.Sizing)
}

func TestListTickersAndDateRange(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 10))
	ctx := context.Background()

	tickers, err := svc.ListTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"TSLA"}, tickers)

	rng, err := svc.AvailableDateRange(ctx, "tsla")
	require.NoError(t, err)
	require.True(t, rng.OK)
	assert.Equal(t, "2024-01-02", rng.StartDate)
	assert.Equal(t, "2024-01-11", rng.EndDate)
	assert.Equal(t, 10, rng.NDays)

	rng, err = svc.AvailableDateRange(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, rng.OK)
}

func TestGetFeatures(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 30))
	ctx := context.Background()

	res, err := svc.GetFeatures(ctx, "TSLA", "2024-01-31")
	require.NoError(t, err)
	require.True(t, res.OK, res.Error)
	require.NotNil(t, res.Ret20D)
	assert.InDelta(t, 0.20, *res.Ret20D, 1e-9)
	require.NotNil(t, res.Vol20D)
	assert.Equal(t, 0.0, *res.Vol20D)
	assert.Nil(t, res.ScoreMom)
	require.NotNil(t, res.Filed)
	assert.Equal(t, "2023-10-23", *res.Filed)
	assert.Equal(t, 500.0, res.Concepts["Revenues"])

	res, err = svc.GetFeatures(ctx, "TSLA", "2030-01-01")
	require.NoError(t, err)
	assert.False(t, res.OK)
}

func TestDecideBatch_KeepsFailuresInPlace(t *testing.T) {
	svc := newTestService(t, writeConstantPanel(t, t.TempDir(), 30))

	out, err := svc.DecideBatch(context.Background(), []DecideParams{
		{Ticker: "TSLA", Date: "2024-01-31"},
		{Ticker: "AAPL", Date: "2024-01-31"},
		{Ticker: "TSLA", Date: "2024-01-05"},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.True(t, out[0].OK)
	assert.False(t, out[1].OK)
	assert.True(t, out[2].OK)
}

package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/jwlim/pitfolio/internal/backtest"
	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/internal/s0_data"
	"github.com/jwlim/pitfolio/internal/s2_signals"
	"github.com/jwlim/pitfolio/internal/s3_decision"
	"github.com/jwlim/pitfolio/pkg/config"
	"github.com/jwlim/pitfolio/pkg/logger"
	"github.com/jwlim/pitfolio/pkg/redis"
)

// thresholdCacheTTL bounds how long resolved percentile thresholds are
// reused before being recomputed from the panel
const thresholdCacheTTL = time.Hour

// Service is the decision-serving layer: every operation reads the scored
// panel through the mtime-keyed cache, so a rebuilt panel file is picked up
// on the next call without a restart. A Go error escapes only when the
// panel itself cannot be read; per-request failures (unknown ticker, bad
// date, empty window) come back as structured results with OK false.
type Service struct {
	cfg        *config.Config
	panel      *s0_data.PanelCache
	resolver   *s3_decision.Resolver
	engine     *backtest.Engine
	trajectory *s0_data.TrajectoryStore
	trajRepo   *s0_data.TrajectoryRepository
	thresholds *redis.Cache
	logger     *logger.Logger
}

// NewService creates the trading service. trajRepo and thresholds are
// optional; nil disables database trajectory persistence and the Redis
// threshold cache.
func NewService(cfg *config.Config, panel *s0_data.PanelCache, trajectory *s0_data.TrajectoryStore, trajRepo *s0_data.TrajectoryRepository, thresholds *redis.Cache, log *logger.Logger) *Service {
	return &Service{
		cfg:        cfg,
		panel:      panel,
		resolver:   s3_decision.NewResolver(),
		engine:     backtest.NewEngine(log),
		trajectory: trajectory,
		trajRepo:   trajRepo,
		thresholds: thresholds,
		logger:     log,
	}
}

// ThresholdParams selects how decision cut points are obtained. Method is
// fixed or percentile; nil fields fall back to the configured defaults.
type ThresholdParams struct {
	Method string

	// fixed mode
	Buy  *float64
	Sell *float64

	// percentile mode
	QBuy      *float64
	QSell     *float64
	StartDate *string
	EndDate   *string
}

// DecideParams identifies one decision request
type DecideParams struct {
	Ticker     string
	Date       string
	Thresholds ThresholdParams
}

// BacktestParams identifies one replication-backtest request. Empty dates
// mean the ticker's full history.
type BacktestParams struct {
	Ticker     string
	StartDate  string
	EndDate    string
	Thresholds ThresholdParams
}

// SimulateParams identifies one live-simulator run. Zero InitialCash and
// empty Sizing fall back to the configured defaults.
type SimulateParams struct {
	Ticker      string
	StartDate   string
	EndDate     string
	InitialCash float64
	Sizing      string
	CostBps     *float64
	Thresholds  ThresholdParams
}

// DateRangeResult reports the trading-day coverage of one ticker
type DateRangeResult struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Ticker    string `json:"ticker,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	NDays     int    `json:"n_days"`
}

// FeaturesResult is one scored panel row exposed for inspection
type FeaturesResult struct {
	OK       bool               `json:"ok"`
	Error    string             `json:"error,omitempty"`
	Ticker   string             `json:"ticker,omitempty"`
	Date     string             `json:"date,omitempty"`
	AdjClose float64            `json:"adj_close"`
	Ret1D    *float64           `json:"ret_1d"`
	Ret5D    *float64           `json:"ret_5d"`
	Ret20D   *float64           `json:"ret_20d"`
	Vol20D   *float64           `json:"vol_20d"`
	Vol60D   *float64           `json:"vol_60d"`
	ScoreMom *float64           `json:"score_mom"`
	Filed    *string            `json:"filed"`
	Concepts map[string]float64 `json:"concepts,omitempty"`
}

// ResolveThresholds computes the buy/sell cut points for a ticker under the
// given parameters. Percentile resolutions are memoized in Redis when it is
// enabled; fixed resolutions are returned directly.
func (s *Service) ResolveThresholds(ctx context.Context, ticker string, p ThresholdParams) (contracts.Thresholds, string, error) {
	method := p.Method
	if method != contracts.MethodPercentile {
		method = contracts.MethodFixed
	}

	if method == contracts.MethodFixed {
		th := contracts.Thresholds{
			Buy:  s.cfg.Trading.BuyThreshold,
			Sell: s.cfg.Trading.SellThreshold,
		}
		if p.Buy != nil {
			th.Buy = *p.Buy
		}
		if p.Sell != nil {
			th.Sell = *p.Sell
		}
		return th, method, nil
	}

	qBuy := contracts.FloatOr(p.QBuy, s.cfg.Trading.QBuy)
	qSell := contracts.FloatOr(p.QSell, s.cfg.Trading.QSell)

	startStr := s.cfg.Trading.ThreshStart
	if p.StartDate != nil {
		startStr = *p.StartDate
	}
	endStr := s.cfg.Trading.ThreshEnd
	if p.EndDate != nil {
		endStr = *p.EndDate
	}

	start, end, err := parseWindow(startStr, endStr)
	if err != nil {
		return contracts.Thresholds{}, method, err
	}

	t := contracts.NormalizeTicker(ticker)
	cacheKey := fmt.Sprintf("thresholds:%s:%g:%g:%s:%s", t, qBuy, qSell, startStr, endStr)

	var cached contracts.Thresholds
	if s.thresholds != nil {
		if hit, err := s.thresholds.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, method, nil
		}
	}

	panel, err := s.panel.Get()
	if err != nil {
		return contracts.Thresholds{}, method, err
	}

	buy, sell, nUsed := s.resolver.Resolve(panel.Rows, t, qBuy, qSell, start, end)

	th := contracts.Thresholds{
		Buy:       buy,
		Sell:      sell,
		QBuy:      &qBuy,
		QSell:     &qSell,
		StartDate: &startStr,
		EndDate:   &endStr,
		NUsed:     &nUsed,
	}

	if s.thresholds != nil {
		if err := s.thresholds.Set(ctx, cacheKey, th, thresholdCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Threshold cache write failed")
		}
	}
	return th, method, nil
}

// Decide scores one (ticker, date) and maps the score to an action. A pair
// with no panel row is OK false, not an error.
func (s *Service) Decide(ctx context.Context, p DecideParams) (contracts.DecisionResult, error) {
	t := contracts.NormalizeTicker(p.Ticker)

	date, err := contracts.ParseDate(p.Date)
	if err != nil {
		return contracts.DecisionResult{
			OK:     false,
			Error:  fmt.Sprintf("invalid date %q", p.Date),
			Ticker: t,
			Date:   p.Date,
		}, nil
	}

	panel, err := s.panel.Get()
	if err != nil {
		return contracts.DecisionResult{}, err
	}

	row, ok := panel.Row(t, date)
	if !ok {
		return contracts.DecisionResult{
			OK:     false,
			Error:  fmt.Sprintf("no panel row for %s on %s", t, p.Date),
			Ticker: t,
			Date:   p.Date,
		}, nil
	}

	th, method, err := s.ResolveThresholds(ctx, t, p.Thresholds)
	if err != nil {
		return contracts.DecisionResult{
			OK:     false,
			Error:  err.Error(),
			Ticker: t,
			Date:   p.Date,
		}, nil
	}

	score, details := s2_signals.HeuristicScore(row)
	action := s3_decision.Decide(score, th.Buy, th.Sell)

	return contracts.DecisionResult{
		OK:              true,
		Ticker:          t,
		Date:            date.Format(contracts.DateLayout),
		Action:          action,
		Score:           score,
		Confidence:      s3_decision.Confidence(score),
		Details:         details,
		ThresholdMethod: method,
		Thresholds:      th,
	}, nil
}

// DecideBatch runs Decide over many (ticker, date) pairs. Failures stay in
// place as OK-false entries so output lines up with input.
func (s *Service) DecideBatch(ctx context.Context, params []DecideParams) ([]contracts.DecisionResult, error) {
	out := make([]contracts.DecisionResult, 0, len(params))
	for _, p := range params {
		res, err := s.Decide(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// RunBacktest replays decisions over a date window with the replication
// metric. Thresholds are resolved once before the loop.
func (s *Service) RunBacktest(ctx context.Context, p BacktestParams) (contracts.BacktestResult, error) {
	t := contracts.NormalizeTicker(p.Ticker)

	start, end, err := parseWindow(p.StartDate, p.EndDate)
	if err != nil {
		return contracts.BacktestResult{OK: false, Error: err.Error(), Ticker: t}, nil
	}

	panel, err := s.panel.Get()
	if err != nil {
		return contracts.BacktestResult{}, err
	}

	rows := filterWindow(panel.RowsFor(t), start, end)
	if len(rows) == 0 {
		return contracts.BacktestResult{
			OK:     false,
			Error:  fmt.Sprintf("no rows for %s in window", t),
			Ticker: t,
		}, nil
	}

	th, method, err := s.ResolveThresholds(ctx, t, p.Thresholds)
	if err != nil {
		return contracts.BacktestResult{OK: false, Error: err.Error(), Ticker: t}, nil
	}

	run := s.engine.Run(rows, th.Buy, th.Sell)

	return contracts.BacktestResult{
		OK:              true,
		Ticker:          t,
		StartDate:       rows[0].Date.Format(contracts.DateLayout),
		EndDate:         rows[len(rows)-1].Date.Format(contracts.DateLayout),
		ThresholdMethod: method,
		Thresholds:      th,
		TotalReturn:     run.TotalReturn,
		DailyMean:       run.DailyMean,
		DailyVol:        run.DailyVol,
		SharpeLike:      run.SharpeLike,
		VaR95:           run.VaR95,
		CVaR95:          run.CVaR95,
		NDays:           run.NDays,
	}, nil
}

// Simulate runs the live cash/shares simulator over a date window and
// persists the trade trajectory
func (s *Service) Simulate(ctx context.Context, p SimulateParams) (contracts.SimulationResult, error) {
	t := contracts.NormalizeTicker(p.Ticker)

	start, end, err := parseWindow(p.StartDate, p.EndDate)
	if err != nil {
		return contracts.SimulationResult{OK: false, Error: err.Error(), Ticker: t}, nil
	}

	panel, err := s.panel.Get()
	if err != nil {
		return contracts.SimulationResult{}, err
	}

	rows := filterWindow(panel.RowsFor(t), start, end)
	if len(rows) == 0 {
		return contracts.SimulationResult{
			OK:     false,
			Error:  fmt.Sprintf("no rows for %s in window", t),
			Ticker: t,
		}, nil
	}

	th, _, err := s.ResolveThresholds(ctx, t, p.Thresholds)
	if err != nil {
		return contracts.SimulationResult{OK: false, Error: err.Error(), Ticker: t}, nil
	}

	initialCash := p.InitialCash
	if initialCash <= 0 {
		initialCash = s.cfg.Trading.InitialCash
	}
	sizing := p.Sizing
	if sizing == "" {
		sizing = s.cfg.Trading.Sizing
	}
	costBps := contracts.FloatOr(p.CostBps, s.cfg.Trading.CostBps)

	cfg := backtest.SimConfig{
		RunID:         newRunID(t),
		Ticker:        t,
		StartDate:     rows[0].Date.Format(contracts.DateLayout),
		EndDate:       rows[len(rows)-1].Date.Format(contracts.DateLayout),
		InitialCash:   initialCash,
		Sizing:        sizing,
		CostBps:       costBps,
		BuyThreshold:  th.Buy,
		SellThreshold: th.Sell,
	}

	result := backtest.NewSimulator(s.logger).Run(rows, cfg)

	if s.trajectory != nil && result.Trajectory != nil {
		if _, err := s.trajectory.Save(result.Trajectory); err != nil {
			s.logger.WithError(err).WithField("run_id", cfg.RunID).Warn("Trajectory persist failed")
		}
	}
	if s.trajRepo != nil && result.Trajectory != nil {
		if err := s.trajRepo.Save(ctx, result.Trajectory); err != nil {
			s.logger.WithError(err).WithField("run_id", cfg.RunID).Warn("Trajectory database persist failed")
		}
	}
	return *result, nil
}

// ListTickers returns the distinct tickers in the panel
func (s *Service) ListTickers(ctx context.Context) ([]string, error) {
	panel, err := s.panel.Get()
	if err != nil {
		return nil, err
	}
	return panel.Tickers(), nil
}

// AvailableDateRange reports the first and last trading day the panel
// covers for a ticker
func (s *Service) AvailableDateRange(ctx context.Context, ticker string) (DateRangeResult, error) {
	t := contracts.NormalizeTicker(ticker)

	panel, err := s.panel.Get()
	if err != nil {
		return DateRangeResult{}, err
	}

	rows := panel.RowsFor(t)
	if len(rows) == 0 {
		return DateRangeResult{
			OK:     false,
			Error:  fmt.Sprintf("unknown ticker %s", t),
			Ticker: t,
		}, nil
	}

	return DateRangeResult{
		OK:        true,
		Ticker:    t,
		StartDate: rows[0].Date.Format(contracts.DateLayout),
		EndDate:   rows[len(rows)-1].Date.Format(contracts.DateLayout),
		NDays:     len(rows),
	}, nil
}

// GetFeatures exposes one scored panel row
func (s *Service) GetFeatures(ctx context.Context, ticker, dateStr string) (FeaturesResult, error) {
	t := contracts.NormalizeTicker(ticker)

	date, err := contracts.ParseDate(dateStr)
	if err != nil {
		return FeaturesResult{
			OK:     false,
			Error:  fmt.Sprintf("invalid date %q", dateStr),
			Ticker: t,
			Date:   dateStr,
		}, nil
	}

	panel, err := s.panel.Get()
	if err != nil {
		return FeaturesResult{}, err
	}

	row, ok := panel.Row(t, date)
	if !ok {
		return FeaturesResult{
			OK:     false,
			Error:  fmt.Sprintf("no panel row for %s on %s", t, dateStr),
			Ticker: t,
			Date:   dateStr,
		}, nil
	}

	var filed *string
	if row.Filed != nil {
		f := row.Filed.Format(contracts.DateLayout)
		filed = &f
	}

	return FeaturesResult{
		OK:       true,
		Ticker:   t,
		Date:     date.Format(contracts.DateLayout),
		AdjClose: row.AdjClose,
		Ret1D:    row.Ret1D,
		Ret5D:    row.Ret5D,
		Ret20D:   row.Ret20D,
		Vol20D:   row.Vol20D,
		Vol60D:   row.Vol60D,
		ScoreMom: row.ScoreMom,
		Filed:    filed,
		Concepts: row.Concepts,
	}, nil
}

// parseWindow parses optional inclusive window bounds. Empty strings mean
// unbounded.
func parseWindow(startStr, endStr string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startStr != "" {
		t, err := contracts.ParseDate(startStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date %q", startStr)
		}
		start = &t
	}
	if endStr != "" {
		t, err := contracts.ParseDate(endStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date %q", endStr)
		}
		end = &t
	}
	return start, end, nil
}

// filterWindow keeps the rows inside [start, end], both bounds inclusive
// and optional
func filterWindow(rows []contracts.ScoredRow, start, end *time.Time) []contracts.ScoredRow {
	out := make([]contracts.ScoredRow, 0, len(rows))
	for i := range rows {
		if start != nil && rows[i].Date.Before(*start) {
			continue
		}
		if end != nil && rows[i].Date.After(*end) {
			continue
		}
		out = append(out, rows[i])
	}
	return out
}

// newRunID builds a unique identifier for a simulator run
func newRunID(ticker string) string {
	return fmt.Sprintf("%s_%s", ticker, time.Now().UTC().Format("20060102T150405"))
}

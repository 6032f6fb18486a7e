package jobs

import (
	"context"
	"fmt"

	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/internal/trading"
	"github.com/jwlim/pitfolio/pkg/config"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// DailyDecisionJob evaluates the configured tickers on their latest
// available trading day and logs the resulting actions. Runs after the
// nightly panel rebuild so decisions see fresh data.
type DailyDecisionJob struct {
	service *trading.Service
	config  *config.Config
	logger  *logger.Logger
}

// NewDailyDecisionJob creates a new daily decision job
func NewDailyDecisionJob(service *trading.Service, cfg *config.Config, log *logger.Logger) *DailyDecisionJob {
	return &DailyDecisionJob{
		service: service,
		config:  cfg,
		logger:  log,
	}
}

// Name returns the job name
func (j *DailyDecisionJob) Name() string {
	return "daily_decision"
}

// Schedule returns the cron schedule (11 PM on weekdays, after the panel
// rebuild at 10 PM)
func (j *DailyDecisionJob) Schedule() string {
	return "0 0 23 * * 1-5"
}

// Run evaluates every configured ticker
func (j *DailyDecisionJob) Run(ctx context.Context) error {
	if len(j.config.Trading.Tickers) == 0 {
		j.logger.Warn("No tickers configured, skipping daily decision")
		return nil
	}

	thresholds := trading.ThresholdParams{Method: contracts.MethodPercentile}

	var failed int
	for _, ticker := range j.config.Trading.Tickers {
		rng, err := j.service.AvailableDateRange(ctx, ticker)
		if err != nil {
			return fmt.Errorf("date range for %s: %w", ticker, err)
		}
		if !rng.OK {
			j.logger.WithField("ticker", ticker).Warn("Ticker not in panel, skipping")
			failed++
			continue
		}

		result, err := j.service.Decide(ctx, trading.DecideParams{
			Ticker:     ticker,
			Date:       rng.EndDate,
			Thresholds: thresholds,
		})
		if err != nil {
			return fmt.Errorf("decide %s: %w", ticker, err)
		}
		if !result.OK {
			j.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"error":  result.Error,
			}).Warn("Decision failed")
			failed++
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"ticker":     result.Ticker,
			"date":       result.Date,
			"action":     result.Action,
			"score":      result.Score,
			"confidence": result.Confidence,
		}).Info("Daily decision")
	}

	if failed > 0 {
		j.logger.WithField("failed", failed).Warn("Some tickers could not be decided")
	}
	return nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwlim/pitfolio/internal/s0_data"
	"github.com/jwlim/pitfolio/internal/trading"
	"github.com/jwlim/pitfolio/pkg/config"
	"github.com/jwlim/pitfolio/pkg/database"
	"github.com/jwlim/pitfolio/pkg/logger"
	"github.com/jwlim/pitfolio/pkg/redis"
)

// initService wires the trading service from config: panel cache, file
// trajectory store, and the optional Redis threshold cache
func initService() (*config.Config, *logger.Logger, *trading.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	thresholdCache := redis.NewCache(redisClient, "pitfolio")

	panelCache := s0_data.NewPanelCache(cfg.Panel.PanelPath, log)
	trajectoryStore := s0_data.NewTrajectoryStore(cfg.Panel.TrajectoryDir, log)

	// Database persistence is optional: without DATABASE_URL trajectories
	// only go to the file store
	var trajRepo *s0_data.TrajectoryRepository
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		trajRepo = s0_data.NewTrajectoryRepository(db.Pool)
	}

	svc := trading.NewService(cfg, panelCache, trajectoryStore, trajRepo, thresholdCache, log)
	return cfg, log, svc, nil
}

// initDatabase wires config, logger, and the Postgres pool for commands
// that read or write the database directly. Callers own db.Close.
func initDatabase() (*config.Config, *logger.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return cfg, log, db, nil
}

// printJSON writes a result to stdout as indented JSON
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// registerThresholdFlags adds the shared threshold selection flags to a
// command. The flag values are read back with thresholdParamsFrom.
func registerThresholdFlags(cmd *cobra.Command) {
	cmd.Flags().String("method", "fixed", "threshold method (fixed|percentile)")
	cmd.Flags().Float64("buy", 0, "fixed buy threshold (default: config)")
	cmd.Flags().Float64("sell", 0, "fixed sell threshold (default: config)")
	cmd.Flags().Float64("q-buy", 0, "buy quantile for percentile mode (default: config)")
	cmd.Flags().Float64("q-sell", 0, "sell quantile for percentile mode (default: config)")
	cmd.Flags().String("thresh-start", "", "percentile fitting window start (YYYY-MM-DD, default: config)")
	cmd.Flags().String("thresh-end", "", "percentile fitting window end (YYYY-MM-DD, default: config)")
}

// thresholdParamsFrom reads the shared threshold flags. Only flags the user
// actually set are forwarded, so config defaults stay in charge.
func thresholdParamsFrom(cmd *cobra.Command) trading.ThresholdParams {
	flags := cmd.Flags()
	p := trading.ThresholdParams{}
	p.Method, _ = flags.GetString("method")

	if flags.Changed("buy") {
		v, _ := flags.GetFloat64("buy")
		p.Buy = &v
	}
	if flags.Changed("sell") {
		v, _ := flags.GetFloat64("sell")
		p.Sell = &v
	}
	if flags.Changed("q-buy") {
		v, _ := flags.GetFloat64("q-buy")
		p.QBuy = &v
	}
	if flags.Changed("q-sell") {
		v, _ := flags.GetFloat64("q-sell")
		p.QSell = &v
	}
	if flags.Changed("thresh-start") {
		v, _ := flags.GetString("thresh-start")
		p.StartDate = &v
	}
	if flags.Changed("thresh-end") {
		v, _ := flags.GetString("thresh-end")
		p.EndDate = &v
	}
	return p
}

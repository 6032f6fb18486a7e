package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/internal/s0_data"
)

// panelRowsCmd represents the panel rows command
var panelRowsCmd = &cobra.Command{
	Use:   "rows TICKER [DATE]",
	Short: "Read exported panel rows back from Postgres",
	Long: `Reads panel rows for a ticker from the database. With a DATE
argument a single row is returned; otherwise --from/--to bound the range.
Requires DATABASE_URL and a prior panel export-db.

Example:
  go run ./cmd/pitfolio panel rows TSLA 2024-01-05
  go run ./cmd/pitfolio panel rows TSLA --from 2024-01-01 --to 2024-01-31`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPanelRows,
}

// panelFundamentalsCmd represents the panel fundamentals command
var panelFundamentalsCmd = &cobra.Command{
	Use:   "fundamentals TICKER",
	Short: "Read a ticker's filing snapshots from Postgres",
	Args:  cobra.ExactArgs(1),
	RunE:  runPanelFundamentals,
}

// trajectoryCmd represents the trajectory command
var trajectoryCmd = &cobra.Command{
	Use:   "trajectory TICKER [RUN_ID]",
	Short: "Inspect persisted simulator runs",
	Long: `Lists a ticker's persisted simulator runs, or prints one run's
full trade trajectory when RUN_ID is given. Requires DATABASE_URL.

Example:
  go run ./cmd/pitfolio trajectory TSLA
  go run ./cmd/pitfolio trajectory TSLA TSLA_20240105T120000`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTrajectory,
}

var (
	panelRowsFrom   string
	panelRowsTo     string
	trajectoryLimit int
)

func init() {
	panelCmd.AddCommand(panelRowsCmd)
	panelCmd.AddCommand(panelFundamentalsCmd)
	rootCmd.AddCommand(trajectoryCmd)

	panelRowsCmd.Flags().StringVar(&panelRowsFrom, "from", "", "range start (YYYY-MM-DD)")
	panelRowsCmd.Flags().StringVar(&panelRowsTo, "to", "", "range end (YYYY-MM-DD)")
	trajectoryCmd.Flags().IntVar(&trajectoryLimit, "limit", 20, "max runs to list")
}

func runPanelRows(cmd *cobra.Command, args []string) error {
	_, _, db, err := initDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := s0_data.NewPanelRepository(db.Pool)
	ticker := contracts.NormalizeTicker(args[0])
	ctx := cmd.Context()

	if len(args) == 2 {
		date, err := contracts.ParseDate(args[1])
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
		row, err := repo.GetByTickerAndDate(ctx, ticker, date)
		if err != nil {
			return fmt.Errorf("read panel row: %w", err)
		}
		return printJSON(row)
	}

	from, err := contracts.ParseDate(panelRowsFrom)
	if err != nil {
		return fmt.Errorf("parse --from: %w", err)
	}
	to, err := contracts.ParseDate(panelRowsTo)
	if err != nil {
		return fmt.Errorf("parse --to: %w", err)
	}
	rows, err := repo.GetByTickerAndRange(ctx, ticker, from, to)
	if err != nil {
		return fmt.Errorf("read panel rows: %w", err)
	}
	return printJSON(rows)
}

func runPanelFundamentals(cmd *cobra.Command, args []string) error {
	_, _, db, err := initDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	snaps, err := s0_data.NewFundamentalsRepository(db.Pool).
		GetByTicker(cmd.Context(), contracts.NormalizeTicker(args[0]))
	if err != nil {
		return fmt.Errorf("read fundamentals: %w", err)
	}
	return printJSON(snaps)
}

func runTrajectory(cmd *cobra.Command, args []string) error {
	_, _, db, err := initDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := s0_data.NewTrajectoryRepository(db.Pool)

	if len(args) == 2 {
		traj, err := repo.GetByRunID(cmd.Context(), args[1])
		if err != nil {
			return fmt.Errorf("read trajectory: %w", err)
		}
		return printJSON(traj)
	}

	runIDs, err := repo.ListByTicker(cmd.Context(), contracts.NormalizeTicker(args[0]), trajectoryLimit)
	if err != nil {
		return fmt.Errorf("list trajectories: %w", err)
	}
	for _, id := range runIDs {
		fmt.Println(id)
	}
	return nil
}

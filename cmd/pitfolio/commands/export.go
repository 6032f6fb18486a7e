package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwlim/pitfolio/internal/s0_data"
	"github.com/jwlim/pitfolio/internal/s1_panel"
)

// panelExportCmd represents the panel export-db command
var panelExportCmd = &cobra.Command{
	Use:   "export-db",
	Short: "Export the panel and fundamentals into Postgres",
	Long: `Loads the built panel CSV and the raw facts, and upserts both the
daily panel rows and the pivoted per-filing snapshots into the database.
Requires DATABASE_URL.

Example:
  go run ./cmd/pitfolio panel export-db`,
	RunE: runPanelExport,
}

func init() {
	panelCmd.AddCommand(panelExportCmd)
}

func runPanelExport(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := initDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	rows, _, err := s0_data.LoadPanelCSV(cfg.Panel.PanelPath)
	if err != nil {
		return fmt.Errorf("load panel: %w", err)
	}
	if err := s0_data.NewPanelRepository(db.Pool).SaveBatch(ctx, rows); err != nil {
		return fmt.Errorf("save panel rows: %w", err)
	}
	log.WithField("rows", len(rows)).Info("Panel rows exported")

	facts, err := s0_data.LoadFactsCSV(cfg.Panel.FactsPath)
	if err != nil {
		return fmt.Errorf("load facts: %w", err)
	}
	snapshots := s1_panel.NewNormalizer(nil, nil).Normalize(facts)
	if err := s0_data.NewFundamentalsRepository(db.Pool).SaveBatch(ctx, snapshots); err != nil {
		return fmt.Errorf("save fundamentals: %w", err)
	}
	log.WithField("snapshots", len(snapshots)).Info("Fundamental snapshots exported")

	fmt.Printf("Exported %d panel rows and %d filing snapshots\n", len(rows), len(snapshots))
	return nil
}

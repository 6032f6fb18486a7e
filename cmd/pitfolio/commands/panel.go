package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwlim/pitfolio/internal/s1_panel"
	"github.com/jwlim/pitfolio/pkg/config"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// panelCmd represents the panel command
var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Panel build and inspection",
	Long: `Builds and inspects the point-in-time daily panel.

Example:
  go run ./cmd/pitfolio panel build
  go run ./cmd/pitfolio panel build --returns data/returns.csv --facts data/facts.csv`,
}

var panelBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the aligned panel from raw inputs",
	Long: `Normalizes the raw company facts, pivots them into per-filing
snapshots, aligns them onto the daily return calendar with a backward
as-of join, and writes the panel CSV the serving layer reads.

Flags default to the configured paths.`,
	RunE: runPanelBuild,
}

var (
	panelReturnsPath string
	panelFactsPath   string
	panelOutPath     string
	panelWidePath    string
)

func init() {
	rootCmd.AddCommand(panelCmd)
	panelCmd.AddCommand(panelBuildCmd)

	panelBuildCmd.Flags().StringVar(&panelReturnsPath, "returns", "", "daily returns CSV (default: config)")
	panelBuildCmd.Flags().StringVar(&panelFactsPath, "facts", "", "raw company facts CSV (default: config)")
	panelBuildCmd.Flags().StringVar(&panelOutPath, "out", "", "panel CSV output path (default: config)")
	panelBuildCmd.Flags().StringVar(&panelWidePath, "wide", "", "pivoted fundamentals output path (default: config)")
}

func runPanelBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	buildCfg := s1_panel.BuildConfig{
		ReturnsPath: cfg.Panel.ReturnsPath,
		FactsPath:   cfg.Panel.FactsPath,
		WidePath:    cfg.Panel.WidePath,
		PanelPath:   cfg.Panel.PanelPath,
	}
	if panelReturnsPath != "" {
		buildCfg.ReturnsPath = panelReturnsPath
	}
	if panelFactsPath != "" {
		buildCfg.FactsPath = panelFactsPath
	}
	if panelOutPath != "" {
		buildCfg.PanelPath = panelOutPath
	}
	if panelWidePath != "" {
		buildCfg.WidePath = panelWidePath
	}

	result, err := s1_panel.NewBuilder(log).Build(buildCfg)
	if err != nil {
		return fmt.Errorf("panel build: %w", err)
	}

	fmt.Printf("Panel built: %d rows, %d tickers, %d filing snapshots\n",
		result.PanelRows, result.Tickers, result.Snapshots)
	fmt.Printf("  panel: %s\n", buildCfg.PanelPath)
	if buildCfg.WidePath != "" {
		fmt.Printf("  wide:  %s\n", buildCfg.WidePath)
	}
	return nil
}

package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pitfolio",
	Short: "Point-in-time fundamentals panel and momentum decision engine",
	Long: `pitfolio builds a point-in-time-correct daily panel from regulatory
filings and adjusted prices, scores it with rolling momentum features, and
serves trading decisions and backtests over it.

Usage:
  go run ./cmd/pitfolio [command]

Examples:
  go run ./cmd/pitfolio panel build
  go run ./cmd/pitfolio decide TSLA 2024-06-03
  go run ./cmd/pitfolio backtest TSLA --from 2023-01-02 --to 2024-12-31
  go run ./cmd/pitfolio api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

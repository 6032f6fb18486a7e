package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jwlim/pitfolio/internal/trading"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest TICKER",
	Short: "Replay decisions over a window with the replication metric",
	Long: `Replays daily decisions for a ticker and reports the replication
summary: equity is the cumulative product of (1 + position x ret_1d) with
BUY=+1, HOLD=0, SELL=-1. Thresholds are resolved once for the whole run.

Example:
  go run ./cmd/pitfolio backtest TSLA --from 2023-01-02 --to 2024-12-31
  go run ./cmd/pitfolio backtest TSLA --method percentile`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktestCmd,
}

var (
	backtestFrom string
	backtestTo   string
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	registerThresholdFlags(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "window start (YYYY-MM-DD, default: full history)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "window end (YYYY-MM-DD, default: full history)")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	_, _, svc, err := initService()
	if err != nil {
		return err
	}

	result, err := svc.RunBacktest(context.Background(), trading.BacktestParams{
		Ticker:     args[0],
		StartDate:  backtestFrom,
		EndDate:    backtestTo,
		Thresholds: thresholdParamsFrom(cmd),
	})
	if err != nil {
		return err
	}

	return printJSON(result)
}

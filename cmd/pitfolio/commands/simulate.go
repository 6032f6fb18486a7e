package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jwlim/pitfolio/internal/trading"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate TICKER",
	Short: "Run the live cash/shares simulator over a window",
	Long: `Replays daily decisions with literal portfolio bookkeeping: cash,
integer shares, and basis-point transaction costs. The trade trajectory is
written to the configured trajectory directory.

Example:
  go run ./cmd/pitfolio simulate TSLA --from 2024-01-02 --to 2024-12-31
  go run ./cmd/pitfolio simulate TSLA --cash 100000 --sizing all_in --cost-bps 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

var (
	simulateFrom    string
	simulateTo      string
	simulateCash    float64
	simulateSizing  string
	simulateCostBps float64
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	registerThresholdFlags(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateFrom, "from", "", "window start (YYYY-MM-DD, default: full history)")
	simulateCmd.Flags().StringVar(&simulateTo, "to", "", "window end (YYYY-MM-DD, default: full history)")
	simulateCmd.Flags().Float64Var(&simulateCash, "cash", 0, "initial cash (default: config)")
	simulateCmd.Flags().StringVar(&simulateSizing, "sizing", "", "position sizing (one_share|all_in, default: config)")
	simulateCmd.Flags().Float64Var(&simulateCostBps, "cost-bps", 0, "transaction cost in basis points (default: config)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	_, _, svc, err := initService()
	if err != nil {
		return err
	}

	params := trading.SimulateParams{
		Ticker:      args[0],
		StartDate:   simulateFrom,
		EndDate:     simulateTo,
		InitialCash: simulateCash,
		Sizing:      simulateSizing,
		Thresholds:  thresholdParamsFrom(cmd),
	}
	if cmd.Flags().Changed("cost-bps") {
		params.CostBps = &simulateCostBps
	}

	result, err := svc.Simulate(context.Background(), params)
	if err != nil {
		return err
	}

	return printJSON(result)
}

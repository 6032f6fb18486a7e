package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// thresholdsCmd represents the thresholds command
var thresholdsCmd = &cobra.Command{
	Use:   "thresholds TICKER",
	Short: "Resolve buy/sell thresholds for a ticker",
	Long: `Resolves the decision cut points for a ticker. Fixed mode echoes
the configured pair; percentile mode fits quantiles of the historical
momentum score over the fitting window.

Example:
  go run ./cmd/pitfolio thresholds TSLA --method percentile
  go run ./cmd/pitfolio thresholds TSLA --method percentile --q-buy 0.8 --q-sell 0.2`,
	Args: cobra.ExactArgs(1),
	RunE: runThresholds,
}

func init() {
	rootCmd.AddCommand(thresholdsCmd)
	registerThresholdFlags(thresholdsCmd)
}

func runThresholds(cmd *cobra.Command, args []string) error {
	_, _, svc, err := initService()
	if err != nil {
		return err
	}

	th, method, err := svc.ResolveThresholds(context.Background(), args[0], thresholdParamsFrom(cmd))
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"ticker":     args[0],
		"method":     method,
		"thresholds": th,
	})
}

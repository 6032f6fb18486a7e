package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jwlim/pitfolio/internal/trading"
)

// decideCmd represents the decide command
var decideCmd = &cobra.Command{
	Use:   "decide TICKER DATE",
	Short: "Decide BUY/SELL/HOLD for one ticker and date",
	Long: `Scores one (ticker, date) pair from the panel and maps the score
to an action. A pair with no panel row prints a result with ok=false.

Example:
  go run ./cmd/pitfolio decide TSLA 2024-06-03
  go run ./cmd/pitfolio decide TSLA 2024-06-03 --method percentile
  go run ./cmd/pitfolio decide TSLA 2024-06-03 --buy 0.3 --sell -0.3`,
	Args: cobra.ExactArgs(2),
	RunE: runDecide,
}

func init() {
	rootCmd.AddCommand(decideCmd)
	registerThresholdFlags(decideCmd)
}

func runDecide(cmd *cobra.Command, args []string) error {
	_, _, svc, err := initService()
	if err != nil {
		return err
	}

	result, err := svc.Decide(context.Background(), trading.DecideParams{
		Ticker:     args[0],
		Date:       args[1],
		Thresholds: thresholdParamsFrom(cmd),
	})
	if err != nil {
		return err
	}

	return printJSON(result)
}

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwlim/pitfolio/internal/s1_panel"
	"github.com/jwlim/pitfolio/internal/scheduler"
	"github.com/jwlim/pitfolio/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the job scheduler",
	Long: `Starts the cron scheduler with the nightly jobs:
  panel_build     - rebuild the panel from raw inputs (10 PM weekdays)
  daily_decision  - decide the configured tickers (11 PM weekdays)

Example:
  go run ./cmd/pitfolio scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, log, svc, err := initService()
	if err != nil {
		return err
	}

	sched := scheduler.New(log)

	builder := s1_panel.NewBuilder(log)
	if err := sched.AddJob(jobs.NewPanelBuildJob(builder, cfg, log)); err != nil {
		return fmt.Errorf("add panel build job: %w", err)
	}
	if err := sched.AddJob(jobs.NewDailyDecisionJob(svc, cfg, log)); err != nil {
		return fmt.Errorf("add daily decision job: %w", err)
	}

	sched.Start()
	fmt.Println("Scheduler running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

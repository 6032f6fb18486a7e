package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwlim/pitfolio/internal/api"
	"github.com/jwlim/pitfolio/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the HTTP API server over the panel.

Endpoints:
  GET  /health                 - Health check
  GET  /api/decide             - Decide one (ticker, date)
  POST /api/decide/batch       - Decide many pairs
  GET  /api/thresholds         - Resolve thresholds
  POST /api/backtest           - Replication backtest
  POST /api/simulate           - Live cash/shares simulation
  GET  /api/panel/tickers      - Panel tickers
  GET  /api/panel/range        - Date coverage per ticker
  GET  /api/panel/features     - One scored panel row

Example:
  go run ./cmd/pitfolio api
  go run ./cmd/pitfolio api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, log, svc, err := initService()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	decisionHandler := handlers.NewDecisionHandler(svc, log)
	panelHandler := handlers.NewPanelHandler(svc, log)
	router := api.NewRouter(decisionHandler, panelHandler, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

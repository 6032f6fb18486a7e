package jobs

import (
	"context"
	"fmt"

	"github.com/jwlim/pitfolio/internal/s1_panel"
	"github.com/jwlim/pitfolio/pkg/config"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// PanelBuildJob rebuilds the aligned panel from the raw inputs. The serving
// layer picks the new artifact up through the mtime check on its next read,
// so no restart or cache flush is needed.
type PanelBuildJob struct {
	builder *s1_panel.Builder
	config  *config.Config
	logger  *logger.Logger
}

// NewPanelBuildJob creates a new panel build job
func NewPanelBuildJob(builder *s1_panel.Builder, cfg *config.Config, log *logger.Logger) *PanelBuildJob {
	return &PanelBuildJob{
		builder: builder,
		config:  cfg,
		logger:  log,
	}
}

// Name returns the job name
func (j *PanelBuildJob) Name() string {
	return "panel_build"
}

// Schedule returns the cron schedule (10 PM on weekdays, after US market
// close data lands)
func (j *PanelBuildJob) Schedule() string {
	return "0 0 22 * * 1-5"
}

// Run rebuilds the panel artifacts
func (j *PanelBuildJob) Run(ctx context.Context) error {
	result, err := j.builder.Build(s1_panel.BuildConfig{
		ReturnsPath: j.config.Panel.ReturnsPath,
		FactsPath:   j.config.Panel.FactsPath,
		WidePath:    j.config.Panel.WidePath,
		PanelPath:   j.config.Panel.PanelPath,
	})
	if err != nil {
		return fmt.Errorf("panel build: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"tickers": result.Tickers,
		"rows":    result.PanelRows,
	}).Info("Scheduled panel rebuild completed")

	return nil
}

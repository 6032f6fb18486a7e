package s1_panel

import (
	"fmt"

	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/internal/s0_data"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// Builder runs the offline panel build: raw facts and daily returns in,
// pivoted fundamentals and the aligned panel CSV out. The serving layer
// never builds; it only reads the artifact this writes.
type Builder struct {
	aligner *Aligner
	logger  *logger.Logger
}

// BuildConfig holds the file locations of a panel build
type BuildConfig struct {
	ReturnsPath string
	FactsPath   string
	WidePath    string
	PanelPath   string

	// Concepts and Forms restrict the normalizer; nil selects the defaults
	Concepts []string
	Forms    []string
}

// BuildResult summarizes one panel build
type BuildResult struct {
	Tickers   int
	Snapshots int
	PanelRows int
}

// NewBuilder creates a panel builder
func NewBuilder(log *logger.Logger) *Builder {
	return &Builder{
		aligner: NewAligner(),
		logger:  log,
	}
}

// Build reads the inputs, normalizes and pivots the facts, aligns them onto
// the return calendar, and writes both artifacts
func (b *Builder) Build(cfg BuildConfig) (*BuildResult, error) {
	normalizer := NewNormalizer(cfg.Concepts, cfg.Forms)

	returns, err := s0_data.LoadReturnsCSV(cfg.ReturnsPath)
	if err != nil {
		return nil, fmt.Errorf("load returns: %w", err)
	}

	facts, err := s0_data.LoadFactsCSV(cfg.FactsPath)
	if err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}

	snapshots := normalizer.Normalize(facts)
	concepts := conceptColumns(cfg.Concepts)

	if cfg.WidePath != "" {
		if err := s0_data.WriteWideCSV(cfg.WidePath, snapshots, concepts); err != nil {
			return nil, fmt.Errorf("write wide fundamentals: %w", err)
		}
	}

	rows := b.aligner.Align(returns, snapshots)
	if err := s0_data.WritePanelCSV(cfg.PanelPath, rows, concepts); err != nil {
		return nil, fmt.Errorf("write panel: %w", err)
	}

	result := &BuildResult{
		Snapshots: len(snapshots),
		PanelRows: len(rows),
		Tickers:   countTickers(rows),
	}

	b.logger.WithFields(map[string]interface{}{
		"tickers":   result.Tickers,
		"snapshots": result.Snapshots,
		"rows":      result.PanelRows,
		"panel":     cfg.PanelPath,
	}).Info("Panel build completed")

	return result, nil
}

func conceptColumns(concepts []string) []string {
	if concepts == nil {
		return contracts.DefaultConcepts
	}
	return concepts
}

func countTickers(rows []contracts.PanelRow) int {
	seen := make(map[string]bool)
	for i := range rows {
		seen[rows[i].Ticker] = true
	}
	return len(seen)
}

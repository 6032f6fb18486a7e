package s0_data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// TrajectoryStore writes simulation trajectories as JSON files under a base
// directory, one subdirectory per ticker. Used when no database is configured.
type TrajectoryStore struct {
	baseDir string
	logger  *logger.Logger
}

// NewTrajectoryStore creates a file-based trajectory store
func NewTrajectoryStore(baseDir string, log *logger.Logger) *TrajectoryStore {
	return &TrajectoryStore{baseDir: baseDir, logger: log}
}

// Save writes one trajectory to <base>/<ticker>/<run_id>.json
func (s *TrajectoryStore) Save(t *contracts.Trajectory) (string, error) {
	if t == nil {
		return "", fmt.Errorf("nil trajectory")
	}

	dir := filepath.Join(s.baseDir, t.Ticker)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create trajectory dir: %w", err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal trajectory: %w", err)
	}

	path := filepath.Join(dir, t.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write trajectory: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"ticker": t.Ticker,
		"run_id": t.RunID,
		"events": len(t.Events),
		"path":   path,
	}).Debug("Trajectory saved")

	return path, nil
}

// Load reads a trajectory back from <base>/<ticker>/<run_id>.json
func (s *TrajectoryStore) Load(ticker, runID string) (*contracts.Trajectory, error) {
	path := filepath.Join(s.baseDir, contracts.NormalizeTicker(ticker), runID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trajectory: %w", err)
	}

	var t contracts.Trajectory
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse trajectory: %w", err)
	}
	return &t, nil
}

package s0_data

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwlim/pitfolio/internal/contracts"
)

// TrajectoryRepository persists simulation trajectories
type TrajectoryRepository struct {
	pool *pgxpool.Pool
}

// NewTrajectoryRepository creates a new trajectory repository
func NewTrajectoryRepository(pool *pgxpool.Pool) *TrajectoryRepository {
	return &TrajectoryRepository{pool: pool}
}

// GetByRunID retrieves a trajectory by its run identifier
func (r *TrajectoryRepository) GetByRunID(ctx context.Context, runID string) (*contracts.Trajectory, error) {
	query := `
		SELECT run_id, ticker, start_date, end_date, initial_cash, sizing, cost_bps, events
		FROM data.trajectories
		WHERE run_id = $1
		LIMIT 1
	`

	var t contracts.Trajectory
	var events []byte
	err := r.pool.QueryRow(ctx, query, runID).Scan(
		&t.RunID, &t.Ticker, &t.StartDate, &t.EndDate, &t.InitialCash, &t.Sizing, &t.CostBps, &events,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(events, &t.Events); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByTicker retrieves trajectory run identifiers for a ticker, newest first
func (r *TrajectoryRepository) ListByTicker(ctx context.Context, ticker string, limit int) ([]string, error) {
	query := `
		SELECT run_id
		FROM data.trajectories
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, contracts.NormalizeTicker(ticker), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Save saves a trajectory, replacing any existing run with the same identifier
func (r *TrajectoryRepository) Save(ctx context.Context, t *contracts.Trajectory) error {
	events, err := json.Marshal(t.Events)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO data.trajectories (
			run_id, ticker, start_date, end_date, initial_cash, sizing, cost_bps, events, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (run_id) DO UPDATE SET
			ticker = EXCLUDED.ticker,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			initial_cash = EXCLUDED.initial_cash,
			sizing = EXCLUDED.sizing,
			cost_bps = EXCLUDED.cost_bps,
			events = EXCLUDED.events,
			created_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query,
		t.RunID, t.Ticker, t.StartDate, t.EndDate, t.InitialCash, t.Sizing, t.CostBps, events,
	)
	return err
}

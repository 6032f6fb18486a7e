package s0_data

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwlim/pitfolio/internal/contracts"
)

// FundamentalsRepository persists the pivoted fundamentals wide table
type FundamentalsRepository struct {
	pool *pgxpool.Pool
}

// NewFundamentalsRepository creates a new fundamentals repository
func NewFundamentalsRepository(pool *pgxpool.Pool) *FundamentalsRepository {
	return &FundamentalsRepository{pool: pool}
}

// GetByTicker retrieves all filing snapshots for a ticker, oldest first
func (r *FundamentalsRepository) GetByTicker(ctx context.Context, ticker string) ([]contracts.WideSnapshot, error) {
	query := `
		SELECT ticker, filed, concepts
		FROM data.fundamentals_wide
		WHERE ticker = $1
		ORDER BY filed ASC
	`

	rows, err := r.pool.Query(ctx, query, contracts.NormalizeTicker(ticker))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.WideSnapshot
	for rows.Next() {
		var s contracts.WideSnapshot
		if err := rows.Scan(&s.Ticker, &s.Filed, &s.Concepts); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Save saves a single filing snapshot
func (r *FundamentalsRepository) Save(ctx context.Context, snap *contracts.WideSnapshot) error {
	query := `
		INSERT INTO data.fundamentals_wide (ticker, filed, concepts)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker, filed) DO UPDATE SET
			concepts = EXCLUDED.concepts
	`

	_, err := r.pool.Exec(ctx, query, snap.Ticker, snap.Filed, snap.Concepts)
	return err
}

// SaveBatch saves multiple filing snapshots
func (r *FundamentalsRepository) SaveBatch(ctx context.Context, snaps []contracts.WideSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	for i := range snaps {
		if err := r.Save(ctx, &snaps[i]); err != nil {
			return err
		}
	}
	return nil
}

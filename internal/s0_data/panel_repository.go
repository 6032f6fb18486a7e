package s0_data

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwlim/pitfolio/internal/contracts"
)

// PanelRepository persists the aligned daily panel
type PanelRepository struct {
	pool *pgxpool.Pool
}

// NewPanelRepository creates a new panel repository
func NewPanelRepository(pool *pgxpool.Pool) *PanelRepository {
	return &PanelRepository{pool: pool}
}

// GetByTickerAndRange retrieves panel rows for a ticker within [from, to]
func (r *PanelRepository) GetByTickerAndRange(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PanelRow, error) {
	query := `
		SELECT ticker, trade_date, adj_close, ret_1d, log_ret_1d, volume, filed, concepts
		FROM data.daily_panel
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, contracts.NormalizeTicker(ticker), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.PanelRow
	for rows.Next() {
		var p contracts.PanelRow
		if err := rows.Scan(&p.Ticker, &p.Date, &p.AdjClose, &p.Ret1D, &p.LogRet1D, &p.Volume, &p.Filed, &p.Concepts); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByTickerAndDate retrieves a single panel row
func (r *PanelRepository) GetByTickerAndDate(ctx context.Context, ticker string, date time.Time) (*contracts.PanelRow, error) {
	query := `
		SELECT ticker, trade_date, adj_close, ret_1d, log_ret_1d, volume, filed, concepts
		FROM data.daily_panel
		WHERE ticker = $1 AND trade_date = $2
		LIMIT 1
	`

	var p contracts.PanelRow
	err := r.pool.QueryRow(ctx, query, contracts.NormalizeTicker(ticker), date).Scan(
		&p.Ticker, &p.Date, &p.AdjClose, &p.Ret1D, &p.LogRet1D, &p.Volume, &p.Filed, &p.Concepts,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save saves a single panel row
func (r *PanelRepository) Save(ctx context.Context, row *contracts.PanelRow) error {
	query := `
		INSERT INTO data.daily_panel (
			ticker, trade_date, adj_close, ret_1d, log_ret_1d, volume, filed, concepts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			adj_close = EXCLUDED.adj_close,
			ret_1d = EXCLUDED.ret_1d,
			log_ret_1d = EXCLUDED.log_ret_1d,
			volume = EXCLUDED.volume,
			filed = EXCLUDED.filed,
			concepts = EXCLUDED.concepts
	`

	_, err := r.pool.Exec(ctx, query,
		row.Ticker, row.Date, row.AdjClose, row.Ret1D, row.LogRet1D, row.Volume, row.Filed, row.Concepts,
	)
	return err
}

// SaveBatch saves multiple panel rows
func (r *PanelRepository) SaveBatch(ctx context.Context, panelRows []contracts.PanelRow) error {
	if len(panelRows) == 0 {
		return nil
	}

	for i := range panelRows {
		if err := r.Save(ctx, &panelRows[i]); err != nil {
			return err
		}
	}
	return nil
}

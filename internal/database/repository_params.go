package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ParamsRepository stores per-symbol strategy parameter overrides as JSONB.
// It satisfies the parameter resolver's store interface.
type ParamsRepository struct {
	db *DB
}

// NewParamsRepository creates a ParamsRepository
func NewParamsRepository(db *DB) *ParamsRepository {
	return &ParamsRepository{db: db}
}

// GetSymbolParameters returns the override map for a symbol, or a nil map
// when the symbol has no stored overrides.
func (r *ParamsRepository) GetSymbolParameters(ctx context.Context, symbol string) (map[string]float64, error) {
	var raw []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT params FROM strategy_params WHERE symbol = $1`,
		symbol,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying parameters for %s: %w", symbol, err)
	}

	var overrides map[string]float64
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("decoding parameters for %s: %w", symbol, err)
	}
	return overrides, nil
}

// SaveSymbolParameters upserts the override map for a symbol
func (r *ParamsRepository) SaveSymbolParameters(ctx context.Context, symbol string, overrides map[string]float64) error {
	raw, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("encoding parameters for %s: %w", symbol, err)
	}

	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO strategy_params (symbol, params, updated_at)
		 VALUES ($1, $2, CURRENT_TIMESTAMP)
		 ON CONFLICT (symbol)
		 DO UPDATE SET params = EXCLUDED.params, updated_at = CURRENT_TIMESTAMP`,
		symbol, raw,
	)
	if err != nil {
		return fmt.Errorf("saving parameters for %s: %w", symbol, err)
	}
	return nil
}

package database

import (
	"context"
	"fmt"

	"binai-trading-bot/internal/portfolio"
	"binai-trading-bot/internal/strategy"
)

// TradeRepository persists closed trades. It satisfies the position
// tracker's trade log interface.
type TradeRepository struct {
	db *DB
}

// NewTradeRepository creates a TradeRepository
func NewTradeRepository(db *DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// AppendClosedTrade inserts one closed trade
func (r *TradeRepository) AppendClosedTrade(ctx context.Context, trade portfolio.ClosedTrade) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO closed_trades
		 (symbol, side, quantity, entry_price, realized_pnl, close_reason, opened_at, closed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		trade.Symbol,
		string(trade.Side),
		trade.Quantity,
		trade.EntryPrice,
		trade.RealizedPnL,
		string(trade.CloseReason),
		trade.OpenedAt,
		trade.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting closed trade for %s: %w", trade.Symbol, err)
	}
	return nil
}

// GetRecentClosedTrades returns the most recent closed trades for a symbol,
// newest first. An empty symbol returns trades across all symbols.
func (r *TradeRepository) GetRecentClosedTrades(ctx context.Context, symbol string, limit int) ([]portfolio.ClosedTrade, error) {
	query := `SELECT symbol, side, quantity, entry_price, realized_pnl, close_reason, opened_at, closed_at
		 FROM closed_trades`
	args := []interface{}{}
	if symbol != "" {
		query += ` WHERE symbol = $1 ORDER BY closed_at DESC LIMIT $2`
		args = append(args, symbol, limit)
	} else {
		query += ` ORDER BY closed_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying closed trades: %w", err)
	}
	defer rows.Close()

	var trades []portfolio.ClosedTrade
	for rows.Next() {
		var t portfolio.ClosedTrade
		var side, reason string
		if err := rows.Scan(&t.Symbol, &side, &t.Quantity, &t.EntryPrice,
			&t.RealizedPnL, &reason, &t.OpenedAt, &t.ClosedAt); err != nil {
			return nil, fmt.Errorf("scanning closed trade: %w", err)
		}
		t.Side = strategy.Direction(side)
		t.CloseReason = portfolio.CloseReason(reason)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

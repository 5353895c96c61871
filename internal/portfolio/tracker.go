// Package portfolio owns the in-memory position book: lifecycle tracking
// against the exchange, correlation guarding, and slot allocation.
package portfolio

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/strategy"
)

// CloseReason explains why a position left the book
type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "STOP_LOSS"
	CloseReasonTakeProfit CloseReason = "TAKE_PROFIT"
	CloseReasonRebalanced CloseReason = "REBALANCED"
	CloseReasonUnknown    CloseReason = "UNKNOWN"
)

// ErrPositionNotFound is returned when a symbol is not in the book
var ErrPositionNotFound = errors.New("position not found")

// OpenPosition is the bot's view of a live position
type OpenPosition struct {
	Symbol        string             `json:"symbol"`
	Side          strategy.Direction `json:"side"`
	Quantity      float64            `json:"quantity"`
	EntryPrice    float64            `json:"entry_price"`
	EntryATR      float64            `json:"entry_atr"`
	StopLoss      float64            `json:"stop_loss"`
	TakeProfit    float64            `json:"take_profit"`
	Confidence    float64            `json:"confidence"`
	OpenedAt      time.Time          `json:"opened_at"`
	UnrealizedPnL float64            `json:"unrealized_pnl"`
}

// ClosedTrade is the record appended to the trade log when a position closes
type ClosedTrade struct {
	Symbol      string             `json:"symbol"`
	Side        strategy.Direction `json:"side"`
	Quantity    float64            `json:"quantity"`
	EntryPrice  float64            `json:"entry_price"`
	RealizedPnL float64            `json:"realized_pnl"`
	CloseReason CloseReason        `json:"close_reason"`
	OpenedAt    time.Time          `json:"opened_at"`
	ClosedAt    time.Time          `json:"closed_at"`
}

// TradeLog persists closed trades
type TradeLog interface {
	AppendClosedTrade(ctx context.Context, trade ClosedTrade) error
}

// SnapshotStore mirrors open positions to shared storage so dashboards and
// standby instances can observe the book
type SnapshotStore interface {
	SavePosition(ctx context.Context, pos OpenPosition) error
	DeletePosition(ctx context.Context, symbol string) error
}

// ReconcileResult summarizes one reconcile pass
type ReconcileResult struct {
	Checked int           `json:"checked"`
	Updated int           `json:"updated"`
	Closed  []ClosedTrade `json:"closed"`
	Errors  int           `json:"errors"`
}

// CleanupResult summarizes one orphan cleanup pass
type CleanupResult struct {
	Scanned       int      `json:"scanned"`
	OrphansClosed int      `json:"orphans_closed"`
	Symbols       []string `json:"symbols,omitempty"`
	Errors        int      `json:"errors"`
}

// Tracker is the mutex-guarded position book. Slots are claimed with
// TryReserve before orders go out, so concurrent workers can never push the
// book past its position limit.
type Tracker struct {
	mu        sync.Mutex
	positions map[string]*OpenPosition
	reserved  map[string]struct{}

	client    binance.FuturesClient
	tradeLog  TradeLog
	snapshots SnapshotStore
	logger    zerolog.Logger
}

// NewTracker creates a position tracker. tradeLog and snapshots may be nil
// when persistence is disabled.
func NewTracker(client binance.FuturesClient, tradeLog TradeLog, snapshots SnapshotStore, logger zerolog.Logger) *Tracker {
	return &Tracker{
		positions: make(map[string]*OpenPosition),
		reserved:  make(map[string]struct{}),
		client:    client,
		tradeLog:  tradeLog,
		snapshots: snapshots,
		logger:    logger.With().Str("component", "PositionTracker").Logger(),
	}
}

// Has reports whether a symbol is tracked or reserved
func (t *Tracker) Has(symbol string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.positions[symbol]; ok {
		return true
	}
	_, ok := t.reserved[symbol]
	return ok
}

// Count returns open positions plus pending reservations
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.positions) + len(t.reserved)
}

// Positions returns a copy of the current book
func (t *Tracker) Positions() []OpenPosition {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]OpenPosition, 0, len(t.positions))
	for _, pos := range t.positions {
		out = append(out, *pos)
	}
	return out
}

// Get returns a copy of one position
func (t *Tracker) Get(symbol string) (OpenPosition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, ok := t.positions[symbol]
	if !ok {
		return OpenPosition{}, false
	}
	return *pos, true
}

// TryReserve atomically claims a slot for a symbol. It fails when the
// symbol is already present or the book (including reservations) is full.
func (t *Tracker) TryReserve(symbol string, maxPositions int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.positions[symbol]; ok {
		return false
	}
	if _, ok := t.reserved[symbol]; ok {
		return false
	}
	if len(t.positions)+len(t.reserved) >= maxPositions {
		return false
	}

	t.reserved[symbol] = struct{}{}
	return true
}

// Commit converts a reservation into a tracked position
func (t *Tracker) Commit(ctx context.Context, pos OpenPosition) {
	t.mu.Lock()
	delete(t.reserved, pos.Symbol)
	p := pos
	t.positions[pos.Symbol] = &p
	t.mu.Unlock()

	t.saveSnapshot(ctx, pos)
}

// Release frees a reservation after a failed open
func (t *Tracker) Release(symbol string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.reserved, symbol)
}

// Weakest returns the open position with the lowest unrealized PnL
func (t *Tracker) Weakest() (OpenPosition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var weakest *OpenPosition
	for _, pos := range t.positions {
		if weakest == nil || pos.UnrealizedPnL < weakest.UnrealizedPnL {
			weakest = pos
		}
	}
	if weakest == nil {
		return OpenPosition{}, false
	}
	return *weakest, true
}

// Reconcile compares the book against the exchange. Live positions get
// their unrealized PnL refreshed; positions gone from the exchange are
// closed out with realized PnL summed from fills since entry.
func (t *Tracker) Reconcile(ctx context.Context) (ReconcileResult, error) {
	var result ReconcileResult

	exchangePositions, err := t.client.GetPositions()
	if err != nil {
		return result, err
	}

	exchangeAmt := make(map[string]float64, len(exchangePositions))
	exchangePnL := make(map[string]float64, len(exchangePositions))
	for _, pos := range exchangePositions {
		if pos.PositionAmt != 0 {
			exchangeAmt[pos.Symbol] = pos.PositionAmt
			exchangePnL[pos.Symbol] = pos.UnrealizedProfit
		}
	}

	t.mu.Lock()
	var updated []OpenPosition
	var vanished []OpenPosition
	for symbol, pos := range t.positions {
		result.Checked++
		if _, live := exchangeAmt[symbol]; live {
			pos.UnrealizedPnL = exchangePnL[symbol]
			updated = append(updated, *pos)
			result.Updated++
		} else {
			vanished = append(vanished, *pos)
		}
	}
	for _, pos := range vanished {
		delete(t.positions, pos.Symbol)
	}
	t.mu.Unlock()

	for _, pos := range updated {
		t.saveSnapshot(ctx, pos)
	}

	for _, pos := range vanished {
		trade := t.buildClosedTrade(pos)
		if err := t.recordClose(ctx, trade); err != nil {
			result.Errors++
		}
		result.Closed = append(result.Closed, trade)

		t.logger.Info().
			Str("symbol", trade.Symbol).
			Float64("realized_pnl", trade.RealizedPnL).
			Str("close_reason", string(trade.CloseReason)).
			Msg("Position closed on exchange")
	}

	return result, nil
}

// buildClosedTrade derives the closed-trade record for a position that
// disappeared from the exchange. Realized PnL comes from fills since entry;
// the close reason is inferred from the sign, which is best effort.
func (t *Tracker) buildClosedTrade(pos OpenPosition) ClosedTrade {
	trade := ClosedTrade{
		Symbol:      pos.Symbol,
		Side:        pos.Side,
		Quantity:    pos.Quantity,
		EntryPrice:  pos.EntryPrice,
		CloseReason: CloseReasonUnknown,
		OpenedAt:    pos.OpenedAt,
		ClosedAt:    time.Now(),
	}

	fills, err := t.client.GetTradeHistoryByDateRange(pos.Symbol, pos.OpenedAt.UnixMilli(), 0, 1000)
	if err != nil {
		t.logger.Warn().Str("symbol", pos.Symbol).Err(err).
			Msg("Could not fetch fills for closed position, recording zero PnL")
		return trade
	}

	for _, fill := range fills {
		trade.RealizedPnL += fill.RealizedPnl
	}

	switch {
	case trade.RealizedPnL > 0:
		trade.CloseReason = CloseReasonTakeProfit
	case trade.RealizedPnL < 0:
		trade.CloseReason = CloseReasonStopLoss
	}

	return trade
}

// ForceClose cancels a position's protective orders, closes it at market
// and records the trade. Used by the rebalancer to evict a weak position.
func (t *Tracker) ForceClose(ctx context.Context, symbol string, reason CloseReason) error {
	t.mu.Lock()
	pos, ok := t.positions[symbol]
	if !ok {
		t.mu.Unlock()
		return ErrPositionNotFound
	}
	snapshot := *pos
	t.mu.Unlock()

	if err := t.client.CancelAllFuturesOrders(symbol); err != nil {
		return err
	}

	side := binance.OrderSideSell
	if snapshot.Side == strategy.DirectionShort {
		side = binance.OrderSideBuy
	}

	if _, err := t.client.PlaceFuturesOrder(binance.FuturesOrderParams{
		Symbol:       symbol,
		Side:         side,
		PositionSide: binance.PositionSideBoth,
		Type:         binance.FuturesOrderTypeMarket,
		Quantity:     math.Abs(snapshot.Quantity),
		ReduceOnly:   true,
	}); err != nil {
		return err
	}

	t.mu.Lock()
	delete(t.positions, symbol)
	t.mu.Unlock()

	trade := ClosedTrade{
		Symbol:      snapshot.Symbol,
		Side:        snapshot.Side,
		Quantity:    snapshot.Quantity,
		EntryPrice:  snapshot.EntryPrice,
		RealizedPnL: snapshot.UnrealizedPnL,
		CloseReason: reason,
		OpenedAt:    snapshot.OpenedAt,
		ClosedAt:    time.Now(),
	}
	if err := t.recordClose(ctx, trade); err != nil {
		t.logger.Warn().Str("symbol", symbol).Err(err).Msg("Failed to record forced close")
	}

	t.logger.Info().
		Str("symbol", symbol).
		Float64("pnl", snapshot.UnrealizedPnL).
		Str("close_reason", string(reason)).
		Msg("Position force closed")

	return nil
}

// CleanupOrphans closes exchange positions the bot does not recognize.
// Zero trust: anything live on the exchange without a book entry gets its
// orders canceled and the position closed at market.
func (t *Tracker) CleanupOrphans(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult

	exchangePositions, err := t.client.GetPositions()
	if err != nil {
		return result, err
	}

	for _, pos := range exchangePositions {
		if pos.PositionAmt == 0 {
			continue
		}
		result.Scanned++

		if t.Has(pos.Symbol) {
			continue
		}

		t.logger.Warn().
			Str("symbol", pos.Symbol).
			Float64("position_amt", pos.PositionAmt).
			Msg("Orphan position found, closing")

		if err := t.client.CancelAllFuturesOrders(pos.Symbol); err != nil {
			t.logger.Error().Str("symbol", pos.Symbol).Err(err).
				Msg("Failed to cancel orphan orders")
			result.Errors++
			continue
		}

		side := binance.OrderSideSell
		if pos.PositionAmt < 0 {
			side = binance.OrderSideBuy
		}

		if _, err := t.client.PlaceFuturesOrder(binance.FuturesOrderParams{
			Symbol:       pos.Symbol,
			Side:         side,
			PositionSide: binance.PositionSideBoth,
			Type:         binance.FuturesOrderTypeMarket,
			Quantity:     math.Abs(pos.PositionAmt),
			ReduceOnly:   true,
		}); err != nil {
			t.logger.Error().Str("symbol", pos.Symbol).Err(err).
				Msg("Failed to close orphan position")
			result.Errors++
			continue
		}

		if t.snapshots != nil {
			if err := t.snapshots.DeletePosition(ctx, pos.Symbol); err != nil {
				t.logger.Debug().Str("symbol", pos.Symbol).Err(err).Msg("Snapshot delete failed")
			}
		}

		result.OrphansClosed++
		result.Symbols = append(result.Symbols, pos.Symbol)
	}

	return result, nil
}

func (t *Tracker) saveSnapshot(ctx context.Context, pos OpenPosition) {
	if t.snapshots == nil {
		return
	}
	if err := t.snapshots.SavePosition(ctx, pos); err != nil {
		t.logger.Debug().Str("symbol", pos.Symbol).Err(err).Msg("Snapshot save failed")
	}
}

func (t *Tracker) recordClose(ctx context.Context, trade ClosedTrade) error {
	if t.snapshots != nil {
		if err := t.snapshots.DeletePosition(ctx, trade.Symbol); err != nil {
			t.logger.Debug().Str("symbol", trade.Symbol).Err(err).Msg("Snapshot delete failed")
		}
	}
	if t.tradeLog == nil {
		return nil
	}
	return t.tradeLog.AppendClosedTrade(ctx, trade)
}

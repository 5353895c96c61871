package portfolio

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/strategy"
)

type fakeTradeLog struct {
	mu     sync.Mutex
	trades []ClosedTrade
}

func (l *fakeTradeLog) AppendClosedTrade(ctx context.Context, trade ClosedTrade) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = append(l.trades, trade)
	return nil
}

func newTestTracker(client binance.FuturesClient, log TradeLog) *Tracker {
	return NewTracker(client, log, nil, zerolog.Nop())
}

func openLong(symbol string, qty, entry float64) OpenPosition {
	return OpenPosition{
		Symbol:     symbol,
		Side:       strategy.DirectionLong,
		Quantity:   qty,
		EntryPrice: entry,
		OpenedAt:   time.Now().Add(-time.Hour),
	}
}

func TestTryReserveEnforcesLimitUnderConcurrency(t *testing.T) {
	tracker := newTestTracker(binance.NewFuturesMockClient(1000), nil)

	const attempts = 100
	const maxPositions = 5

	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- tracker.TryReserve(fmt.Sprintf("SYM%dUSDT", n), maxPositions)
		}(i)
	}
	wg.Wait()
	close(results)

	granted := 0
	for ok := range results {
		if ok {
			granted++
		}
	}
	if granted != maxPositions {
		t.Errorf("granted %d reservations, want exactly %d", granted, maxPositions)
	}
	if tracker.Count() != maxPositions {
		t.Errorf("Count() = %d, want %d", tracker.Count(), maxPositions)
	}
}

func TestTryReserveRejectsDuplicateSymbol(t *testing.T) {
	tracker := newTestTracker(binance.NewFuturesMockClient(1000), nil)

	if !tracker.TryReserve("BTCUSDT", 5) {
		t.Fatal("first reservation should succeed")
	}
	if tracker.TryReserve("BTCUSDT", 5) {
		t.Error("duplicate reservation should fail")
	}

	tracker.Commit(context.Background(), openLong("BTCUSDT", 1, 50000))
	if tracker.TryReserve("BTCUSDT", 5) {
		t.Error("reservation for a tracked symbol should fail")
	}
	if !tracker.Has("BTCUSDT") {
		t.Error("committed position should be tracked")
	}
}

func TestReleaseFreesSlot(t *testing.T) {
	tracker := newTestTracker(binance.NewFuturesMockClient(1000), nil)

	tracker.TryReserve("BTCUSDT", 1)
	if tracker.TryReserve("ETHUSDT", 1) {
		t.Fatal("second reservation should fail at limit 1")
	}

	tracker.Release("BTCUSDT")
	if !tracker.TryReserve("ETHUSDT", 1) {
		t.Error("reservation should succeed after release")
	}
}

func TestReconcileUpdatesUnrealizedPnL(t *testing.T) {
	client := binance.NewFuturesMockClient(1000)
	client.SetPosition(binance.FuturesPosition{Symbol: "ETHUSDT", PositionAmt: 2, EntryPrice: 3000})
	client.SetPrice("ETHUSDT", 3100)

	tracker := newTestTracker(client, nil)
	tracker.TryReserve("ETHUSDT", 5)
	tracker.Commit(context.Background(), openLong("ETHUSDT", 2, 3000))

	result, err := tracker.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.Checked != 1 || result.Updated != 1 || len(result.Closed) != 0 {
		t.Errorf("result = %+v, want 1 checked, 1 updated, 0 closed", result)
	}

	pos, ok := tracker.Get("ETHUSDT")
	if !ok {
		t.Fatal("position should still be tracked")
	}
	if pos.UnrealizedPnL != 200 {
		t.Errorf("unrealized PnL = %f, want 200", pos.UnrealizedPnL)
	}
}

func TestReconcileDetectsClosedPosition(t *testing.T) {
	client := binance.NewFuturesMockClient(1000)
	log := &fakeTradeLog{}
	tracker := newTestTracker(client, log)

	tracker.TryReserve("BTCUSDT", 5)
	tracker.Commit(context.Background(), openLong("BTCUSDT", 0.5, 50000))

	// Exchange no longer holds the position; fills show a profitable exit
	client.SetTrades("BTCUSDT", []binance.FuturesTrade{
		{Symbol: "BTCUSDT", RealizedPnl: 0, Time: time.Now().UnixMilli()},
		{Symbol: "BTCUSDT", RealizedPnl: 150, Time: time.Now().UnixMilli()},
	})

	result, err := tracker.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Closed) != 1 {
		t.Fatalf("closed = %d, want 1", len(result.Closed))
	}
	trade := result.Closed[0]
	if trade.RealizedPnL != 150 {
		t.Errorf("realized PnL = %f, want 150", trade.RealizedPnL)
	}
	if trade.CloseReason != CloseReasonTakeProfit {
		t.Errorf("close reason = %s, want TAKE_PROFIT for positive PnL", trade.CloseReason)
	}

	if tracker.Has("BTCUSDT") {
		t.Error("closed position should leave the book")
	}
	if len(log.trades) != 1 {
		t.Errorf("trade log entries = %d, want 1", len(log.trades))
	}
}

func TestReconcileLossMapsToStopLoss(t *testing.T) {
	client := binance.NewFuturesMockClient(1000)
	tracker := newTestTracker(client, nil)

	tracker.TryReserve("BTCUSDT", 5)
	tracker.Commit(context.Background(), openLong("BTCUSDT", 0.5, 50000))
	client.SetTrades("BTCUSDT", []binance.FuturesTrade{
		{Symbol: "BTCUSDT", RealizedPnl: -80, Time: time.Now().UnixMilli()},
	})

	result, err := tracker.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(result.Closed) != 1 || result.Closed[0].CloseReason != CloseReasonStopLoss {
		t.Errorf("result = %+v, want one STOP_LOSS closure", result)
	}
}

func TestWeakestPicksLowestPnL(t *testing.T) {
	tracker := newTestTracker(binance.NewFuturesMockClient(1000), nil)

	if _, ok := tracker.Weakest(); ok {
		t.Error("Weakest on empty book should report false")
	}

	a := openLong("AUSDT", 1, 100)
	a.UnrealizedPnL = 50
	b := openLong("BUSDT", 1, 100)
	b.UnrealizedPnL = -20
	tracker.TryReserve("AUSDT", 5)
	tracker.Commit(context.Background(), a)
	tracker.TryReserve("BUSDT", 5)
	tracker.Commit(context.Background(), b)

	weakest, ok := tracker.Weakest()
	if !ok || weakest.Symbol != "BUSDT" {
		t.Errorf("weakest = %+v, want BUSDT", weakest)
	}
}

func TestCleanupOrphansClosesUntrackedPositions(t *testing.T) {
	client := binance.NewFuturesMockClient(1000)
	client.SetPosition(binance.FuturesPosition{Symbol: "DOGEUSDT", PositionAmt: -100, EntryPrice: 0.4})
	client.SetPrice("DOGEUSDT", 0.4)

	tracker := newTestTracker(client, nil)

	result, err := tracker.CleanupOrphans(context.Background())
	if err != nil {
		t.Fatalf("CleanupOrphans failed: %v", err)
	}

	if result.OrphansClosed != 1 {
		t.Fatalf("orphans closed = %d, want 1", result.OrphansClosed)
	}
	if len(client.CanceledSymbols) != 1 || client.CanceledSymbols[0] != "DOGEUSDT" {
		t.Errorf("canceled symbols = %v, want [DOGEUSDT]", client.CanceledSymbols)
	}

	if len(client.PlacedOrders) != 1 {
		t.Fatalf("placed orders = %d, want 1", len(client.PlacedOrders))
	}
	order := client.PlacedOrders[0]
	if order.Side != binance.OrderSideBuy || !order.ReduceOnly || order.Quantity != 100 {
		t.Errorf("close order = %+v, want reduce-only BUY of 100", order)
	}
}

func TestCleanupOrphansLeavesTrackedPositionsAlone(t *testing.T) {
	client := binance.NewFuturesMockClient(1000)
	client.SetPosition(binance.FuturesPosition{Symbol: "BTCUSDT", PositionAmt: 1, EntryPrice: 50000})
	client.SetPrice("BTCUSDT", 50000)

	tracker := newTestTracker(client, nil)
	tracker.TryReserve("BTCUSDT", 5)
	tracker.Commit(context.Background(), openLong("BTCUSDT", 1, 50000))

	result, err := tracker.CleanupOrphans(context.Background())
	if err != nil {
		t.Fatalf("CleanupOrphans failed: %v", err)
	}
	if result.OrphansClosed != 0 {
		t.Errorf("orphans closed = %d, want 0 for tracked position", result.OrphansClosed)
	}
	if len(client.PlacedOrders) != 0 {
		t.Errorf("placed orders = %d, want 0", len(client.PlacedOrders))
	}
}

func TestForceCloseRecordsTrade(t *testing.T) {
	client := binance.NewFuturesMockClient(1000)
	client.SetPrice("BTCUSDT", 49000)
	log := &fakeTradeLog{}
	tracker := newTestTracker(client, log)

	pos := openLong("BTCUSDT", 0.5, 50000)
	pos.UnrealizedPnL = -500
	tracker.TryReserve("BTCUSDT", 5)
	tracker.Commit(context.Background(), pos)

	if err := tracker.ForceClose(context.Background(), "BTCUSDT", CloseReasonRebalanced); err != nil {
		t.Fatalf("ForceClose failed: %v", err)
	}

	if tracker.Has("BTCUSDT") {
		t.Error("force-closed position should leave the book")
	}
	if len(log.trades) != 1 {
		t.Fatalf("trade log entries = %d, want 1", len(log.trades))
	}
	if log.trades[0].CloseReason != CloseReasonRebalanced {
		t.Errorf("close reason = %s, want REBALANCED", log.trades[0].CloseReason)
	}

	if err := tracker.ForceClose(context.Background(), "NOPEUSDT", CloseReasonRebalanced); err != ErrPositionNotFound {
		t.Errorf("err = %v, want ErrPositionNotFound", err)
	}
}

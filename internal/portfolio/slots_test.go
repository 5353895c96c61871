package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/params"
	"binai-trading-bot/internal/risk"
	"binai-trading-bot/internal/strategy"
)

func slotFixture(t *testing.T) (*SlotManager, *Tracker, *binance.FuturesMockClient) {
	t.Helper()
	client := binance.NewFuturesMockClient(10000)
	client.SetKlines("BTCUSDT", []binance.Kline{{Close: 50000}})
	client.SetPrice("BTCUSDT", 50000)
	client.SetKlines("ETHUSDT", []binance.Kline{{Close: 3000}})
	client.SetPrice("ETHUSDT", 3000)

	rules := binance.NewExchangeRules(client, time.Minute)
	engine := risk.NewEngine(client, rules, false, zerolog.Nop())
	tracker := NewTracker(client, nil, nil, zerolog.Nop())
	manager := NewSlotManager(tracker, nil, engine, true, 0.95, zerolog.Nop())
	return manager, tracker, client
}

func slotParams() params.ParameterSet {
	return params.ParameterSet{
		MaxOpenPositions: 1,
		Leverage:         10,
		UseDynamicSLTP:   true,
		ATRMultiplierSL:  2.0,
		ATRMultiplierTP:  4.0,
		UseDynamicSizing: true,
		RiskPerTrade:     0.02,
	}
}

func longSignal(symbol string, price, atr, confidence float64) strategy.Analysis {
	return strategy.Analysis{
		Symbol: symbol,
		Price:  price,
		ATR:    atr,
		Signal: strategy.Signal{Direction: strategy.DirectionLong, Confidence: confidence},
	}
}

func TestHandleSignalOpensPosition(t *testing.T) {
	manager, tracker, client := slotFixture(t)

	decision := manager.HandleSignal(context.Background(), longSignal("BTCUSDT", 50000, 50, 0.85), 10000, slotParams())

	if decision.Action != ActionOpened {
		t.Fatalf("action = %s (%s), want OPENED", decision.Action, decision.Reason)
	}
	if !tracker.Has("BTCUSDT") {
		t.Error("opened position should be tracked")
	}
	// Entry plus stop and take profit
	if len(client.PlacedOrders) != 3 {
		t.Errorf("placed %d orders, want 3", len(client.PlacedOrders))
	}
}

func TestHandleSignalSkipsExistingPosition(t *testing.T) {
	manager, tracker, client := slotFixture(t)

	tracker.TryReserve("BTCUSDT", 2)
	tracker.Commit(context.Background(), openLong("BTCUSDT", 0.1, 50000))

	decision := manager.HandleSignal(context.Background(), longSignal("BTCUSDT", 50000, 50, 0.99), 10000, slotParams())

	if decision.Action != ActionSkippedExisting {
		t.Errorf("action = %s, want SKIPPED_EXISTING", decision.Action)
	}
	if len(client.PlacedOrders) != 0 {
		t.Errorf("placed %d orders, want 0", len(client.PlacedOrders))
	}
}

func TestHandleSignalDropsWhenFullAndUnconvincing(t *testing.T) {
	manager, tracker, _ := slotFixture(t)

	tracker.TryReserve("ETHUSDT", 1)
	tracker.Commit(context.Background(), openLong("ETHUSDT", 1, 3000))

	// 0.90 is below the 0.95 rebalance bar
	decision := manager.HandleSignal(context.Background(), longSignal("BTCUSDT", 50000, 50, 0.90), 10000, slotParams())

	if decision.Action != ActionDroppedFull {
		t.Errorf("action = %s, want DROPPED_FULL", decision.Action)
	}
	if !tracker.Has("ETHUSDT") {
		t.Error("existing position must survive an unconvincing signal")
	}
}

func TestHandleSignalEvictsWeakestForStrongSignal(t *testing.T) {
	manager, tracker, _ := slotFixture(t)

	weak := openLong("ETHUSDT", 1, 3000)
	weak.UnrealizedPnL = -40
	tracker.TryReserve("ETHUSDT", 1)
	tracker.Commit(context.Background(), weak)

	decision := manager.HandleSignal(context.Background(), longSignal("BTCUSDT", 50000, 50, 0.97), 10000, slotParams())

	if decision.Action != ActionRebalanced {
		t.Fatalf("action = %s (%s), want REBALANCED", decision.Action, decision.Reason)
	}
	if decision.Evicted != "ETHUSDT" {
		t.Errorf("evicted = %s, want ETHUSDT", decision.Evicted)
	}
	if tracker.Has("ETHUSDT") {
		t.Error("evicted position should be gone")
	}
	if !tracker.Has("BTCUSDT") {
		t.Error("new position should be tracked")
	}
}

func TestHandleSignalReleasesSlotOnPlanFailure(t *testing.T) {
	manager, tracker, _ := slotFixture(t)

	// Zero balance makes the plan unbuildable
	decision := manager.HandleSignal(context.Background(), longSignal("BTCUSDT", 50000, 50, 0.85), 0, slotParams())

	if decision.Action != ActionFailed {
		t.Fatalf("action = %s, want FAILED", decision.Action)
	}
	if tracker.Has("BTCUSDT") {
		t.Error("failed open must not leave a tracked position")
	}
	if !tracker.TryReserve("BTCUSDT", 1) {
		t.Error("slot must be reusable after a failed open")
	}
}

func TestHandleSignalBlocksCorrelatedEntry(t *testing.T) {
	client := binance.NewFuturesMockClient(10000)
	client.SetKlines("BTCUSDT", []binance.Kline{{Close: 50000}, {Close: 51000}, {Close: 52000}})
	client.SetKlines("ETHUSDT", []binance.Kline{{Close: 3000}, {Close: 3060}, {Close: 3120}})
	client.SetPrice("BTCUSDT", 52000)
	client.SetPrice("ETHUSDT", 3120)

	rules := binance.NewExchangeRules(client, time.Minute)
	engine := risk.NewEngine(client, rules, false, zerolog.Nop())
	tracker := NewTracker(client, nil, nil, zerolog.Nop())
	guard := NewCorrelationGuard(client, true, 0.8, "5m", 100, zerolog.Nop())
	manager := NewSlotManager(tracker, guard, engine, true, 0.95, zerolog.Nop())

	p := slotParams()
	p.MaxOpenPositions = 2
	tracker.TryReserve("BTCUSDT", 2)
	tracker.Commit(context.Background(), openLong("BTCUSDT", 0.1, 50000))

	decision := manager.HandleSignal(context.Background(), longSignal("ETHUSDT", 3120, 30, 0.85), 10000, p)

	if decision.Action != ActionBlockedCorrelation {
		t.Fatalf("action = %s (%s), want BLOCKED_CORRELATION", decision.Action, decision.Reason)
	}
	if decision.Correlation <= 0.8 {
		t.Errorf("correlation = %f, want > threshold", decision.Correlation)
	}
}

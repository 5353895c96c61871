package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/params"
	"binai-trading-bot/internal/strategy"
)

func testEngine(t *testing.T) (*Engine, *binance.FuturesMockClient) {
	t.Helper()
	client := binance.NewFuturesMockClient(1000)
	// Registering klines makes the mock report the symbol (precision 2/3)
	client.SetKlines("BTCUSDT", []binance.Kline{{Close: 50000}})
	client.SetPrice("BTCUSDT", 50000)

	rules := binance.NewExchangeRules(client, time.Minute)
	return NewEngine(client, rules, false, zerolog.Nop()), client
}

func dynamicParams() params.ParameterSet {
	return params.ParameterSet{
		Leverage:         10,
		UseDynamicSLTP:   true,
		ATRMultiplierSL:  2.0,
		ATRMultiplierTP:  4.0,
		UseDynamicSizing: true,
		RiskPerTrade:     0.02,
	}
}

func TestBuildPlanDynamicSizing(t *testing.T) {
	engine, _ := testEngine(t)

	// Stop distance = ATR 50 * 2 = 100; quantity = 1000 * 0.02 / 100 = 0.2
	plan, err := engine.BuildPlan("BTCUSDT", strategy.DirectionLong, 50000, 50, 1000, dynamicParams())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	if plan.Quantity != 0.2 {
		t.Errorf("quantity = %f, want 0.2", plan.Quantity)
	}
	if plan.StopLoss != 49900 {
		t.Errorf("stop loss = %f, want 49900", plan.StopLoss)
	}
	if plan.TakeProfit != 50200 {
		t.Errorf("take profit = %f, want 50200", plan.TakeProfit)
	}
	if plan.ClientOrderID == "" {
		t.Error("client order id must be set")
	}
}

func TestBuildPlanShortMirrorsLevels(t *testing.T) {
	engine, _ := testEngine(t)

	plan, err := engine.BuildPlan("BTCUSDT", strategy.DirectionShort, 50000, 50, 1000, dynamicParams())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	if plan.StopLoss != 50100 {
		t.Errorf("short stop loss = %f, want 50100", plan.StopLoss)
	}
	if plan.TakeProfit != 49800 {
		t.Errorf("short take profit = %f, want 49800", plan.TakeProfit)
	}
}

func TestBuildPlanStaticFallback(t *testing.T) {
	engine, _ := testEngine(t)

	p := dynamicParams()
	p.UseDynamicSLTP = false
	p.UseDynamicSizing = false
	p.StopLossPercent = 0.015
	p.TakeProfitPercent = 0.03
	p.PositionSizePercent = 0.5

	// Margin 1000*0.5 at 10x = 5000 notional; 5000 / 50000 = 0.1
	plan, err := engine.BuildPlan("BTCUSDT", strategy.DirectionLong, 50000, 0, 1000, p)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	if plan.Quantity != 0.1 {
		t.Errorf("quantity = %f, want 0.1", plan.Quantity)
	}
	if plan.StopLoss != 49250 {
		t.Errorf("stop loss = %f, want 49250", plan.StopLoss)
	}
	if plan.TakeProfit != 51500 {
		t.Errorf("take profit = %f, want 51500", plan.TakeProfit)
	}
}

func TestBuildPlanRejectsZeroQuantity(t *testing.T) {
	engine, _ := testEngine(t)

	// Risking 2% of one dollar over a 100 point stop rounds to nothing
	_, err := engine.BuildPlan("BTCUSDT", strategy.DirectionLong, 50000, 50, 1, dynamicParams())
	if !errors.Is(err, ErrZeroQuantity) {
		t.Errorf("err = %v, want ErrZeroQuantity", err)
	}
}

func TestBuildPlanRejectsZeroStopDistance(t *testing.T) {
	engine, client := testEngine(t)
	client.SetKlines("SHIBUSDT", []binance.Kline{{Close: 0.001}})

	p := dynamicParams()
	// ATR so small the distance rounds to zero at two decimals
	_, err := engine.BuildPlan("SHIBUSDT", strategy.DirectionLong, 0.001, 0.0001, 1000, p)
	if !errors.Is(err, ErrZeroStopDistance) {
		t.Errorf("err = %v, want ErrZeroStopDistance", err)
	}
}

func TestBuildPlanRejectsNegativeTakeProfit(t *testing.T) {
	engine, _ := testEngine(t)

	// ATR 15000 at 4x puts the short target 10000 below zero while the
	// stop stays valid; the plan must be rejected before submission
	plan, err := engine.BuildPlan("BTCUSDT", strategy.DirectionShort, 50000, 15000, 10000, dynamicParams())
	if err == nil {
		t.Fatalf("plan = %+v, want rejection for non-positive take profit", plan)
	}
}

func TestBuildPlanRejectsInvalidInputs(t *testing.T) {
	engine, _ := testEngine(t)

	if _, err := engine.BuildPlan("BTCUSDT", strategy.DirectionLong, 0, 50, 1000, dynamicParams()); !errors.Is(err, ErrInvalidInputs) {
		t.Errorf("zero price: err = %v, want ErrInvalidInputs", err)
	}
	if _, err := engine.BuildPlan("BTCUSDT", strategy.DirectionLong, 50000, 50, 0, dynamicParams()); !errors.Is(err, ErrInvalidInputs) {
		t.Errorf("zero balance: err = %v, want ErrInvalidInputs", err)
	}
}

func TestExecutePlacesEntryAndProtectiveOrders(t *testing.T) {
	engine, client := testEngine(t)

	plan, err := engine.BuildPlan("BTCUSDT", strategy.DirectionLong, 50000, 50, 1000, dynamicParams())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if err := engine.Execute(plan, dynamicParams()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(client.PlacedOrders) != 3 {
		t.Fatalf("placed %d orders, want 3", len(client.PlacedOrders))
	}

	entry := client.PlacedOrders[0]
	if entry.Type != binance.FuturesOrderTypeMarket || entry.Side != binance.OrderSideBuy {
		t.Errorf("entry order = %+v, want MARKET BUY", entry)
	}

	sl := client.PlacedOrders[1]
	if sl.Type != binance.FuturesOrderTypeStopMarket || !sl.ClosePosition || sl.StopPrice != 49900 {
		t.Errorf("stop order = %+v, want closePosition STOP_MARKET at 49900", sl)
	}

	tp := client.PlacedOrders[2]
	if tp.Type != binance.FuturesOrderTypeTakeProfitMarket || tp.StopPrice != 50200 {
		t.Errorf("take profit order = %+v, want TAKE_PROFIT_MARKET at 50200", tp)
	}
}

func TestExecuteClosesPositionWhenProtectiveOrderFails(t *testing.T) {
	engine, client := testEngine(t)
	client.FailOrderType[binance.FuturesOrderTypeStopMarket] = errors.New("would trigger immediately")

	plan, err := engine.BuildPlan("BTCUSDT", strategy.DirectionLong, 50000, 50, 1000, dynamicParams())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	if err := engine.Execute(plan, dynamicParams()); err == nil {
		t.Fatal("Execute should fail when the stop cannot be placed")
	}

	if len(client.CanceledSymbols) != 1 || client.CanceledSymbols[0] != "BTCUSDT" {
		t.Errorf("canceled symbols = %v, want [BTCUSDT]", client.CanceledSymbols)
	}

	last := client.PlacedOrders[len(client.PlacedOrders)-1]
	if last.Type != binance.FuturesOrderTypeMarket || !last.ReduceOnly || last.Side != binance.OrderSideSell {
		t.Errorf("remediation order = %+v, want reduce-only MARKET SELL", last)
	}
}

func TestExecuteDryRunPlacesNothing(t *testing.T) {
	client := binance.NewFuturesMockClient(1000)
	client.SetKlines("BTCUSDT", []binance.Kline{{Close: 50000}})
	rules := binance.NewExchangeRules(client, time.Minute)
	engine := NewEngine(client, rules, true, zerolog.Nop())

	plan, err := engine.BuildPlan("BTCUSDT", strategy.DirectionLong, 50000, 50, 1000, dynamicParams())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if err := engine.Execute(plan, dynamicParams()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(client.PlacedOrders) != 0 {
		t.Errorf("dry run placed %d orders, want 0", len(client.PlacedOrders))
	}
}

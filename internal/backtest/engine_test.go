package backtest

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/params"
	"binai-trading-bot/internal/strategy"
)

func backtestParams() params.ParameterSet {
	return params.ParameterSet{
		FastMAPeriod:        5,
		SlowMAPeriod:        10,
		RSIPeriod:           5,
		RSIOversold:         30,
		RSIOverbought:       70,
		VolumeAvgPeriod:     5,
		ADXPeriod:           5,
		ADXTrendThreshold:   25,
		BollingerLength:     5,
		BollingerStdDev:     2.0,
		MACDFastPeriod:      5,
		MACDSlowPeriod:      10,
		MACDSignalPeriod:    3,
		MinSignalConfidence: 0.5,
		UseDynamicSLTP:      true,
		ATRMultiplierSL:     2.0,
		ATRMultiplierTP:     4.0,
		UseDynamicSizing:    true,
		RiskPerTrade:        0.02,
		Leverage:            10,
	}
}

func candleSeries(closes []float64) []binance.Kline {
	klines := make([]binance.Kline, len(closes))
	for i, c := range closes {
		klines[i] = binance.Kline{
			OpenTime:  int64(i) * 300000,
			CloseTime: int64(i+1)*300000 - 1,
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    100,
		}
	}
	return klines
}

func TestRunRejectsShortHistory(t *testing.T) {
	engine := NewEngine(10000, 0.0004, zerolog.Nop())

	if _, err := engine.Run("BTCUSDT", candleSeries(make([]float64, 59)), backtestParams()); err == nil {
		t.Error("fewer than 60 candles must be rejected")
	}
}

func TestRunFlatMarketTradesNothing(t *testing.T) {
	engine := NewEngine(10000, 0.0004, zerolog.Nop())

	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}

	result, err := engine.Run("BTCUSDT", candleSeries(closes), backtestParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.TotalTrades != 0 {
		t.Errorf("total trades = %d, want 0 in a flat market", result.TotalTrades)
	}
	if result.NetProfit != 0 {
		t.Errorf("net profit = %f, want 0", result.NetProfit)
	}
	if result.MaxDrawdown != 0 {
		t.Errorf("max drawdown = %f, want 0", result.MaxDrawdown)
	}
}

func TestCheckExitLong(t *testing.T) {
	trade := &Trade{Side: strategy.DirectionLong, stopLoss: 95, takeProfit: 110}

	if price, reason := checkExit(trade, binance.Kline{High: 105, Low: 100}); reason != "" {
		t.Errorf("exit = %f %s, want none inside the bracket", price, reason)
	}
	if price, reason := checkExit(trade, binance.Kline{High: 105, Low: 94}); reason != "stop_loss" || price != 95 {
		t.Errorf("exit = %f %s, want stop_loss at 95", price, reason)
	}
	if price, reason := checkExit(trade, binance.Kline{High: 111, Low: 100}); reason != "take_profit" || price != 110 {
		t.Errorf("exit = %f %s, want take_profit at 110", price, reason)
	}
	// Both levels touched in one bar: the stop is assumed to fill first
	if _, reason := checkExit(trade, binance.Kline{High: 111, Low: 94}); reason != "stop_loss" {
		t.Errorf("exit reason = %s, want stop_loss when both levels are hit", reason)
	}
}

func TestCheckExitShort(t *testing.T) {
	trade := &Trade{Side: strategy.DirectionShort, stopLoss: 105, takeProfit: 90}

	if price, reason := checkExit(trade, binance.Kline{High: 106, Low: 100}); reason != "stop_loss" || price != 105 {
		t.Errorf("exit = %f %s, want stop_loss at 105", price, reason)
	}
	if price, reason := checkExit(trade, binance.Kline{High: 104, Low: 89}); reason != "take_profit" || price != 90 {
		t.Errorf("exit = %f %s, want take_profit at 90", price, reason)
	}
}

func TestDistances(t *testing.T) {
	p := backtestParams()

	sl, tp := distances(100, 3, p)
	if sl != 6 || tp != 12 {
		t.Errorf("dynamic distances = %f/%f, want 6/12", sl, tp)
	}

	// Zero ATR falls back to the static percentages
	p.StopLossPercent = 0.015
	p.TakeProfitPercent = 0.03
	sl, tp = distances(100, 0, p)
	if sl != 1.5 || tp != 3 {
		t.Errorf("static distances = %f/%f, want 1.5/3", sl, tp)
	}
}

func TestMaxDrawdown(t *testing.T) {
	at := func(equity float64) EquityPoint {
		return EquityPoint{Timestamp: time.Now(), Equity: equity}
	}

	if dd := maxDrawdown(nil); dd != 0 {
		t.Errorf("empty curve drawdown = %f, want 0", dd)
	}
	if dd := maxDrawdown([]EquityPoint{at(100), at(110), at(120)}); dd != 0 {
		t.Errorf("rising curve drawdown = %f, want 0", dd)
	}

	// Peak 200, trough 150: 25 percent
	dd := maxDrawdown([]EquityPoint{at(100), at(200), at(150), at(180)})
	if dd != 25 {
		t.Errorf("drawdown = %f, want 25", dd)
	}
}

package portfolio

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/strategy"
)

type fakeKlineSource struct {
	closes map[string][]float64
	errs   map[string]error
}

func (s *fakeKlineSource) GetFuturesKlines(symbol, interval string, limit int) ([]binance.Kline, error) {
	if err, ok := s.errs[symbol]; ok {
		return nil, err
	}
	closes, ok := s.closes[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	klines := make([]binance.Kline, len(closes))
	for i, c := range closes {
		klines[i] = binance.Kline{Close: c}
	}
	return klines, nil
}

func TestPearson(t *testing.T) {
	corr, ok := pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	if !ok || math.Abs(corr-1) > 1e-9 {
		t.Errorf("linear series: corr = %f ok = %v, want 1", corr, ok)
	}

	corr, ok = pearson([]float64{1, 2, 3}, []float64{3, 2, 1})
	if !ok || math.Abs(corr+1) > 1e-9 {
		t.Errorf("inverted series: corr = %f ok = %v, want -1", corr, ok)
	}

	// Unequal lengths align on the tail
	corr, ok = pearson([]float64{99, 1, 2, 3}, []float64{2, 4, 6})
	if !ok || math.Abs(corr-1) > 1e-9 {
		t.Errorf("tail-aligned series: corr = %f ok = %v, want 1", corr, ok)
	}

	if _, ok := pearson([]float64{1}, []float64{2}); ok {
		t.Error("single point must not produce a coefficient")
	}
	if _, ok := pearson([]float64{5, 5, 5}, []float64{1, 2, 3}); ok {
		t.Error("zero-variance series must not produce a coefficient")
	}
}

func TestGuardBlocksCorrelatedSameSide(t *testing.T) {
	source := &fakeKlineSource{closes: map[string][]float64{
		"ETHUSDT": {100, 102, 104, 106, 108},
		"BTCUSDT": {50000, 51000, 52000, 53000, 54000},
	}}
	guard := NewCorrelationGuard(source, true, 0.8, "5m", 100, zerolog.Nop())

	open := []OpenPosition{{Symbol: "BTCUSDT", Side: strategy.DirectionLong}}

	verdict := guard.Check("ETHUSDT", strategy.DirectionLong, open)
	if !verdict.Blocked {
		t.Fatal("perfectly correlated same-side entry should be blocked")
	}
	if verdict.Against != "BTCUSDT" {
		t.Errorf("against = %s, want BTCUSDT", verdict.Against)
	}
	if verdict.Correlation <= 0.8 {
		t.Errorf("correlation = %f, want > threshold", verdict.Correlation)
	}
}

func TestGuardAllowsOppositeSide(t *testing.T) {
	source := &fakeKlineSource{closes: map[string][]float64{
		"ETHUSDT": {100, 102, 104},
		"BTCUSDT": {50000, 51000, 52000},
	}}
	guard := NewCorrelationGuard(source, true, 0.8, "5m", 100, zerolog.Nop())

	open := []OpenPosition{{Symbol: "BTCUSDT", Side: strategy.DirectionShort}}

	if verdict := guard.Check("ETHUSDT", strategy.DirectionLong, open); verdict.Blocked {
		t.Error("opposite-side positions should not block each other")
	}
}

func TestGuardAllowsBelowThreshold(t *testing.T) {
	source := &fakeKlineSource{closes: map[string][]float64{
		"ETHUSDT": {100, 99, 104, 97, 108},
		"BTCUSDT": {50000, 51000, 49000, 53000, 48000},
	}}
	guard := NewCorrelationGuard(source, true, 0.95, "5m", 100, zerolog.Nop())

	open := []OpenPosition{{Symbol: "BTCUSDT", Side: strategy.DirectionLong}}

	if verdict := guard.Check("ETHUSDT", strategy.DirectionLong, open); verdict.Blocked {
		t.Errorf("weakly correlated entry should be allowed, got %+v", verdict)
	}
}

func TestGuardFailsOpenOnFetchError(t *testing.T) {
	source := &fakeKlineSource{
		closes: map[string][]float64{"BTCUSDT": {1, 2, 3}},
		errs:   map[string]error{"ETHUSDT": errors.New("timeout")},
	}
	guard := NewCorrelationGuard(source, true, 0.8, "5m", 100, zerolog.Nop())

	open := []OpenPosition{{Symbol: "BTCUSDT", Side: strategy.DirectionLong}}

	if verdict := guard.Check("ETHUSDT", strategy.DirectionLong, open); verdict.Blocked {
		t.Error("fetch failure must allow the entry, not block it")
	}
}

func TestGuardDisabledAllowsEverything(t *testing.T) {
	guard := NewCorrelationGuard(nil, false, 0.8, "5m", 100, zerolog.Nop())

	open := []OpenPosition{{Symbol: "BTCUSDT", Side: strategy.DirectionLong}}
	if verdict := guard.Check("ETHUSDT", strategy.DirectionLong, open); verdict.Blocked {
		t.Error("disabled guard must not block")
	}
}

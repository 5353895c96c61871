package params

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeStore struct {
	calls     int
	overrides map[string]float64
	err       error
}

func (s *fakeStore) GetSymbolParameters(ctx context.Context, symbol string) (map[string]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.overrides, nil
}

func baseParams() ParameterSet {
	return ParameterSet{
		FastMAPeriod:        20,
		SlowMAPeriod:        50,
		RSIPeriod:           14,
		ADXTrendThreshold:   25,
		MinSignalConfidence: 0.80,
		Leverage:            10,
	}
}

func TestResolveAppliesStoredOverrides(t *testing.T) {
	store := &fakeStore{overrides: map[string]float64{
		"fast_ma_period":      10,
		"adx_trend_threshold": 30,
	}}
	r := NewResolver(store, baseParams(), time.Minute, zerolog.Nop())

	p := r.Resolve(context.Background(), "BTCUSDT", nil)

	if p.FastMAPeriod != 10 {
		t.Errorf("FastMAPeriod = %d, want overridden 10", p.FastMAPeriod)
	}
	if p.ADXTrendThreshold != 30 {
		t.Errorf("ADXTrendThreshold = %f, want overridden 30", p.ADXTrendThreshold)
	}
	if p.SlowMAPeriod != 50 {
		t.Errorf("SlowMAPeriod = %d, want default 50", p.SlowMAPeriod)
	}
}

func TestResolveCachesWithinTTL(t *testing.T) {
	store := &fakeStore{overrides: map[string]float64{"leverage": 5}}
	r := NewResolver(store, baseParams(), time.Minute, zerolog.Nop())

	current := time.Unix(1000, 0)
	r.now = func() time.Time { return current }

	r.Resolve(context.Background(), "BTCUSDT", nil)
	r.Resolve(context.Background(), "BTCUSDT", nil)
	if store.calls != 1 {
		t.Errorf("store calls = %d, want 1 within TTL", store.calls)
	}

	current = current.Add(2 * time.Minute)
	r.Resolve(context.Background(), "BTCUSDT", nil)
	if store.calls != 2 {
		t.Errorf("store calls = %d, want 2 after TTL expiry", store.calls)
	}
}

func TestResolveCachesStoreFailures(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	r := NewResolver(store, baseParams(), time.Minute, zerolog.Nop())

	p := r.Resolve(context.Background(), "BTCUSDT", nil)
	if p != baseParams() {
		t.Errorf("failed lookup should resolve to defaults, got %+v", p)
	}

	r.Resolve(context.Background(), "BTCUSDT", nil)
	if store.calls != 1 {
		t.Errorf("store calls = %d, want 1: failures must not be retried every cycle", store.calls)
	}
}

func TestResolveOverrideBypassesStoreAndCache(t *testing.T) {
	store := &fakeStore{overrides: map[string]float64{"leverage": 5}}
	r := NewResolver(store, baseParams(), time.Minute, zerolog.Nop())

	explicit := baseParams()
	explicit.Leverage = 3

	p := r.Resolve(context.Background(), "BTCUSDT", &explicit)
	if p.Leverage != 3 {
		t.Errorf("Leverage = %d, want explicit 3", p.Leverage)
	}
	if store.calls != 0 {
		t.Errorf("store calls = %d, want 0 for explicit override", store.calls)
	}
}

func TestInvalidateForcesRefresh(t *testing.T) {
	store := &fakeStore{overrides: map[string]float64{"leverage": 5}}
	r := NewResolver(store, baseParams(), time.Hour, zerolog.Nop())

	r.Resolve(context.Background(), "BTCUSDT", nil)
	r.Invalidate("BTCUSDT")
	r.Resolve(context.Background(), "BTCUSDT", nil)

	if store.calls != 2 {
		t.Errorf("store calls = %d, want 2 after invalidation", store.calls)
	}
}

func TestNilStoreResolvesDefaults(t *testing.T) {
	r := NewResolver(nil, baseParams(), time.Minute, zerolog.Nop())
	p := r.Resolve(context.Background(), "ETHUSDT", nil)
	if p != baseParams() {
		t.Errorf("nil store should resolve to defaults, got %+v", p)
	}
}

func TestMergeConvertsTypes(t *testing.T) {
	merged := Merge(baseParams(), map[string]float64{
		"slow_ma_period":   60,
		"use_dynamic_sltp": 1,
		"risk_per_trade":   0.01,
	})

	if merged.SlowMAPeriod != 60 {
		t.Errorf("SlowMAPeriod = %d, want 60", merged.SlowMAPeriod)
	}
	if !merged.UseDynamicSLTP {
		t.Error("UseDynamicSLTP should be true for non-zero override")
	}
	if merged.RiskPerTrade != 0.01 {
		t.Errorf("RiskPerTrade = %f, want 0.01", merged.RiskPerTrade)
	}

	unknown := Merge(baseParams(), map[string]float64{"no_such_key": 7})
	if unknown != baseParams() {
		t.Errorf("unknown keys must be ignored, got %+v", unknown)
	}
}
